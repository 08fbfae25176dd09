package config

// RuntimeConfig 运行时配置
// 功能：存储填充默认值后的运行时配置
// 说明：将YAML配置转换为运行时可用的配置对象
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象并填充默认值
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
// 说明：未指定的结构参数取原始策略的默认值(N=11, SV_N=4, WP_N=15, ts=0.1)
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config

	c := &rc.All.Control
	if c.Step.Interval == 0 {
		c.Step.Interval = 0.1
	}
	if c.Step.Total == 0 {
		c.Step.Total = 600
	}
	p := &rc.All.Planner
	if p.Horizon == 0 {
		p.Horizon = 11
	}
	// 0或缺省取默认值；显式配置-1表示不编码社会车辆
	if p.SocialVehicles == 0 {
		p.SocialVehicles = 4
	} else if p.SocialVehicles < 0 {
		p.SocialVehicles = 0
	}
	if p.Waypoints == 0 {
		p.Waypoints = 15
	}
	s := &rc.All.Solver
	if s.BuildDir == "" {
		s.BuildDir = "build"
	}
	if s.Retries == 0 {
		s.Retries = 5
	}
	if s.StopMaxAttempts == 0 {
		s.StopMaxAttempts = 50
	}
	if s.StopInterval == 0 {
		s.StopInterval = 0.1
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = 200
	}
	if s.Tolerance == 0 {
		s.Tolerance = 1e-3
	}
	sc := &rc.All.Scenario
	if sc.SpeedLimit == 0 {
		sc.SpeedLimit = 10
	}
	if sc.PathPoints == 0 {
		sc.PathPoints = 200
	}
	if sc.PathSpacing == 0 {
		sc.PathSpacing = 1
	}

	rc.C = rc.All.Control
	return rc
}
