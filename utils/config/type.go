package config

// ControlStep 指定规划循环时间范围和间隔的配置项
// 说明：控制演示循环的时间范围与步长，步长同时是优化问题的离散时间步
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 规划循环控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
}

// Planner 规划器配置
// 功能：定义优化问题的结构参数与增益来源
// 说明：结构参数(Horizon, SocialVehicles, Waypoints)连同时间步长共同决定
// 参数向量布局与编译产物缓存键
type Planner struct {
	Horizon        int    `yaml:"horizon,omitempty"`         // 预测时域步数N
	SocialVehicles int    `yaml:"social_vehicles,omitempty"` // 纳入优化的社会车辆数量，-1表示不编码社会车辆
	Waypoints      int    `yaml:"waypoints,omitempty"`       // 参考位姿窗口长度
	GainFile       string `yaml:"gain_file,omitempty"`       // 增益持久化文件路径，文件存在时覆盖默认增益
}

// Solver 求解器会话配置
// 功能：定义编译产物位置、求解器进程启动方式与生命周期参数
type Solver struct {
	BuildDir        string  `yaml:"build_dir,omitempty"`         // 编译产物缓存目录
	Command         string  `yaml:"command,omitempty"`           // 求解器程序路径，为空则复用当前可执行文件
	Retries         int     `yaml:"retries,omitempty"`           // 启动重试次数上限
	StopMaxAttempts int     `yaml:"stop_max_attempts,omitempty"` // 停止时存活轮询次数上限
	StopInterval    float64 `yaml:"stop_interval,omitempty"`     // 停止时轮询间隔（秒）
	MaxIterations   int     `yaml:"max_iterations,omitempty"`    // 编译进产物的求解迭代上限
	Tolerance       float64 `yaml:"tolerance,omitempty"`         // 编译进产物的梯度收敛阈值
}

// ScenarioVehicle 演示场景中的社会车辆初始状态
type ScenarioVehicle struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Heading float64 `yaml:"heading"` // 宿主坐标系航向（弧度）
	Speed   float64 `yaml:"speed"`
}

// Scenario 演示场景配置
// 功能：定义合成场景中的参考路径与社会车辆
type Scenario struct {
	Seed        uint64            `yaml:"seed,omitempty"`         // 随机数种子
	SpeedLimit  float64           `yaml:"speed_limit,omitempty"`  // 参考路径限速（米/秒）
	PathPoints  int               `yaml:"path_points,omitempty"`  // 参考路径点数
	PathSpacing float64           `yaml:"path_spacing,omitempty"` // 参考路径点间距（米）
	Bearing     float64           `yaml:"bearing,omitempty"`      // 路径行进方向（模型坐标系，弧度）
	SpeedJitter float64           `yaml:"speed_jitter,omitempty"` // 社会车辆初速度扰动幅度
	Vehicles    []ScenarioVehicle `yaml:"vehicles,omitempty"`     // 社会车辆初始状态
}

// Config YAML配置文件的根结构
type Config struct {
	Control  Control  `yaml:"control"`            // 规划循环控制
	Planner  Planner  `yaml:"planner,omitempty"`  // 规划器
	Solver   Solver   `yaml:"solver,omitempty"`   // 求解器会话
	Scenario Scenario `yaml:"scenario,omitempty"` // 演示场景
}
