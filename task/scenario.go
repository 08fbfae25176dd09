package task

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/planner"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/config"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/randengine"
)

// Scenario 合成演示场景
// 功能：提供一条直线参考路径与若干匀速直行的社会车辆，
// 每个规划周期向规划器提供观测并回放规划结果
// 说明：宿主坐标系航向与路径行进方向相差π/2；
// 场景只负责观测与状态回放，规划逻辑全部在规划器内
type Scenario struct {
	path      []planner.Waypoint
	ego       planner.EgoState
	neighbors []planner.NeighborState
}

// NewScenario 根据配置生成演示场景
// 功能：沿配置的行进方向生成等距参考路径，并放置带随机初速度扰动的社会车辆
// 参数：cfg-场景配置
// 返回：初始化完成的场景实例
// 算法说明：
// 1. 从原点出发沿行进方向每隔PathSpacing米放置一个路径点
// 2. 路径点与自车的宿主坐标系航向 = 行进方向 - π/2
// 3. 社会车辆取配置的初始状态，初速度叠加[-jitter, jitter)的均匀扰动
func NewScenario(cfg config.Scenario) *Scenario {
	engine := randengine.New(cfg.Seed)
	heading := cfg.Bearing - math.Pi/2

	path := make([]planner.Waypoint, 0, cfg.PathPoints)
	for i := 0; i < cfg.PathPoints; i++ {
		d := float64(i) * cfg.PathSpacing
		path = append(path, planner.Waypoint{
			Position: geometry.Point{
				X: d * math.Cos(cfg.Bearing),
				Y: d * math.Sin(cfg.Bearing),
			},
			Heading:    heading,
			SpeedLimit: cfg.SpeedLimit,
		})
	}

	neighbors := make([]planner.NeighborState, 0, len(cfg.Vehicles))
	for _, v := range cfg.Vehicles {
		speed := v.Speed
		if cfg.SpeedJitter > 0 {
			speed = math.Max(0, speed+engine.Uniform(-cfg.SpeedJitter, cfg.SpeedJitter))
		}
		neighbors = append(neighbors, planner.NeighborState{
			Position: geometry.Point{X: v.X, Y: v.Y},
			Heading:  v.Heading,
			Speed:    speed,
		})
	}

	return &Scenario{
		path: path,
		ego: planner.EgoState{
			Position: path[0].Position,
			Heading:  heading,
			Speed:    0,
		},
		neighbors: neighbors,
	}
}

// Observe 生成本周期的世界观测
// 功能：从距自车最近的路径点起截取参考路径，连同自车与社会车辆状态打包为观测
// 返回：本周期的观测
// 说明：候选参考路径只有一条；截取避免把已驶过的路径点再次作为参考
func (s *Scenario) Observe() *planner.Observation {
	best, bestDist := 0, mathutil.INF
	for i, wp := range s.path {
		d := math.Hypot(wp.Position.X-s.ego.Position.X, wp.Position.Y-s.ego.Position.Y)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	neighbors := make([]planner.NeighborState, len(s.neighbors))
	copy(neighbors, s.neighbors)
	return &planner.Observation{
		Ego:       s.ego,
		Neighbors: neighbors,
		Paths:     [][]planner.Waypoint{s.path[best:]},
	}
}

// Apply 回放规划结果
// 功能：把自车移动到轨迹的第一个位姿
// 参数：traj-本周期规划得到的轨迹
func (s *Scenario) Apply(traj planner.Trajectory) {
	if len(traj) == 0 {
		return
	}
	s.ego = planner.EgoState{
		Position: traj[0].Position,
		Heading:  traj[0].Heading,
		Speed:    traj[0].Speed,
	}
}

// StepNeighbors 推进社会车辆
// 功能：社会车辆按当前航向匀速直行一个时间步
// 参数：dt-时间步长（秒）
func (s *Scenario) StepNeighbors(dt float64) {
	for i := range s.neighbors {
		sv := &s.neighbors[i]
		theta := sv.Heading + math.Pi/2
		sv.Position.X += dt * sv.Speed * math.Cos(theta)
		sv.Position.Y += dt * sv.Speed * math.Sin(theta)
	}
}

// Ego 当前自车状态
func (s *Scenario) Ego() planner.EgoState {
	return s.ego
}
