package planner

import (
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/problem"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils"
)

const (
	// headingOffset 宿主坐标系航向与车辆模型航向的偏移
	headingOffset = math.Pi * 0.5
	// placeholderOffset 占位社会车辆相对自车的偏移（米），远到避障项贡献约为0
	placeholderOffset = 100000.0
)

// EncodeParams 构建参数向量
// 功能：把一次观测连同增益与不耐烦计数编码为求解器的参数向量
// 参数：layout-参数向量布局，gain-增益，obs-观测，impatience-不耐烦计数
// 返回：长度等于layout.Dim()的参数向量
// 算法说明：
// 1. 选取首点距自车最近的候选参考路径
// 2. 截取前WPN个点，不足时重复末点补齐；航向加π/2换到模型坐标系
// 3. 社会车辆：SVN=0时不编码；无邻车时生成远处占位车辆；
//    否则取按欧氏距离最近的SVN辆，不足时重复最远的一辆补齐
// 4. 按布局顺序拼接：增益、自车、社会车辆、参考位姿、不耐烦计数、目标速度
// 5. 目标速度取参考窗口首点的限速
// 说明：编码结果长度与布局不符属于编程错误，立即panic
func EncodeParams(layout problem.Layout, gain problem.Gain, obs *Observation, impatience int) []float64 {
	if len(obs.Paths) == 0 {
		log.Panicf("observation contains no candidate reference paths")
	}

	path := lo.MinBy(obs.Paths, func(a, b []Waypoint) bool {
		return planarDistance(a[0].Position, obs.Ego.Position) <
			planarDistance(b[0].Position, obs.Ego.Position)
	})
	window := utils.PadRight(path, layout.WPN)

	params := make([]float64, 0, layout.Dim())
	params = append(params, gain.Array()...)
	params = append(params,
		obs.Ego.Position.X,
		obs.Ego.Position.Y,
		obs.Ego.Heading+headingOffset,
		obs.Ego.Speed,
	)
	params = append(params, encodeSocialVehicles(layout, obs)...)
	for _, wp := range window {
		params = append(params, wp.Position.X, wp.Position.Y, wp.Heading+headingOffset)
	}
	params = append(params, float64(impatience), window[0].SpeedLimit)

	if len(params) != layout.Dim() {
		log.Panicf("encoded %d parameters, schema dimension is %d", len(params), layout.Dim())
	}
	return params
}

// encodeSocialVehicles 编码社会车辆段
func encodeSocialVehicles(layout problem.Layout, obs *Observation) []float64 {
	if layout.SVN == 0 {
		return nil
	}
	params := make([]float64, 0, layout.SVN*problem.VehicleDOF)
	if len(obs.Neighbors) == 0 {
		// 场景中没有社会车辆，生成远处占位车辆
		for i := 0; i < layout.SVN; i++ {
			params = append(params,
				obs.Ego.Position.X+placeholderOffset,
				obs.Ego.Position.Y+placeholderOffset,
				0,
				0,
			)
		}
		return params
	}

	// 距自车最近的SVN辆，不足时重复最远的一辆补齐
	neighbors := make([]NeighborState, len(obs.Neighbors))
	copy(neighbors, obs.Neighbors)
	sort.Slice(neighbors, func(i, j int) bool {
		return planarDistance(neighbors[i].Position, obs.Ego.Position) <
			planarDistance(neighbors[j].Position, obs.Ego.Position)
	})
	selected := utils.PadRight(neighbors, layout.SVN)
	for _, sv := range selected {
		params = append(params,
			sv.Position.X,
			sv.Position.Y,
			sv.Heading+headingOffset,
			sv.Speed,
		)
	}
	return params
}

// DecodeTrajectory 解码控制序列
// 功能：用与代价展开完全相同的车辆模型把最优控制序列积分为可行驶轨迹
// 参数：layout-参数向量布局，ego-本周期观测的自车状态，solution-交错排列的控制序列
// 返回：每个时域步一个位姿的轨迹，航向已换回宿主坐标系
func DecodeTrajectory(layout problem.Layout, ego EgoState, solution []float64) Trajectory {
	if len(solution) != layout.VarDim() {
		log.Panicf("solution length %d does not match %d decision variables",
			len(solution), layout.VarDim())
	}
	ab := problem.Floats{}
	model := problem.Vehicle[float64]{
		X:     ego.Position.X,
		Y:     ego.Position.Y,
		Theta: ego.Heading + headingOffset,
		Speed: ego.Speed,
	}
	traj := make(Trajectory, 0, layout.N)
	for t := 0; t < layout.N; t++ {
		model.Step(ab, problem.Control[float64]{
			Accel:   solution[2*t],
			YawRate: solution[2*t+1],
		}, layout.TS)
		traj = append(traj, Pose{
			Position: geometry.Point{X: model.X, Y: model.Y},
			Heading:  model.Theta - headingOffset,
			Speed:    model.Speed,
		})
	}
	return traj
}

// planarDistance 平面欧氏距离
func planarDistance(a, b geometry.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
