package planner

import "git.fiblab.net/general/common/v2/geometry"

// 观测与轨迹都使用宿主坐标系航向；与车辆模型航向相差π/2，
// 偏移在编码参数向量时加上、在解码轨迹时减去。

// EgoState 自车观测状态
type EgoState struct {
	Position geometry.Point // 位置（米）
	Heading  float64        // 宿主坐标系航向（弧度）
	Speed    float64        // 速度（米/秒）
}

// NeighborState 邻近车辆观测状态
type NeighborState struct {
	Position geometry.Point // 位置（米）
	Heading  float64        // 宿主坐标系航向（弧度）
	Speed    float64        // 速度（米/秒）
}

// Waypoint 候选参考路径上的一个采样点
type Waypoint struct {
	Position   geometry.Point // 位置（米）
	Heading    float64        // 宿主坐标系航向（弧度）
	SpeedLimit float64        // 限速（米/秒）
}

// Observation 单个规划周期的世界观测
// 说明：由宿主（仿真环境）每周期提供；观测的来源与格式转换是宿主的职责
type Observation struct {
	Ego       EgoState        // 自车状态
	Neighbors []NeighborState // 邻近车辆
	Paths     [][]Waypoint    // 候选参考路径，至少一条且每条至少一个点
}

// Pose 轨迹上的一个位姿
type Pose struct {
	Position geometry.Point // 位置（米）
	Heading  float64        // 宿主坐标系航向（弧度）
	Speed    float64        // 速度（米/秒）
}

// Trajectory 规划得到的可行驶轨迹，每个时域步一个位姿
type Trajectory []Pose
