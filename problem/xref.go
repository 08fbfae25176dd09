package problem

import "math"

// XRefDOF 参考位姿的自由度
const XRefDOF = 3

// XRef 参考路径上的一个位姿采样
type XRef[T any] struct {
	X     T // 位置x（米）
	Y     T // 位置y（米）
	Theta T // 航向角（弧度）
}

// AngleError 回绕安全的航向误差
// 功能：计算两个航向角之间的平方误差，并检查+2π分支以处理回绕
// 参数：ab-标量运算集合，a/b-两个航向角
// 返回：min((a-b)², (a-(b+2π))²)
// 说明：只检查+2π分支的单边修正，要求|a-b|不超过一圈；
// 编码阶段保证输入航向满足该前提
func AngleError[T any](ab Algebra[T], a, b T) T {
	d := ab.Sub(a, b)
	dw := ab.Sub(a, ab.Add(b, ab.Const(2*math.Pi)))
	return ab.Min(ab.Mul(d, d), ab.Mul(dw, dw))
}

// WeightedDistanceTo 位姿加权距离
// 功能：计算到另一位姿的加权误差，位置项与航向项分别加权
// 参数：ab-标量运算集合，other-另一位姿，wPosition/wTheta-位置与航向权重
// 返回：wPosition·((Δx)²+(Δy)²) + wTheta·angle_error
func (r XRef[T]) WeightedDistanceTo(ab Algebra[T], other XRef[T], wPosition, wTheta T) T {
	thetaErr := AngleError(ab, r.Theta, other.Theta)
	dx := ab.Sub(other.X, r.X)
	dy := ab.Sub(other.Y, r.Y)
	posErr := ab.Add(ab.Mul(dx, dx), ab.Mul(dy, dy))
	return ab.Add(ab.Mul(wPosition, posErr), ab.Mul(wTheta, thetaErr))
}

// minCostByDistance 位姿到参考窗口的最小加权距离
// 功能：对参考窗口内的每个位姿计算加权距离并取最小值
// 说明：逐步取最小而不是累加，使每个展开步都能独立地对准当前最近的参考点
func minCostByDistance[T any](ab Algebra[T], xrefs []XRef[T], point XRef[T], wPosition, wTheta T) T {
	cost := xrefs[0].WeightedDistanceTo(ab, point, wPosition, wTheta)
	for _, r := range xrefs[1:] {
		cost = ab.Min(cost, r.WeightedDistanceTo(ab, point, wPosition, wTheta))
	}
	return cost
}
