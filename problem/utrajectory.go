package problem

import "github.com/tsinghua-fib-lab/mpc-planner-oss/utils/sym"

// UTrajectory 时域上的控制量决策变量序列
// 功能：管理N对(加速度, 转向率)符号决策变量
type UTrajectory struct {
	n int
	u []*sym.Expr // 交错排列：u[2t]为加速度，u[2t+1]为转向率
}

// NewUTrajectory 创建控制量序列
// 参数：n-预测时域步数
func NewUTrajectory(n int) *UTrajectory {
	u := make([]*sym.Expr, 2*n)
	for i := range u {
		u[i] = sym.Var(i)
	}
	return &UTrajectory{n: n, u: u}
}

// At 取第t步的控制量
func (t *UTrajectory) At(i int) Control[*sym.Expr] {
	if i < 0 || i >= t.n {
		log.Panicf("control index %d out of range [0,%d)", i, t.n)
	}
	return Control[*sym.Expr]{Accel: t.u[2*i], YawRate: t.u[2*i+1]}
}

// SmoothnessCost 控制量平滑代价
// 功能：累加相邻两步控制量差值的加权平方
// 参数：wAccel-加速度变化权重，wYawRate-转向率变化权重
// 返回：Σ wAccel·(Δaccel)² + wYawRate·(Δyaw_rate)²
func (t *UTrajectory) SmoothnessCost(wAccel, wYawRate *sym.Expr) *sym.Expr {
	cost := sym.Const(0)
	for i := 1; i < t.n; i++ {
		prev, cur := t.At(i-1), t.At(i)
		cost = sym.Add(cost, sym.Mul(wAccel, sym.Sqr(sym.Sub(cur.Accel, prev.Accel))))
		cost = sym.Add(cost, sym.Mul(wYawRate, sym.Sqr(sym.Sub(cur.YawRate, prev.YawRate))))
	}
	return cost
}
