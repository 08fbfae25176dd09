// 把车辆模型、参考路径跟踪、避障与控制平滑组合为单个标量代价，
// 连同逐步的箱式约束一起编译为交给外部求解器的优化问题
package problem

import (
	"math"

	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/sym"
)

// weights 参数向量中解析出的符号增益
type weights struct {
	theta      *sym.Expr
	position   *sym.Expr
	obstacle   *sym.Expr
	uAccel     *sym.Expr
	uYawRate   *sym.Expr
	terminal   *sym.Expr
	impatience *sym.Expr
	speed      *sym.Expr
}

// Problem 编译完成的优化问题
// 说明：Program是代价函数的求值程序，Lower/Upper是决策变量的箱式约束，
// 两者与Layout一起构成求解器进程的全部输入
type Problem struct {
	Layout  Layout
	Program *sym.Program
	Lower   []float64 // 决策变量下界，长度为2N
	Upper   []float64 // 决策变量上界，长度为2N
}

// Build 构建优化问题
// 功能：按布局展开代价函数并编译为求值程序
// 参数：layout-参数向量布局
// 返回：编译完成的优化问题
// 算法说明：
// 1. 从参数向量解析增益、自车状态、社会车辆、参考窗口、不耐烦计数与目标速度
// 2. 逐步用决策变量推进自车，累加跟踪、速度整形与避障代价
// 3. 展开结束后追加终端代价、控制平滑代价与不耐烦代价
// 4. 编译为指令带并生成逐步箱式约束
// 说明：展开只在构建时进行一次，之后每个规划周期复用同一份编译产物
func Build(layout Layout) *Problem {
	if layout.N < 2 {
		log.Panicf("horizon must contain at least 2 steps, got %d", layout.N)
	}
	if layout.SVN < 0 {
		log.Panicf("social vehicle count must be non-negative, got %d", layout.SVN)
	}
	if layout.WPN < 1 {
		log.Panicf("reference window must contain at least 1 pose, got %d", layout.WPN)
	}

	ab := Syms{}

	w := weights{
		theta:      sym.Param(layout.GainOffset()),
		position:   sym.Param(layout.GainOffset() + 1),
		obstacle:   sym.Param(layout.GainOffset() + 2),
		uAccel:     sym.Param(layout.GainOffset() + 3),
		uYawRate:   sym.Param(layout.GainOffset() + 4),
		terminal:   sym.Param(layout.GainOffset() + 5),
		impatience: sym.Param(layout.GainOffset() + 6),
		speed:      sym.Param(layout.GainOffset() + 7),
	}
	ego := paramVehicle(layout.EgoOffset())
	svs := make([]Vehicle[*sym.Expr], layout.SVN)
	for i := range svs {
		svs[i] = paramVehicle(layout.SocialVehicleOffset(i))
	}
	xrefs := make([]XRef[*sym.Expr], layout.WPN)
	for i := range xrefs {
		off := layout.XRefOffset(i)
		xrefs[i] = XRef[*sym.Expr]{
			X:     sym.Param(off),
			Y:     sym.Param(off + 1),
			Theta: sym.Param(off + 2),
		}
	}
	impatience := sym.Param(layout.ImpatienceOffset())
	targetSpeed := sym.Param(layout.TargetSpeedOffset())

	uTraj := NewUTrajectory(layout.N)
	zero := Control[*sym.Expr]{Accel: sym.Const(0), YawRate: sym.Const(0)}

	cost := sym.Const(0)
	for t := 0; t < layout.N; t++ {
		// 自车推进到下一个轨迹点
		ego.Step(ab, uTraj.At(t), layout.TS)

		// 当前位姿到参考窗口的最小加权距离
		cost = sym.Add(cost, minCostByDistance(ab, xrefs, ego.AsXRef(), w.position, w.theta))

		// 速度整形项。t=0时按原公式会除零，跳过该步（默认速度增益为0，该项不生效）
		if t > 0 {
			cost = sym.Add(cost, sym.Mul(w.speed, sym.Div(targetSpeed, sym.Const(float64(t)))))
		}

		for i := range svs {
			// 社会车辆按匀速假设推进（零控制量）
			svs[i].Step(ab, zero, layout.TS)

			// 距离低于车长时二次惩罚，远离时饱和到-1
			d2 := sym.Add(
				sym.Sqr(sym.Sub(ego.X, svs[i].X)),
				sym.Sqr(sym.Sub(ego.Y, svs[i].Y)),
			)
			cost = sym.Add(cost, sym.Mul(w.obstacle,
				sym.Max(sym.Const(-1), sym.Sub(sym.Const(Length*Length), d2))))
		}
	}

	// 终端位姿以更高权重拉向窗口末端，稳定时域端点
	cost = sym.Add(cost, sym.Mul(w.terminal,
		xrefs[layout.WPN-1].WeightedDistanceTo(ab, ego.AsXRef(), w.position, w.theta)))

	cost = sym.Add(cost, uTraj.SmoothnessCost(w.uAccel, w.uYawRate))

	// 不耐烦计数增大时把首步加速度推向满加速
	cost = sym.Add(cost, sym.Mul(w.impatience,
		sym.Mul(
			sym.Mul(sym.Sub(uTraj.At(0).Accel, sym.Const(1)), sym.Sqr(impatience)),
			sym.Const(-1),
		)))

	lower := make([]float64, 0, layout.VarDim())
	upper := make([]float64, 0, layout.VarDim())
	for t := 0; t < layout.N; t++ {
		lower = append(lower, -1, -math.Pi*0.3)
		upper = append(upper, 1, math.Pi*0.3)
	}

	p := &Problem{
		Layout:  layout,
		Program: sym.Compile(cost, layout.Dim(), layout.VarDim()),
		Lower:   lower,
		Upper:   upper,
	}
	log.Debugf("built problem: %d params, %d vars, tape length %d",
		p.Program.Params, p.Program.Vars, len(p.Program.Code))
	return p
}

// paramVehicle 从参数向量的指定偏移解析车辆状态
func paramVehicle(off int) Vehicle[*sym.Expr] {
	return Vehicle[*sym.Expr]{
		X:     sym.Param(off),
		Y:     sym.Param(off + 1),
		Theta: sym.Param(off + 2),
		Speed: sym.Param(off + 3),
	}
}
