package solver

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/sym"
	"gonum.org/v1/gonum/floats"
)

// 箱式约束下的投影梯度下降。梯度用中心差分在编译后的指令带上计算，
// 步长用Armijo回溯搜索，每步把迭代点投影回[lower, upper]。

const (
	gradStep       = 1e-6 // 中心差分步长
	armijoSigma    = 1e-4 // Armijo充分下降系数
	armijoShrink   = 0.5  // 回溯缩减因子
	armijoMaxTries = 30   // 回溯次数上限
)

// minimize 求解箱式约束下的最小化问题
// 功能：在[lower, upper]内最小化prog定义的代价函数
// 参数：prog-代价求值程序，lower/upper-箱式约束，params-参数向量，
// guess-热启动初值（nil则取零向量），maxIter-迭代上限，tol-梯度收敛阈值
// 返回：最优点、状态（converged/max_iterations）、迭代次数、最优代价与错误码（0为成功）
// 算法说明：
// 1. 初值投影进可行域
// 2. 每轮计算投影梯度，范数低于阈值即收敛
// 3. Armijo回溯确定步长，按投影后的实际位移判断充分下降
// 4. 回溯失败说明已达驻点，提前收敛返回
func minimize(
	prog *sym.Program, lower, upper, params, guess []float64, maxIter int, tol float64,
) (x []float64, status string, iters int, cost float64, code int) {
	n := prog.Vars
	x = make([]float64, n)
	if guess != nil {
		copy(x, guess)
	}
	project(x, lower, upper)

	regs := make([]float64, len(prog.Code))
	f := func(v []float64) float64 {
		return prog.Eval(params, v, regs)
	}

	g := make([]float64, n)
	xn := make([]float64, n)
	step := make([]float64, n)

	fx := f(x)
	status = ExitMaxIterations
	for iters = 0; iters < maxIter; iters++ {
		if !isFinite(fx) {
			return nil, ExitError, iters, fx, CodeNonFiniteCost
		}

		// 中心差分梯度
		for i := 0; i < n; i++ {
			orig := x[i]
			x[i] = orig + gradStep
			fp := f(x)
			x[i] = orig - gradStep
			fm := f(x)
			x[i] = orig
			g[i] = (fp - fm) / (2 * gradStep)
		}
		if !isFinite(floats.Norm(g, 2)) {
			return nil, ExitError, iters, fx, CodeNonFiniteCost
		}
		if projectedGradNorm(x, g, lower, upper) < tol {
			status = ExitConverged
			break
		}

		// Armijo回溯，位移按投影后的实际步计算
		alpha := 1.0
		accepted := false
		for try := 0; try < armijoMaxTries; try++ {
			floats.AddScaledTo(xn, x, -alpha, g)
			project(xn, lower, upper)
			floats.SubTo(step, x, xn)
			fn := f(xn)
			if isFinite(fn) && fn <= fx-armijoSigma*floats.Dot(g, step) {
				copy(x, xn)
				fx = fn
				accepted = true
				break
			}
			alpha *= armijoShrink
		}
		if !accepted {
			// 可行域内已无下降方向
			status = ExitConverged
			break
		}
	}
	return x, status, iters, fx, 0
}

// project 把点逐维钳位进箱式约束
func project(x, lower, upper []float64) {
	for i := range x {
		x[i] = lo.Clamp(x[i], lower[i], upper[i])
	}
}

// projectedGradNorm 投影梯度范数
// 说明：位于边界且梯度指向界外的分量不计入，避免把顶在约束上的解误判为未收敛
func projectedGradNorm(x, g, lower, upper []float64) float64 {
	s := 0.0
	for i := range x {
		gi := g[i]
		if x[i] <= lower[i] && gi > 0 {
			gi = 0
		}
		if x[i] >= upper[i] && gi < 0 {
			gi = 0
		}
		s += gi * gi
	}
	return math.Sqrt(s)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
