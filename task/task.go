package task

import (
	"sync/atomic"

	"github.com/tsinghua-fib-lab/mpc-planner-oss/clock"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/planner"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/solver"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/config"
)

// logEvery 规划循环每隔多少步输出一次进度日志
const logEvery = 50

// Context 规划任务上下文
// 功能：包含一次规划任务的所有变量和状态
// 说明：管理规划循环的所有组件，包括时钟、规划器与演示场景
type Context struct {

	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 规划器
	planner *planner.Planner
	// 演示场景
	scenario *Scenario

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
}

// NewContext 创建新的规划任务上下文
// 功能：初始化规划循环的所有组件
// 参数：rc-运行时配置，launcher-求解器启动方式（nil则以子进程启动）
// 返回：初始化完成的Context实例
// 说明：规划器初始化失败（含求解器进程无法启动）视为致命错误，直接panic
func NewContext(rc *config.RuntimeConfig, launcher solver.Launcher) *Context {
	ctx := &Context{
		runtimeConfig: rc,
	}
	ctx.clock = clock.New(rc.C.Step)
	ctx.scenario = NewScenario(rc.All.Scenario)

	p, err := planner.New(rc, launcher)
	if err != nil {
		log.Panicf("failed to initialize planner: %v", err)
	}
	ctx.planner = p
	return ctx
}

// Clock 任务时钟
func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

// Planner 任务规划器
func (ctx *Context) Planner() *planner.Planner {
	return ctx.planner
}

// Scenario 任务演示场景
func (ctx *Context) Scenario() *Scenario {
	return ctx.scenario
}

// RuntimeConfig 运行时配置
func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Run 执行规划循环
// 功能：按时钟推进规划循环直到规划区间结束
// 算法说明：
// 1. 每个规划步：采集观测、执行规划、把轨迹首位姿回放到场景
// 2. 社会车辆按时间步匀速直行
// 3. 周期性输出当前时间、自车位置与速度
func (ctx *Context) Run() {
	for !ctx.clock.Done() {
		obs := ctx.scenario.Observe()
		traj := ctx.planner.Act(obs)
		ctx.scenario.Apply(traj)
		ctx.scenario.StepNeighbors(ctx.clock.DT)
		ctx.clock.Tick()

		if ctx.clock.InternalStep%logEvery == 0 {
			ego := ctx.scenario.Ego()
			log.Infof("step %d (%v): position=(%.2f, %.2f) speed=%.2f impatience=%d",
				ctx.clock.InternalStep, ctx.clock,
				ego.Position.X, ego.Position.Y, ego.Speed,
				ctx.planner.Impatience())
		}
	}
	log.Infof("planning loop finished at %v", ctx.clock)
}

// Close 关闭任务上下文
// 功能：停止规划器持有的求解器会话
func (ctx *Context) Close() {
	if ctx.closed.Load() {
		return
	}
	ctx.planner.Close()
	ctx.closed.Store(true)
}
