package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/config"
)

// Clock 规划循环时钟
// 功能：管理规划循环的时间推进
// 说明：维护当前时间与步数信息，步长即优化问题的离散时间步
type Clock struct {
	DT         float64 // 每个规划步时间间隔（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，规划区间[START, END)

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前步数
}

// New 根据配置创建新的时钟实例
// 功能：根据全局配置初始化时钟信息
// 参数：stepConfig-控制步配置，包含时间间隔与步数范围
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:         stepConfig.Interval,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 初始化时钟状态
// 功能：重置时钟状态
// 说明：重置步数为起始步，重新计算当前时间
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Tick 推进一个规划步
func (c *Clock) Tick() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Done 检查规划区间是否结束
func (c *Clock) Done() bool {
	return c.InternalStep >= c.END_STEP
}

// String 获取时钟的字符串表示
// 功能：将当前时间格式化为可读的字符串
// 返回：格式化的时间字符串（HH:MM:SS）
func (c *Clock) String() string {
	t := c.T
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
