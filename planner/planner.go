package planner

import (
	"os"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/problem"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/solver"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/config"
)

// moveEpsilon 位移小于该阈值（米）视为没有移动，不耐烦计数加一
const moveEpsilon = 0.1

// Planner 滚动时域规划器
// 功能：持有求解器会话与跨周期状态，每个规划周期把观测变成一条可行驶轨迹
// 说明：跨周期状态只有三项：上一周期接受的解（热启动用）、
// 上一周期的自车位置与不耐烦计数；除此之外每个周期都是无状态的
type Planner struct {
	cfg     *config.RuntimeConfig
	layout  problem.Layout
	gain    problem.Gain
	session *solver.Session

	prevSolution       []float64
	lastPosition       *geometry.Point
	stepsWithoutMoving int
}

// New 创建并初始化规划器
// 功能：加载增益、构建参数向量布局并启动求解器会话
// 参数：rc-运行时配置，launcher-求解器启动方式（nil则以子进程启动）
// 返回：就绪的规划器与错误信息
// 说明：增益文件存在时覆盖默认增益；求解器会话启动失败对调用方是致命错误
func New(rc *config.RuntimeConfig, launcher solver.Launcher) (*Planner, error) {
	gain := problem.DefaultGain()
	if path := rc.All.Planner.GainFile; path != "" {
		if _, err := os.Stat(path); err == nil {
			g, err := problem.LoadGain(path)
			if err != nil {
				return nil, err
			}
			log.Infof("loaded gain from %s", path)
			gain = g
		}
	}

	layout := problem.Layout{
		N:   rc.All.Planner.Horizon,
		SVN: rc.All.Planner.SocialVehicles,
		WPN: rc.All.Planner.Waypoints,
		TS:  rc.C.Step.Interval,
	}
	session := solver.NewSession(rc.All.Solver, layout, launcher)
	if err := session.Init(); err != nil {
		return nil, err
	}
	return &Planner{
		cfg:     rc,
		layout:  layout,
		gain:    gain,
		session: session,
	}, nil
}

// Act 执行一个规划周期
// 功能：根据观测求解一次最优控制并积分为可行驶轨迹
// 参数：obs-本周期的世界观测
// 返回：每个时域步一个位姿的轨迹
// 算法说明：
// 1. 按上一周期以来的位移更新不耐烦计数
// 2. 编码参数向量，带上一周期的解热启动求解
// 3. 求解成功则保存本次解供下周期热启动，并解码为轨迹
// 4. 求解失败则丢弃热启动状态并重建求解器会话，本周期返回空轨迹
// 说明：重建会话仍失败说明求解器已不可用，直接panic交给宿主处理
func (p *Planner) Act(obs *Observation) Trajectory {
	if p.lastPosition != nil {
		if planarDistance(*p.lastPosition, obs.Ego.Position) < moveEpsilon {
			p.stepsWithoutMoving++
		} else {
			p.stepsWithoutMoving = 0
		}
	}
	pos := obs.Ego.Position
	p.lastPosition = &pos

	params := EncodeParams(p.layout, p.gain, obs, p.stepsWithoutMoving)
	res, err := p.session.Solve(params, p.prevSolution)
	if err != nil {
		log.Warnf("bad response from planner: %v", err)
		p.prevSolution = nil
		if err := p.session.Reinit(); err != nil {
			log.Panicf("failed to reinitialize optimizer session: %v", err)
		}
		return nil
	}

	p.prevSolution = res.Solution
	return DecodeTrajectory(p.layout, obs.Ego, res.Solution)
}

// Impatience 当前不耐烦计数
func (p *Planner) Impatience() int {
	return p.stepsWithoutMoving
}

// Layout 规划器使用的参数向量布局
func (p *Planner) Layout() problem.Layout {
	return p.layout
}

// Close 停止求解器会话
func (p *Planner) Close() {
	p.session.Stop()
}
