package solver

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/problem"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/config"
)

// State 会话状态
type State int32

const (
	Uninitialized State = iota // 尚未初始化
	Starting                   // 构建产物或启动求解器进程中
	Running                    // 求解器进程就绪
	Stopped                    // 已停止
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

const (
	dialTimeout    = 500 * time.Millisecond // 探测类请求的连接超时
	readyAttempts  = 50                     // 启动后就绪轮询次数
	readyInterval  = 20 * time.Millisecond  // 启动后就绪轮询间隔
)

// Session 求解器会话
// 功能：管理外部求解器进程的完整生命周期与逐周期的求解调用
// 说明：每个规划器实例独占一个会话，所有状态转换都由规划循环线程发起，
// 不做内部加锁；并发规划器各自持有绑定独立端口的会话
type Session struct {
	id       string // 日志关联用的短ID
	cfg      config.Solver
	layout   problem.Layout
	launcher Launcher

	artifactDir string
	addr        string
	proc        Process
	state       State
}

// NewSession 创建求解器会话
// 功能：创建处于Uninitialized状态的会话，不做任何IO
// 参数：cfg-求解器配置，layout-参数向量布局，launcher-启动方式（nil则以子进程启动）
func NewSession(cfg config.Solver, layout problem.Layout, launcher Launcher) *Session {
	if launcher == nil {
		launcher = ExecLauncher{Command: cfg.Command}
	}
	return &Session{
		id:       uuid.NewString()[:8],
		cfg:      cfg,
		layout:   layout,
		launcher: launcher,
		state:    Uninitialized,
	}
}

// State 当前会话状态
func (s *Session) State() State {
	return s.state
}

// Layout 会话绑定的参数向量布局
func (s *Session) Layout() problem.Layout {
	return s.layout
}

// Init 初始化会话
// 功能：构建或复用编译产物，启动求解器进程并等待其就绪
// 返回：重试耗尽后返回错误；没有存活的求解器规划器无法工作，调用方应视为致命失败
// 算法说明：
// 1. 按缓存键构建或复用编译产物
// 2. 每次尝试申请一个空闲端口并启动求解器进程
// 3. 轮询存活探测直到就绪；未就绪则杀掉本次进程并重试
// 4. 重试次数达到上限后放弃
func (s *Session) Init() error {
	s.state = Starting
	dir, err := EnsureArtifact(s.cfg, s.layout)
	if err != nil {
		s.state = Stopped
		return fmt.Errorf("failed to compile optimizer: %w", err)
	}
	s.artifactDir = dir

	for attempt := 1; attempt <= s.cfg.Retries; attempt++ {
		port, err := utils.FindFreePort()
		if err != nil {
			log.Warnf("[%s] failed to find free port, attempt: %d / %d: %v",
				s.id, attempt, s.cfg.Retries, err)
			continue
		}
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		proc, err := s.launcher.Launch(dir, addr)
		if err != nil {
			log.Warnf("[%s] failed to start optimizer, attempt: %d / %d: %v",
				s.id, attempt, s.cfg.Retries, err)
			continue
		}
		if s.waitReady(addr) {
			s.proc = proc
			s.addr = addr
			s.state = Running
			log.Infof("[%s] optimizer running at %s", s.id, addr)
			return nil
		}
		log.Warnf("[%s] optimizer did not become ready, attempt: %d / %d",
			s.id, attempt, s.cfg.Retries)
		proc.Kill()
	}
	s.state = Stopped
	return fmt.Errorf("optimizer failed to start after %d attempts", s.cfg.Retries)
}

// waitReady 轮询存活探测直到就绪或超出轮询次数
func (s *Session) waitReady(addr string) bool {
	for range readyAttempts {
		if ping(addr) {
			return true
		}
		time.Sleep(readyInterval)
	}
	return false
}

// Health 存活探测
// 功能：同步确认求解器进程仍在应答
// 返回：会话处于Running且探测应答正常时为true
func (s *Session) Health() bool {
	return s.state == Running && ping(s.addr)
}

// Solve 执行一次求解
// 功能：把参数向量与可选的热启动初值发给求解器并阻塞等待结果
// 参数：params-参数向量，warmStart-上一周期接受的解（nil表示无热启动）
// 返回：成功时为求解结果；求解器返回诊断码时为*SolveError；传输失败时为相应错误
// 说明：参数向量长度与编译产物不符属于编程错误，立即panic而不是静默截断
func (s *Session) Solve(params []float64, warmStart []float64) (*Result, error) {
	if s.state != Running {
		return nil, fmt.Errorf("solver session is %v, not running", s.state)
	}
	if len(params) != s.layout.Dim() {
		log.Panicf("parameter vector length %d does not match schema dimension %d",
			len(params), s.layout.Dim())
	}
	if warmStart != nil && len(warmStart) != s.layout.VarDim() {
		log.Panicf("warm start length %d does not match %d decision variables",
			len(warmStart), s.layout.VarDim())
	}

	resp, err := roundTrip(s.addr, request{Run: &runRequest{
		Parameter:    params,
		InitialGuess: warmStart,
	}}, 0)
	if err != nil {
		return nil, fmt.Errorf("optimizer call failed: %w", err)
	}
	if resp.ExitStatus == ExitError {
		return nil, &SolveError{Code: resp.Code}
	}
	if len(resp.Solution) != s.layout.VarDim() {
		return nil, fmt.Errorf("optimizer returned %d values, want %d",
			len(resp.Solution), s.layout.VarDim())
	}
	return &Result{
		Solution:      resp.Solution,
		ExitStatus:    resp.ExitStatus,
		NumIterations: resp.NumIterations,
		Cost:          resp.Cost,
		SolveTimeMS:   resp.SolveTimeMS,
	}, nil
}

// Stop 停止会话
// 功能：请求求解器进程退出并轮询等待其消亡
// 算法说明：
// 1. 进程仍存活时发送kill请求
// 2. 以配置的间隔轮询存活探测，次数达到上限后强杀进程兜底
// 3. 无论进程状态如何，会话最终进入Stopped
func (s *Session) Stop() {
	if s.state == Running && ping(s.addr) {
		roundTrip(s.addr, request{Kill: true}, dialTimeout)

		alive := true
		for range s.cfg.StopMaxAttempts {
			if !ping(s.addr) {
				alive = false
				break
			}
			time.Sleep(time.Duration(s.cfg.StopInterval * float64(time.Second)))
		}
		if alive {
			log.Warnf("[%s] optimizer still alive after %d polls, killing process",
				s.id, s.cfg.StopMaxAttempts)
			if s.proc != nil {
				s.proc.Kill()
			}
		}
	}
	s.state = Stopped
}

// Reinit 重建会话
// 功能：求解失败后停止当前求解器进程并重新初始化
// 返回：重新启动失败时返回错误
func (s *Session) Reinit() error {
	log.Infof("[%s] reinitializing optimizer session", s.id)
	s.Stop()
	return s.Init()
}

// ping 单次存活探测
func ping(addr string) bool {
	resp, err := roundTrip(addr, request{Ping: true}, dialTimeout)
	return err == nil && resp.Status == "ok"
}

// roundTrip 单连接请求应答
// 参数：addr-服务地址，req-请求，timeout-整体超时（0表示只限制连接，不限制应答）
func roundTrip(addr string, req request, timeout time.Duration) (response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return response{}, err
	}
	defer conn.Close()
	if timeout > 0 {
		conn.SetDeadline(time.Now().Add(timeout))
	}

	data, err := json.Marshal(req)
	if err != nil {
		return response{}, err
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return response{}, err
	}
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return response{}, err
	}
	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return response{}, err
	}
	return resp, nil
}
