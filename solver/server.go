package solver

import (
	"bufio"
	"encoding/json"
	"net"
	"sync/atomic"
	"time"
)

// Server 求解器服务
// 功能：加载编译产物并在TCP端口上应答ping/run/kill请求
// 说明：这是编译产物对应的独立求解器程序本体，通常运行在规划进程之外的
// 子进程中；测试中也可在进程内直接启动。请求逐连接串行处理，求值暂存区
// 在请求间复用
type Server struct {
	ln     net.Listener
	art    *artifact
	closed atomic.Bool
}

// NewServer 创建求解器服务
// 功能：从产物目录加载优化问题并监听给定地址
// 参数：problemDir-编译产物目录，addr-TCP监听地址
// 返回：服务实例与错误信息
func NewServer(problemDir, addr string) (*Server, error) {
	art, err := loadArtifact(problemDir)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{ln: ln, art: art}, nil
}

// Addr 实际监听地址
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve 处理请求直到收到kill或Close
// 返回：监听异常时返回错误，正常退出返回nil
func (s *Server) Serve() error {
	log.Infof("optimizer serving on %s (%d params, %d vars)",
		s.Addr(), s.art.Program.Params, s.art.Program.Vars)
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			return err
		}
		s.handle(conn)
		if s.closed.Load() {
			return nil
		}
	}
}

// Close 停止服务
func (s *Server) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.ln.Close()
	}
}

// handle 处理单个连接上的一条请求
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return
	}
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		reply(conn, response{ExitStatus: ExitError, Code: CodeMalformedRequest})
		return
	}
	switch {
	case req.Ping:
		reply(conn, response{Status: "ok"})
	case req.Kill:
		reply(conn, response{Status: "ok"})
		s.Close()
	case req.Run != nil:
		reply(conn, s.run(req.Run))
	default:
		reply(conn, response{ExitStatus: ExitError, Code: CodeMalformedRequest})
	}
}

// run 执行一次求解
func (s *Server) run(req *runRequest) response {
	prog := s.art.Program
	if len(req.Parameter) != prog.Params {
		return response{ExitStatus: ExitError, Code: CodeDimensionMismatch}
	}
	if req.InitialGuess != nil && len(req.InitialGuess) != prog.Vars {
		return response{ExitStatus: ExitError, Code: CodeDimensionMismatch}
	}

	start := time.Now()
	x, status, iters, cost, code := minimize(
		prog, s.art.Lower, s.art.Upper,
		req.Parameter, req.InitialGuess,
		s.art.MaxIterations, s.art.Tolerance,
	)
	if status == ExitError {
		return response{ExitStatus: ExitError, Code: code}
	}
	return response{
		ExitStatus:    status,
		Solution:      x,
		NumIterations: iters,
		Cost:          cost,
		SolveTimeMS:   float64(time.Since(start).Microseconds()) / 1000,
	}
}

func reply(conn net.Conn, resp response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("failed to encode response: %v", err)
		return
	}
	conn.Write(append(data, '\n'))
}
