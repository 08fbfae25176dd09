package solver

import (
	"os"
	"os/exec"
)

// Process 已启动的求解器进程句柄
// 说明：正常停止走线协议的kill请求，Kill仅作为轮询超限后的兜底手段
type Process interface {
	Kill() error
}

// Launcher 求解器程序的启动方式
// 功能：把编译产物与监听地址交给求解器程序并启动
// 说明：默认实现以子进程方式启动；测试注入进程内实现
type Launcher interface {
	Launch(problemDir, addr string) (Process, error)
}

// ExecLauncher 以独立子进程方式启动求解器
type ExecLauncher struct {
	Command string // 求解器程序路径，为空则复用当前可执行文件
}

// Launch 启动求解器子进程
// 功能：以求解服务模式启动求解器程序
// 参数：problemDir-编译产物目录，addr-TCP监听地址
// 返回：进程句柄与错误信息
// 说明：子进程的标准错误直通本进程以保留求解器日志；
// 后台协程回收子进程避免僵尸进程
func (l ExecLauncher) Launch(problemDir, addr string) (Process, error) {
	bin := l.Command
	if bin == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, err
		}
		bin = self
	}
	cmd := exec.Command(bin,
		"-solver.serve",
		"-solver.problem", problemDir,
		"-solver.listen", addr,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	go cmd.Wait()
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}
