package solver

import "fmt"

// 求解器服务的线协议：TCP连接上单行JSON请求、单行JSON应答。
// 三种请求：ping（存活探测）、kill（请求退出）、run（一次求解）。

// runRequest 一次求解请求
type runRequest struct {
	Parameter    []float64 `json:"parameter"`               // 参数向量
	InitialGuess []float64 `json:"initial_guess,omitempty"` // 热启动初值，缺省为零向量
}

// request 求解器服务请求
type request struct {
	Ping bool        `json:"ping,omitempty"`
	Kill bool        `json:"kill,omitempty"`
	Run  *runRequest `json:"run,omitempty"`
}

// 求解结果状态
const (
	ExitConverged     = "converged"      // 梯度范数低于阈值
	ExitMaxIterations = "max_iterations" // 达到迭代上限，解仍然可用
	ExitError         = "error"          // 求解失败，Code给出诊断码
)

// 诊断码
const (
	CodeMalformedRequest  = 1000 // 请求无法解析
	CodeNonFiniteCost     = 1600 // 代价函数出现NaN或Inf
	CodeDimensionMismatch = 2000 // 参数或初值维数与编译产物不符
)

// response 求解器服务应答
type response struct {
	Status        string    `json:"status,omitempty"`         // ping应答，存活时为"ok"
	ExitStatus    string    `json:"exit_status,omitempty"`    // run应答状态
	Solution      []float64 `json:"solution,omitempty"`       // 最优控制序列，交错排列
	Code          int       `json:"code,omitempty"`           // 失败诊断码
	NumIterations int       `json:"num_iterations,omitempty"` // 实际迭代次数
	Cost          float64   `json:"cost"`                     // 最优代价
	SolveTimeMS   float64   `json:"solve_time_ms"`            // 求解耗时（毫秒）
}

// Result 一次成功求解的结果
type Result struct {
	Solution      []float64 // 最优控制序列，按(加速度, 转向率)交错排列，长度2N
	ExitStatus    string
	NumIterations int
	Cost          float64
	SolveTimeMS   float64
}

// SolveError 求解失败
// 说明：携带服务端返回的诊断码；调用方收到后应重建会话
type SolveError struct {
	Code int
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solver failure, code %d", e.Code)
}
