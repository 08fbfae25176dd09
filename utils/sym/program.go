package sym

import (
	"fmt"
	"math"
)

// Instr 指令带中的一条指令
// 说明：A/B为操作数在指令带中的下标，Index为参数/变量分量下标
type Instr struct {
	Op    string  `json:"op"`
	A     int     `json:"a,omitempty"`
	B     int     `json:"b,omitempty"`
	Index int     `json:"i,omitempty"`
	Val   float64 `json:"v,omitempty"`
}

// Program 编译后的表达式求值程序
// 功能：将表达式DAG按拓扑序展平为指令带，共享子表达式只求值一次
// 说明：指令带可直接JSON序列化，作为编译产物交给独立的求解器进程加载
type Program struct {
	Params int     `json:"parameters"` // 参数向量维数
	Vars   int     `json:"variables"`  // 决策变量维数
	Code   []Instr `json:"tape"`       // 指令带，最后一条指令的结果即表达式值

	ops []Op // 数值化的运算码缓存，首次求值时从Code生成
}

// Compile 将表达式编译为求值程序
// 功能：后序遍历表达式DAG，对每个不同的节点生成一条指令
// 参数：root-表达式根节点，params-参数向量维数，vars-决策变量维数
// 返回：编译得到的程序
// 算法说明：
// 1. 用map记录已编译节点，保证公共子表达式只生成一条指令
// 2. 递归编译操作数后追加当前节点指令
// 3. 校验叶子节点下标不越界
func Compile(root *Expr, params, vars int) *Program {
	p := &Program{Params: params, Vars: vars}
	seen := map[*Expr]int{}
	var emit func(e *Expr) int
	emit = func(e *Expr) int {
		if i, ok := seen[e]; ok {
			return i
		}
		in := Instr{Op: opNames[e.op], Index: e.index, Val: e.val}
		switch e.op {
		case OpConst:
		case OpParam:
			if e.index < 0 || e.index >= params {
				panic(fmt.Sprintf("sym: param index %d out of range [0,%d)", e.index, params))
			}
		case OpVar:
			if e.index < 0 || e.index >= vars {
				panic(fmt.Sprintf("sym: var index %d out of range [0,%d)", e.index, vars))
			}
		case OpSin, OpCos:
			in.A = emit(e.a)
		default:
			in.A = emit(e.a)
			in.B = emit(e.b)
		}
		i := len(p.Code)
		p.Code = append(p.Code, in)
		seen[e] = i
		return i
	}
	emit(root)
	return p
}

// opcodes 把指令带的运算名解析为数值运算码
// 说明：求解器内层循环大量调用Eval，按名称分发开销过高；
// 缓存只在首次求值时生成，Program与会话一样是单所有者资源，无需加锁
func (p *Program) opcodes() []Op {
	if p.ops != nil {
		return p.ops
	}
	names := map[string]Op{}
	for op, name := range opNames {
		names[name] = Op(op)
	}
	p.ops = make([]Op, len(p.Code))
	for i, in := range p.Code {
		op, ok := names[in.Op]
		if !ok {
			panic("sym: unknown op " + in.Op)
		}
		p.ops[i] = op
	}
	return p.ops
}

// Eval 求值
// 功能：在给定参数向量与决策变量取值下计算表达式的值
// 参数：params-参数向量，vars-决策变量，regs-长度不小于指令带的暂存区（可为nil）
// 返回：表达式的值
// 说明：regs由调用方复用以避免每次求值重新分配（求解器内层循环大量调用）
func (p *Program) Eval(params, vars, regs []float64) float64 {
	if len(params) != p.Params || len(vars) != p.Vars {
		panic(fmt.Sprintf("sym: eval dimension mismatch: params %d/%d vars %d/%d",
			len(params), p.Params, len(vars), p.Vars))
	}
	if len(regs) < len(p.Code) {
		regs = make([]float64, len(p.Code))
	}
	ops := p.opcodes()
	for i, in := range p.Code {
		switch ops[i] {
		case OpConst:
			regs[i] = in.Val
		case OpParam:
			regs[i] = params[in.Index]
		case OpVar:
			regs[i] = vars[in.Index]
		case OpAdd:
			regs[i] = regs[in.A] + regs[in.B]
		case OpSub:
			regs[i] = regs[in.A] - regs[in.B]
		case OpMul:
			regs[i] = regs[in.A] * regs[in.B]
		case OpDiv:
			regs[i] = regs[in.A] / regs[in.B]
		case OpMin:
			regs[i] = math.Min(regs[in.A], regs[in.B])
		case OpMax:
			regs[i] = math.Max(regs[in.A], regs[in.B])
		case OpSin:
			regs[i] = math.Sin(regs[in.A])
		case OpCos:
			regs[i] = math.Cos(regs[in.A])
		}
	}
	return regs[len(p.Code)-1]
}

// Validate 校验程序的结构合法性
// 功能：检查指令带非空、运算名合法、操作数下标只引用已生成的指令
// 返回：不合法时返回错误
// 说明：从文件加载的程序必须先通过校验再求值
func (p *Program) Validate() error {
	if len(p.Code) == 0 {
		return fmt.Errorf("sym: empty tape")
	}
	known := map[string]bool{}
	for _, name := range opNames {
		known[name] = true
	}
	for i, in := range p.Code {
		if !known[in.Op] {
			return fmt.Errorf("sym: instr %d: unknown op %q", i, in.Op)
		}
		switch in.Op {
		case "const":
		case "param":
			if in.Index < 0 || in.Index >= p.Params {
				return fmt.Errorf("sym: instr %d: param index %d out of range", i, in.Index)
			}
		case "var":
			if in.Index < 0 || in.Index >= p.Vars {
				return fmt.Errorf("sym: instr %d: var index %d out of range", i, in.Index)
			}
		case "sin", "cos":
			if in.A < 0 || in.A >= i {
				return fmt.Errorf("sym: instr %d: operand %d out of range", i, in.A)
			}
		default:
			if in.A < 0 || in.A >= i || in.B < 0 || in.B >= i {
				return fmt.Errorf("sym: instr %d: operands (%d,%d) out of range", i, in.A, in.B)
			}
		}
	}
	return nil
}
