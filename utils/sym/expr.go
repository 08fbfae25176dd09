// 符号标量表达式，用于在构造优化问题时一次性地组合代价函数，
// 再编译为可序列化、可快速求值的指令带（tape）交给外部求解器
package sym

// Op 表达式节点的运算类型
type Op uint8

const (
	OpConst Op = iota // 常数
	OpParam           // 参数向量z0中的一个分量
	OpVar             // 决策变量u中的一个分量
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMin
	OpMax
	OpSin
	OpCos
)

// opNames 运算类型与序列化名称的对应关系（顺序与Op常量一致）
var opNames = []string{
	"const", "param", "var",
	"add", "sub", "mul", "div",
	"min", "max", "sin", "cos",
}

// Expr 符号标量表达式节点
// 功能：表示一个以参数分量和决策变量分量为叶子的标量表达式
// 说明：节点不可变，公共子表达式通过共享指针自然形成DAG；
// 构造函数对常数进行折叠以减小编译后的指令带规模
type Expr struct {
	op    Op
	val   float64 // OpConst的常数值
	index int     // OpParam/OpVar的分量下标
	a, b  *Expr   // 操作数（一元运算只使用a）
}

// Const 创建常数表达式
func Const(v float64) *Expr {
	return &Expr{op: OpConst, val: v}
}

// Param 创建参数向量分量表达式
// 参数：i-参数向量中的下标
func Param(i int) *Expr {
	return &Expr{op: OpParam, index: i}
}

// Var 创建决策变量分量表达式
// 参数：i-决策变量向量中的下标
func Var(i int) *Expr {
	return &Expr{op: OpVar, index: i}
}

func (e *Expr) isConst(v float64) bool {
	return e.op == OpConst && e.val == v
}

func binary(op Op, a, b *Expr, fold func(x, y float64) float64) *Expr {
	if a.op == OpConst && b.op == OpConst {
		return Const(fold(a.val, b.val))
	}
	return &Expr{op: op, a: a, b: b}
}

// Add 加法表达式a+b
func Add(a, b *Expr) *Expr {
	if a.isConst(0) {
		return b
	}
	if b.isConst(0) {
		return a
	}
	return binary(OpAdd, a, b, func(x, y float64) float64 { return x + y })
}

// Sub 减法表达式a-b
func Sub(a, b *Expr) *Expr {
	if b.isConst(0) {
		return a
	}
	return binary(OpSub, a, b, func(x, y float64) float64 { return x - y })
}

// Mul 乘法表达式a*b
func Mul(a, b *Expr) *Expr {
	if a.isConst(0) || b.isConst(0) {
		return Const(0)
	}
	if a.isConst(1) {
		return b
	}
	if b.isConst(1) {
		return a
	}
	return binary(OpMul, a, b, func(x, y float64) float64 { return x * y })
}

// Div 除法表达式a/b
// 说明：除数为常数0时不做折叠，由求值阶段按IEEE-754语义处理
func Div(a, b *Expr) *Expr {
	if b.isConst(1) {
		return a
	}
	if a.op == OpConst && b.op == OpConst && b.val != 0 {
		return Const(a.val / b.val)
	}
	return &Expr{op: OpDiv, a: a, b: b}
}

// Min 最小值表达式min(a,b)
func Min(a, b *Expr) *Expr {
	return binary(OpMin, a, b, func(x, y float64) float64 {
		if x < y {
			return x
		}
		return y
	})
}

// Max 最大值表达式max(a,b)
func Max(a, b *Expr) *Expr {
	return binary(OpMax, a, b, func(x, y float64) float64 {
		if x > y {
			return x
		}
		return y
	})
}

// Sin 正弦表达式sin(a)
func Sin(a *Expr) *Expr {
	return &Expr{op: OpSin, a: a}
}

// Cos 余弦表达式cos(a)
func Cos(a *Expr) *Expr {
	return &Expr{op: OpCos, a: a}
}

// Sqr 平方表达式a*a
func Sqr(a *Expr) *Expr {
	return Mul(a, a)
}
