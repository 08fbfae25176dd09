package problem

import (
	"math"

	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/sym"
)

// Algebra 标量运算集合
// 功能：抽象代价函数与车辆模型用到的全部标量运算
// 说明：同一份模型代码以float64实现做数值积分（解码轨迹）、
// 以符号实现做代价展开（构建优化问题），从而保证两条路径的动力学完全一致
type Algebra[T any] interface {
	Const(v float64) T
	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Div(a, b T) T
	Min(a, b T) T
	Max(a, b T) T
	Sin(a T) T
	Cos(a T) T
}

// Floats float64上的标量运算
type Floats struct{}

func (Floats) Const(v float64) float64  { return v }
func (Floats) Add(a, b float64) float64 { return a + b }
func (Floats) Sub(a, b float64) float64 { return a - b }
func (Floats) Mul(a, b float64) float64 { return a * b }
func (Floats) Div(a, b float64) float64 { return a / b }
func (Floats) Min(a, b float64) float64 { return math.Min(a, b) }
func (Floats) Max(a, b float64) float64 { return math.Max(a, b) }
func (Floats) Sin(a float64) float64    { return math.Sin(a) }
func (Floats) Cos(a float64) float64    { return math.Cos(a) }

// Syms 符号表达式上的标量运算
type Syms struct{}

func (Syms) Const(v float64) *sym.Expr    { return sym.Const(v) }
func (Syms) Add(a, b *sym.Expr) *sym.Expr { return sym.Add(a, b) }
func (Syms) Sub(a, b *sym.Expr) *sym.Expr { return sym.Sub(a, b) }
func (Syms) Mul(a, b *sym.Expr) *sym.Expr { return sym.Mul(a, b) }
func (Syms) Div(a, b *sym.Expr) *sym.Expr { return sym.Div(a, b) }
func (Syms) Min(a, b *sym.Expr) *sym.Expr { return sym.Min(a, b) }
func (Syms) Max(a, b *sym.Expr) *sym.Expr { return sym.Max(a, b) }
func (Syms) Sin(a *sym.Expr) *sym.Expr    { return sym.Sin(a) }
func (Syms) Cos(a *sym.Expr) *sym.Expr    { return sym.Cos(a) }
