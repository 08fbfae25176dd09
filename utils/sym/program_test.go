package sym_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/sym"
)

func TestConstantFolding(t *testing.T) {
	// test: const op const folds to const
	e := sym.Add(sym.Const(1), sym.Const(2))
	p := sym.Compile(e, 0, 0)
	assert.Len(t, p.Code, 1)
	assert.Equal(t, 3.0, p.Eval(nil, nil, nil))

	// test: identities do not emit instructions
	x := sym.Var(0)
	assert.Same(t, x, sym.Add(x, sym.Const(0)))
	assert.Same(t, x, sym.Mul(x, sym.Const(1)))
	assert.Same(t, x, sym.Sub(x, sym.Const(0)))
	assert.Same(t, x, sym.Div(x, sym.Const(1)))

	// test: multiply by zero collapses the whole subtree
	zero := sym.Mul(sym.Sin(x), sym.Const(0))
	p = sym.Compile(zero, 0, 1)
	assert.Len(t, p.Code, 1)
	assert.Equal(t, 0.0, p.Eval(nil, []float64{123}, nil))
}

func TestCompileSharesSubexpressions(t *testing.T) {
	// test: a shared node compiles to a single instruction
	x := sym.Var(0)
	s := sym.Sin(x)
	e := sym.Add(sym.Mul(s, s), s)
	p := sym.Compile(e, 0, 1)
	// var, sin, mul, add
	assert.Len(t, p.Code, 4)
	v := 0.7
	assert.InDelta(t, math.Sin(v)*math.Sin(v)+math.Sin(v), p.Eval(nil, []float64{v}, nil), 1e-12)
}

func TestEval(t *testing.T) {
	// f(z, u) = min(z0*u0, max(z1, u1)) + cos(u0)
	e := sym.Add(
		sym.Min(
			sym.Mul(sym.Param(0), sym.Var(0)),
			sym.Max(sym.Param(1), sym.Var(1)),
		),
		sym.Cos(sym.Var(0)),
	)
	p := sym.Compile(e, 2, 2)
	params := []float64{2, -1}
	vars := []float64{0.5, -3}
	want := math.Min(2*0.5, math.Max(-1.0, -3.0)) + math.Cos(0.5)
	assert.InDelta(t, want, p.Eval(params, vars, nil), 1e-12)

	// test: reusing the scratch buffer gives the same result
	regs := make([]float64, len(p.Code))
	assert.Equal(t, p.Eval(params, vars, regs), p.Eval(params, vars, regs))
}

func TestEvalDivByZero(t *testing.T) {
	// test: division keeps IEEE-754 semantics instead of panicking
	e := sym.Div(sym.Const(1), sym.Var(0))
	p := sym.Compile(e, 0, 1)
	assert.True(t, math.IsInf(p.Eval(nil, []float64{0}, nil), 1))
}

func TestCompilePanicsOnBadIndex(t *testing.T) {
	assert.Panics(t, func() {
		sym.Compile(sym.Param(3), 3, 0)
	})
	assert.Panics(t, func() {
		sym.Compile(sym.Var(0), 0, 0)
	})
}

func TestProgramJSONRoundTrip(t *testing.T) {
	// test: a deserialized program validates and evaluates identically
	e := sym.Sub(sym.Sqr(sym.Var(0)), sym.Sin(sym.Param(0)))
	p := sym.Compile(e, 1, 1)

	data, err := json.Marshal(p)
	assert.NoError(t, err)
	loaded := &sym.Program{}
	assert.NoError(t, json.Unmarshal(data, loaded))
	assert.NoError(t, loaded.Validate())

	params, vars := []float64{0.3}, []float64{1.5}
	assert.Equal(t, p.Eval(params, vars, nil), loaded.Eval(params, vars, nil))
}

func TestValidate(t *testing.T) {
	// test: empty tape
	assert.Error(t, (&sym.Program{}).Validate())

	// test: unknown op
	bad := &sym.Program{Code: []sym.Instr{{Op: "exp"}}}
	assert.Error(t, bad.Validate())

	// test: operand referencing a later instruction
	bad = &sym.Program{Code: []sym.Instr{
		{Op: "const", Val: 1},
		{Op: "add", A: 0, B: 1},
	}}
	assert.Error(t, bad.Validate())

	// test: leaf index out of range
	bad = &sym.Program{Params: 1, Code: []sym.Instr{{Op: "param", Index: 1}}}
	assert.Error(t, bad.Validate())
}
