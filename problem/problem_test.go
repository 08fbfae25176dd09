package problem_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/problem"
)

// buildParams 按布局顺序拼接参数向量
func buildParams(
	layout problem.Layout, gain problem.Gain,
	ego []float64, svs [][]float64, xrefs [][]float64,
	impatience, targetSpeed float64,
) []float64 {
	params := append([]float64{}, gain.Array()...)
	params = append(params, ego...)
	for _, sv := range svs {
		params = append(params, sv...)
	}
	for _, r := range xrefs {
		params = append(params, r...)
	}
	return append(params, impatience, targetSpeed)
}

func TestBuildShape(t *testing.T) {
	layout := problem.Layout{N: 3, SVN: 2, WPN: 4, TS: 0.1}
	p := problem.Build(layout)

	assert.Equal(t, layout.Dim(), p.Program.Params)
	assert.Equal(t, layout.VarDim(), p.Program.Vars)
	assert.NoError(t, p.Program.Validate())

	// test: per-step box constraints
	assert.Len(t, p.Lower, 6)
	assert.Len(t, p.Upper, 6)
	for i := 0; i < layout.N; i++ {
		assert.Equal(t, -1.0, p.Lower[2*i])
		assert.Equal(t, 1.0, p.Upper[2*i])
		assert.Equal(t, -math.Pi*0.3, p.Lower[2*i+1])
		assert.Equal(t, math.Pi*0.3, p.Upper[2*i+1])
	}
}

func TestBuildDefaultLayout(t *testing.T) {
	// N=11, SV_N=4, WP_N=15, ts=0.1
	layout := problem.Layout{N: 11, SVN: 4, WPN: 15, TS: 0.1}
	p := problem.Build(layout)
	assert.Equal(t, 75, p.Program.Params)
	assert.Equal(t, 22, p.Program.Vars)
	assert.Len(t, p.Lower, 22)
	assert.NoError(t, p.Program.Validate())
}

func TestBuildPanicsOnBadLayout(t *testing.T) {
	assert.Panics(t, func() {
		problem.Build(problem.Layout{N: 1, SVN: 0, WPN: 1, TS: 0.1})
	})
	assert.Panics(t, func() {
		problem.Build(problem.Layout{N: 2, SVN: 0, WPN: 0, TS: 0.1})
	})
	assert.Panics(t, func() {
		problem.Build(problem.Layout{N: 2, SVN: -1, WPN: 1, TS: 0.1})
	})
}

func TestBuildZeroGainsZeroCost(t *testing.T) {
	layout := problem.Layout{N: 3, SVN: 1, WPN: 2, TS: 0.1}
	p := problem.Build(layout)

	params := buildParams(layout, problem.Gain{},
		[]float64{5, -3, 0.4, 2},
		[][]float64{{8, 1, 0, 3}},
		[][]float64{{0, 0, 0}, {1, 0, 0}},
		4, 10,
	)
	vars := []float64{0.5, -0.1, -0.3, 0.2, 1, 0.1}
	assert.InDelta(t, 0.0, p.Program.Eval(params, vars, nil), 1e-9)
}

func TestBuildPositionTracking(t *testing.T) {
	// 自车静止在距参考点1米处，只开位置权重
	layout := problem.Layout{N: 2, SVN: 0, WPN: 2, TS: 0.1}
	p := problem.Build(layout)

	params := buildParams(layout, problem.Gain{Position: 1},
		[]float64{1, 0, 0, 0},
		nil,
		[][]float64{{0, 0, 0}, {0, 0, 0}},
		0, 0,
	)
	vars := make([]float64, layout.VarDim())
	// 每个展开步贡献1米的平方误差
	assert.InDelta(t, 2.0, p.Program.Eval(params, vars, nil), 1e-9)
}

func TestBuildObstacleCost(t *testing.T) {
	layout := problem.Layout{N: 2, SVN: 1, WPN: 1, TS: 0.1}
	p := problem.Build(layout)
	vars := make([]float64, layout.VarDim())
	gain := problem.Gain{Obstacle: 1}

	// test: overlapping vehicles are penalized by the squared length
	params := buildParams(layout, gain,
		[]float64{0, 0, 0, 0},
		[][]float64{{0, 0, 0, 0}},
		[][]float64{{0, 0, 0}},
		0, 0,
	)
	want := 2 * problem.Length * problem.Length
	assert.InDelta(t, want, p.Program.Eval(params, vars, nil), 1e-9)

	// test: a distant vehicle saturates at -1 per step
	params = buildParams(layout, gain,
		[]float64{0, 0, 0, 0},
		[][]float64{{100000, 100000, 0, 0}},
		[][]float64{{0, 0, 0}},
		0, 0,
	)
	assert.InDelta(t, -2.0, p.Program.Eval(params, vars, nil), 1e-6)
}

func TestBuildImpatienceCost(t *testing.T) {
	// 不耐烦项在首步加速度为满加速时消失，随计数平方增长
	layout := problem.Layout{N: 2, SVN: 0, WPN: 1, TS: 0.1}
	p := problem.Build(layout)
	gain := problem.Gain{Impatience: 1}

	params := buildParams(layout, gain,
		[]float64{0, 0, 0, 0},
		nil,
		[][]float64{{0, 0, 0}},
		3, 0,
	)
	atRest := make([]float64, layout.VarDim())
	assert.InDelta(t, 9.0, p.Program.Eval(params, atRest, nil), 1e-9)

	fullThrottle := []float64{1, 0, 1, 0}
	assert.InDelta(t, 0.0, p.Program.Eval(params, fullThrottle, nil), 1e-9)
}
