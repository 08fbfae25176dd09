package problem_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/problem"
)

func TestVehicleStep(t *testing.T) {
	ab := problem.Floats{}

	// test: zero control is dead reckoning along the heading
	v := problem.Vehicle[float64]{X: 1, Y: 2, Theta: math.Pi / 2, Speed: 3}
	v.Step(ab, problem.Control[float64]{}, 0.1)
	assert.InDelta(t, 1.0, v.X, 1e-12)
	assert.InDelta(t, 2.3, v.Y, 1e-12)
	assert.InDelta(t, math.Pi/2, v.Theta, 1e-12)
	assert.InDelta(t, 3.0, v.Speed, 1e-12)

	// test: position advances with the speed before the acceleration
	v = problem.Vehicle[float64]{Speed: 0}
	v.Step(ab, problem.Control[float64]{Accel: 1}, 0.1)
	assert.InDelta(t, 0.0, v.X, 1e-12)
	assert.InDelta(t, 0.1*problem.MaxAccel, v.Speed, 1e-12)

	// test: yaw rate turns proportionally to speed
	v = problem.Vehicle[float64]{Speed: 4}
	v.Step(ab, problem.Control[float64]{YawRate: 0.5}, 0.1)
	assert.InDelta(t, 0.1*4/problem.Length*0.5, v.Theta, 1e-12)
}

func TestVehicleSpeedClamp(t *testing.T) {
	ab := problem.Floats{}

	// test: braking never produces a negative speed
	v := problem.Vehicle[float64]{Speed: 0.1}
	v.Step(ab, problem.Control[float64]{Accel: -1}, 0.1)
	assert.Equal(t, 0.0, v.Speed)

	// test: acceleration saturates at the speed limit
	v = problem.Vehicle[float64]{Speed: problem.MaxSpeed}
	v.Step(ab, problem.Control[float64]{Accel: 1}, 0.1)
	assert.Equal(t, problem.MaxSpeed, v.Speed)
}
