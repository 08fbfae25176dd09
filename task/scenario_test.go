package task_test

import (
	"math"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/planner"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/task"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/config"
)

func TestNewScenarioPath(t *testing.T) {
	s := task.NewScenario(config.Scenario{
		SpeedLimit:  8,
		PathPoints:  5,
		PathSpacing: 2,
		Bearing:     0,
	})
	obs := s.Observe()
	assert.Len(t, obs.Paths, 1)
	path := obs.Paths[0]
	assert.Len(t, path, 5)

	// test: equally spaced points along the bearing
	for i, wp := range path {
		assert.InDelta(t, float64(2*i), wp.Position.X, 1e-12)
		assert.InDelta(t, 0.0, wp.Position.Y, 1e-12)
		assert.InDelta(t, -math.Pi/2, wp.Heading, 1e-12)
		assert.InDelta(t, 8.0, wp.SpeedLimit, 1e-12)
	}

	// test: the ego starts at the path head, at rest
	assert.Equal(t, path[0].Position, obs.Ego.Position)
	assert.InDelta(t, -math.Pi/2, obs.Ego.Heading, 1e-12)
	assert.Equal(t, 0.0, obs.Ego.Speed)
}

func TestScenarioObserveSlicesFromNearest(t *testing.T) {
	s := task.NewScenario(config.Scenario{
		SpeedLimit:  10,
		PathPoints:  10,
		PathSpacing: 1,
	})

	// test: after moving 3m along the path, passed waypoints drop out
	s.Apply(planner.Trajectory{{
		Position: geometry.Point{X: 3.2, Y: 0},
		Heading:  -math.Pi / 2,
		Speed:    2,
	}})
	obs := s.Observe()
	assert.Len(t, obs.Paths[0], 7)
	assert.InDelta(t, 3.0, obs.Paths[0][0].Position.X, 1e-12)
	assert.InDelta(t, 3.2, obs.Ego.Position.X, 1e-12)
	assert.InDelta(t, 2.0, obs.Ego.Speed, 1e-12)
}

func TestScenarioApplyEmptyTrajectory(t *testing.T) {
	s := task.NewScenario(config.Scenario{SpeedLimit: 10, PathPoints: 3, PathSpacing: 1})
	before := s.Ego()
	s.Apply(nil)
	assert.Equal(t, before, s.Ego())
}

func TestScenarioNeighbors(t *testing.T) {
	s := task.NewScenario(config.Scenario{
		SpeedLimit:  10,
		PathPoints:  3,
		PathSpacing: 1,
		Vehicles: []config.ScenarioVehicle{
			{X: 5, Y: 1, Heading: -math.Pi / 2, Speed: 2},
		},
	})
	obs := s.Observe()
	assert.Len(t, obs.Neighbors, 1)
	assert.InDelta(t, 5.0, obs.Neighbors[0].Position.X, 1e-12)
	assert.InDelta(t, 2.0, obs.Neighbors[0].Speed, 1e-12)

	// test: neighbors dead-reckon along their model-frame heading
	s.StepNeighbors(0.5)
	obs = s.Observe()
	assert.InDelta(t, 6.0, obs.Neighbors[0].Position.X, 1e-12)
	assert.InDelta(t, 1.0, obs.Neighbors[0].Position.Y, 1e-12)
}

func TestScenarioSpeedJitterDeterminism(t *testing.T) {
	cfg := config.Scenario{
		Seed:        7,
		SpeedLimit:  10,
		PathPoints:  3,
		PathSpacing: 1,
		SpeedJitter: 1,
		Vehicles: []config.ScenarioVehicle{
			{X: 5, Y: 0, Heading: 0, Speed: 3},
		},
	}
	a := task.NewScenario(cfg).Observe().Neighbors[0].Speed
	b := task.NewScenario(cfg).Observe().Neighbors[0].Speed
	assert.Equal(t, a, b)
	assert.InDelta(t, 3.0, a, 1.0)
	assert.GreaterOrEqual(t, a, 0.0)
}
