package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/solver"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/task"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/config"
)

// inprocLauncher 在测试进程内直接启动求解器服务，不产生子进程
type inprocLauncher struct{}

type inprocProcess struct {
	srv *solver.Server
}

func (p *inprocProcess) Kill() error {
	p.srv.Close()
	return nil
}

func (l *inprocLauncher) Launch(problemDir, addr string) (solver.Process, error) {
	srv, err := solver.NewServer(problemDir, addr)
	if err != nil {
		return nil, err
	}
	go srv.Serve()
	return &inprocProcess{srv: srv}, nil
}

func testConfig(t *testing.T, totalSteps int32) *config.RuntimeConfig {
	return config.NewRuntimeConfig(config.Config{
		Control: config.Control{
			Step: config.ControlStep{Total: totalSteps, Interval: 0.1},
		},
		Planner: config.Planner{Horizon: 5, SocialVehicles: 2, Waypoints: 5},
		Solver: config.Solver{
			BuildDir:        t.TempDir(),
			Retries:         2,
			StopMaxAttempts: 10,
			StopInterval:    0.01,
			MaxIterations:   60,
			Tolerance:       1e-2,
		},
		Scenario: config.Scenario{
			SpeedLimit:  10,
			PathPoints:  50,
			PathSpacing: 1,
			Vehicles: []config.ScenarioVehicle{
				{X: 1000, Y: 1000, Heading: 0, Speed: 0},
			},
		},
	})
}

func TestContextRun(t *testing.T) {
	rc := testConfig(t, 30)
	ctx := task.NewContext(rc, &inprocLauncher{})
	defer ctx.Close()

	ctx.Run()

	// test: the clock ran the whole interval
	assert.True(t, ctx.Clock().Done())
	assert.Equal(t, int32(30), ctx.Clock().InternalStep)

	// test: impatience pushed the ego off the start line and along the path
	ego := ctx.Scenario().Ego()
	assert.Greater(t, ego.Position.X, 0.1)
	assert.InDelta(t, 0.0, ego.Position.Y, 1.0)
	assert.GreaterOrEqual(t, ego.Speed, 0.0)
}

func TestContextDefaultLayoutTrajectories(t *testing.T) {
	// 缺省结构参数（N=11, SV_N=4, WP_N=15, ts=0.1）、直线路径、无社会车辆
	rc := config.NewRuntimeConfig(config.Config{
		Control: config.Control{
			Step: config.ControlStep{Total: 4, Interval: 0.1},
		},
		Solver: config.Solver{
			BuildDir:        t.TempDir(),
			Retries:         2,
			StopMaxAttempts: 10,
			StopInterval:    0.01,
			MaxIterations:   60,
			Tolerance:       1e-2,
		},
		Scenario: config.Scenario{
			SpeedLimit:  10,
			PathPoints:  50,
			PathSpacing: 1,
		},
	})
	ctx := task.NewContext(rc, &inprocLauncher{})
	defer ctx.Close()

	assert.Equal(t, 22, ctx.Planner().Layout().VarDim())

	for i := 0; i < 4; i++ {
		obs := ctx.Scenario().Observe()
		traj := ctx.Planner().Act(obs)
		assert.Len(t, traj, 11)

		// test: x is monotonically non-decreasing along each trajectory
		x := obs.Ego.Position.X
		for _, pose := range traj {
			assert.GreaterOrEqual(t, pose.Position.X+1e-9, x)
			assert.GreaterOrEqual(t, pose.Speed, 0.0)
			x = pose.Position.X
		}
		ctx.Scenario().Apply(traj)
	}
}

func TestContextClose(t *testing.T) {
	rc := testConfig(t, 1)
	ctx := task.NewContext(rc, &inprocLauncher{})
	ctx.Run()

	// test: close is idempotent
	ctx.Close()
	ctx.Close()
}
