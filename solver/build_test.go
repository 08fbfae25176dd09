package solver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/problem"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/solver"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/config"
)

func TestArtifactDir(t *testing.T) {
	layout := problem.Layout{N: 11, SVN: 4, WPN: 15, TS: 0.1}
	dir := solver.ArtifactDir("build", layout)
	assert.Equal(t, filepath.Join("build", "11_4_15_0.1", "trajectory_optimizer_v175"), dir)

	// test: structural changes move the cache dir
	other := solver.ArtifactDir("build", problem.Layout{N: 11, SVN: 4, WPN: 15, TS: 0.2})
	assert.NotEqual(t, dir, other)
}

func TestEnsureArtifact(t *testing.T) {
	cfg := config.Solver{
		BuildDir:      t.TempDir(),
		MaxIterations: 40,
		Tolerance:     1e-2,
	}
	layout := problem.Layout{N: 2, SVN: 1, WPN: 2, TS: 0.1}

	dir, err := solver.EnsureArtifact(cfg, layout)
	assert.NoError(t, err)
	assert.Equal(t, solver.ArtifactDir(cfg.BuildDir, layout), dir)
	assert.FileExists(t, filepath.Join(dir, "problem.json"))
	assert.FileExists(t, filepath.Join(dir, "manifest.yaml"))

	// test: the second call reuses the artifact untouched
	first, err := os.Stat(filepath.Join(dir, "problem.json"))
	assert.NoError(t, err)
	dir2, err := solver.EnsureArtifact(cfg, layout)
	assert.NoError(t, err)
	assert.Equal(t, dir, dir2)
	second, err := os.Stat(filepath.Join(dir, "problem.json"))
	assert.NoError(t, err)
	assert.Equal(t, first.ModTime(), second.ModTime())

	// test: a different layout builds into its own dir
	dir3, err := solver.EnsureArtifact(cfg, problem.Layout{N: 3, SVN: 1, WPN: 2, TS: 0.1})
	assert.NoError(t, err)
	assert.NotEqual(t, dir, dir3)
}

func TestNewServerRejectsBadArtifact(t *testing.T) {
	dir := t.TempDir()

	// test: missing problem.json
	_, err := solver.NewServer(dir, "127.0.0.1:0")
	assert.Error(t, err)

	// test: corrupted problem.json
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "problem.json"), []byte("{"), 0o644))
	_, err = solver.NewServer(dir, "127.0.0.1:0")
	assert.Error(t, err)
}
