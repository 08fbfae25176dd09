package solver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tsinghua-fib-lab/mpc-planner-oss/problem"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/config"
	"github.com/tsinghua-fib-lab/mpc-planner-oss/utils/sym"
	"gopkg.in/yaml.v2"
)

const (
	// FormulationVersion 问题表述版本号
	// 说明：代价函数或布局的任何语义变化都必须提升版本号，否则会复用过期的编译产物
	FormulationVersion = 175

	optimizerName = "trajectory_optimizer"
	problemFile   = "problem.json"
	manifestFile  = "manifest.yaml"
)

// artifact 编译产物的内容
// 说明：求解迭代上限与收敛阈值随产物固化，与问题一起交给求解器进程
type artifact struct {
	Program       *sym.Program `json:"program"`        // 代价函数求值程序
	Lower         []float64    `json:"lower"`          // 决策变量下界
	Upper         []float64    `json:"upper"`          // 决策变量上界
	MaxIterations int          `json:"max_iterations"` // 求解迭代上限
	Tolerance     float64      `json:"tolerance"`      // 梯度收敛阈值
}

// manifest 编译产物的描述文件，仅供人工检查
type manifest struct {
	Name           string  `yaml:"name"`
	Version        int     `yaml:"version"`
	Horizon        int     `yaml:"horizon"`
	SocialVehicles int     `yaml:"social_vehicles"`
	Waypoints      int     `yaml:"waypoints"`
	Interval       float64 `yaml:"interval"`
	CreatedAt      string  `yaml:"created_at"`
}

// ArtifactDir 编译产物目录
// 功能：由版本号与布局结构参数生成确定性的缓存目录
// 返回：形如{build_dir}/{N_SVN_WPN_ts}/trajectory_optimizer_v175的路径
// 说明：该键必须精确反映全部结构参数，键不变而结构变化属于正确性缺陷
func ArtifactDir(buildDir string, layout problem.Layout) string {
	return filepath.Join(
		buildDir,
		layout.Key(),
		fmt.Sprintf("%s_v%d", optimizerName, FormulationVersion),
	)
}

// EnsureArtifact 构建或复用编译产物
// 功能：按缓存键检查编译产物，不存在时展开问题表述并写入产物
// 参数：cfg-求解器配置，layout-参数向量布局
// 返回：产物目录与错误信息
// 算法说明：
// 1. 产物目录下problem.json存在即视为命中，原样复用
// 2. 未命中时构建优化问题，序列化指令带、箱式约束与求解配置
// 3. 同时写入manifest.yaml供人工核对产物来源
func EnsureArtifact(cfg config.Solver, layout problem.Layout) (string, error) {
	dir := ArtifactDir(cfg.BuildDir, layout)
	path := filepath.Join(dir, problemFile)
	if _, err := os.Stat(path); err == nil {
		log.Infof("reusing compiled optimizer at %s", dir)
		return dir, nil
	}

	log.Infof("compiling optimizer into %s", dir)
	p := problem.Build(layout)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	data, err := json.Marshal(artifact{
		Program:       p.Program,
		Lower:         p.Lower,
		Upper:         p.Upper,
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
	})
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	meta, err := yaml.Marshal(manifest{
		Name:           optimizerName,
		Version:        FormulationVersion,
		Horizon:        layout.N,
		SocialVehicles: layout.SVN,
		Waypoints:      layout.WPN,
		Interval:       layout.TS,
		CreatedAt:      time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), meta, 0o644); err != nil {
		return "", err
	}
	return dir, nil
}

// loadArtifact 从产物目录加载并校验编译产物
func loadArtifact(dir string) (*artifact, error) {
	data, err := os.ReadFile(filepath.Join(dir, problemFile))
	if err != nil {
		return nil, err
	}
	a := &artifact{}
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", dir, err)
	}
	if a.Program == nil {
		return nil, fmt.Errorf("artifact %s: missing program", dir)
	}
	if err := a.Program.Validate(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", dir, err)
	}
	if len(a.Lower) != a.Program.Vars || len(a.Upper) != a.Program.Vars {
		return nil, fmt.Errorf("artifact %s: bounds length %d/%d does not match %d variables",
			dir, len(a.Lower), len(a.Upper), a.Program.Vars)
	}
	return a, nil
}
