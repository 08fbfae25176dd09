package problem

import (
	"encoding/json"
	"fmt"
	"os"
)

// GainDOF 增益向量的自由度
const GainDOF = 8

// Gain 代价函数各项的权重
// 功能：保存代价函数8个分项的非负权重
// 说明：字段顺序即参数向量中的编码顺序，Array给出显式的有序展开，
// 不依赖任何反射机制；一次求解期间增益不可变
type Gain struct {
	Theta      float64 `json:"theta"`      // 航向跟踪权重
	Position   float64 `json:"position"`   // 位置跟踪权重
	Obstacle   float64 `json:"obstacle"`   // 障碍（社会车辆）权重
	UAccel     float64 `json:"u_accel"`    // 加速度平滑权重
	UYawRate   float64 `json:"u_yaw_rate"` // 转向率平滑权重
	Terminal   float64 `json:"terminal"`   // 终端权重
	Impatience float64 `json:"impatience"` // 不耐烦权重
	Speed      float64 `json:"speed"`      // 速度整形权重
}

// DefaultGain 默认增益
func DefaultGain() Gain {
	return Gain{
		Theta:      10,
		Position:   10,
		Obstacle:   100,
		UAccel:     10,
		UYawRate:   4,
		Terminal:   4,
		Impatience: 1,
		Speed:      0,
	}
}

// Array 增益的有序展开
// 返回：按固定顺序排列的8个权重
// 说明：顺序必须与参数向量布局（Layout）中的增益段严格一致
func (g Gain) Array() []float64 {
	return []float64{
		g.Theta,
		g.Position,
		g.Obstacle,
		g.UAccel,
		g.UYawRate,
		g.Terminal,
		g.Impatience,
		g.Speed,
	}
}

// LoadGain 从JSON文件加载增益
// 功能：读取持久化的增益文件并检查8个字段全部存在
// 参数：path-文件路径
// 返回：增益与错误信息
// 说明：缺少任何字段都视为文件损坏并报错，不做静默补默认值
func LoadGain(path string) (Gain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Gain{}, err
	}
	var raw struct {
		Theta      *float64 `json:"theta"`
		Position   *float64 `json:"position"`
		Obstacle   *float64 `json:"obstacle"`
		UAccel     *float64 `json:"u_accel"`
		UYawRate   *float64 `json:"u_yaw_rate"`
		Terminal   *float64 `json:"terminal"`
		Impatience *float64 `json:"impatience"`
		Speed      *float64 `json:"speed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Gain{}, fmt.Errorf("gain file %s: %w", path, err)
	}
	fields := map[string]*float64{
		"theta":      raw.Theta,
		"position":   raw.Position,
		"obstacle":   raw.Obstacle,
		"u_accel":    raw.UAccel,
		"u_yaw_rate": raw.UYawRate,
		"terminal":   raw.Terminal,
		"impatience": raw.Impatience,
		"speed":      raw.Speed,
	}
	for name, v := range fields {
		if v == nil {
			return Gain{}, fmt.Errorf("gain file %s: missing field %q", path, name)
		}
	}
	return Gain{
		Theta:      *raw.Theta,
		Position:   *raw.Position,
		Obstacle:   *raw.Obstacle,
		UAccel:     *raw.UAccel,
		UYawRate:   *raw.UYawRate,
		Terminal:   *raw.Terminal,
		Impatience: *raw.Impatience,
		Speed:      *raw.Speed,
	}, nil
}
