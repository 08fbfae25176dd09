package problem

import (
	"fmt"
	"strconv"
)

// Layout 参数向量的静态布局
// 功能：描述编码器与问题构建器共享的参数向量结构
// 说明：布局完全由(N, SVN, WPN, TS)决定；各段偏移在编译期即可确定，
// 编码与解析都通过命名偏移访问，不做任何运行时类型分发。
// 向量顺序：增益(8)、自车(4)、社会车辆(4×SVN)、参考位姿(3×WPN)、
// 不耐烦计数(1)、目标速度(1)
type Layout struct {
	N   int     // 预测时域步数
	SVN int     // 社会车辆数量
	WPN int     // 参考位姿窗口长度
	TS  float64 // 时间步长（秒）
}

// Dim 参数向量总维数
func (l Layout) Dim() int {
	return GainDOF + VehicleDOF + VehicleDOF*l.SVN + XRefDOF*l.WPN + 2
}

// VarDim 决策变量总维数（每步一对控制量）
func (l Layout) VarDim() int {
	return 2 * l.N
}

// GainOffset 增益段起始偏移
func (l Layout) GainOffset() int {
	return 0
}

// EgoOffset 自车状态段起始偏移
func (l Layout) EgoOffset() int {
	return GainDOF
}

// SocialVehicleOffset 第i辆社会车辆状态段起始偏移
func (l Layout) SocialVehicleOffset(i int) int {
	return GainDOF + VehicleDOF + i*VehicleDOF
}

// XRefOffset 第i个参考位姿段起始偏移
func (l Layout) XRefOffset(i int) int {
	return GainDOF + VehicleDOF + l.SVN*VehicleDOF + i*XRefDOF
}

// ImpatienceOffset 不耐烦计数偏移
func (l Layout) ImpatienceOffset() int {
	return l.Dim() - 2
}

// TargetSpeedOffset 目标速度偏移
func (l Layout) TargetSpeedOffset() int {
	return l.Dim() - 1
}

// Key 布局的确定性编码
// 功能：生成用于编译产物缓存目录的结构参数串
// 返回：形如"11_4_15_0.1"的字符串
// 说明：任何结构参数变化都必须反映到该键上，否则会错误复用缓存产物
func (l Layout) Key() string {
	return fmt.Sprintf("%d_%d_%d_%s",
		l.N, l.SVN, l.WPN, strconv.FormatFloat(l.TS, 'g', -1, 64))
}
