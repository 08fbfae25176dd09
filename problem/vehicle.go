package problem

const (
	// Length 车辆轴距（米）
	Length = 4.0
	// MaxSpeed 最大车速（米/秒，约50km/h）
	MaxSpeed = 14.0
	// MaxAccel 最大加速度（米/秒²）
	MaxAccel = 5.0
	// VehicleDOF 车辆状态的自由度
	VehicleDOF = 4
)

// Control 单步控制量（加速度比例与转向率）
type Control[T any] struct {
	Accel   T // 加速度，归一化到[-1,1]
	YawRate T // 转向率（弧度/秒）
}

// Vehicle 运动学自行车模型状态
// 功能：表示单辆车的位姿与速度，并提供单步前向积分
// 模型来源：http://planning.cs.uiuc.edu/node658.html
type Vehicle[T any] struct {
	X     T // 位置x（米）
	Y     T // 位置y（米）
	Theta T // 航向角（弧度，从+x轴起算）
	Speed T // 速度（米/秒）
}

// Step 单步前向积分
// 功能：按运动学自行车模型把车辆状态推进一个时间步
// 参数：ab-标量运算集合，u-控制量，ts-时间步长（秒）
// 算法说明：
// 1. 位置按当前航向与速度推进：x += ts·v·cosθ，y += ts·v·sinθ
// 2. 航向按转向率推进：θ += ts·v/L·yaw_rate
// 3. 速度按加速度推进并钳位到[0, MaxSpeed]
// 说明：代价展开（符号）与轨迹解码（数值）共用本函数，保证两者动力学一致
func (v *Vehicle[T]) Step(ab Algebra[T], u Control[T], ts float64) {
	v.X = ab.Add(v.X, ab.Mul(ab.Const(ts), ab.Mul(v.Speed, ab.Cos(v.Theta))))
	v.Y = ab.Add(v.Y, ab.Mul(ab.Const(ts), ab.Mul(v.Speed, ab.Sin(v.Theta))))
	v.Theta = ab.Add(v.Theta, ab.Mul(ab.Const(ts/Length), ab.Mul(v.Speed, u.YawRate)))
	v.Speed = ab.Add(v.Speed, ab.Mul(ab.Const(ts*MaxAccel), u.Accel))
	v.Speed = ab.Min(ab.Max(ab.Const(0), v.Speed), ab.Const(MaxSpeed))
}

// AsXRef 取车辆位姿（丢弃速度）
func (v Vehicle[T]) AsXRef() XRef[T] {
	return XRef[T]{X: v.X, Y: v.Y, Theta: v.Theta}
}
