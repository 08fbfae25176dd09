package utils

// PadRight 将切片调整到目标长度。
// 长度不足时重复最后一个元素补齐，
// 超出时从头部截断到目标长度。
func PadRight[T any](s []T, n int) []T {
	if len(s) == 0 {
		panic("utils: PadRight: empty slice")
	}
	if len(s) >= n {
		return s[:n]
	}
	out := make([]T, 0, n)
	out = append(out, s...)
	for len(out) < n {
		out = append(out, s[len(s)-1])
	}
	return out
}
