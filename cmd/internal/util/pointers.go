package util

// Float64Ptr возвращает указатель на копию v. Удобно для nullable-ячеек сметы.
func Float64Ptr(v float64) *float64 {
	return &v
}
