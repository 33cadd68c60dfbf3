package utils

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

func ConstArray2(N int, val [2]float64) (v [][2]float64) {
	v = make([][2]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

func Clamp01(x float32) float32 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
