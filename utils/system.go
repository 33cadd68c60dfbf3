package utils

import (
	"fmt"
	"math"
	"runtime"
)

func GetMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	// For info on each, see: https://golang.org/pkg/runtime/#MemStats
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return fmt.Sprintf("Alloc = %v MiB TotalAlloc = %v MiB Sys = %v MiB NumGC = %v",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
}

// IsNan reports whether any element of a scalar or lattice field is NaN.
func IsNan(A any) bool {
	switch v := A.(type) {
	case []float64:
		for _, f := range v {
			if math.IsNaN(f) {
				return true
			}
		}
	case [][2]float64:
		for _, f := range v {
			if math.IsNaN(f[0]) || math.IsNaN(f[1]) {
				return true
			}
		}
	case [][9]float64:
		for _, f := range v {
			for _, ff := range f {
				if math.IsNaN(ff) {
					return true
				}
			}
		}
	}
	return false
}
