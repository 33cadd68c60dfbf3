package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystem(t *testing.T) {
	{
		assert.True(t, IsNan([]float64{1, math.NaN()}))
		assert.False(t, IsNan([]float64{1, 2}))
		assert.True(t, IsNan([][2]float64{{0, 0}, {0, math.NaN()}}))
		assert.True(t, IsNan([][9]float64{{8: math.NaN()}}))
		assert.False(t, IsNan("not a field"))
	}
	{
		assert.Equal(t, []float64{2, 2, 2}, ConstArray(3, 2))
		assert.Equal(t, [][2]float64{{1, 0}, {1, 0}}, ConstArray2(2, [2]float64{1, 0}))
		assert.Equal(t, float32(0), Clamp01(-0.5))
		assert.Equal(t, float32(1), Clamp01(1.5))
		assert.Equal(t, float32(0.25), Clamp01(0.25))
		assert.Contains(t, GetMemUsage(), "Alloc")
	}
}
