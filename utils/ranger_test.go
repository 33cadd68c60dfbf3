package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRanger(t *testing.T) {
	var (
		i1, i2 int
	)
	// Dimension parsing
	{
		i1, i2 = ParseDim(":", 10)
		assert.Equal(t, 0, i1)
		assert.Equal(t, 10, i2)
		i1, i2 = ParseDim(":5", 10)
		assert.Equal(t, 0, i1)
		assert.Equal(t, 5, i2)
		i1, i2 = ParseDim("5:5", 10)
		assert.Equal(t, 5, i1)
		assert.Equal(t, 6, i2)
		i1, i2 = ParseDim(4, 10)
		assert.Equal(t, 4, i1)
		assert.Equal(t, 5, i2)
		i1, i2 = ParseDim("2", 10)
		assert.Equal(t, 2, i1)
		assert.Equal(t, 3, i2)
		i1, i2 = ParseDim("7:", 10)
		assert.Equal(t, 7, i1)
		assert.Equal(t, 10, i2)
		i1, i2 = ParseDim("end", 10)
		assert.Equal(t, 9, i1)
		assert.Equal(t, 10, i2)
	}
	// R2 row-major indexing
	{
		lat := NewR2(4, 3) // 4 columns, 3 rows
		assert.Equal(t, Index{0}, lat.Range(0, 0))
		assert.Equal(t, Index{0, 1, 2, 3}, lat.Range(":", 0))
		assert.Equal(t, Index{4, 5, 6, 7}, lat.Range(":", 1))
		assert.Equal(t, Index{1, 5, 9}, lat.Range(1, ":"))
		assert.Equal(t, Index{3, 7, 11}, lat.Range("end", ":"))
		assert.Equal(t, Index{5, 6, 9, 10}, lat.Range("1:3", "1:3"))
		// Clipped to the lattice
		assert.Equal(t, Index{10, 11}, lat.Range("2:9", "2:9"))
		assert.Equal(t, Index{}, lat.Range("5:9", 0))
	}
}

func TestIndex(t *testing.T) {
	assert.Equal(t, 3, len(NewIndex(3)))
	I := Index{10, 20, 30, 40}
	assert.Equal(t, Index{40, 10}, I.Subset(Index{3, 0}))
}
