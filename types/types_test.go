package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Scene files encode the cell type as its numeric value
		assert.Equal(t, CellType(0), Fluid)
		assert.Equal(t, CellType(1), Solid)
		assert.Equal(t, CellType(2), Inflow)
		assert.Equal(t, CellType(3), Outflow)
		assert.True(t, Outflow.Valid())
		assert.False(t, CellType(4).Valid())
	}
	{
		tokens := []string{"FLUID", "Solid", " wall ", "inflow", "OUT"}
		flags := []CellType{Fluid, Solid, Solid, Inflow, Outflow}
		for i, token := range tokens {
			ct, err := NewCellType(token)
			assert.NoError(t, err)
			assert.Equal(t, flags[i], ct)
		}
		_, err := NewCellType("plasma")
		assert.Error(t, err)
	}
	{
		assert.Equal(t, "INFLOW", Inflow.String())
		assert.Equal(t, "CellType(9)", CellType(9).String())
	}
}
