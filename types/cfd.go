package types

import (
	"fmt"
	"strings"
)

// CellType classifies a lattice cell. The numeric values are part of the
// scene file format and must not be reordered.
type CellType uint8

const (
	Fluid CellType = iota
	Solid
	Inflow
	Outflow
)

var CellTypeNameMap = map[string]CellType{
	"fluid":   Fluid,
	"solid":   Solid,
	"wall":    Solid,
	"inflow":  Inflow,
	"in":      Inflow,
	"outflow": Outflow,
	"out":     Outflow,
}

var cellTypePrintNames = []string{"FLUID", "SOLID", "INFLOW", "OUTFLOW"}

func (ct CellType) String() string {
	if int(ct) < len(cellTypePrintNames) {
		return cellTypePrintNames[ct]
	}
	return fmt.Sprintf("CellType(%d)", uint8(ct))
}

func (ct CellType) Valid() bool {
	return ct <= Outflow
}

// NewCellType parses a case-insensitive cell type label such as "SOLID" or "inflow".
func NewCellType(label string) (ct CellType, err error) {
	var (
		ok bool
	)
	if ct, ok = CellTypeNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown cell type %q, must be one of FLUID, SOLID, INFLOW, OUTFLOW", label)
	}
	return
}
