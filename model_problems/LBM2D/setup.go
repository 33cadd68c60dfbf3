package LBM2D

import (
	"github.com/notargets/golbm/readfiles"
	"github.com/notargets/golbm/types"
	"github.com/notargets/golbm/utils"
)

// SampleU0 is the free stream velocity of the sample channel.
const SampleU0 = 0.1

// SampleChannel is a uniform flow at (SampleU0, 0) entering through an inflow column at x = 0
// and hitting a diagonal solid bar.
func SampleChannel(width, height int) (ic InitialConditions) {
	var (
		N  = width * height
		u0 = [2]float64{SampleU0, 0}
	)
	ic = InitialConditions{
		CellType:   make([]types.CellType, N),
		InitialRho: utils.ConstArray(N, 1.),
		InitialU:   utils.ConstArray2(N, u0),
	}
	for y := 30; y < 40; y++ {
		for x := 25; x < 27; x++ {
			if x+y < width && y < height {
				ic.CellType[y*width+x+y] = types.Solid
			}
		}
	}
	for y := 0; y < height; y++ {
		if idx := y * width; ic.CellType[idx] == types.Fluid {
			ic.CellType[idx] = types.Inflow
		}
	}
	return
}

// NewFromScene builds the solver from a decoded scene file.
func NewFromScene(sc *readfiles.Scene, ProcLimit int, vacuum VacuumPolicy) (c *D2Q9, err error) {
	return NewD2Q9(LBMParams{
		Dimensions: sc.Dimensions,
		IsPeriodic: sc.IsPeriodic,
		Tau:        sc.Tau,
		ProcLimit:  ProcLimit,
		Vacuum:     vacuum,
	}, InitialConditions{
		CellType:   sc.CellType,
		InitialRho: sc.InitialRho,
		InitialU:   sc.InitialU,
	})
}
