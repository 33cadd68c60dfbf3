package LBM2D

import (
	"math"

	"github.com/notargets/golbm/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Diagnostics summarizes the fluid cells at one step.
type Diagnostics struct {
	Step          int
	TotalMass     float64 // Sum of density over fluid cells
	MeanDensity   float64
	KineticEnergy float64 // Sum of rho*|u|^2/2 over fluid cells
	MaxSpeed      float64
}

func (c *D2Q9) Diagnostics() (d Diagnostics) {
	var (
		nFluid = len(c.fluidCells)
		rho    = make([]float64, nFluid)
		speed  = make([]float64, nFluid)
		ke     = make([]float64, nFluid)
	)
	d.Step = c.steps
	if nFluid == 0 {
		return
	}
	for i, idx := range c.fluidCells {
		u := c.u[idx]
		rho[i] = c.rho[idx]
		speed[i] = math.Hypot(u[0], u[1])
		ke[i] = 0.5 * rho[i] * speed[i] * speed[i]
	}
	d.TotalMass = floats.Sum(rho)
	d.MeanDensity = stat.Mean(rho, nil)
	d.KineticEnergy = floats.Sum(ke)
	d.MaxSpeed = floats.Max(speed)
	return
}

// IsDiverged reports whether any density, velocity or population has become NaN.
func (c *D2Q9) IsDiverged() bool {
	return utils.IsNan(c.rho) || utils.IsNan(c.u) || utils.IsNan(c.f)
}
