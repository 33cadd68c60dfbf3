package LBM2D

import (
	"math"
	"strings"

	"github.com/notargets/golbm/utils"
)

// ObservableFunc fills out (one value per cell) with a scalar field of the solver state mapped
// into [0,1]. With scale = max(1-zeroRef, zeroRef)/amplitude a cell value v becomes
// scale*v + zeroRef, clamped. The solver state is only read.
type ObservableFunc func(c *D2Q9, out []float32, zeroRef, amplitude float32)

var observables = map[string]ObservableFunc{
	"speed":     Speed,
	"density":   Density,
	"vorticity": Vorticity,
	"zero":      Zero,
}

// GetObservable looks up an observable by case insensitive name.
func GetObservable(name string) (f ObservableFunc, ok bool) {
	f, ok = observables[strings.ToLower(strings.TrimSpace(name))]
	return
}

// ObservableNames lists the registered observables in a fixed order.
func ObservableNames() []string {
	return []string{"speed", "density", "vorticity", "zero"}
}

func observableScale(zeroRef, amplitude float32) float32 {
	if amplitude == 0 {
		return 0
	}
	return float32(math.Max(float64(1-zeroRef), float64(zeroRef))) / amplitude
}

func Speed(c *D2Q9, out []float32, zeroRef, amplitude float32) {
	var (
		scale = observableScale(zeroRef, amplitude)
	)
	for idx, u := range c.u {
		out[idx] = utils.Clamp01(scale*float32(math.Hypot(u[0], u[1])) + zeroRef)
	}
}

func Density(c *D2Q9, out []float32, zeroRef, amplitude float32) {
	var (
		scale = observableScale(zeroRef, amplitude)
	)
	for idx, rho := range c.rho {
		out[idx] = utils.Clamp01(scale*float32(rho) + zeroRef)
	}
}

// Vorticity is the curl dv/dx - du/dy from central differences, neighbours resolved with the
// lattice wrap/clamp rule. Counter-clockwise rotation is positive, the opposite sign of du/dy - dv/dx.
func Vorticity(c *D2Q9, out []float32, zeroRef, amplitude float32) {
	var (
		scale = observableScale(zeroRef, amplitude)
	)
	for idx := range c.u {
		var (
			x, y  = c.IndexToCoords(idx)
			east  = c.u[c.CoordsToIndex(x+1, y)]
			west  = c.u[c.CoordsToIndex(x-1, y)]
			north = c.u[c.CoordsToIndex(x, y+1)]
			south = c.u[c.CoordsToIndex(x, y-1)]
			curl  = 0.5*(east[1]-west[1]) - 0.5*(north[0]-south[0])
		)
		out[idx] = utils.Clamp01(scale*float32(curl) + zeroRef)
	}
}

func Zero(c *D2Q9, out []float32, zeroRef, amplitude float32) {
	for idx := range out {
		out[idx] = utils.Clamp01(zeroRef)
	}
}
