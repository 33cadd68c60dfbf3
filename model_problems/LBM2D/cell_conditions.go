package LBM2D

// applyCellConditions enforces the prescribed states of inflow and outflow cells after
// streaming. Cells on the edge of a non-periodic axis use the Zou-He closure to rebuild the
// three populations that streaming could not supply. Interior cells, and cells whose edge
// wraps periodically, are reset to the equilibrium of the prescribed state.
func (c *D2Q9) applyCellConditions() {
	for i, idx := range c.inflowCells {
		bc := c.inflowConditions[i]
		if !c.zouHe(idx, bc.Rho, bc.U) {
			c.f[idx] = Equilibrium(bc.Rho, bc.U)
		}
	}
	for i, idx := range c.outflowCells {
		var (
			rho  = c.outflowDensity[i]
			zero = [2]float64{}
		)
		if !c.zouHe(idx, rho, zero) {
			c.f[idx] = Equilibrium(rho, zero)
		}
	}
}

// zouHe applies the velocity closure for the first matching edge, checked in the order
// west, east, south, north. It reports false when the cell is on no non-periodic edge.
func (c *D2Q9) zouHe(idx int, rho float64, u [2]float64) bool {
	var (
		f            = &c.f[idx]
		west, east   = c.OnEdge(idx, 0)
		south, north = c.OnEdge(idx, 1)
		ru, rv       = rho * u[0], rho * u[1]
	)
	switch {
	case west:
		f[East] = f[West] + (2./3.)*ru
		f[NorthEast] = f[SouthWest] + (1./6.)*ru + 0.5*rv
		f[SouthEast] = f[NorthWest] + (1./6.)*ru - 0.5*rv
	case east:
		f[West] = f[East] - (2./3.)*ru
		f[NorthWest] = f[SouthEast] - (1./6.)*ru + 0.5*rv
		f[SouthWest] = f[NorthEast] - (1./6.)*ru - 0.5*rv
	case south:
		f[North] = f[South] + (2./3.)*rv
		f[NorthEast] = f[SouthWest] + 0.5*ru + (1./6.)*rv
		f[NorthWest] = f[SouthEast] - 0.5*ru + (1./6.)*rv
	case north:
		f[South] = f[North] - (2./3.)*rv
		f[SouthWest] = f[NorthEast] - 0.5*ru - (1./6.)*rv
		f[SouthEast] = f[NorthWest] + 0.5*ru - (1./6.)*rv
	default:
		return false
	}
	return true
}
