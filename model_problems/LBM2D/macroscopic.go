package LBM2D

// computeMacroscopic rebuilds density and velocity from the populations of the fluid cells.
// Boundary and solid cells keep their prescribed values.
func (c *D2Q9) computeMacroscopic() {
	c.forEachFluidCell(func(idx int) {
		var (
			f          = &c.f[idx]
			rho        float64
			momX, momY float64
		)
		for d := 0; d < Q; d++ {
			rho += f[d]
			momX += f[d] * float64(directions[d][0])
			momY += f[d] * float64(directions[d][1])
		}
		c.rho[idx] = rho
		switch {
		case rho > MinDensityThreshold:
			c.u[idx] = [2]float64{momX / rho, momY / rho}
		case c.Vacuum == RawMomentum:
			c.u[idx] = [2]float64{momX, momY}
		}
	})
}
