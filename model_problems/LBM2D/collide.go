package LBM2D

// collide relaxes the populations of every fluid cell toward the local equilibrium with a
// single relaxation time.
func (c *D2Q9) collide() {
	c.forEachFluidCell(func(idx int) {
		var (
			feq = Equilibrium(c.rho[idx], c.u[idx])
			f   = &c.f[idx]
		)
		for d := 0; d < Q; d++ {
			f[d] -= c.InvTau * (f[d] - feq[d])
		}
	})
}
