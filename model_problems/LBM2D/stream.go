package LBM2D

import (
	"github.com/notargets/golbm/types"
)

/*
stream moves the populations one lattice link using the pull scheme: every non solid cell
gathers population d from the cell at -e_d. When that source cell is solid, the population the
destination sent toward the wall comes back reversed (bounce-back), giving a no-slip wall half
way between the two cells.

All reads come from c.f and all writes go to c.fNew, so destinations can be processed in any
order. Solid cells carry their own populations over unchanged.
*/
func (c *D2Q9) stream() {
	c.forEachCell(func(dest int) {
		if c.cellType[dest] == types.Solid {
			c.fNew[dest] = c.f[dest]
			return
		}
		var (
			src   = &c.source[dest]
			fDest = &c.f[dest]
			fNew  = &c.fNew[dest]
		)
		for d := 0; d < Q; d++ {
			if c.cellType[src[d]] == types.Solid {
				fNew[d] = fDest[opposite[d]]
			} else {
				fNew[d] = c.f[src[d]][d]
			}
		}
	})
	c.f, c.fNew = c.fNew, c.f
}
