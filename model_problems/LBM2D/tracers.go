package LBM2D

import (
	"math/rand/v2"

	"github.com/notargets/golbm/InputParameters"
	"github.com/notargets/golbm/types"
	"github.com/notargets/golbm/utils"
)

// DefaultAdvection scales the cell velocity into a tracer displacement per update.
const DefaultAdvection = 5.

// Tracers is a set of massless particles carried by the velocity field. Positions are in
// lattice units, the cell (x, y) covers [x, x+1) x [y, y+1).
type Tracers struct {
	Params    InputParameters.TracersParams
	Advection float64
	positions [][2]float32
	rng       *rand.Rand
}

// NewTracers places up to RandomInitial tracers on distinct fluid cells chosen at random,
// followed by one tracer per initial tracer index.
func NewTracers(c *D2Q9, tp InputParameters.TracersParams, seed uint64) (tr *Tracers) {
	var (
		fluid = utils.Index(c.fluidCells)
	)
	tr = &Tracers{
		Params:    tp,
		Advection: DefaultAdvection,
		rng:       rand.New(rand.NewPCG(seed, 0)),
	}
	perm := utils.Index(tr.rng.Perm(len(fluid)))
	nRandom := min(max(tp.RandomInitial, 0), len(fluid))
	for _, idx := range fluid.Subset(perm[:nRandom]) {
		tr.add(c, idx)
	}
	for _, idx := range tp.InitialTracers {
		if idx >= 0 && idx < c.TotalSize {
			tr.add(c, idx)
		}
	}
	return
}

func (tr *Tracers) add(c *D2Q9, idx int) {
	x, y := c.IndexToCoords(idx)
	tr.positions = append(tr.positions, [2]float32{float32(x), float32(y)})
}

func (tr *Tracers) Len() int { return len(tr.positions) }

func (tr *Tracers) Positions() [][2]float32 { return tr.positions }

// Update moves every tracer by the velocity of the cell it is in. Tracers wrap around periodic
// axes and are removed when they leave the lattice or land on an outflow cell.
func (tr *Tracers) Update(c *D2Q9) {
	var (
		dims = [2]float32{float32(c.Width()), float32(c.Height())}
	)
	for i := 0; i < len(tr.positions); {
		var (
			p = &tr.positions[i]
			u = c.u[c.CoordsToIndex(int(p[0]), int(p[1]))]
		)
		p[0] += float32(u[0] * tr.Advection)
		p[1] += float32(u[1] * tr.Advection)
		for axis := 0; axis < 2; axis++ {
			if !c.IsPeriodicAxis[axis] {
				continue
			}
			if p[axis] < 0 {
				p[axis] += dims[axis]
			} else if p[axis] >= dims[axis] {
				p[axis] -= dims[axis]
			}
		}
		inside := p[0] >= 0 && p[0] < dims[0] && p[1] >= 0 && p[1] < dims[1]
		if !inside || c.cellType[c.CoordsToIndex(int(p[0]), int(p[1]))] == types.Outflow {
			last := len(tr.positions) - 1
			tr.positions[i] = tr.positions[last]
			tr.positions = tr.positions[:last]
			continue
		}
		i++
	}
}

// Emit adds a tracer at each inflow cell with probability EmissionRate.
func (tr *Tracers) Emit(c *D2Q9) {
	for _, idx := range c.inflowCells {
		if tr.rng.Float32() < tr.Params.EmissionRate {
			tr.add(c, idx)
		}
	}
}
