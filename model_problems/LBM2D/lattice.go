package LBM2D

// Lattice is the geometry of a row-major grid: the cell at (x, y) has index y*Width + x.
// Out of range coordinates are resolved per axis, wrapping on periodic axes and clamping
// to the nearest edge cell otherwise.
type Lattice struct {
	Dimensions     [2]int
	IsPeriodicAxis [2]bool
	TotalSize      int
}

func NewLattice(width, height int, isPeriodic [2]bool) Lattice {
	return Lattice{
		Dimensions:     [2]int{width, height},
		IsPeriodicAxis: isPeriodic,
		TotalSize:      width * height,
	}
}

func (l *Lattice) Width() int  { return l.Dimensions[0] }
func (l *Lattice) Height() int { return l.Dimensions[1] }

func (l *Lattice) IsPeriodic(axis int) bool {
	if axis < 0 || axis > 1 {
		return false
	}
	return l.IsPeriodicAxis[axis]
}

// CoordsToIndex resolves (x, y) with the periodic/clamp rule and returns the linear index.
func (l *Lattice) CoordsToIndex(x, y int) int {
	return l.resolve(y, 1)*l.Dimensions[0] + l.resolve(x, 0)
}

func (l *Lattice) IndexToCoords(idx int) (x, y int) {
	x = idx % l.Dimensions[0]
	y = idx / l.Dimensions[0]
	return
}

// OnEdge reports whether idx lies on the low or high edge of a non-periodic axis.
func (l *Lattice) OnEdge(idx, axis int) (low, high bool) {
	if l.IsPeriodicAxis[axis] {
		return
	}
	var (
		x, y = l.IndexToCoords(idx)
		c    = [2]int{x, y}[axis]
	)
	return c == 0, c == l.Dimensions[axis]-1
}

func (l *Lattice) resolve(c, axis int) int {
	var (
		n = l.Dimensions[axis]
	)
	if c >= 0 && c < n {
		return c
	}
	if l.IsPeriodicAxis[axis] {
		return (c%n + n) % n
	}
	if c < 0 {
		return 0
	}
	return n - 1
}

// pullSources precomputes, for every cell and direction, the cell a population streams from.
func (l *Lattice) pullSources() (src [][Q]int) {
	src = make([][Q]int, l.TotalSize)
	for idx := range src {
		x, y := l.IndexToCoords(idx)
		for d := 0; d < Q; d++ {
			e := directions[d]
			src[idx][d] = l.CoordsToIndex(x-e[0], y-e[1])
		}
	}
	return
}
