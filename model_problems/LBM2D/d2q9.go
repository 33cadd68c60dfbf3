package LBM2D

// Q is the number of discrete velocities in the D2Q9 set.
const Q = 9

// Direction indices, in the order rest, 4 cardinals, 4 diagonals
const (
	Rest = iota
	East
	North
	West
	South
	NorthEast
	NorthWest
	SouthWest
	SouthEast
)

const (
	Csq                 = 1. / 3. // Lattice speed of sound squared
	MinDensityThreshold = 1.e-7
)

var (
	directions = [Q][2]int{{0, 0}, {1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
	weights    = [Q]float64{4. / 9., 1. / 9., 1. / 9., 1. / 9., 1. / 9., 1. / 36., 1. / 36., 1. / 36., 1. / 36.}
	opposite   = [Q]int{0, 3, 4, 1, 2, 7, 8, 5, 6}
)

func Direction(d int) [2]int { return directions[d] }
func Weight(d int) float64   { return weights[d] }

// Opposite returns the direction reversed from d, used for bounce-back.
func Opposite(d int) int { return opposite[d] }

// Equilibrium is the discrete Maxwellian for density rho and velocity u:
//
//	feq[d] = w[d]*rho*(1 + (e.u)/cs2 + (e.u)^2/(2*cs2^2) - |u|^2/(2*cs2))
func Equilibrium(rho float64, u [2]float64) (feq [Q]float64) {
	var (
		usq = u[0]*u[0] + u[1]*u[1]
	)
	for d := 0; d < Q; d++ {
		eu := float64(directions[d][0])*u[0] + float64(directions[d][1])*u[1]
		feq[d] = weights[d] * rho * (1. + 3.*eu + 4.5*eu*eu - 1.5*usq)
	}
	return
}
