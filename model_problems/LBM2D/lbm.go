package LBM2D

import (
	"errors"
	"fmt"

	"github.com/notargets/golbm/types"
	"github.com/notargets/golbm/utils"
)

var (
	ErrInvalidParams = errors.New("invalid lattice parameters")
	ErrSizeMismatch  = errors.New("wrong size of the initial conditions data")
)

// VacuumPolicy decides what happens to the velocity of a fluid cell whose density falls
// to MinDensityThreshold or below, where dividing the momentum is unsafe.
type VacuumPolicy uint8

const (
	HoldVelocity VacuumPolicy = iota // Keep the velocity from the previous step
	RawMomentum                      // Store the undivided momentum
)

type LBMParams struct {
	Dimensions [2]int
	IsPeriodic [2]bool
	Tau        float64
	ProcLimit  int // Number of goroutines per parallel stage, 0 uses one per CPU
	Vacuum     VacuumPolicy
}

type InitialConditions struct {
	CellType   []types.CellType
	InitialRho []float64
	InitialU   [][2]float64
}

// InflowCondition is the Dirichlet state prescribed at an inflow cell.
type InflowCondition struct {
	U   [2]float64
	Rho float64
}

// D2Q9 is a two dimensional, nine velocity lattice Boltzmann automaton with BGK collisions.
type D2Q9 struct {
	Lattice
	Tau, InvTau float64
	Vacuum      VacuumPolicy
	// Per cell state, indexed by the lattice index
	cellType     []types.CellType
	rho          []float64
	u            [][2]float64
	f, fNew      [][Q]float64 // Current and streaming target populations, swapped every step
	source       [][Q]int     // Pull source of each population
	obstacleMask []float32
	// Type partitioned cell lists, fixed at construction
	fluidCells, solidCells, inflowCells, outflowCells []int
	inflowConditions                                  []InflowCondition // Aligned with inflowCells
	outflowDensity                                    []float64         // Aligned with outflowCells
	// Parallel execution
	ParallelDegree                  int
	cellPartitions, fluidPartitions *utils.PartitionMap
	steps                           int
}

func NewD2Q9(params LBMParams, ic InitialConditions) (c *D2Q9, err error) {
	var (
		width, height = params.Dimensions[0], params.Dimensions[1]
	)
	if width < 2 || height < 2 {
		err = fmt.Errorf("%w: dimensions must be at least 2x2, have %dx%d", ErrInvalidParams, width, height)
		return
	}
	if !(params.Tau > 0) {
		err = fmt.Errorf("%w: tau must be positive, have %g", ErrInvalidParams, params.Tau)
		return
	}
	lat := NewLattice(width, height, params.IsPeriodic)
	switch {
	case len(ic.CellType) != lat.TotalSize:
		err = fmt.Errorf("%w: cell type has %d entries, want %d", ErrSizeMismatch, len(ic.CellType), lat.TotalSize)
	case len(ic.InitialRho) != lat.TotalSize:
		err = fmt.Errorf("%w: density has %d entries, want %d", ErrSizeMismatch, len(ic.InitialRho), lat.TotalSize)
	case len(ic.InitialU) != lat.TotalSize:
		err = fmt.Errorf("%w: velocity has %d entries, want %d", ErrSizeMismatch, len(ic.InitialU), lat.TotalSize)
	}
	if err != nil {
		return
	}
	for idx, ct := range ic.CellType {
		if !ct.Valid() {
			err = fmt.Errorf("%w: cell type %d at index %d", ErrInvalidParams, ct, idx)
			return
		}
	}
	c = &D2Q9{
		Lattice:      lat,
		Tau:          params.Tau,
		InvTau:       1. / params.Tau,
		Vacuum:       params.Vacuum,
		cellType:     append([]types.CellType(nil), ic.CellType...),
		rho:          append([]float64(nil), ic.InitialRho...),
		u:            append([][2]float64(nil), ic.InitialU...),
		f:            make([][Q]float64, lat.TotalSize),
		fNew:         make([][Q]float64, lat.TotalSize),
		obstacleMask: make([]float32, lat.TotalSize),
	}
	// With no periodic axis the corner cells belong to two edges at once, make them walls
	if !c.IsPeriodicAxis[0] && !c.IsPeriodicAxis[1] {
		for _, corner := range [4][2]int{{0, 0}, {width - 1, 0}, {0, height - 1}, {width - 1, height - 1}} {
			c.cellType[c.CoordsToIndex(corner[0], corner[1])] = types.Solid
		}
	}
	for idx, ct := range c.cellType {
		switch ct {
		case types.Fluid:
			c.fluidCells = append(c.fluidCells, idx)
		case types.Solid:
			c.solidCells = append(c.solidCells, idx)
			c.rho[idx] = 1. // A reference density value
			c.u[idx] = [2]float64{}
			c.obstacleMask[idx] = 1.
		case types.Inflow:
			c.inflowCells = append(c.inflowCells, idx)
			c.inflowConditions = append(c.inflowConditions, InflowCondition{U: c.u[idx], Rho: c.rho[idx]})
		case types.Outflow:
			c.outflowCells = append(c.outflowCells, idx)
			c.outflowDensity = append(c.outflowDensity, c.rho[idx])
		}
		c.f[idx] = Equilibrium(c.rho[idx], c.u[idx])
	}
	c.source = c.pullSources()
	c.SetParallelDegree(params.ProcLimit)
	return
}

// Step advances the automaton by one time step. The order of the stages is part of the model.
func (c *D2Q9) Step() {
	c.collide()
	c.stream()
	c.applyCellConditions()
	c.computeMacroscopic()
	c.steps++
}

func (c *D2Q9) Steps() int { return c.steps }

func (c *D2Q9) GetCellType(idx int) types.CellType { return c.cellType[idx] }

// The returned slices alias the solver state and are only consistent between steps.
func (c *D2Q9) GetDensity() []float64        { return c.rho }
func (c *D2Q9) GetVelocity() [][2]float64    { return c.u }
func (c *D2Q9) GetPopulations() [][Q]float64 { return c.f }
func (c *D2Q9) ObstacleMask() []float32      { return c.obstacleMask }
func (c *D2Q9) FluidCells() []int            { return c.fluidCells }
func (c *D2Q9) SolidCells() []int            { return c.solidCells }
func (c *D2Q9) InflowCells() []int           { return c.inflowCells }
func (c *D2Q9) OutflowCells() []int          { return c.outflowCells }

func (c *D2Q9) InflowConditions() []InflowCondition { return c.inflowConditions }

func (c *D2Q9) Print() {
	fmt.Printf("D2Q9 Lattice Boltzmann, BGK collisions\n")
	fmt.Printf("Lattice %d x %d, periodic X,Y = %v,%v\n", c.Width(), c.Height(), c.IsPeriodicAxis[0], c.IsPeriodicAxis[1])
	fmt.Printf("Tau = %8.5f, Viscosity = %8.5f\n", c.Tau, Csq*(c.Tau-0.5))
	fmt.Printf("Cells: fluid %d, solid %d, inflow %d, outflow %d\n",
		len(c.fluidCells), len(c.solidCells), len(c.inflowCells), len(c.outflowCells))
	fmt.Printf("Using %d go routines in parallel\n", c.ParallelDegree)
}
