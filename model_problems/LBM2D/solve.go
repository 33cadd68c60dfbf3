package LBM2D

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/notargets/golbm/utils"
)

var ErrDiverged = errors.New("solution diverged, NaN found in the lattice state")

// PlotMeta controls the reporting of a Solve run.
type PlotMeta struct {
	Steps         int // Total steps, 0 runs until the context is done
	StepsPerFrame int // Steps between reports, frames and tracer updates
	Frames        *FrameWriter
	History       io.Writer // CSV history of the diagnostics, optional
}

// HistoryHeader is the first row of the CSV history.
var HistoryHeader = []string{"step", "total_mass", "mean_density", "kinetic_energy", "max_speed"}

/*
Solve steps the lattice until pm.Steps is reached or ctx is done. Every StepsPerFrame steps
it checks for divergence, logs the diagnostics, advances the tracers, writes a frame and a
history row. A done context ends the run early without an error.
*/
func (c *D2Q9) Solve(ctx context.Context, pm *PlotMeta, tr *Tracers, logger *slog.Logger,
	m *Metrics) (err error) {
	var (
		stepsPerFrame = max(pm.StepsPerFrame, 1)
		history       *csv.Writer
		elapsed       time.Duration
		steps         int
	)
	if logger == nil {
		logger = slog.Default()
	}
	if pm.History != nil {
		history = csv.NewWriter(pm.History)
		if err = history.Write(HistoryHeader); err != nil {
			return
		}
		defer func() {
			history.Flush()
			if ferr := history.Error(); ferr != nil && err == nil {
				err = ferr
			}
		}()
	}
	logger.Info("starting solve",
		"width", c.Width(), "height", c.Height(), "tau", c.Tau,
		"steps", pm.Steps, "steps_per_frame", stepsPerFrame, "parallel_degree", c.ParallelDegree)
	if err = c.report(pm, tr, logger, m, history); err != nil {
		return
	}
	for pm.Steps == 0 || steps < pm.Steps {
		if ctx.Err() != nil {
			logger.Info("solve interrupted", "step", c.steps, "reason", context.Cause(ctx))
			break
		}
		start := time.Now()
		c.Step()
		dt := time.Since(start)
		elapsed += dt
		m.observeStep(dt)
		steps++
		if steps%stepsPerFrame == 0 || steps == pm.Steps {
			if err = c.report(pm, tr, logger, m, history); err != nil {
				return
			}
		}
	}
	if steps > 0 {
		rate := float64(elapsed.Nanoseconds()) / float64(c.TotalSize*steps)
		logger.Info("solve finished", "steps", steps, "elapsed", elapsed, "ns_per_cell_step", rate,
			"memory", utils.GetMemUsage())
	}
	return
}

func (c *D2Q9) report(pm *PlotMeta, tr *Tracers, logger *slog.Logger, m *Metrics, history *csv.Writer) (err error) {
	if c.IsDiverged() {
		logger.Error("diverged", "step", c.steps)
		return ErrDiverged
	}
	var (
		d         = c.Diagnostics()
		positions [][2]float32
		nTracers  int
	)
	if tr != nil {
		if c.steps > 0 {
			tr.Update(c)
			tr.Emit(c)
		}
		positions, nTracers = tr.Positions(), tr.Len()
	}
	m.observeReport(d, nTracers)
	logger.Debug("step",
		"step", d.Step, "total_mass", d.TotalMass, "kinetic_energy", d.KineticEnergy,
		"max_speed", d.MaxSpeed, "tracers", nTracers)
	if pm.Frames != nil {
		if err = pm.Frames.WriteFrame(c, positions); err != nil {
			return
		}
	}
	if history != nil {
		if err = history.Write([]string{
			strconv.Itoa(d.Step),
			strconv.FormatFloat(d.TotalMass, 'g', -1, 64),
			strconv.FormatFloat(d.MeanDensity, 'g', -1, 64),
			strconv.FormatFloat(d.KineticEnergy, 'g', -1, 64),
			strconv.FormatFloat(d.MaxSpeed, 'g', -1, 64),
		}); err != nil {
			return
		}
	}
	return
}
