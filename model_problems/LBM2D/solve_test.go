package LBM2D

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/golbm/InputParameters"
	"github.com/notargets/golbm/readfiles"
	"github.com/notargets/golbm/types"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("no space left on device") }

func gatheredValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			return m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			return m.GetGauge().GetValue()
		case m.GetHistogram() != nil:
			return float64(m.GetHistogram().GetSampleCount())
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestSampleChannel(t *testing.T) {
	ic := SampleChannel(80, 50)
	assert.Equal(t, 4000, len(ic.CellType))
	var nSolid, nInflow int
	for idx, ct := range ic.CellType {
		switch ct {
		case types.Solid:
			nSolid++
			x, y := idx%80, idx/80
			assert.True(t, y >= 30 && y < 40)
			assert.True(t, x-y >= 25 && x-y < 27)
		case types.Inflow:
			nInflow++
			assert.Equal(t, 0, idx%80)
		}
	}
	assert.Equal(t, 20, nSolid)
	assert.Equal(t, 50, nInflow)
	assert.Equal(t, [2]float64{SampleU0, 0}, ic.InitialU[123])
	// A lattice too small for the bar only gets the inflow column
	ic = SampleChannel(20, 10)
	for _, ct := range ic.CellType {
		assert.NotEqual(t, types.Solid, ct)
	}
}

func TestDiagnostics(t *testing.T) {
	c := newTestLattice(t, 6, 5, [2]bool{true, true}, 0.8, uniformIC(6, 5, 1.1, [2]float64{0.03, 0.04}))
	d := c.Diagnostics()
	assert.Equal(t, 0, d.Step)
	assert.InDelta(t, 33., d.TotalMass, 1.e-12)
	assert.InDelta(t, 1.1, d.MeanDensity, 1.e-12)
	assert.InDelta(t, 0.05, d.MaxSpeed, 1.e-15)
	assert.InDelta(t, 30*0.5*1.1*0.0025, d.KineticEnergy, 1.e-12)
	assert.False(t, c.IsDiverged())
	c.GetDensity()[3] = math.NaN()
	assert.True(t, c.IsDiverged())
	// A NaN population is found before it reaches the macroscopic fields
	c = newTestLattice(t, 6, 5, [2]bool{true, true}, 0.8, uniformIC(6, 5, 1, [2]float64{}))
	assert.False(t, c.IsDiverged())
	c.GetPopulations()[7][SouthEast] = math.NaN()
	assert.True(t, c.IsDiverged())
}

func TestNewFromScene(t *testing.T) {
	ic := SampleChannel(80, 50)
	sc := &readfiles.Scene{
		Dimensions: [2]int{80, 50},
		IsPeriodic: [2]bool{false, true},
		Tau:        0.56,
		CellType:   ic.CellType,
		InitialRho: ic.InitialRho,
		InitialU:   ic.InitialU,
	}
	c, err := NewFromScene(sc, 1, RawMomentum)
	require.NoError(t, err)
	assert.Equal(t, 0.56, c.Tau)
	assert.Equal(t, RawMomentum, c.Vacuum)
	assert.Equal(t, 50, len(c.InflowCells()))
	assert.Equal(t, 20, len(c.SolidCells()))
	sc.Tau = -1
	_, err = NewFromScene(sc, 1, HoldVelocity)
	assert.True(t, errors.Is(err, ErrInvalidParams))
}

func TestSolve(t *testing.T) {
	var (
		width, height = 12, 8
		dir           = t.TempDir()
		quantities    = []InputParameters.QuantityParams{
			{QuantID: "speed", Amplitude: 0.1},
			{QuantID: "vorticity", Offset: 0.5, Amplitude: 0.01},
		}
	)
	{ // Frames, history and metrics every StepsPerFrame steps
		ic := SampleChannel(width, height)
		c := newTestLattice(t, width, height, [2]bool{false, true}, 0.6, ic)
		tp := InputParameters.TracersParams{Color: [4]float32{1, 0, 1, 1}, RandomInitial: 5, EmissionRate: 0.5}
		fw, err := NewFrameWriter(c, dir, quantities, tp, true, true)
		require.NoError(t, err)
		var (
			history bytes.Buffer
			reg     = prometheus.NewRegistry()
			m       = NewMetrics(reg)
		)
		pm := &PlotMeta{Steps: 10, StepsPerFrame: 4, Frames: fw, History: &history}
		require.NoError(t, c.Solve(context.Background(), pm, NewTracers(c, tp, 1), nil, m))
		require.NoError(t, fw.Close())
		assert.Equal(t, 10, c.Steps())
		// Reports at steps 0, 4, 8 and the final step
		assert.Equal(t, 4, fw.Frames())
		rows, err := csv.NewReader(&history).ReadAll()
		require.NoError(t, err)
		require.Equal(t, 5, len(rows))
		assert.Equal(t, HistoryHeader, rows[0])
		assert.Equal(t, []string{"0", "4", "8", "10"}, []string{rows[1][0], rows[2][0], rows[3][0], rows[4][0]})

		assert.Equal(t, 10., gatheredValue(t, reg, "lbm_steps_total"))
		assert.Equal(t, 10., gatheredValue(t, reg, "lbm_step_duration_seconds"))
		assert.InDelta(t, c.Diagnostics().TotalMass, gatheredValue(t, reg, "lbm_total_mass"), 1.e-12)

		for frame := 0; frame < 4; frame++ {
			for _, q := range quantities {
				file, err := os.Open(filepath.Join(dir, q.QuantID+"_00000"+string(rune('0'+frame))+".png"))
				require.NoError(t, err)
				img, err := png.Decode(file)
				file.Close()
				require.NoError(t, err)
				assert.Equal(t, width, img.Bounds().Dx())
				assert.Equal(t, height, img.Bounds().Dy())
			}
		}
		data, err := os.ReadFile(filepath.Join(dir, "speed.bin"))
		require.NoError(t, err)
		assert.Equal(t, 16+4*width*height*4, len(data))
		var header [2]int64
		require.NoError(t, binary.Read(bytes.NewReader(data), binary.LittleEndian, &header))
		assert.Equal(t, [2]int64{int64(width), int64(height)}, header)
	}
	{ // Unknown quantities are rejected before anything is written
		c := newTestLattice(t, width, height, [2]bool{true, true}, 0.8, uniformIC(width, height, 1, [2]float64{}))
		_, err := NewFrameWriter(c, filepath.Join(dir, "bad"), []InputParameters.QuantityParams{{QuantID: "pressure"}},
			InputParameters.TracersParams{}, true, false)
		assert.Error(t, err)
	}
	{ // A cancelled context stops the run without an error
		c := newTestLattice(t, width, height, [2]bool{true, true}, 0.8, uniformIC(width, height, 1, [2]float64{}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, c.Solve(ctx, &PlotMeta{StepsPerFrame: 10}, nil, nil, nil))
		assert.Equal(t, 0, c.Steps())
	}
	{ // History rows that fail to reach the writer are reported
		c := newTestLattice(t, width, height, [2]bool{true, true}, 0.8, uniformIC(width, height, 1, [2]float64{}))
		err := c.Solve(context.Background(), &PlotMeta{Steps: 3, StepsPerFrame: 1, History: failingWriter{}}, nil, nil, nil)
		assert.ErrorContains(t, err, "no space left on device")
		assert.Equal(t, 3, c.Steps())
	}
	{ // Divergence is reported
		c := newTestLattice(t, width, height, [2]bool{true, true}, 0.8, uniformIC(width, height, 1, [2]float64{}))
		c.GetVelocity()[7] = [2]float64{math.NaN(), 0}
		err := c.Solve(context.Background(), &PlotMeta{Steps: 5, StepsPerFrame: 1}, nil, nil, nil)
		assert.True(t, errors.Is(err, ErrDiverged))
	}
}

func TestFieldImage(t *testing.T) {
	ic := uniformIC(4, 3, 1, [2]float64{})
	ic.CellType[1*4+2] = types.Solid
	c := newTestLattice(t, 4, 3, [2]bool{true, true}, 0.8, ic)
	pal := NewPalette([4]float32{1, 0, 0, 1})
	assert.Equal(t, paletteSize, len(pal))
	field := make([]float32, c.TotalSize)
	field[0] = 1
	img := c.FieldImage(field, pal, [][2]float32{{1.5, 2.2}})
	// y is flipped, row 0 of the image is the top of the lattice
	assert.Equal(t, uint8(rampSize-1), img.ColorIndexAt(0, 2))
	assert.Equal(t, uint8(obstacleIndex), img.ColorIndexAt(2, 1))
	assert.Equal(t, uint8(tracerIndex), img.ColorIndexAt(1, 0))
	assert.Equal(t, uint8(0), img.ColorIndexAt(3, 0))
}
