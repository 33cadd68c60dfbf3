package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/golbm/model_problems/LBM2D"
	"github.com/notargets/golbm/readfiles"
	"github.com/notargets/golbm/types"
)

var channelConfig = []byte(`
Title: Test Channel
SimulationParams:
  Viscosity: 0.02
Periodicity:
  X: false
  Y: true
ColorMap:
  MapFilename: channel.png
  Colors:
    - Color: "#FFFFFF"
      Type: FLUID
      Tracer: true
    - Color: "#000000"
      Type: SOLID
    - Color: "#0000FF"
      Type: INFLOW
      InitialU: [0.05, 0]
    - Color: "#FF0000"
      Type: OUTFLOW
Regions:
  - Type: SOLID
    X: "10:12"
    Y: "3:5"
Render:
  StepsPerFrame: 5
  RenderQuantities:
    - Quantity: speed
      Amplitude: 0.1
    - Quantity: density
      Offset: 0.5
      Amplitude: 0.05
Tracers:
  Color: "#00FF00"
  EmissionRate: 0.2
  RandomInitial: 10
`)

// writeChannel writes a 24x8 channel with an inflow column on the left and an outflow column on the right
func writeChannel(t *testing.T, dir string) string {
	img := image.NewRGBA(image.Rect(0, 0, 24, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 24; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			switch x {
			case 0:
				c = color.RGBA{B: 255, A: 255}
			case 23:
				c = color.RGBA{R: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	file, err := os.Create(filepath.Join(dir, "channel.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, img))
	require.NoError(t, file.Close())
	configFile := filepath.Join(dir, "channel.yaml")
	require.NoError(t, os.WriteFile(configFile, channelConfig, 0644))
	return configFile
}

func TestInputParameters(t *testing.T) {
	dir := t.TempDir()
	ip, err := ReadInputParameters(writeChannel(t, dir))
	require.NoError(t, err)
	assert.Equal(t, "Test Channel", ip.Title)
	assert.InDelta(t, 0.56, ip.Tau(), 1.e-12)
	assert.True(t, ip.Periodicity.Y)
	assert.Equal(t, 4, len(ip.ColorMap.Colors))
	assert.Equal(t, [2]float64{0.05, 0}, ip.ColorMap.Colors[2].InitialU)
	assert.Equal(t, 5, ip.Visualization.StepsPerFrame)
	assert.Equal(t, "density", ip.Quantities[1].QuantID)
	assert.Equal(t, float32(0.5), ip.Quantities[1].Offset)
	ip.Print()

	_, err = ReadInputParameters(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("SimulationParams:\n  Viscosity: 0\n"), 0644))
	_, err = ReadInputParameters(bad)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "json", false)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "step", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"step":3`)

	buf.Reset()
	logger, err = NewLogger(&buf, "text", true)
	require.NoError(t, err)
	logger.Debug("detail")
	assert.Contains(t, buf.String(), "msg=detail")

	_, err = NewLogger(&buf, "xml", false)
	assert.Error(t, err)
}

func TestVacuumPolicy(t *testing.T) {
	vp, err := NewVacuumPolicy("raw")
	require.NoError(t, err)
	assert.Equal(t, LBM2D.RawMomentum, vp)
	vp, err = NewVacuumPolicy(" Hold ")
	require.NoError(t, err)
	assert.Equal(t, LBM2D.HoldVelocity, vp)
	_, err = NewVacuumPolicy("zero")
	assert.Error(t, err)
}

func TestPrepareSceneFile(t *testing.T) {
	var (
		dir    = t.TempDir()
		logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	)
	configFile := writeChannel(t, dir)
	fileName, err := PrepareSceneFile(configFile, "", logger)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "channel.dat"), fileName)
	sc, err := readfiles.ReadSceneFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, [2]int{24, 8}, sc.Dimensions)
	assert.Equal(t, [2]bool{false, true}, sc.IsPeriodic)
	assert.Equal(t, types.Inflow, sc.CellType[0])
	assert.Equal(t, types.Outflow, sc.CellType[23])
	assert.Equal(t, types.Solid, sc.CellType[3*24+10])
	assert.Equal(t, types.Solid, sc.CellType[4*24+11])
	assert.Equal(t, types.Fluid, sc.CellType[5*24+11])
	assert.Equal(t, 2, len(sc.Quantities))
	assert.Equal(t, [4]float32{0, 1, 0, 1}, sc.Tracers.Color)
	// 22 white columns by 8 rows, less the solid region
	assert.Equal(t, 22*8-4, len(sc.Tracers.InitialTracers))

	other := filepath.Join(dir, "other.dat")
	fileName, err = PrepareSceneFile(configFile, other, logger)
	require.NoError(t, err)
	assert.Equal(t, other, fileName)
}

func TestRun2D(t *testing.T) {
	var (
		dir    = t.TempDir()
		logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	)
	configFile := writeChannel(t, dir)
	sceneFile, err := PrepareSceneFile(configFile, "", logger)
	require.NoError(t, err)
	{ // From a prepared scene, with the history and both output kinds
		m2d := &Model2D{
			SceneFile:   sceneFile,
			Steps:       12,
			OutputDir:   filepath.Join(dir, "frames"),
			PNG:         true,
			Fields:      true,
			HistoryFile: filepath.Join(dir, "history.csv"),
			ProcLimit:   2,
			Vacuum:      "hold",
			Seed:        3,
		}
		require.NoError(t, Run2D(context.Background(), m2d, logger))
		for _, name := range []string{"speed_000000.png", "density_000003.png", "speed.bin", "density.bin"} {
			_, err = os.Stat(filepath.Join(m2d.OutputDir, name))
			assert.NoError(t, err, name)
		}
		file, err := os.Open(m2d.HistoryFile)
		require.NoError(t, err)
		rows, err := csv.NewReader(file).ReadAll()
		file.Close()
		require.NoError(t, err)
		// Reports at steps 0, 5, 10 and 12
		assert.Equal(t, 5, len(rows))
		assert.Equal(t, "12", rows[4][0])
	}
	{ // From the configuration, with a frame interval override
		m2d := &Model2D{
			ICFile:    configFile,
			Steps:     4,
			PlotSteps: 2,
			OutputDir: filepath.Join(dir, "frames2"),
			PNG:       true,
			Vacuum:    "raw",
		}
		require.NoError(t, Run2D(context.Background(), m2d, logger))
		_, err = os.Stat(filepath.Join(m2d.OutputDir, "speed_000002.png"))
		assert.NoError(t, err)
	}
	{ // Argument errors
		assert.Error(t, Run2D(context.Background(), &Model2D{SceneFile: sceneFile, ICFile: configFile}, logger))
		assert.Error(t, Run2D(context.Background(), &Model2D{SceneFile: sceneFile, Vacuum: "zero"}, logger))
		assert.Error(t, Run2D(context.Background(),
			&Model2D{SceneFile: sceneFile, OutputDir: filepath.Join(dir, "frames3"), Profile: "gpu"}, logger))
	}
}
