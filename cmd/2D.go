/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/golbm/InputParameters"
	"github.com/notargets/golbm/model_problems/LBM2D"
	"github.com/notargets/golbm/readfiles"
)

type Model2D struct {
	SceneFile   string
	ICFile      string
	Steps       int
	PlotSteps   int // Overrides the scene's steps per frame when non zero
	OutputDir   string
	PNG, Fields bool
	HistoryFile string
	ProcLimit   int
	Vacuum      string
	Seed        uint64
	Profile     string
	MetricsAddr string
}

// Scene used when neither a scene file nor a configuration file is given
var (
	SampleWidth, SampleHeight = 300, 100
	SampleViscosity           = 0.02
)

// TwoDCmd represents the 2D command
var TwoDCmd = &cobra.Command{
	Use:   "2D",
	Short: "Two dimensional lattice Boltzmann solver, reads a scene and writes frames and diagnostics",
	Long: `Two dimensional lattice Boltzmann solver, reads a scene and writes frames and diagnostics

The scene is either a prepared scene file (-F), a YAML configuration prepared on the fly (-I),
or when neither is given a sample channel with a diagonal obstacle.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m2d := &Model2D{
			SceneFile:   viper.GetString("sceneFile"),
			ICFile:      viper.GetString("inputConditionsFile"),
			Steps:       viper.GetInt("steps"),
			PlotSteps:   viper.GetInt("plotSteps"),
			OutputDir:   viper.GetString("outputDir"),
			PNG:         viper.GetBool("png"),
			Fields:      viper.GetBool("fields"),
			HistoryFile: viper.GetString("historyFile"),
			ProcLimit:   viper.GetInt("procLimit"),
			Vacuum:      viper.GetString("vacuum"),
			Seed:        viper.GetUint64("seed"),
			Profile:     viper.GetString("profile"),
			MetricsAddr: viper.GetString("metricsAddr"),
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return Run2D(ctx, m2d, slog.Default())
	},
}

func init() {
	rootCmd.AddCommand(TwoDCmd)
	flags := TwoDCmd.Flags()
	flags.StringP("sceneFile", "F", "", "prepared scene file (.dat), see the prepare command")
	flags.StringP("inputConditionsFile", "I", "", "YAML scene configuration, prepared before running")
	flags.IntP("steps", "n", 1000, "number of lattice steps, 0 runs until interrupted")
	flags.IntP("plotSteps", "s", 0, "steps between frames, 0 uses the scene's steps per frame")
	flags.StringP("outputDir", "o", "frames", "directory for frames and field streams")
	flags.Bool("png", true, "write a PNG image per quantity and frame")
	flags.Bool("fields", false, "write a raw float32 field stream per quantity")
	flags.String("historyFile", "", "CSV file for the step, mass, energy and speed history")
	flags.IntP("procLimit", "p", 0, "maximum number of goroutines per parallel stage, 0 uses one per CPU")
	flags.String("vacuum", "hold", "velocity of cells with vanishing density: hold (previous velocity) or raw (momentum)")
	flags.Uint64("seed", 1, "seed for the random tracer placement and emission")
	flags.String("profile", "", "write a cpu or mem profile into the output directory")
	flags.String("metricsAddr", "", "serve Prometheus metrics on this address, e.g. :9090")
	_ = viper.BindPFlags(flags)
}

func NewVacuumPolicy(label string) (vp LBM2D.VacuumPolicy, err error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "hold", "":
		vp = LBM2D.HoldVelocity
	case "raw":
		vp = LBM2D.RawMomentum
	default:
		err = fmt.Errorf("unknown vacuum policy %q, must be hold or raw", label)
	}
	return
}

// LoadScene resolves the scene source of a run.
func LoadScene(m2d *Model2D, logger *slog.Logger) (sc *readfiles.Scene, err error) {
	switch {
	case len(m2d.SceneFile) != 0 && len(m2d.ICFile) != 0:
		return nil, fmt.Errorf("give either a scene file (-F) or a configuration file (-I), not both")
	case len(m2d.SceneFile) != 0:
		return readfiles.ReadSceneFile(m2d.SceneFile)
	case len(m2d.ICFile) != 0:
		var ip *InputParameters.InputParametersLBM
		if ip, err = ReadInputParameters(m2d.ICFile); err != nil {
			return
		}
		ip.Print()
		return readfiles.PrepareScene(ip, filepath.Dir(m2d.ICFile), logger)
	}
	logger.Info("no scene given, using the sample channel", "width", SampleWidth, "height", SampleHeight)
	ic := LBM2D.SampleChannel(SampleWidth, SampleHeight)
	sc = &readfiles.Scene{
		Dimensions: [2]int{SampleWidth, SampleHeight},
		IsPeriodic: [2]bool{true, true},
		Tau:        3.*SampleViscosity + 0.5,
		Visualization: InputParameters.VisualizationParams{
			Width: 800, Height: 400, StepsPerFrame: 10,
		},
		Quantities: []InputParameters.QuantityParams{{QuantID: "speed", Amplitude: 0.1}},
		Tracers: InputParameters.TracersParams{
			Color: [4]float32{1, 0, 1, 1}, Size: 3, EmissionRate: 0.1, RandomInitial: 500,
		},
		CellType:   ic.CellType,
		InitialRho: ic.InitialRho,
		InitialU:   ic.InitialU,
	}
	return
}

func Run2D(ctx context.Context, m2d *Model2D, logger *slog.Logger) (err error) {
	var (
		sc      *readfiles.Scene
		c       *LBM2D.D2Q9
		vacuum  LBM2D.VacuumPolicy
		fw      *LBM2D.FrameWriter
		metrics *LBM2D.Metrics
	)
	if vacuum, err = NewVacuumPolicy(m2d.Vacuum); err != nil {
		return
	}
	if sc, err = LoadScene(m2d, logger); err != nil {
		return
	}
	if c, err = LBM2D.NewFromScene(sc, m2d.ProcLimit, vacuum); err != nil {
		return
	}
	c.Print()
	if fw, err = LBM2D.NewFrameWriter(c, m2d.OutputDir, sc.Quantities, sc.Tracers, m2d.PNG, m2d.Fields); err != nil {
		return
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	switch strings.ToLower(m2d.Profile) {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(m2d.OutputDir), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(m2d.OutputDir), profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile %q, must be cpu or mem", m2d.Profile)
	}
	if len(m2d.MetricsAddr) != 0 {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics = LBM2D.NewMetrics(reg)
		srv := &http.Server{Addr: m2d.MetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if serr := srv.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
				logger.Error("metrics server", "error", serr)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", m2d.MetricsAddr)
	}
	pm := &LBM2D.PlotMeta{
		Steps:         m2d.Steps,
		StepsPerFrame: sc.Visualization.StepsPerFrame,
		Frames:        fw,
	}
	if m2d.PlotSteps > 0 {
		pm.StepsPerFrame = m2d.PlotSteps
	}
	if len(m2d.HistoryFile) != 0 {
		var history *os.File
		if history, err = os.Create(m2d.HistoryFile); err != nil {
			return
		}
		defer func() {
			if cerr := history.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		pm.History = history
	}
	tracers := LBM2D.NewTracers(c, sc.Tracers, m2d.Seed)
	return c.Solve(ctx, pm, tracers, logger, metrics)
}

// ReadInputParameters parses a YAML scene configuration file.
func ReadInputParameters(fileName string) (ip *InputParameters.InputParametersLBM, err error) {
	var (
		data []byte
	)
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	ip = &InputParameters.InputParametersLBM{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	return
}
