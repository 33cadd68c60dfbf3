package readfiles

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"

	"github.com/notargets/golbm/InputParameters"
	"github.com/notargets/golbm/types"
	"github.com/notargets/golbm/utils"
)

type cellEntry struct {
	Type   types.CellType
	Rho    float64
	U      [2]float64
	Tracer bool
}

type sceneBuilder struct {
	sc      *Scene
	tracers map[int]bool
}

func (sb *sceneBuilder) set(idx int, ce cellEntry) {
	sc := sb.sc
	sc.CellType[idx] = ce.Type
	switch ce.Type {
	case types.Solid:
		sc.InitialRho[idx], sc.InitialU[idx] = 1., [2]float64{}
	case types.Outflow:
		sc.InitialRho[idx], sc.InitialU[idx] = ce.Rho, [2]float64{}
	default:
		sc.InitialRho[idx], sc.InitialU[idx] = ce.Rho, ce.U
	}
	sb.tracers[idx] = ce.Tracer && ce.Type == types.Fluid
}

/*
PrepareScene builds a scene from a run configuration. When ColorMap.MapFilename is set, the
bitmap (PNG, GIF, JPEG or BMP, path relative to configDir) gives the lattice size and each pixel
color selects a ColorMap entry. Colors without an entry become SOLID with a warning. Image row
0 is the top of the domain, so it becomes y = Height-1. Without a bitmap the Domain size is
used and every cell starts as FLUID. Regions are applied last, in order.
*/
func PrepareScene(ip *InputParameters.InputParametersLBM, configDir string, logger *slog.Logger) (sc *Scene, err error) {
	var (
		tp InputParameters.TracersParams
		sb *sceneBuilder
	)
	if logger == nil {
		logger = slog.Default()
	}
	if tp, err = ip.TracersParams(); err != nil {
		return nil, errors.Wrap(err, "tracer parameters")
	}
	sc = &Scene{
		IsPeriodic:    [2]bool{ip.Periodicity.X, ip.Periodicity.Y},
		Tau:           ip.Tau(),
		Visualization: ip.Visualization,
		Quantities:    append([]InputParameters.QuantityParams(nil), ip.Quantities...),
		Tracers:       tp,
	}
	if len(ip.ColorMap.MapFilename) != 0 {
		var (
			img  image.Image
			path = ip.ColorMap.MapFilename
		)
		if !filepath.IsAbs(path) {
			path = filepath.Join(configDir, path)
		}
		if img, err = ReadBitmapFile(path); err != nil {
			return nil, err
		}
		if sb, err = newSceneBuilder(sc, img.Bounds().Dx(), img.Bounds().Dy()); err != nil {
			return nil, err
		}
		if err = sb.applyBitmap(img, ip.ColorMap.Colors, ip.Domain.InitialRho, logger); err != nil {
			return nil, err
		}
	} else {
		if sb, err = newSceneBuilder(sc, ip.Domain.Width, ip.Domain.Height); err != nil {
			return nil, err
		}
		fluid := cellEntry{Type: types.Fluid, Rho: ip.Domain.InitialRho, U: ip.Domain.InitialU}
		for idx := 0; idx < sc.TotalSize(); idx++ {
			sb.set(idx, fluid)
		}
	}
	R2 := utils.NewR2(sc.Dimensions[0], sc.Dimensions[1])
	for i, r := range ip.Regions {
		var ce cellEntry
		if ce.Type, err = types.NewCellType(r.Type); err != nil {
			return nil, errors.Wrapf(err, "region %d", i)
		}
		ce.Rho, ce.U = defaultRho(r.InitialRho, ip.Domain.InitialRho), r.InitialU
		cells := R2.Range(r.X, r.Y)
		if len(cells) == 0 {
			logger.Warn("region selects no cells", "region", i, "x", r.X, "y", r.Y)
		}
		for _, idx := range cells {
			sb.set(idx, ce)
		}
	}
	for idx, isTracer := range sb.tracers {
		if isTracer {
			sc.Tracers.InitialTracers = append(sc.Tracers.InitialTracers, idx)
		}
	}
	sort.Ints(sc.Tracers.InitialTracers)
	if err = sc.Validate(); err != nil {
		return nil, err
	}
	logger.Info("prepared scene",
		"width", sc.Dimensions[0], "height", sc.Dimensions[1], "tau", sc.Tau,
		"initial_tracers", len(sc.Tracers.InitialTracers))
	return
}

func newSceneBuilder(sc *Scene, width, height int) (sb *sceneBuilder, err error) {
	if width < 2 || height < 2 {
		return nil, errors.Errorf("domain must be at least 2x2, have %dx%d", width, height)
	}
	sc.Dimensions = [2]int{width, height}
	N := width * height
	sc.CellType = make([]types.CellType, N)
	sc.InitialRho = make([]float64, N)
	sc.InitialU = make([][2]float64, N)
	sb = &sceneBuilder{sc: sc, tracers: make(map[int]bool)}
	return
}

func (sb *sceneBuilder) applyBitmap(img image.Image, colors []InputParameters.ColorEntry, rhoDefault float64,
	logger *slog.Logger) (err error) {
	var (
		bounds  = img.Bounds()
		width   = sb.sc.Dimensions[0]
		height  = sb.sc.Dimensions[1]
		entries = make(map[[3]uint8]cellEntry, len(colors))
		unknown = make(map[[3]uint8]int)
	)
	for i, ce := range colors {
		var (
			rgb   [3]uint8
			entry cellEntry
		)
		if rgb, err = InputParameters.ParseHexColor(ce.Color); err != nil {
			return errors.Wrapf(err, "color map entry %d", i)
		}
		if entry.Type, err = types.NewCellType(ce.Type); err != nil {
			return errors.Wrapf(err, "color map entry %d", i)
		}
		entry.Rho, entry.U, entry.Tracer = defaultRho(ce.InitialRho, rhoDefault), ce.InitialU, ce.Tracer
		entries[rgb] = entry
	}
	for row := 0; row < height; row++ {
		y := height - 1 - row
		for x := 0; x < width; x++ {
			rgb := pixelRGB(img, bounds.Min.X+x, bounds.Min.Y+row)
			entry, ok := entries[rgb]
			if !ok {
				unknown[rgb]++
				entry = cellEntry{Type: types.Solid}
			}
			sb.set(y*width+x, entry)
		}
	}
	for rgb, count := range unknown {
		logger.Warn("unknown bitmap color, treating as SOLID",
			"color", fmt.Sprintf("#%02X%02X%02X", rgb[0], rgb[1], rgb[2]), "cells", count)
	}
	return
}

func pixelRGB(img image.Image, x, y int) (rgb [3]uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func defaultRho(rho, rhoDefault float64) float64 {
	if rho == 0 {
		return rhoDefault
	}
	return rho
}

// ReadBitmapFile decodes a PNG, GIF, JPEG or BMP domain bitmap.
func ReadBitmapFile(fileName string) (img image.Image, err error) {
	var (
		file   *os.File
		format string
	)
	if file, err = os.Open(fileName); err != nil {
		return nil, errors.Wrapf(err, "unable to open domain bitmap %s", fileName)
	}
	defer file.Close()
	if img, format, err = image.Decode(file); err != nil {
		return nil, errors.Wrapf(err, "unable to decode domain bitmap %s", fileName)
	}
	slog.Debug("read domain bitmap", "file", fileName, "format", format,
		"size", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()))
	return
}

// SceneFileName is the prepared scene path for a configuration file: "a/b.yaml" gives "a/b.dat".
func SceneFileName(configFile string) string {
	if ext := filepath.Ext(configFile); ext == ".yaml" || ext == ".yml" {
		return strings.TrimSuffix(configFile, ext) + ".dat"
	}
	return configFile + ".dat"
}
