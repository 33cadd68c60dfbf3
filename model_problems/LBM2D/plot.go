package LBM2D

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/mazznoer/colorgrad"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/golbm/InputParameters"
)

// The last two palette entries mark solid cells and tracers, the rest is the color ramp
const (
	paletteSize   = 256
	rampSize      = paletteSize - 2
	obstacleIndex = rampSize
	tracerIndex   = rampSize + 1
)

// NewPalette is a viridis ramp followed by black for obstacles and the tracer color.
func NewPalette(tracerColor [4]float32) (pal color.Palette) {
	pal = make(color.Palette, 0, paletteSize)
	pal = append(pal, colorgrad.Viridis().Colors(rampSize)...)
	pal = append(pal, color.RGBA{A: 255})
	pal = append(pal, color.NRGBA{
		R: uint8(255 * tracerColor[0]),
		G: uint8(255 * tracerColor[1]),
		B: uint8(255 * tracerColor[2]),
		A: uint8(255 * tracerColor[3]),
	})
	return
}

// FieldImage renders a normalized field as a paletted image, y up. Solid cells are drawn with
// the obstacle color and each tracer as one pixel.
func (c *D2Q9) FieldImage(field []float32, pal color.Palette, tracers [][2]float32) (img *image.Paletted) {
	var (
		width, height = c.Width(), c.Height()
	)
	img = image.NewPaletted(image.Rect(0, 0, width, height), pal)
	for idx, v := range field {
		x, y := c.IndexToCoords(idx)
		ci := uint8(float32(rampSize-1) * v)
		if c.obstacleMask[idx] != 0 {
			ci = obstacleIndex
		}
		img.SetColorIndex(x, height-1-y, ci)
	}
	for _, p := range tracers {
		x, y := int(p[0]), int(p[1])
		if x >= 0 && x < width && y >= 0 && y < height {
			img.SetColorIndex(x, height-1-y, tracerIndex)
		}
	}
	return
}

// FrameWriter saves the configured quantities every frame, as PNG images and/or as a raw field
// stream per quantity: int64 width, int64 height, then width*height float32 values per frame.
type FrameWriter struct {
	OutputDir           string
	Quantities          []InputParameters.QuantityParams
	WritePNG, WriteBins bool
	palette             color.Palette
	observables         []ObservableFunc
	fields              [][]float32
	binFiles            []*os.File
	binWriters          []*bufio.Writer
	frames              int
}

func NewFrameWriter(c *D2Q9, outputDir string, quantities []InputParameters.QuantityParams,
	tp InputParameters.TracersParams, writePNG, writeBins bool) (fw *FrameWriter, err error) {
	fw = &FrameWriter{
		OutputDir:  outputDir,
		Quantities: quantities,
		WritePNG:   writePNG,
		WriteBins:  writeBins,
		palette:    NewPalette(tp.Color),
	}
	for _, q := range quantities {
		f, ok := GetObservable(q.QuantID)
		if !ok {
			return nil, fmt.Errorf("unknown render quantity %q, must be one of %v", q.QuantID, ObservableNames())
		}
		fw.observables = append(fw.observables, f)
		fw.fields = append(fw.fields, make([]float32, c.TotalSize))
	}
	if err = os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "unable to create output directory %s", outputDir)
	}
	if !writeBins {
		return
	}
	for _, q := range quantities {
		var (
			file     *os.File
			fileName = filepath.Join(outputDir, q.QuantID+".bin")
		)
		if file, err = os.Create(fileName); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "unable to create field file %s", fileName)
		}
		w := bufio.NewWriter(file)
		fw.binFiles = append(fw.binFiles, file)
		fw.binWriters = append(fw.binWriters, w)
		if err = binary.Write(w, binary.LittleEndian, [2]int64{int64(c.Width()), int64(c.Height())}); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "writing header of %s", fileName)
		}
	}
	return
}

func (fw *FrameWriter) Frames() int { return fw.frames }

// WriteFrame evaluates and saves every quantity concurrently. It only reads solver state and
// must not overlap a Step.
func (fw *FrameWriter) WriteFrame(c *D2Q9, tracers [][2]float32) (err error) {
	var (
		g errgroup.Group
	)
	for i := range fw.Quantities {
		g.Go(func() error {
			q := fw.Quantities[i]
			fw.observables[i](c, fw.fields[i], q.Offset, q.Amplitude)
			if fw.WriteBins {
				if err := binary.Write(fw.binWriters[i], binary.LittleEndian, fw.fields[i]); err != nil {
					return errors.Wrapf(err, "writing %s field", q.QuantID)
				}
			}
			if fw.WritePNG {
				fileName := filepath.Join(fw.OutputDir, fmt.Sprintf("%s_%06d.png", q.QuantID, fw.frames))
				if err := writePNGFile(fileName, c.FieldImage(fw.fields[i], fw.palette, tracers)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return
	}
	fw.frames++
	return
}

func writePNGFile(fileName string, img image.Image) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(fileName); err != nil {
		return errors.Wrapf(err, "unable to create frame %s", fileName)
	}
	if err = png.Encode(file, img); err != nil {
		file.Close()
		return errors.Wrapf(err, "encoding frame %s", fileName)
	}
	return file.Close()
}

// Close flushes and closes the field streams.
func (fw *FrameWriter) Close() (err error) {
	for i, file := range fw.binFiles {
		if i < len(fw.binWriters) {
			if ferr := fw.binWriters[i].Flush(); ferr != nil && err == nil {
				err = ferr
			}
		}
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	fw.binFiles, fw.binWriters = nil, nil
	return
}
