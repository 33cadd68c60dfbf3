package readfiles

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/notargets/golbm/InputParameters"
	"github.com/notargets/golbm/types"
)

// Larger headers are treated as corrupt rather than allocated
const maxSceneCells = 1 << 28

/*
Scene is the decoded content of a prepared simulation file. The file is little endian:

	u64 width, u64 height, i8 periodic x, i8 periodic y, f64 tau
	u64 render width, u64 render height, u64 steps per frame
	u8 quantity count, then per quantity: u8 name length, name, f32 offset, f32 amplitude
	4 x f32 tracer color, f32 tracer size, f32 emission rate, u64 random initial tracers
	u8 cell type[N], f64 rho[N], f64 ux[N], f64 uy[N]      with N = width*height
	u64 initial tracer count, u64 cell index per tracer
*/
type Scene struct {
	Dimensions    [2]int
	IsPeriodic    [2]bool
	Tau           float64
	Visualization InputParameters.VisualizationParams
	Quantities    []InputParameters.QuantityParams
	Tracers       InputParameters.TracersParams
	CellType      []types.CellType
	InitialRho    []float64
	InitialU      [][2]float64
}

func (sc *Scene) TotalSize() int { return sc.Dimensions[0] * sc.Dimensions[1] }

// Validate checks the array sizes and cell types against the dimensions.
func (sc *Scene) Validate() (err error) {
	var (
		N = sc.TotalSize()
	)
	switch {
	case sc.Dimensions[0] < 2 || sc.Dimensions[1] < 2:
		return errors.Errorf("scene dimensions must be at least 2x2, have %dx%d", sc.Dimensions[0], sc.Dimensions[1])
	case len(sc.CellType) != N:
		return errors.Errorf("scene has %d cell types, want %d", len(sc.CellType), N)
	case len(sc.InitialRho) != N:
		return errors.Errorf("scene has %d densities, want %d", len(sc.InitialRho), N)
	case len(sc.InitialU) != N:
		return errors.Errorf("scene has %d velocities, want %d", len(sc.InitialU), N)
	}
	for i, ct := range sc.CellType {
		if !ct.Valid() {
			return errors.Errorf("scene cell %d has unknown type %d", i, ct)
		}
	}
	if sc.Tracers.RandomInitial < 0 {
		return errors.Errorf("negative random tracer count %d", sc.Tracers.RandomInitial)
	}
	for _, idx := range sc.Tracers.InitialTracers {
		if idx < 0 || idx >= N {
			return errors.Errorf("initial tracer index %d outside of the lattice", idx)
		}
	}
	for _, q := range sc.Quantities {
		if len(q.QuantID) > math.MaxUint8 {
			return errors.Errorf("quantity name %q is longer than %d bytes", q.QuantID, math.MaxUint8)
		}
	}
	if len(sc.Quantities) > math.MaxUint8 {
		return errors.Errorf("%d render quantities, at most %d are allowed", len(sc.Quantities), math.MaxUint8)
	}
	return
}

func ReadSceneFile(fileName string) (sc *Scene, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(fileName); err != nil {
		return nil, errors.Wrapf(err, "unable to open scene file %s", fileName)
	}
	defer file.Close()
	if sc, err = ReadScene(file); err != nil {
		return nil, errors.Wrapf(err, "reading scene file %s", fileName)
	}
	return
}

func ReadScene(r io.Reader) (sc *Scene, err error) {
	var (
		reader           = bufio.NewReader(r)
		width, height    uint64
		periodic         [2]int8
		render           [3]uint64
		nQuant, nameLen  uint8
		randomInitial    uint64
		nTracers         uint64
		tracerProperties [6]float32
	)
	sc = &Scene{}
	if err = readFields(reader, "header", &width, &height, &periodic, &sc.Tau); err != nil {
		return nil, err
	}
	if width > maxSceneCells || height > maxSceneCells || width*height > maxSceneCells {
		return nil, errors.Errorf("scene dimensions %dx%d are too large", width, height)
	}
	sc.Dimensions = [2]int{int(width), int(height)}
	sc.IsPeriodic = [2]bool{periodic[0] != 0, periodic[1] != 0}
	if err = readFields(reader, "render parameters", &render, &nQuant); err != nil {
		return nil, err
	}
	sc.Visualization = InputParameters.VisualizationParams{
		Width:         int(render[0]),
		Height:        int(render[1]),
		StepsPerFrame: int(render[2]),
	}
	for i := 0; i < int(nQuant); i++ {
		if err = readFields(reader, "quantity name length", &nameLen); err != nil {
			return nil, err
		}
		name := make([]byte, nameLen)
		if _, err = io.ReadFull(reader, name); err != nil {
			return nil, errors.Wrap(err, "reading quantity name")
		}
		q := InputParameters.QuantityParams{QuantID: string(name)}
		if err = readFields(reader, "quantity normalization", &q.Offset, &q.Amplitude); err != nil {
			return nil, err
		}
		sc.Quantities = append(sc.Quantities, q)
	}
	if err = readFields(reader, "tracer parameters", &tracerProperties, &randomInitial); err != nil {
		return nil, err
	}
	copy(sc.Tracers.Color[:], tracerProperties[:4])
	sc.Tracers.Size, sc.Tracers.EmissionRate = tracerProperties[4], tracerProperties[5]
	sc.Tracers.RandomInitial = int(randomInitial)

	var (
		N        = sc.TotalSize()
		cellType = make([]uint8, N)
		ux, uy   = make([]float64, N), make([]float64, N)
	)
	sc.InitialRho = make([]float64, N)
	if err = readFields(reader, "cell data", cellType, sc.InitialRho, ux, uy); err != nil {
		return nil, err
	}
	sc.CellType = make([]types.CellType, N)
	sc.InitialU = make([][2]float64, N)
	for i := 0; i < N; i++ {
		sc.CellType[i] = types.CellType(cellType[i])
		sc.InitialU[i] = [2]float64{ux[i], uy[i]}
	}
	if err = readFields(reader, "initial tracer count", &nTracers); err != nil {
		return nil, err
	}
	if nTracers > uint64(N) {
		return nil, errors.Errorf("%d initial tracers for %d cells", nTracers, N)
	}
	indices := make([]uint64, nTracers)
	if err = readFields(reader, "initial tracers", indices); err != nil {
		return nil, err
	}
	sc.Tracers.InitialTracers = make([]int, nTracers)
	for i, idx := range indices {
		sc.Tracers.InitialTracers[i] = int(idx)
	}
	if err = sc.Validate(); err != nil {
		return nil, err
	}
	return
}

func readFields(reader io.Reader, what string, fields ...any) (err error) {
	for _, f := range fields {
		if err = binary.Read(reader, binary.LittleEndian, f); err != nil {
			return errors.Wrapf(err, "reading %s", what)
		}
	}
	return
}

func WriteSceneFile(fileName string, sc *Scene) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(fileName); err != nil {
		return errors.Wrapf(err, "unable to create scene file %s", fileName)
	}
	if err = WriteScene(file, sc); err != nil {
		file.Close()
		return errors.Wrapf(err, "writing scene file %s", fileName)
	}
	return file.Close()
}

func WriteScene(w io.Writer, sc *Scene) (err error) {
	if err = sc.Validate(); err != nil {
		return
	}
	var (
		writer   = bufio.NewWriter(w)
		N        = sc.TotalSize()
		periodic = [2]int8{}
		cellType = make([]uint8, N)
		ux, uy   = make([]float64, N), make([]float64, N)
		indices  = make([]uint64, len(sc.Tracers.InitialTracers))
	)
	for axis, p := range sc.IsPeriodic {
		if p {
			periodic[axis] = 1
		}
	}
	for i := 0; i < N; i++ {
		cellType[i] = uint8(sc.CellType[i])
		ux[i], uy[i] = sc.InitialU[i][0], sc.InitialU[i][1]
	}
	for i, idx := range sc.Tracers.InitialTracers {
		indices[i] = uint64(idx)
	}
	fields := []any{
		uint64(sc.Dimensions[0]), uint64(sc.Dimensions[1]), periodic, sc.Tau,
		uint64(sc.Visualization.Width), uint64(sc.Visualization.Height), uint64(sc.Visualization.StepsPerFrame),
		uint8(len(sc.Quantities)),
	}
	for _, q := range sc.Quantities {
		fields = append(fields, uint8(len(q.QuantID)), []byte(q.QuantID), q.Offset, q.Amplitude)
	}
	fields = append(fields,
		sc.Tracers.Color, sc.Tracers.Size, sc.Tracers.EmissionRate, uint64(sc.Tracers.RandomInitial),
		cellType, sc.InitialRho, ux, uy,
		uint64(len(indices)), indices,
	)
	for _, f := range fields {
		if err = binary.Write(writer, binary.LittleEndian, f); err != nil {
			return errors.Wrap(err, "encoding scene")
		}
	}
	return writer.Flush()
}
