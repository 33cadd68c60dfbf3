package InputParameters

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML scene configuration file
type InputParametersLBM struct {
	Title            string              `json:"Title"`
	SimulationParams SimulationParams    `json:"SimulationParams"`
	Periodicity      Periodicity         `json:"Periodicity"`
	Domain           Domain              `json:"Domain"`
	ColorMap         ColorMap            `json:"ColorMap"`
	Regions          []Region            `json:"Regions"`
	Render           Render              `json:"Render"`
	Tracers          TracersInput        `json:"Tracers"`
	Quantities       []QuantityParams    `json:"-"`
	Visualization    VisualizationParams `json:"-"`
}

type SimulationParams struct {
	Viscosity float64 `json:"Viscosity"`
	Tau       float64 `json:"Tau"` // Overrides the viscosity derived value when non zero
}

type Periodicity struct {
	X bool `json:"X"`
	Y bool `json:"Y"`
}

// YAML 1.1 reads a bare Y key as the boolean true, which reaches the JSON decoder as "true"
const yamlYKey = "true"

func (p *Periodicity) UnmarshalJSON(data []byte) error {
	type plain Periodicity
	return unmarshalWithYKey(data, (*plain)(p), &p.Y)
}

// Domain gives the lattice size when no bitmap is supplied
type Domain struct {
	Width      int        `json:"Width"`
	Height     int        `json:"Height"`
	InitialRho float64    `json:"InitialRho"`
	InitialU   [2]float64 `json:"InitialU"`
}

type ColorMap struct {
	MapFilename string       `json:"MapFilename"`
	Colors      []ColorEntry `json:"Colors"`
}

type ColorEntry struct {
	Color      string     `json:"Color"` // Hex RGB, "#RRGGBB"
	Type       string     `json:"Type"`
	InitialRho float64    `json:"InitialRho"`
	InitialU   [2]float64 `json:"InitialU"`
	Tracer     bool       `json:"Tracer"`
}

// Region overrides the cell type of a rectangle, X and Y are range strings like "25:27"
type Region struct {
	Type       string     `json:"Type"`
	X          string     `json:"X"`
	Y          string     `json:"Y"`
	InitialRho float64    `json:"InitialRho"`
	InitialU   [2]float64 `json:"InitialU"`
}

func (r *Region) UnmarshalJSON(data []byte) error {
	type plain Region
	return unmarshalWithYKey(data, (*plain)(r), &r.Y)
}

// unmarshalWithYKey decodes data into v, then decodes a "true" key, if present, into y.
func unmarshalWithYKey(data []byte, v, y any) (err error) {
	var (
		fields map[string]json.RawMessage
	)
	if err = json.Unmarshal(data, v); err != nil {
		return
	}
	if err = json.Unmarshal(data, &fields); err != nil {
		return
	}
	if raw, ok := fields[yamlYKey]; ok {
		err = json.Unmarshal(raw, y)
	}
	return
}

type Render struct {
	StepsPerFrame    int              `json:"StepsPerFrame"`
	RenderWindowSize [2]int           `json:"RenderWindowSize"`
	RenderQuantities []QuantityParams `json:"RenderQuantities"`
}

type TracersInput struct {
	Color         string  `json:"Color"`
	Size          float32 `json:"Size"`
	EmissionRate  float32 `json:"EmissionRate"`
	RandomInitial int     `json:"RandomInitial"`
}

// QuantityParams selects an observable and its normalization into [0,1]
type QuantityParams struct {
	QuantID   string  `json:"Quantity"`
	Offset    float32 `json:"Offset"`
	Amplitude float32 `json:"Amplitude"`
}

type VisualizationParams struct {
	Width, Height int
	StepsPerFrame int
}

type TracersParams struct {
	Color          [4]float32
	Size           float32
	EmissionRate   float32
	RandomInitial  int
	InitialTracers []int
}

func (ip *InputParametersLBM) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.setDefaults()
	return ip.Validate()
}

func (ip *InputParametersLBM) setDefaults() {
	if ip.Render.StepsPerFrame == 0 {
		ip.Render.StepsPerFrame = 10
	}
	if ip.Render.RenderWindowSize == [2]int{} {
		ip.Render.RenderWindowSize = [2]int{800, 400}
	}
	if len(ip.Render.RenderQuantities) == 0 {
		ip.Render.RenderQuantities = []QuantityParams{{QuantID: "speed", Offset: 0, Amplitude: 0.1}}
	}
	if ip.Tracers.Color == "" {
		ip.Tracers.Color = "#FF00FF"
	}
	if ip.Tracers.Size == 0 {
		ip.Tracers.Size = 3
	}
	if ip.Domain.InitialRho == 0 {
		ip.Domain.InitialRho = 1
	}
	ip.Quantities = ip.Render.RenderQuantities
	ip.Visualization = VisualizationParams{
		Width:         ip.Render.RenderWindowSize[0],
		Height:        ip.Render.RenderWindowSize[1],
		StepsPerFrame: ip.Render.StepsPerFrame,
	}
}

func (ip *InputParametersLBM) Validate() (err error) {
	if ip.Tau() <= 0.5 {
		return fmt.Errorf("relaxation time tau = %g must be > 0.5, set SimulationParams.Viscosity > 0 or Tau", ip.Tau())
	}
	if len(ip.ColorMap.MapFilename) == 0 && (ip.Domain.Width < 2 || ip.Domain.Height < 2) {
		return fmt.Errorf("without a ColorMap.MapFilename the Domain must be at least 2x2, have %dx%d",
			ip.Domain.Width, ip.Domain.Height)
	}
	for _, q := range ip.Render.RenderQuantities {
		if q.Amplitude == 0 && strings.ToLower(q.QuantID) != "zero" {
			return fmt.Errorf("render quantity %q needs a non zero Amplitude", q.QuantID)
		}
	}
	return
}

// Tau is the BGK relaxation time, from the lattice viscosity nu = (tau - 1/2)/3 unless set explicitly
func (ip *InputParametersLBM) Tau() float64 {
	if ip.SimulationParams.Tau != 0 {
		return ip.SimulationParams.Tau
	}
	return 3.*ip.SimulationParams.Viscosity + 0.5
}

func (ip *InputParametersLBM) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5f\t\t= Viscosity\n", ip.SimulationParams.Viscosity)
	fmt.Printf("%8.5f\t\t= Tau\n", ip.Tau())
	fmt.Printf("[%v,%v]\t\t= Periodic X,Y\n", ip.Periodicity.X, ip.Periodicity.Y)
	if len(ip.ColorMap.MapFilename) != 0 {
		fmt.Printf("[%s]\t= Domain Bitmap\n", ip.ColorMap.MapFilename)
	} else {
		fmt.Printf("[%dx%d]\t\t= Domain\n", ip.Domain.Width, ip.Domain.Height)
	}
	fmt.Printf("[%d]\t\t\t= Steps Per Frame\n", ip.Render.StepsPerFrame)
	for _, q := range ip.Render.RenderQuantities {
		fmt.Printf("Quantity[%s] offset = %5.3f, amplitude = %5.3f\n", q.QuantID, q.Offset, q.Amplitude)
	}
	for i, r := range ip.Regions {
		fmt.Printf("Region[%d] = %s X[%s] Y[%s]\n", i, r.Type, r.X, r.Y)
	}
}

// ParseHexColor converts "#RRGGBB" into its byte components
func ParseHexColor(hex string) (rgb [3]uint8, err error) {
	var (
		s = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	)
	if len(s) != 6 {
		err = fmt.Errorf("color %q is not in #RRGGBB form", hex)
		return
	}
	if _, err = fmt.Sscanf(s, "%02x%02x%02x", &rgb[0], &rgb[1], &rgb[2]); err != nil {
		err = fmt.Errorf("color %q is not in #RRGGBB form: %w", hex, err)
	}
	return
}

// TracersParams converts the YAML tracer settings, the alpha channel is always opaque
func (ip *InputParametersLBM) TracersParams() (tp TracersParams, err error) {
	var (
		rgb [3]uint8
	)
	if rgb, err = ParseHexColor(ip.Tracers.Color); err != nil {
		return
	}
	tp = TracersParams{
		Color:         [4]float32{float32(rgb[0]) / 255, float32(rgb[1]) / 255, float32(rgb[2]) / 255, 1},
		Size:          ip.Tracers.Size,
		EmissionRate:  ip.Tracers.EmissionRate,
		RandomInitial: ip.Tracers.RandomInitial,
	}
	return
}
