package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "history file written by the 2D command (--historyFile)")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	f, err := os.Open(csvFile)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	h, err := ReadHistory(bufio.NewReader(f))
	if err != nil {
		panic(err)
	}
	if h.Len() == 0 {
		fmt.Println("no history rows")
		return
	}
	s := h.Summarize()
	fmt.Printf("Steps %d to %d, %d reports\n", h.step[0], h.step[h.Len()-1], h.Len())
	fmt.Printf("Initial mass = %v, final mass = %v\n", s.InitialMass, s.FinalMass)
	fmt.Printf("Max absolute mass drift = %v, relative = %v\n", s.MaxDrift, s.MaxRelativeDrift)
	fmt.Printf("Max speed = %v at step %d, final kinetic energy = %v\n", s.MaxSpeed, s.MaxSpeedStep, s.FinalEnergy)
}

type History struct {
	step          []int
	mass, density []float64
	energy, speed []float64
}

func (h *History) Len() int { return len(h.step) }

func (h *History) Add(step int, mass, density, energy, speed float64) {
	h.step = append(h.step, step)
	h.mass = append(h.mass, mass)
	h.density = append(h.density, density)
	h.energy = append(h.energy, energy)
	h.speed = append(h.speed, speed)
}

type Summary struct {
	InitialMass, FinalMass     float64
	MaxDrift, MaxRelativeDrift float64
	MaxSpeed                   float64
	MaxSpeedStep               int
	FinalEnergy                float64
}

// Summarize reports the largest deviation of the total mass from its first value.
func (h *History) Summarize() (s Summary) {
	var (
		n     = h.Len()
		drift = make([]float64, n)
	)
	s.InitialMass, s.FinalMass = h.mass[0], h.mass[n-1]
	for i, m := range h.mass {
		drift[i] = math.Abs(m - s.InitialMass)
	}
	s.MaxDrift = floats.Max(drift)
	if s.InitialMass != 0 {
		s.MaxRelativeDrift = s.MaxDrift / math.Abs(s.InitialMass)
	}
	iMax := floats.MaxIdx(h.speed)
	s.MaxSpeed, s.MaxSpeedStep = h.speed[iMax], h.step[iMax]
	s.FinalEnergy = h.energy[n-1]
	return
}

// ReadHistory parses a history CSV, the first row is the header.
func ReadHistory(r io.Reader) (h *History, err error) {
	var (
		records [][]string
		values  [4]float64
	)
	if records, err = csv.NewReader(r).ReadAll(); err != nil {
		return
	}
	h = &History{}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) != 5 {
			return nil, fmt.Errorf("row %d has %d fields, want 5", i, len(rec))
		}
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		for j := range values {
			if values[j], err = strconv.ParseFloat(rec[j+1], 64); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		h.Add(step, values[0], values[1], values[2], values[3])
	}
	return
}
