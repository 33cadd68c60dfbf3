package utils

import (
	"strconv"
	"strings"
)

type R1 struct {
	Max int
}

func NewR1(imax int) R1 {
	return R1{imax}
}

// R2 addresses a row-major lattice of Xr.Max columns by Yr.Max rows, where the cell at
// (x, y) has index x + Xr.Max*y.
type R2 struct {
	Xr, Yr R1
}

func NewR2(nx, ny int) R2 {
	return R2{
		NewR1(nx),
		NewR1(ny),
	}
}

// Range returns the cell indices of the rectangle selected by the two dimension specifiers,
// ordered by row then column. Specifiers outside the lattice are clipped to it.
func (r R2) Range(dimX, dimY interface{}) (I Index) {
	var (
		x1, x2 = clipDim(dimX, r.Xr.Max)
		y1, y2 = clipDim(dimY, r.Yr.Max)
		nx     = r.Xr.Max
	)
	if x2 <= x1 || y2 <= y1 {
		return Index{}
	}
	I = NewIndex((x2 - x1) * (y2 - y1))
	var ind int
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			I[ind] = x + nx*y // Row Major
			ind++
		}
	}
	return
}

func clipDim(dimI interface{}, max int) (i1, i2 int) {
	i1, i2 = ParseDim(dimI, max)
	if i1 < 0 {
		i1 = 0
	}
	if i2 > max {
		i2 = max
	}
	return
}

func ParseDim(dimI interface{}, max int) (i1, i2 int) {
	/*
		Converts phrases including:
			":"   = full range, from 0 to max (loop indexing)
			"end" = last index, from max-1, max
			"N"   = middle index, from N-1, N
		   	N     = middle index, from N-1, N
		    "2:N" = range, from 2 to N (loop indexing)
		   	":N"  = range, from 0 to N (loop indexing)
		   	"N:"  = range, from N to max-1 (loop indexing)
	*/
	switch dim := dimI.(type) {
	case string:
		dim = strings.TrimSpace(dim)
		switch dim {
		case "end":
			i1, i2 = max-1, max
		case ":", "":
			i1, i2 = 0, max
		default:
			i1, i2 = parseRange(dim, max)
		}
	case int:
		i1, i2 = dim, dim+1
	}
	return
}

func parseRange(dim string, max int) (i1, i2 int) {
	var (
		splits = strings.Split(dim, ":")
		err    error
	)
	if i1, err = strconv.Atoi(splits[0]); err != nil {
		i1 = 0
	}
	if len(splits) == 1 {
		i2 = i1 + 1
		return
	}
	if i2, err = strconv.Atoi(splits[1]); err != nil {
		i2 = max
	}
	if i2 == i1 {
		i2 = i1 + 1
	}
	return
}
