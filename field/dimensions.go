package field

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/unit"
)

// Dimensions are the physical dimensions of a field as powers of SI base
// dimensions. A nil or empty Dimensions is dimensionless.
type Dimensions = unit.Dimensions

var (
	Dimless      = Dimensions{}
	DimLength    = Dimensions{unit.LengthDim: 1}
	DimLengthSqr = Dimensions{unit.LengthDim: 2}
)

var dimensionNames = map[string]unit.Dimension{
	"mass":              unit.MassDim,
	"length":            unit.LengthDim,
	"time":              unit.TimeDim,
	"temperature":       unit.TemperatureDim,
	"moles":             unit.MoleDim,
	"current":           unit.CurrentDim,
	"luminousintensity": unit.LuminousIntensityDim,
	"angle":             unit.AngleDim,
}

// ParseDimensions converts a map like {length: 1, time: -1} to Dimensions
func ParseDimensions(powers map[string]int) (d Dimensions, err error) {
	d = Dimensions{}
	for name, power := range powers {
		dim, ok := dimensionNames[strings.ToLower(name)]
		if !ok {
			keys := make([]string, 0, len(dimensionNames))
			for k := range dimensionNames {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			err = fmt.Errorf("unknown dimension %q, valid dimensions are %v", name, keys)
			return
		}
		if power != 0 {
			d[dim] += power
		}
	}
	return
}

func MulDims(a, b Dimensions) Dimensions {
	return combineDims(a, b, 1)
}

func DivDims(a, b Dimensions) Dimensions {
	return combineDims(a, b, -1)
}

func combineDims(a, b Dimensions, sign int) (r Dimensions) {
	r = Dimensions{}
	for k, v := range a {
		r[k] += v
	}
	for k, v := range b {
		r[k] += sign * v
	}
	for k, v := range r {
		if v == 0 {
			delete(r, k)
		}
	}
	return
}

// DimsEqual compares dimensions ignoring zero powers
func DimsEqual(a, b Dimensions) bool {
	return len(combineDims(a, b, -1)) == 0
}
