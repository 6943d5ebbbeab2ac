package types

import (
	"fmt"
	"sort"
	"strings"
)

// PatchType is the geometric type of a boundary patch
type PatchType uint8

const (
	PatchGeneric PatchType = iota
	PatchWall
	PatchSymmetryPlane
	// PatchEmpty marks a placeholder patch standing in for a spatial dimension
	// that is not solved, as in 1D and 2D cases. Its faces carry no geometry.
	PatchEmpty
)

var patchTypeNames = map[PatchType]string{
	PatchGeneric:       "patch",
	PatchWall:          "wall",
	PatchSymmetryPlane: "symmetryPlane",
	PatchEmpty:         "empty",
}

// PatchNameMap maps lower case patch type names to PatchType
var PatchNameMap = map[string]PatchType{
	"patch":         PatchGeneric,
	"generic":       PatchGeneric,
	"inlet":         PatchGeneric,
	"outlet":        PatchGeneric,
	"wall":          PatchWall,
	"symmetryplane": PatchSymmetryPlane,
	"symmetry":      PatchSymmetryPlane,
	"empty":         PatchEmpty,
}

func (pt PatchType) String() string {
	if name, ok := patchTypeNames[pt]; ok {
		return name
	}
	return fmt.Sprintf("PatchType(%d)", pt)
}

// IsDegenerate is true for patches that represent a removed dimension
func (pt PatchType) IsDegenerate() bool { return pt == PatchEmpty }

func NewPatchType(name string) (pt PatchType, err error) {
	var ok bool
	if pt, ok = PatchNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown patch type %q, valid types are %v", name, sortedKeys(PatchNameMap))
	}
	return
}

// BCType is the boundary condition carried by a field on one patch
type BCType uint8

const (
	// BCCalculated values are whatever the last operation produced
	BCCalculated BCType = iota
	BCFixedValue
	BCZeroGradient
	BCFixedGradient
	// BCExtrapolatedCalculated copies the adjacent cell value on correction
	BCExtrapolatedCalculated
	BCEmpty
)

var bcTypeNames = map[BCType]string{
	BCCalculated:             "calculated",
	BCFixedValue:             "fixedValue",
	BCZeroGradient:           "zeroGradient",
	BCFixedGradient:          "fixedGradient",
	BCExtrapolatedCalculated: "extrapolatedCalculated",
	BCEmpty:                  "empty",
}

var BCNameMap = map[string]BCType{
	"calculated":             BCCalculated,
	"fixedvalue":             BCFixedValue,
	"dirichlet":              BCFixedValue,
	"zerogradient":           BCZeroGradient,
	"zeroflux":               BCZeroGradient,
	"fixedgradient":          BCFixedGradient,
	"neumann":                BCFixedGradient,
	"extrapolatedcalculated": BCExtrapolatedCalculated,
	"empty":                  BCEmpty,
}

func (bc BCType) String() string {
	if name, ok := bcTypeNames[bc]; ok {
		return name
	}
	return fmt.Sprintf("BCType(%d)", bc)
}

func NewBCType(name string) (bc BCType, err error) {
	var ok bool
	if bc, ok = BCNameMap[strings.ToLower(strings.TrimSpace(name))]; !ok {
		err = fmt.Errorf("unknown boundary condition %q, valid conditions are %v", name, sortedKeys(BCNameMap))
	}
	return
}

func sortedKeys[V any](m map[string]V) (keys []string) {
	keys = make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}
