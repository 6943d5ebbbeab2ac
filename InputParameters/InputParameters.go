package InputParameters

import (
	"fmt"
	"math"
	"sort"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/lesfilter/config"
	"github.com/notargets/lesfilter/mesh"
	"github.com/notargets/lesfilter/types"
)

// Parameters obtained from the YAML case file
type CaseParameters struct {
	Title  string                 `json:"Title"`
	Mesh   MeshParameters         `json:"Mesh"`
	Filter map[string]interface{} `json:"Filter"` // Filter dictionary, selected by its "filter" keyword
	Fields []FieldParameters      `json:"Fields"`
}

// MeshParameters describe either an SU2 mesh file or a uniform block
type MeshParameters struct {
	File       string            `json:"File"`
	Origin     [3]float64        `json:"Origin"`
	Extent     [3]float64        `json:"Extent"`
	Cells      [3]int            `json:"Cells"`
	PatchTypes map[string]string `json:"PatchTypes"` // Patch or marker name to patch type
}

type FieldParameters struct {
	Name       string                  `json:"Name"`
	Kind       string                  `json:"Kind"` // scalar, vector, symmTensor or tensor
	Dimensions map[string]int          `json:"Dimensions"`
	Profile    ProfileParameters       `json:"Profile"`
	BCs        map[string]BCParameters `json:"BCs"` // Keyed by patch name
}

// ProfileParameters set the initial values as Value times a shape s(x):
//
//	constant: s = 1
//	linear:   s = Direction.x + Shift
//	sine:     s = sin(WaveNumber*Direction.x + Shift)
type ProfileParameters struct {
	Type       string     `json:"Type"`
	Value      []float64  `json:"Value"` // One entry per component, or one for all
	Direction  [3]float64 `json:"Direction"`
	WaveNumber float64    `json:"WaveNumber"`
	Shift      float64    `json:"Shift"`
}

type BCParameters struct {
	Type  string    `json:"Type"`
	Value []float64 `json:"Value"` // Fixed value or gradient, one entry per component or one for all
}

func (cp *CaseParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, cp)
}

func (cp *CaseParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", cp.Title)
	if cp.Mesh.File != "" {
		fmt.Printf("[%s]\t\t= Mesh File\n", cp.Mesh.File)
	} else {
		fmt.Printf("%v\t\t= Mesh Cells\n", cp.Mesh.Cells)
		fmt.Printf("%v\t= Mesh Extent\n", cp.Mesh.Extent)
	}
	for _, key := range sortedKeys(cp.Mesh.PatchTypes) {
		fmt.Printf("PatchTypes[%s] = %s\n", key, cp.Mesh.PatchTypes[key])
	}
	for _, key := range sortedKeys(cp.Filter) {
		fmt.Printf("Filter[%s] = %v\n", key, cp.Filter[key])
	}
	for _, fp := range cp.Fields {
		fmt.Printf("Field %s [%s] profile %s %v\n", fp.Name, fp.Kind, fp.Profile.Type, fp.Profile.Value)
		for _, key := range sortedKeys(fp.BCs) {
			fmt.Printf("\tBCs[%s] = %s %v\n", key, fp.BCs[key].Type, fp.BCs[key].Value)
		}
	}
}

func (cp *CaseParameters) FilterDict() *config.Dict {
	return config.NewDict("Filter", cp.Filter)
}

func (mp *MeshParameters) PatchTypeMap() (ptm map[string]types.PatchType, err error) {
	ptm = make(map[string]types.PatchType, len(mp.PatchTypes))
	for name, tname := range mp.PatchTypes {
		if ptm[name], err = types.NewPatchType(tname); err != nil {
			err = fmt.Errorf("patch %s: %w", name, err)
			return
		}
	}
	return
}

// BlockSpec converts the block description, applying PatchTypes to the block
// patch names
func (mp *MeshParameters) BlockSpec() (spec mesh.BlockSpec, err error) {
	var (
		ptm map[string]types.PatchType
	)
	if ptm, err = mp.PatchTypeMap(); err != nil {
		return
	}
	spec = mesh.BlockSpec{
		Origin: r3.Vec{X: mp.Origin[0], Y: mp.Origin[1], Z: mp.Origin[2]},
		Extent: r3.Vec{X: mp.Extent[0], Y: mp.Extent[1], Z: mp.Extent[2]},
		Cells:  mp.Cells,
	}
	known := make(map[string]bool)
	for side, name := range mesh.BlockPatchNames {
		spec.PatchTypes[side] = ptm[name]
		known[name] = true
	}
	for name := range ptm {
		if !known[name] {
			err = fmt.Errorf("block mesh has no patch %s, patches are %v", name, mesh.BlockPatchNames)
			return
		}
	}
	return
}

// BuildMesh reads meshFile if given, else Mesh.File, else builds the block
func (mp *MeshParameters) BuildMesh(meshFile string) (m *mesh.Mesh, err error) {
	if meshFile == "" {
		meshFile = mp.File
	}
	if meshFile != "" {
		var (
			ptm map[string]types.PatchType
		)
		if ptm, err = mp.PatchTypeMap(); err != nil {
			return
		}
		return mesh.ReadSU2(meshFile, ptm)
	}
	var (
		spec mesh.BlockSpec
	)
	if spec, err = mp.BlockSpec(); err != nil {
		return
	}
	return mesh.NewBlockMesh(spec)
}

// Components expands vals to n components, broadcasting a single value
func Components(vals []float64, n int) (c []float64, err error) {
	switch len(vals) {
	case 0:
		c = make([]float64, n)
	case 1:
		c = make([]float64, n)
		for i := range c {
			c[i] = vals[0]
		}
	case n:
		c = append([]float64(nil), vals...)
	default:
		err = fmt.Errorf("have %d values, need 1 or %d", len(vals), n)
	}
	return
}

// Evaluator returns the component values of the profile at a point
func (pp ProfileParameters) Evaluator(nCmpts int) (fn func(x r3.Vec) []float64, err error) {
	var (
		vals  []float64
		dir   = r3.Vec{X: pp.Direction[0], Y: pp.Direction[1], Z: pp.Direction[2]}
		shape func(x r3.Vec) float64
	)
	if vals, err = Components(pp.Value, nCmpts); err != nil {
		err = fmt.Errorf("profile: %w", err)
		return
	}
	switch pp.Type {
	case "", "constant":
		shape = func(x r3.Vec) float64 { return 1 }
	case "linear":
		shape = func(x r3.Vec) float64 { return r3.Dot(dir, x) + pp.Shift }
	case "sine":
		shape = func(x r3.Vec) float64 { return math.Sin(pp.WaveNumber*r3.Dot(dir, x) + pp.Shift) }
	default:
		err = fmt.Errorf("unknown profile type %q, valid types are [constant linear sine]", pp.Type)
		return
	}
	fn = func(x r3.Vec) (v []float64) {
		s := shape(x)
		v = make([]float64, nCmpts)
		for i := range v {
			v[i] = vals[i] * s
		}
		return
	}
	return
}

func (bp BCParameters) Parse(nCmpts int) (bc types.BCType, ref []float64, err error) {
	if bc, err = types.NewBCType(bp.Type); err != nil {
		return
	}
	ref, err = Components(bp.Value, nCmpts)
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
