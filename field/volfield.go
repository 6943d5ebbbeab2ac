package field

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/lesfilter/mesh"
	"github.com/notargets/lesfilter/types"
)

var (
	ErrMeshMismatch = errors.New("fields are defined on different meshes")
	ErrSizeMismatch = errors.New("field size does not match mesh")
	ErrDimsMismatch = errors.New("dimensions do not match")
	ErrBoundaryType = errors.New("invalid boundary condition for patch")
)

// PatchField holds the boundary values of a field on one patch. Values has one
// entry per patch face, except on empty patches where it has none.
type PatchField[T types.Value[T]] struct {
	Type     types.BCType
	Values   []T
	Gradient []T // Normal gradient, used by fixedGradient only
}

// VolField is a cell centred field with boundary values on every patch
type VolField[T types.Value[T]] struct {
	Name     string
	TimeName string
	Mesh     *mesh.Mesh
	Dims     Dimensions
	Internal []T
	Boundary []*PatchField[T]
	released bool
}

// NewVolField makes a zero valued field. Patches of type empty carry the empty
// condition, all other patches are calculated.
func NewVolField[T types.Value[T]](name string, m *mesh.Mesh, dims Dimensions) (vf *VolField[T]) {
	vf = &VolField[T]{
		Name:     name,
		TimeName: m.TimeName,
		Mesh:     m,
		Dims:     combineDims(dims, nil, 1),
		Internal: make([]T, m.NCells()),
		Boundary: make([]*PatchField[T], len(m.Patches)),
	}
	for pI, p := range m.Patches {
		if p.Type.IsDegenerate() {
			vf.Boundary[pI] = &PatchField[T]{Type: types.BCEmpty}
			continue
		}
		vf.Boundary[pI] = &PatchField[T]{
			Type:   types.BCCalculated,
			Values: make([]T, p.Size),
		}
	}
	return
}

// NewUniformVolField makes a field holding val in every cell and on every
// non empty boundary face
func NewUniformVolField[T types.Value[T]](name string, m *mesh.Mesh, dims Dimensions, val T) (vf *VolField[T]) {
	vf = NewVolField[T](name, m, dims)
	for c := range vf.Internal {
		vf.Internal[c] = val
	}
	for _, pf := range vf.Boundary {
		for i := range pf.Values {
			pf.Values[i] = val
		}
	}
	return
}

// SetFromCentres sets every cell value from its centre, and the boundary
// values of non empty patches from the face centres
func (vf *VolField[T]) SetFromCentres(fn func(x r3.Vec) T) *VolField[T] {
	for c := range vf.Internal {
		vf.Internal[c] = fn(vf.Mesh.C[c])
	}
	for pI, pf := range vf.Boundary {
		start := vf.Mesh.Patches[pI].Start
		for i := range pf.Values {
			pf.Values[i] = fn(vf.Mesh.Cf[start+i])
		}
	}
	return vf
}

// SetBC assigns a boundary condition to the named patch. ref is the fixed
// value for fixedValue, the normal gradient for fixedGradient, and is ignored
// otherwise. Empty patches accept only the empty condition and the empty
// condition is accepted only on empty patches.
func (vf *VolField[T]) SetBC(patchName string, bc types.BCType, ref T) (err error) {
	var (
		p *mesh.Patch
	)
	if p, err = vf.Mesh.PatchByName(patchName); err != nil {
		return
	}
	var (
		pf    = vf.Boundary[p.Index]
		empty = p.Type.IsDegenerate()
	)
	if empty != (bc == types.BCEmpty) {
		err = fmt.Errorf("%w: %s on %s patch %s", ErrBoundaryType, bc, p.Type, p.Name)
		return
	}
	pf.Type = bc
	pf.Gradient = nil
	switch bc {
	case types.BCFixedValue:
		for i := range pf.Values {
			pf.Values[i] = ref
		}
	case types.BCFixedGradient:
		pf.Gradient = make([]T, p.Size)
		for i := range pf.Gradient {
			pf.Gradient[i] = ref
		}
	}
	return
}

// CorrectBoundaryConditions updates the boundary values that depend on the
// adjacent cell values. Calling it twice gives the same result as once.
func (vf *VolField[T]) CorrectBoundaryConditions() {
	for pI, pf := range vf.Boundary {
		switch pf.Type {
		case types.BCZeroGradient, types.BCExtrapolatedCalculated:
			for i, c := range vf.Mesh.FaceCells(pI) {
				pf.Values[i] = vf.Internal[c]
			}
		case types.BCFixedGradient:
			dc := vf.Mesh.PatchDeltaCoeffs(pI)
			for i, c := range vf.Mesh.FaceCells(pI) {
				pf.Values[i] = vf.Internal[c].Add(pf.Gradient[i].Scale(1. / dc[i]))
			}
		}
	}
}

// Check verifies the field storage matches its mesh
func (vf *VolField[T]) Check() (err error) {
	if vf.Mesh == nil {
		return fmt.Errorf("%w: field %s has no mesh", ErrSizeMismatch, vf.Name)
	}
	if vf.released {
		return fmt.Errorf("%w: field %s has been released", ErrSizeMismatch, vf.Name)
	}
	if len(vf.Internal) != vf.Mesh.NCells() {
		return fmt.Errorf("%w: field %s has %d cell values for %d cells",
			ErrSizeMismatch, vf.Name, len(vf.Internal), vf.Mesh.NCells())
	}
	if len(vf.Boundary) != len(vf.Mesh.Patches) {
		return fmt.Errorf("%w: field %s has %d patch fields for %d patches",
			ErrSizeMismatch, vf.Name, len(vf.Boundary), len(vf.Mesh.Patches))
	}
	for pI, p := range vf.Mesh.Patches {
		var (
			pf   = vf.Boundary[pI]
			want = p.Size
		)
		if p.Type.IsDegenerate() {
			want = 0
		}
		if len(pf.Values) != want {
			return fmt.Errorf("%w: field %s has %d values on patch %s of %d faces",
				ErrSizeMismatch, vf.Name, len(pf.Values), p.Name, want)
		}
	}
	return
}

func (vf *VolField[T]) compatible(o *VolField[T]) (err error) {
	if vf.Mesh != o.Mesh {
		return fmt.Errorf("%w: %s and %s", ErrMeshMismatch, vf.Name, o.Name)
	}
	if !DimsEqual(vf.Dims, o.Dims) {
		return fmt.Errorf("%w: %s %v and %s %v", ErrDimsMismatch, vf.Name, vf.Dims, o.Name, o.Dims)
	}
	if err = vf.Check(); err != nil {
		return
	}
	return o.Check()
}

// Scale multiplies the cell and boundary values by a, in place
func (vf *VolField[T]) Scale(a float64) *VolField[T] {
	for c := range vf.Internal {
		vf.Internal[c] = vf.Internal[c].Scale(a)
	}
	for _, pf := range vf.Boundary {
		for i := range pf.Values {
			pf.Values[i] = pf.Values[i].Scale(a)
		}
	}
	return vf
}

func (vf *VolField[T]) Negate() *VolField[T] { return vf.Scale(-1) }

// AddScaled adds a*o to the receiver in place
func (vf *VolField[T]) AddScaled(a float64, o *VolField[T]) (err error) {
	if err = vf.compatible(o); err != nil {
		return
	}
	for c := range vf.Internal {
		vf.Internal[c] = vf.Internal[c].Add(o.Internal[c].Scale(a))
	}
	for pI, pf := range vf.Boundary {
		for i := range pf.Values {
			pf.Values[i] = pf.Values[i].Add(o.Boundary[pI].Values[i].Scale(a))
		}
	}
	return
}

func (vf *VolField[T]) Add(o *VolField[T]) error { return vf.AddScaled(1, o) }
func (vf *VolField[T]) Sub(o *VolField[T]) error { return vf.AddScaled(-1, o) }

// Combine returns the new field a*x + b*y with calculated boundaries
func Combine[T types.Value[T]](a float64, x *VolField[T], b float64, y *VolField[T]) (r *VolField[T], err error) {
	if err = x.compatible(y); err != nil {
		return
	}
	r = NewVolField[T](fmt.Sprintf("(%g*%s+%g*%s)", a, x.Name, b, y.Name), x.Mesh, x.Dims)
	for c := range r.Internal {
		r.Internal[c] = x.Internal[c].Scale(a).Add(y.Internal[c].Scale(b))
	}
	for pI, pf := range r.Boundary {
		for i := range pf.Values {
			pf.Values[i] = x.Boundary[pI].Values[i].Scale(a).Add(y.Boundary[pI].Values[i].Scale(b))
		}
	}
	return
}

// Copy returns a deep copy, boundary conditions included
func (vf *VolField[T]) Copy(name string) (r *VolField[T]) {
	r = &VolField[T]{
		Name:     name,
		TimeName: vf.TimeName,
		Mesh:     vf.Mesh,
		Dims:     combineDims(vf.Dims, nil, 1),
		Internal: append([]T(nil), vf.Internal...),
		Boundary: make([]*PatchField[T], len(vf.Boundary)),
		released: vf.released,
	}
	for pI, pf := range vf.Boundary {
		r.Boundary[pI] = &PatchField[T]{
			Type:     pf.Type,
			Values:   append([]T(nil), pf.Values...),
			Gradient: append([]T(nil), pf.Gradient...),
		}
	}
	return
}

// Release drops the field storage. A released field fails Check.
func (vf *VolField[T]) Release() {
	vf.Internal = nil
	vf.Boundary = nil
	vf.released = true
}

func (vf *VolField[T]) Released() bool { return vf.released }

// Component extracts component i as a scalar field with the same boundary
// conditions
func (vf *VolField[T]) Component(i int) (sf *VolField[types.Scalar]) {
	var (
		cname = types.KindOf[T]().CmptNames()[i]
		name  = vf.Name
	)
	if cname != "" {
		name += "." + cname
	}
	sf = &VolField[types.Scalar]{
		Name:     name,
		TimeName: vf.TimeName,
		Mesh:     vf.Mesh,
		Dims:     combineDims(vf.Dims, nil, 1),
		Internal: make([]types.Scalar, len(vf.Internal)),
		Boundary: make([]*PatchField[types.Scalar], len(vf.Boundary)),
	}
	for c, v := range vf.Internal {
		sf.Internal[c] = types.Scalar(v.Cmpt(i))
	}
	cmpts := func(vals []T) (s []types.Scalar) {
		if vals == nil {
			return
		}
		s = make([]types.Scalar, len(vals))
		for k, v := range vals {
			s[k] = types.Scalar(v.Cmpt(i))
		}
		return
	}
	for pI, pf := range vf.Boundary {
		sf.Boundary[pI] = &PatchField[types.Scalar]{
			Type:     pf.Type,
			Values:   cmpts(pf.Values),
			Gradient: cmpts(pf.Gradient),
		}
	}
	return
}

// Cmpt returns the cell values of component i
func (vf *VolField[T]) Cmpt(i int) (vals []float64) {
	vals = make([]float64, len(vf.Internal))
	for c, v := range vf.Internal {
		vals[c] = v.Cmpt(i)
	}
	return
}
