package filter

import (
	"fmt"

	"github.com/notargets/lesfilter/config"
	"github.com/notargets/lesfilter/field"
	"github.com/notargets/lesfilter/fvc"
	"github.com/notargets/lesfilter/mesh"
	"github.com/notargets/lesfilter/types"
)

const PolyLaplaceResidualTypeName = "polyLaplaceResidual"

// Coeffs weight the first and second Laplacian terms
type Coeffs struct {
	D1, D2 float64
}

// PolyLaplaceResidual estimates the unresolved part of a field as
//
//	-(d1*L1 + d2*L2),  L1 = laplacian(deltaSquared, f),  L2 = laplacian(deltaSquared, L1)
//
// where deltaSquared is the squared local spacing on each face.
//
// Filtering only reads the filter, so several goroutines may filter
// independent fields with one filter at the same time. Read writes the
// coefficients and must not run while any filtering is in progress.
type PolyLaplaceResidual struct {
	mesh         *mesh.Mesh
	coeffs       Coeffs
	deltaSquared *field.SurfaceScalarField
	laplacian    *fvc.LaplacianOperator
}

func NewPolyLaplaceResidual(m *mesh.Mesh, d1, d2 float64) (f *PolyLaplaceResidual, err error) {
	if m == nil {
		err = fmt.Errorf("%w: %s filter needs a mesh", fvc.ErrNoMesh, PolyLaplaceResidualTypeName)
		return
	}
	f = &PolyLaplaceResidual{
		mesh:         m,
		coeffs:       Coeffs{D1: d1, D2: d2},
		deltaSquared: NewDeltaSquared(m),
	}
	if f.laplacian, err = fvc.NewLaplacianOperator(f.deltaSquared); err != nil {
		return nil, err
	}
	return
}

// NewPolyLaplaceResidualFromDict reads d1 and d2 from the
// polyLaplaceResidualCoeffs sub dictionary of dict, or from dict itself when
// there is no such sub dictionary
func NewPolyLaplaceResidualFromDict(m *mesh.Mesh, dict *config.Dict) (f *PolyLaplaceResidual, err error) {
	var (
		c Coeffs
	)
	if c, err = readCoeffs(dict); err != nil {
		return
	}
	return NewPolyLaplaceResidual(m, c.D1, c.D2)
}

func readCoeffs(dict *config.Dict) (c Coeffs, err error) {
	var (
		coeffsDict *config.Dict
	)
	if coeffsDict, err = dict.OptionalSubDict(PolyLaplaceResidualTypeName + "Coeffs"); err != nil {
		return
	}
	if c.D1, err = coeffsDict.LookupScalar("d1"); err != nil {
		return
	}
	c.D2, err = coeffsDict.LookupScalar("d2")
	return
}

func (f *PolyLaplaceResidual) TypeName() string { return PolyLaplaceResidualTypeName }

// Read replaces d1 and d2. The coefficients are unchanged if either fails to
// parse. deltaSquared is kept as the mesh does not move.
func (f *PolyLaplaceResidual) Read(dict *config.Dict) (err error) {
	var (
		c Coeffs
	)
	if c, err = readCoeffs(dict); err != nil {
		return
	}
	f.coeffs = c
	return
}

func (f *PolyLaplaceResidual) Coeffs() Coeffs { return f.coeffs }

func (f *PolyLaplaceResidual) Mesh() *mesh.Mesh { return f.mesh }

func (f *PolyLaplaceResidual) DeltaSquared() *field.SurfaceScalarField { return f.deltaSquared }

// Residual filters the field held by t. The boundary values of the input are
// corrected first. An owned input is released once L1 is formed, and L1 and
// L2 are released once the result is formed.
func Residual[T types.Value[T]](f *PolyLaplaceResidual, t *field.Tmp[T]) (r *field.VolField[T], err error) {
	var (
		c      = f.coeffs
		vf     = t.Get()
		name   = vf.Name
		L1, L2 *field.VolField[T]
	)
	if err = vf.Check(); err != nil {
		t.Clear()
		return
	}
	vf.CorrectBoundaryConditions()
	L1, err = fvc.Apply(f.laplacian, vf)
	t.Clear()
	if err != nil {
		return
	}
	tL1 := field.NewTmp(L1)
	if L2, err = fvc.Apply(f.laplacian, L1); err != nil {
		tL1.Clear()
		return
	}
	tL2 := field.NewTmp(L2)
	r, err = field.Combine(c.D1, L1, c.D2, L2)
	tL1.Clear()
	tL2.Clear()
	if err != nil {
		return
	}
	r.Negate()
	r.Name = PolyLaplaceResidualTypeName + "(" + name + ")"
	return
}

func (f *PolyLaplaceResidual) FilterScalar(t *field.Tmp[types.Scalar]) (*field.VolField[types.Scalar], error) {
	return Residual(f, t)
}

func (f *PolyLaplaceResidual) FilterVector(t *field.Tmp[types.Vector]) (*field.VolField[types.Vector], error) {
	return Residual(f, t)
}

func (f *PolyLaplaceResidual) FilterSymmTensor(t *field.Tmp[types.SymmTensor]) (*field.VolField[types.SymmTensor], error) {
	return Residual(f, t)
}

func (f *PolyLaplaceResidual) FilterTensor(t *field.Tmp[types.Tensor]) (*field.VolField[types.Tensor], error) {
	return Residual(f, t)
}
