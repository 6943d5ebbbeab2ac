package filter

import (
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/lesfilter/config"
	"github.com/notargets/lesfilter/field"
	"github.com/notargets/lesfilter/fvc"
	"github.com/notargets/lesfilter/mesh"
	"github.com/notargets/lesfilter/types"
)

const tol = 1.e-10

func newMesh(t *testing.T, spec mesh.BlockSpec) *mesh.Mesh {
	t.Helper()
	m, err := mesh.NewBlockMesh(spec)
	require.NoError(t, err)
	return m
}

// box is a stretched 3D block with no empty patches
func box(t *testing.T) *mesh.Mesh {
	return newMesh(t, mesh.BlockSpec{
		Origin: r3.Vec{X: -1, Y: 0, Z: 2},
		Extent: r3.Vec{X: 2, Y: 1.5, Z: 0.4},
		Cells:  [3]int{5, 4, 3},
	})
}

// withBCs sets every non empty patch to bc and corrects the field
func withBCs[T types.Value[T]](t *testing.T, vf *field.VolField[T], bc types.BCType) *field.VolField[T] {
	t.Helper()
	var zero T
	for _, p := range vf.Mesh.Patches {
		if !p.Type.IsDegenerate() {
			require.NoError(t, vf.SetBC(p.Name, bc, zero))
		}
	}
	vf.CorrectBoundaryConditions()
	return vf
}

func wavy(x r3.Vec) types.Scalar {
	return types.Scalar(math.Sin(2*x.X) + x.Y*x.Y*math.Cos(3*x.Z) + 0.3*x.X*x.Y)
}

func TestDeltaSquared(t *testing.T) {
	for _, m := range []*mesh.Mesh{box(t), newMesh(t, mesh.Block1D(5, 5)), newMesh(t, mesh.Block2D(3, 4, 1, 2))} {
		ds := NewDeltaSquared(m)
		assert.Equal(t, "deltaSquared", ds.Name)
		assert.True(t, field.DimsEqual(field.DimLengthSqr, ds.Dims))
		for f, d := range m.Delta() {
			assert.InDelta(t, r3.Dot(d, d), ds.Internal[f], tol)
			assert.Greater(t, ds.Internal[f], 0.)
		}
		for pI, p := range m.Patches {
			require.Len(t, ds.Boundary[pI], p.Size)
			if p.Type.IsDegenerate() {
				for _, w := range ds.Boundary[pI] {
					assert.Equal(t, 0., w)
				}
				continue
			}
			for i, d := range m.PatchDelta(pI) {
				assert.InDelta(t, r3.Dot(d, d), ds.Boundary[pI][i], tol)
			}
		}
	}
	{ // Unit cells
		m := newMesh(t, mesh.Block1D(5, 5))
		ds := NewDeltaSquared(m)
		assert.InDeltaSlice(t, []float64{1, 1, 1, 1}, ds.Internal, tol)
		assert.InDelta(t, 0.25, ds.Boundary[0][0], tol)
		assert.InDelta(t, 0.25, ds.Boundary[1][0], tol)
	}
}

func TestOneDimensionalExample(t *testing.T) {
	m := newMesh(t, mesh.Block1D(5, 5))
	ramp := func() *field.VolField[types.Scalar] {
		return withBCs(t, field.NewVolField[types.Scalar]("f", m, field.Dimless).
			SetFromCentres(func(x r3.Vec) types.Scalar { return types.Scalar(math.Floor(x.X)) }),
			types.BCZeroGradient)
	}
	for _, tc := range []struct {
		d1, d2 float64
		want   []float64
	}{
		{1, 0, []float64{-1, 0, 0, 0, 1}},
		{0, 1, []float64{1, -1, 0, 1, -1}},
		{1, 1, []float64{0, -1, 0, 1, 0}},
		{0.5, -2, []float64{-2.5, 2, 0, -2, 2.5}},
	} {
		f, err := NewPolyLaplaceResidual(m, tc.d1, tc.d2)
		require.NoError(t, err)
		r, err := Residual(f, field.NewTmp(ramp()))
		require.NoError(t, err)
		assert.InDeltaSlice(t, tc.want, r.Cmpt(0), tol, "d1 = %g, d2 = %g", tc.d1, tc.d2)
		assert.Equal(t, "polyLaplaceResidual(f)", r.Name)
		assert.True(t, field.DimsEqual(field.Dimless, r.Dims))
	}
}

func TestSignLaw(t *testing.T) {
	m := box(t)
	f, err := NewPolyLaplaceResidual(m, 0.7, -0.3)
	require.NoError(t, err)
	vf := field.NewVolField[types.Scalar]("T", m, field.DimLength).SetFromCentres(wavy)
	require.NoError(t, vf.SetBC("xMin", types.BCFixedValue, 1))
	require.NoError(t, vf.SetBC("yMax", types.BCFixedGradient, -2))
	require.NoError(t, vf.SetBC("zMin", types.BCZeroGradient, 0))
	vf.CorrectBoundaryConditions()

	L1, err := fvc.Laplacian(f.DeltaSquared(), vf)
	require.NoError(t, err)
	L2, err := fvc.Laplacian(f.DeltaSquared(), L1)
	require.NoError(t, err)
	want, err := field.Combine(-0.7, L1, 0.3, L2)
	require.NoError(t, err)

	r, err := Residual(f, field.ConstRef(vf))
	require.NoError(t, err)
	assert.InDeltaSlice(t, want.Cmpt(0), r.Cmpt(0), tol)
	assert.True(t, field.DimsEqual(vf.Dims, r.Dims))
	assert.Greater(t, r.MaxAbs(), 1.e-3)
	assert.False(t, vf.Released())
}

func TestLinearity(t *testing.T) {
	var (
		m    = newMesh(t, mesh.Block2D(6, 5, 1.2, 1))
		a, b = 2.5, -0.75
	)
	f, err := NewPolyLaplaceResidual(m, 0.4, 0.1)
	require.NoError(t, err)
	u := withBCs(t, field.NewVolField[types.Vector]("u", m, field.Dimless).SetFromCentres(func(x r3.Vec) types.Vector {
		return types.Vector{math.Sin(3 * x.X), x.Y * x.X, math.Exp(x.Y)}
	}), types.BCZeroGradient)
	v := withBCs(t, field.NewVolField[types.Vector]("v", m, field.Dimless).SetFromCentres(func(x r3.Vec) types.Vector {
		return types.Vector{x.Y * x.Y, math.Cos(4 * x.Y), 1}
	}), types.BCZeroGradient)
	w := u.Copy("w").Scale(a)
	require.NoError(t, w.AddScaled(b, v))

	rw, err := Residual(f, field.ConstRef(w))
	require.NoError(t, err)
	ru, err := Residual(f, field.ConstRef(u))
	require.NoError(t, err)
	rv, err := Residual(f, field.ConstRef(v))
	require.NoError(t, err)
	sum, err := field.Combine(a, ru, b, rv)
	require.NoError(t, err)
	require.NoError(t, sum.Sub(rw))
	assert.InDelta(t, 0., sum.MaxAbs(), tol)
}

func TestConstantAnnihilation(t *testing.T) {
	for _, m := range []*mesh.Mesh{box(t), newMesh(t, mesh.Block2D(4, 4, 1, 1))} {
		f, err := NewPolyLaplaceResidual(m, 1.3, 0.9)
		require.NoError(t, err)
		{ // Zero gradient boundaries
			c := withBCs(t, field.NewUniformVolField("c", m, field.Dimless, types.Uniform[types.SymmTensor](4.2)),
				types.BCZeroGradient)
			r, err := Residual(f, field.NewTmp(c))
			require.NoError(t, err)
			assert.InDelta(t, 0., r.MaxAbs(), tol)
		}
		{ // Fixed boundary values equal to the constant
			c := withBCs(t, field.NewUniformVolField("c", m, field.Dimless, types.Scalar(-3)),
				types.BCFixedValue)
			for _, pf := range c.Boundary {
				for i := range pf.Values {
					pf.Values[i] = -3
				}
			}
			r, err := Residual(f, field.ConstRef(c))
			require.NoError(t, err)
			assert.InDelta(t, 0., r.MaxAbs(), tol)
		}
	}
}

func TestKindUniformity(t *testing.T) {
	m := newMesh(t, mesh.Block2D(5, 3, 1, 0.6))
	var (
		lf  LESFilter
		err error
	)
	lf, err = NewPolyLaplaceResidual(m, 0.2, 0.05)
	require.NoError(t, err)
	s := withBCs(t, field.NewVolField[types.Scalar]("s", m, field.Dimless).SetFromCentres(wavy), types.BCZeroGradient)
	spread := func(x r3.Vec) float64 { return float64(wavy(x)) }

	rs, err := Filter(lf, field.ConstRef(s))
	require.NoError(t, err)
	want := rs.Cmpt(0)
	same := cmpopts.EquateApprox(0, tol)

	rv, err := Filter(lf, field.NewTmp(withBCs(t, field.NewVolField[types.Vector]("v", m, field.Dimless).
		SetFromCentres(func(x r3.Vec) types.Vector { return types.Uniform[types.Vector](spread(x)) }),
		types.BCZeroGradient)))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.True(t, cmp.Equal(want, rv.Cmpt(i), same), cmp.Diff(want, rv.Cmpt(i)))
	}
	rst, err := Filter(lf, field.NewTmp(withBCs(t, field.NewVolField[types.SymmTensor]("st", m, field.Dimless).
		SetFromCentres(func(x r3.Vec) types.SymmTensor { return types.Uniform[types.SymmTensor](spread(x)) }),
		types.BCZeroGradient)))
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		assert.True(t, cmp.Equal(want, rst.Cmpt(i), same), cmp.Diff(want, rst.Cmpt(i)))
	}
	rt, err := Filter(lf, field.NewTmp(withBCs(t, field.NewVolField[types.Tensor]("t", m, field.Dimless).
		SetFromCentres(func(x r3.Vec) types.Tensor { return types.Uniform[types.Tensor](spread(x)) }),
		types.BCZeroGradient)))
	require.NoError(t, err)
	for i := 0; i < 9; i++ {
		assert.True(t, cmp.Equal(want, rt.Cmpt(i), same), cmp.Diff(want, rt.Cmpt(i)))
	}
}

func TestOwnership(t *testing.T) {
	m := newMesh(t, mesh.Block1D(4, 1))
	f, err := NewPolyLaplaceResidual(m, 1, 1)
	require.NoError(t, err)
	{ // An owned input is released, the result is independent of it
		vf := withBCs(t, field.NewVolField[types.Vector]("U", m, field.Dimless), types.BCZeroGradient)
		tmp := field.NewTmp(vf)
		r, err := f.FilterVector(tmp)
		require.NoError(t, err)
		assert.True(t, vf.Released())
		assert.False(t, tmp.Valid())
		assert.NoError(t, r.Check())
	}
	{ // A borrowed input keeps its values
		vf := withBCs(t, field.NewVolField[types.Scalar]("p", m, field.Dimless).SetFromCentres(wavy), types.BCZeroGradient)
		before := vf.Copy("p0")
		_, err := f.FilterScalar(field.ConstRef(vf))
		require.NoError(t, err)
		assert.False(t, vf.Released())
		assert.Equal(t, before.Internal, vf.Internal)
	}
	{ // Errors propagate and still consume the input
		other := field.NewVolField[types.Scalar]("q", newMesh(t, mesh.Block1D(4, 1)), field.Dimless)
		tmp := field.NewTmp(other)
		_, err := Residual(f, tmp)
		assert.ErrorIs(t, err, field.ErrMeshMismatch)
		assert.True(t, other.Released())

		dead := field.NewVolField[types.Scalar]("d", m, field.Dimless)
		dead.Release()
		_, err = Residual(f, field.ConstRef(dead))
		assert.ErrorIs(t, err, field.ErrSizeMismatch)
	}
	_, err = NewPolyLaplaceResidual(nil, 1, 1)
	assert.ErrorIs(t, err, fvc.ErrNoMesh)
}

func TestConcurrentFiltering(t *testing.T) {
	m := box(t)
	f, err := NewPolyLaplaceResidual(m, 0.3, 0.02)
	require.NoError(t, err)
	newInput := func() *field.VolField[types.Scalar] {
		return withBCs(t, field.NewVolField[types.Scalar]("s", m, field.Dimless).SetFromCentres(wavy), types.BCZeroGradient)
	}
	want, err := Residual(f, field.NewTmp(newInput()))
	require.NoError(t, err)

	var (
		n       = 8
		inputs  = make([]*field.VolField[types.Scalar], n)
		results = make([]*field.VolField[types.Scalar], n)
		errs    = make([]error, n)
		wg      sync.WaitGroup
	)
	for i := range inputs {
		inputs[i] = newInput()
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Residual(f, field.NewTmp(inputs[i]))
		}(i)
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, want.Internal, results[i].Internal)
	}
}

func TestConstructFromDict(t *testing.T) {
	m := newMesh(t, mesh.Block1D(5, 5))
	{ // Coefficients from the Coeffs sub dictionary
		dict := config.NewDict("LESProperties", map[string]interface{}{
			"d1": 9,
			"polyLaplaceResidualCoeffs": map[string]interface{}{
				"d1": 0.1, "d2": 0.01,
			},
		})
		f, err := NewPolyLaplaceResidualFromDict(m, dict)
		require.NoError(t, err)
		assert.Equal(t, Coeffs{D1: 0.1, D2: 0.01}, f.Coeffs())
		assert.Equal(t, PolyLaplaceResidualTypeName, f.TypeName())
		assert.Same(t, m, f.Mesh())
	}
	{ // Falls back to the top level
		f, err := NewPolyLaplaceResidualFromDict(m, config.NewDict("top", map[string]interface{}{
			"d1": "1e-1", "d2": 2,
		}))
		require.NoError(t, err)
		assert.Equal(t, Coeffs{D1: 0.1, D2: 2}, f.Coeffs())
	}
	{ // Missing and malformed coefficients are errors
		_, err := NewPolyLaplaceResidualFromDict(m, config.NewDict("top", map[string]interface{}{"d1": 1}))
		assert.ErrorIs(t, err, config.ErrMissingKey)
		_, err = NewPolyLaplaceResidualFromDict(m, config.NewDict("top", map[string]interface{}{"d1": true, "d2": 1}))
		assert.ErrorIs(t, err, config.ErrNotScalar)
		_, err = NewPolyLaplaceResidualFromDict(m, config.NewDict("top", map[string]interface{}{
			"d1": 1, "d2": 1,
			"polyLaplaceResidualCoeffs": map[string]interface{}{"d2": "big"},
		}))
		assert.ErrorIs(t, err, config.ErrMissingKey)
		// A Coeffs entry that is not a dictionary does not fall back to the top level
		_, err = NewPolyLaplaceResidualFromDict(m, config.NewDict("top", map[string]interface{}{
			"d1": 1, "d2": 2, "polyLaplaceResidualCoeffs": 5,
		}))
		assert.ErrorIs(t, err, config.ErrNotDict)
	}
	{ // Both construction paths build the same weights
		fd, err := NewPolyLaplaceResidualFromDict(m, config.NewDict("top", map[string]interface{}{"d1": 1, "d2": 0}))
		require.NoError(t, err)
		fe, err := NewPolyLaplaceResidual(m, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, fe.DeltaSquared().Internal, fd.DeltaSquared().Internal)
		assert.Equal(t, fe.DeltaSquared().Boundary, fd.DeltaSquared().Boundary)
	}
}

func TestRead(t *testing.T) {
	m := newMesh(t, mesh.Block1D(5, 5))
	f, err := NewPolyLaplaceResidual(m, 1, 0)
	require.NoError(t, err)
	ds := f.DeltaSquared()
	ramp := func() *field.Tmp[types.Scalar] {
		return field.NewTmp(withBCs(t, field.NewVolField[types.Scalar]("f", m, field.Dimless).
			SetFromCentres(func(x r3.Vec) types.Scalar { return types.Scalar(math.Floor(x.X)) }),
			types.BCZeroGradient))
	}
	r, err := f.FilterScalar(ramp())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-1, 0, 0, 0, 1}, r.Cmpt(0), tol)

	require.NoError(t, f.Read(config.NewDict("update", map[string]interface{}{
		"polyLaplaceResidualCoeffs": map[string]interface{}{"d1": 0, "d2": 1},
	})))
	assert.Equal(t, Coeffs{D1: 0, D2: 1}, f.Coeffs())
	assert.Same(t, ds, f.DeltaSquared())
	r, err = f.FilterScalar(ramp())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, -1, 0, 1, -1}, r.Cmpt(0), tol)

	// A failed read keeps the previous coefficients
	err = f.Read(config.NewDict("bad", map[string]interface{}{"d1": 5, "d2": "x"}))
	assert.ErrorIs(t, err, config.ErrNotScalar)
	assert.Equal(t, Coeffs{D1: 0, D2: 1}, f.Coeffs())
}

func TestRegistry(t *testing.T) {
	var (
		m   = newMesh(t, mesh.Block1D(3, 3))
		reg = NewRegistry()
	)
	assert.Equal(t, []string{PolyLaplaceResidualTypeName}, reg.Names())

	dict := config.NewDict("LESProperties", map[string]interface{}{
		"filter": "polyLaplaceResidual",
		"polyLaplaceResidualCoeffs": map[string]interface{}{
			"d1": 0.5, "d2": 0.25,
		},
	})
	lf, err := reg.NewFromDict(m, dict)
	require.NoError(t, err)
	require.IsType(t, &PolyLaplaceResidual{}, lf)
	assert.Equal(t, Coeffs{D1: 0.5, D2: 0.25}, lf.(*PolyLaplaceResidual).Coeffs())

	_, err = reg.New("simple", m, dict)
	assert.ErrorIs(t, err, ErrUnknownFilter)
	_, err = reg.NewFromDict(m, config.NewDict("none", map[string]interface{}{"d1": 1, "d2": 1}))
	assert.ErrorIs(t, err, config.ErrMissingKey)

	err = reg.Register(PolyLaplaceResidualTypeName, nil)
	assert.ErrorIs(t, err, ErrDuplicateFilter)
	require.NoError(t, reg.Register("doubled", func(m *mesh.Mesh, dict *config.Dict) (LESFilter, error) {
		return NewPolyLaplaceResidual(m, 2, 0)
	}))
	assert.Equal(t, []string{"doubled", PolyLaplaceResidualTypeName}, reg.Names())
	lf, err = reg.New("doubled", m, nil)
	require.NoError(t, err)
	assert.Equal(t, Coeffs{D1: 2}, lf.(*PolyLaplaceResidual).Coeffs())

	// Registries are independent of each other
	assert.Len(t, NewRegistry().Names(), 1)
}
