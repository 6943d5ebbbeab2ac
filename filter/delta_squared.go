package filter

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/lesfilter/field"
	"github.com/notargets/lesfilter/mesh"
)

// NewDeltaSquared builds the squared local spacing on every face: the squared
// length of the mesh delta on internal faces and of the patch delta on
// boundary faces. Faces of empty patches stand for a dimension that is not
// solved and are left at zero.
func NewDeltaSquared(m *mesh.Mesh) (ds *field.SurfaceScalarField) {
	ds = field.NewSurfaceScalarField("deltaSquared", m, field.DimLengthSqr)
	for f, d := range m.Delta() {
		ds.Internal[f] = r3.Norm2(d)
	}
	for pI, p := range m.Patches {
		if p.Type.IsDegenerate() {
			continue
		}
		for i, d := range m.PatchDelta(pI) {
			ds.Boundary[pI][i] = r3.Norm2(d)
		}
	}
	return
}
