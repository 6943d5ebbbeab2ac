package field

import (
	"github.com/notargets/lesfilter/mesh"
)

// SurfaceScalarField holds one value per internal face and one per boundary
// face of every patch. Entries on empty patches are allocated and left zero.
type SurfaceScalarField struct {
	Name     string
	TimeName string
	Mesh     *mesh.Mesh
	Dims     Dimensions
	Internal []float64
	Boundary [][]float64
}

func NewSurfaceScalarField(name string, m *mesh.Mesh, dims Dimensions) (sf *SurfaceScalarField) {
	sf = &SurfaceScalarField{
		Name:     name,
		TimeName: m.TimeName,
		Mesh:     m,
		Dims:     combineDims(dims, nil, 1),
		Internal: make([]float64, m.NInternalFaces()),
		Boundary: make([][]float64, len(m.Patches)),
	}
	for pI, p := range m.Patches {
		sf.Boundary[pI] = make([]float64, p.Size)
	}
	return
}
