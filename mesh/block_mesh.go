package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/lesfilter/types"
)

// BlockPatchNames are the patch names of a block mesh, in patch order
var BlockPatchNames = [6]string{"xMin", "xMax", "yMin", "yMax", "zMin", "zMax"}

// BlockSpec describes a uniform box of hexahedral cells
type BlockSpec struct {
	Origin     r3.Vec
	Extent     r3.Vec
	Cells      [3]int
	PatchTypes [6]types.PatchType // Indexed like BlockPatchNames
}

// Block1D is a line of n cells along x of total length L. The y and z sides
// are empty so the case behaves as one dimensional.
func Block1D(n int, L float64) BlockSpec {
	return BlockSpec{
		Extent: r3.Vec{X: L, Y: L / float64(n), Z: L / float64(n)},
		Cells:  [3]int{n, 1, 1},
		PatchTypes: [6]types.PatchType{
			types.PatchGeneric, types.PatchGeneric,
			types.PatchEmpty, types.PatchEmpty,
			types.PatchEmpty, types.PatchEmpty,
		},
	}
}

// Block2D is an nx by ny sheet of cells one cell thick in z, with empty z sides
func Block2D(nx, ny int, Lx, Ly float64) BlockSpec {
	return BlockSpec{
		Extent: r3.Vec{X: Lx, Y: Ly, Z: Lx / float64(nx)},
		Cells:  [3]int{nx, ny, 1},
		PatchTypes: [6]types.PatchType{
			types.PatchGeneric, types.PatchGeneric,
			types.PatchGeneric, types.PatchGeneric,
			types.PatchEmpty, types.PatchEmpty,
		},
	}
}

// NewBlockMesh builds the mesh of a uniform box. Internal faces are ordered by
// owner, then by neighbour, and the six sides become one patch each.
func NewBlockMesh(spec BlockSpec) (m *Mesh, err error) {
	var (
		nx, ny, nz = spec.Cells[0], spec.Cells[1], spec.Cells[2]
		dx         = spec.Extent.X / float64(max(nx, 1))
		dy         = spec.Extent.Y / float64(max(ny, 1))
		dz         = spec.Extent.Z / float64(max(nz, 1))
	)
	if nx < 1 || ny < 1 || nz < 1 {
		err = fmt.Errorf("%w: block needs at least one cell in each direction, have %v", ErrInvalidMesh, spec.Cells)
		return
	}
	if dx <= 0 || dy <= 0 || dz <= 0 {
		err = fmt.Errorf("%w: block extent must be positive, have %v", ErrInvalidMesh, spec.Extent)
		return
	}
	pt := func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }
	cell := func(i, j, k int) int { return i + nx*(j+ny*k) }
	points := make([]r3.Vec, (nx+1)*(ny+1)*(nz+1))
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				points[pt(i, j, k)] = r3.Add(spec.Origin,
					r3.Vec{X: float64(i) * dx, Y: float64(j) * dy, Z: float64(k) * dz})
			}
		}
	}
	// Faces normal to +x, +y, +z at the low corner (i,j,k) of the face
	xFace := func(i, j, k int) []int { return []int{pt(i, j, k), pt(i, j+1, k), pt(i, j+1, k+1), pt(i, j, k+1)} }
	yFace := func(i, j, k int) []int { return []int{pt(i, j, k), pt(i, j, k+1), pt(i+1, j, k+1), pt(i+1, j, k)} }
	zFace := func(i, j, k int) []int { return []int{pt(i, j, k), pt(i+1, j, k), pt(i+1, j+1, k), pt(i, j+1, k)} }

	var (
		faces     [][]int
		owner     []int
		neighbour []int
	)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				c := cell(i, j, k)
				if i+1 < nx {
					faces = append(faces, xFace(i+1, j, k))
					owner = append(owner, c)
					neighbour = append(neighbour, cell(i+1, j, k))
				}
				if j+1 < ny {
					faces = append(faces, yFace(i, j+1, k))
					owner = append(owner, c)
					neighbour = append(neighbour, cell(i, j+1, k))
				}
				if k+1 < nz {
					faces = append(faces, zFace(i, j, k+1))
					owner = append(owner, c)
					neighbour = append(neighbour, cell(i, j, k+1))
				}
			}
		}
	}
	patches := make([]Patch, 0, 6)
	addPatch := func(side int, build func()) {
		start := len(faces)
		build()
		patches = append(patches, Patch{
			Name:  BlockPatchNames[side],
			Type:  spec.PatchTypes[side],
			Start: start,
			Size:  len(faces) - start,
		})
	}
	addPatch(0, func() {
		for k := 0; k < nz; k++ {
			for j := 0; j < ny; j++ {
				faces = append(faces, reversed(xFace(0, j, k)))
				owner = append(owner, cell(0, j, k))
			}
		}
	})
	addPatch(1, func() {
		for k := 0; k < nz; k++ {
			for j := 0; j < ny; j++ {
				faces = append(faces, xFace(nx, j, k))
				owner = append(owner, cell(nx-1, j, k))
			}
		}
	})
	addPatch(2, func() {
		for k := 0; k < nz; k++ {
			for i := 0; i < nx; i++ {
				faces = append(faces, reversed(yFace(i, 0, k)))
				owner = append(owner, cell(i, 0, k))
			}
		}
	})
	addPatch(3, func() {
		for k := 0; k < nz; k++ {
			for i := 0; i < nx; i++ {
				faces = append(faces, yFace(i, ny, k))
				owner = append(owner, cell(i, ny-1, k))
			}
		}
	})
	addPatch(4, func() {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				faces = append(faces, reversed(zFace(i, j, 0)))
				owner = append(owner, cell(i, j, 0))
			}
		}
	})
	addPatch(5, func() {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				faces = append(faces, zFace(i, j, nz))
				owner = append(owner, cell(i, j, nz-1))
			}
		}
	})
	return New(points, faces, owner, neighbour, patches)
}

func reversed(face []int) []int {
	r := make([]int, len(face))
	for i, v := range face {
		r[len(face)-1-i] = v
	}
	return r
}
