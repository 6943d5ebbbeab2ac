package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/lesfilter/types"
)

var ErrInvalidMesh = errors.New("invalid mesh")

// Patch is a contiguous range of boundary faces sharing a name and type
type Patch struct {
	Name  string
	Type  types.PatchType
	Start int // First face index in the mesh face list
	Size  int
	Index int // Position in Mesh.Patches
}

// Mesh is a polyhedral finite volume mesh in owner/neighbour form. Internal
// faces come first, followed by the boundary faces of each patch in order.
// Face vertices are ordered so the area vector points out of the owner cell.
type Mesh struct {
	Points    []r3.Vec
	Faces     [][]int
	Owner     []int // Owner cell of every face
	Neighbour []int // Neighbour cell of every internal face
	Patches   []Patch
	TimeName  string

	// Geometry, computed by New
	Cf    []r3.Vec  // Face centres
	Sf    []r3.Vec  // Face area vectors
	MagSf []float64 // Face areas
	C     []r3.Vec  // Cell centres
	V     []float64 // Cell volumes

	nCells int
}

// New checks the topology and computes the face and cell geometry
func New(points []r3.Vec, faces [][]int, owner, neighbour []int, patches []Patch) (m *Mesh, err error) {
	m = &Mesh{
		Points:    points,
		Faces:     faces,
		Owner:     owner,
		Neighbour: neighbour,
		Patches:   patches,
		TimeName:  "0",
	}
	for _, o := range owner {
		if o+1 > m.nCells {
			m.nCells = o + 1
		}
	}
	for _, n := range neighbour {
		if n+1 > m.nCells {
			m.nCells = n + 1
		}
	}
	for i := range m.Patches {
		m.Patches[i].Index = i
	}
	if err = m.checkTopology(); err != nil {
		return nil, err
	}
	m.makeFaceCentresAndAreas()
	m.makeCellCentresAndVols()
	if err = m.checkGeometry(); err != nil {
		return nil, err
	}
	return
}

func (m *Mesh) NCells() int         { return m.nCells }
func (m *Mesh) NFaces() int         { return len(m.Faces) }
func (m *Mesh) NInternalFaces() int { return len(m.Neighbour) }

func (m *Mesh) PatchByName(name string) (p *Patch, err error) {
	for i := range m.Patches {
		if m.Patches[i].Name == name {
			return &m.Patches[i], nil
		}
	}
	err = fmt.Errorf("no patch named %q", name)
	return
}

// FaceCells returns the owner cell of each face of the patch
func (m *Mesh) FaceCells(patchI int) []int {
	p := m.Patches[patchI]
	return m.Owner[p.Start : p.Start+p.Size]
}

func (m *Mesh) checkTopology() (err error) {
	var (
		nFaces    = len(m.Faces)
		nInternal = len(m.Neighbour)
	)
	if m.nCells == 0 {
		return fmt.Errorf("%w: no cells", ErrInvalidMesh)
	}
	if len(m.Owner) != nFaces {
		return fmt.Errorf("%w: %d faces but %d owners", ErrInvalidMesh, nFaces, len(m.Owner))
	}
	if nInternal > nFaces {
		return fmt.Errorf("%w: %d neighbours for %d faces", ErrInvalidMesh, nInternal, nFaces)
	}
	for f := 0; f < nInternal; f++ {
		if m.Owner[f] == m.Neighbour[f] || m.Owner[f] < 0 || m.Neighbour[f] < 0 {
			return fmt.Errorf("%w: internal face %d has owner %d and neighbour %d",
				ErrInvalidMesh, f, m.Owner[f], m.Neighbour[f])
		}
	}
	for f, o := range m.Owner {
		if o < 0 {
			return fmt.Errorf("%w: face %d has owner %d", ErrInvalidMesh, f, o)
		}
	}
	next := nInternal
	for _, p := range m.Patches {
		if p.Size < 0 {
			return fmt.Errorf("%w: patch %s has %d faces", ErrInvalidMesh, p.Name, p.Size)
		}
		if p.Start != next {
			return fmt.Errorf("%w: patch %s starts at face %d, expected %d", ErrInvalidMesh, p.Name, p.Start, next)
		}
		next += p.Size
	}
	if next != nFaces {
		return fmt.Errorf("%w: patches cover faces up to %d of %d", ErrInvalidMesh, next, nFaces)
	}
	for f, face := range m.Faces {
		if len(face) < 3 {
			return fmt.Errorf("%w: face %d has %d vertices", ErrInvalidMesh, f, len(face))
		}
		for _, pt := range face {
			if pt < 0 || pt >= len(m.Points) {
				return fmt.Errorf("%w: face %d references point %d", ErrInvalidMesh, f, pt)
			}
		}
	}
	return
}

func (m *Mesh) checkGeometry() (err error) {
	for c, v := range m.V {
		if v <= 0 {
			return fmt.Errorf("%w: cell %d has non-positive volume %g", ErrInvalidMesh, c, v)
		}
	}
	return
}

type Statistics struct {
	Cells, Faces, InternalFaces, Points int
	Patches                             []PatchStatistics
	MinVolume, MaxVolume, TotalVolume   float64
}

type PatchStatistics struct {
	Name  string
	Type  types.PatchType
	Faces int
}

func (m *Mesh) Statistics() (s Statistics) {
	s = Statistics{
		Cells:         m.NCells(),
		Faces:         m.NFaces(),
		InternalFaces: m.NInternalFaces(),
		Points:        len(m.Points),
		MinVolume:     m.V[0],
		MaxVolume:     m.V[0],
	}
	for _, v := range m.V {
		s.MinVolume = min(s.MinVolume, v)
		s.MaxVolume = max(s.MaxVolume, v)
		s.TotalVolume += v
	}
	for _, p := range m.Patches {
		s.Patches = append(s.Patches, PatchStatistics{p.Name, p.Type, p.Size})
	}
	return
}

func (s Statistics) Print() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Points: %d\n", s.Points)
	fmt.Printf("  Cells: %d\n", s.Cells)
	fmt.Printf("  Faces: %d (internal %d)\n", s.Faces, s.InternalFaces)
	fmt.Printf("  Volume: total %g, min %g, max %g\n", s.TotalVolume, s.MinVolume, s.MaxVolume)
	fmt.Printf("  Patches:\n")
	for _, p := range s.Patches {
		fmt.Printf("    %-16s %-14s %d faces\n", p.Name, p.Type, p.Faces)
	}
}
