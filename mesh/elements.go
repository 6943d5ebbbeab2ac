package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/lesfilter/types"
)

// DefaultPatchName collects boundary faces that no marker claims
const DefaultPatchName = "defaultFaces"

type ElementType uint8

const (
	Line ElementType = iota
	Triangle
	Quad
	Tet
	Hex
	Prism
	Pyramid
)

func (e ElementType) String() string {
	return [...]string{"Line", "Triangle", "Quad", "Tet", "Hex", "Prism", "Pyramid"}[e]
}

func (e ElementType) NumNodes() int {
	return [...]int{2, 3, 4, 4, 8, 6, 5}[e]
}

// Element is a cell or boundary face given by its vertices in VTK order
type Element struct {
	Type  ElementType
	Nodes []int
}

// Marker is a named group of boundary faces
type Marker struct {
	Name  string
	Faces []Element
}

// elementFaces returns the face vertex loops of a volume element
func elementFaces(elem Element) [][]int {
	v := elem.Nodes
	switch elem.Type {
	case Tet:
		return [][]int{
			{v[0], v[2], v[1]},
			{v[0], v[1], v[3]},
			{v[1], v[2], v[3]},
			{v[0], v[3], v[2]},
		}
	case Hex:
		return [][]int{
			{v[0], v[3], v[2], v[1]}, // bottom
			{v[4], v[5], v[6], v[7]}, // top
			{v[0], v[1], v[5], v[4]},
			{v[1], v[2], v[6], v[5]},
			{v[2], v[3], v[7], v[6]},
			{v[3], v[0], v[4], v[7]},
		}
	case Prism:
		return [][]int{
			{v[0], v[2], v[1]}, // bottom tri
			{v[3], v[4], v[5]}, // top tri
			{v[0], v[1], v[4], v[3]},
			{v[1], v[2], v[5], v[4]},
			{v[2], v[0], v[3], v[5]},
		}
	case Pyramid:
		return [][]int{
			{v[0], v[3], v[2], v[1]}, // base quad
			{v[0], v[1], v[4]},
			{v[1], v[2], v[4]},
			{v[2], v[3], v[4]},
			{v[3], v[0], v[4]},
		}
	default:
		return nil
	}
}

func faceKey(verts []int) string {
	sorted := make([]int, len(verts))
	copy(sorted, verts)
	sort.Ints(sorted)
	return fmt.Sprintf("%v", sorted)
}

// FromElements builds an owner/neighbour mesh from cell to vertex lists.
// Faces shared by two cells become internal faces, owned by the lower cell.
// Boundary faces are grouped into one patch per marker, in marker order,
// followed by DefaultPatchName for any faces left over. patchTypes maps
// marker names to patch types; unnamed markers are generic patches.
func FromElements(points []r3.Vec, cells []Element, markers []Marker,
	patchTypes map[string]types.PatchType) (m *Mesh, err error) {
	type faceRec struct {
		verts     []int
		owner     int
		neighbour int
	}
	var (
		faceMap = make(map[string]int)
		recs    []faceRec
	)
	for cellID, elem := range cells {
		if len(elem.Nodes) != elem.Type.NumNodes() {
			err = fmt.Errorf("%w: cell %d of type %s has %d nodes", ErrInvalidMesh, cellID, elem.Type, len(elem.Nodes))
			return
		}
		for _, n := range elem.Nodes {
			if n < 0 || n >= len(points) {
				err = fmt.Errorf("%w: cell %d references point %d of %d", ErrInvalidMesh, cellID, n, len(points))
				return
			}
		}
		fverts := elementFaces(elem)
		if fverts == nil {
			err = fmt.Errorf("%w: cell %d has non volume type %s", ErrInvalidMesh, cellID, elem.Type)
			return
		}
		for _, fv := range fverts {
			key := faceKey(fv)
			if fi, exists := faceMap[key]; exists {
				if recs[fi].neighbour >= 0 {
					err = fmt.Errorf("%w: face %v shared by more than two cells", ErrInvalidMesh, fv)
					return
				}
				recs[fi].neighbour = cellID
			} else {
				faceMap[key] = len(recs)
				recs = append(recs, faceRec{verts: fv, owner: cellID, neighbour: -1})
			}
		}
	}

	// Orient every face out of its owner
	centres := make([]r3.Vec, len(cells))
	for c, elem := range cells {
		for _, n := range elem.Nodes {
			centres[c] = r3.Add(centres[c], points[n])
		}
		centres[c] = r3.Scale(1./float64(len(elem.Nodes)), centres[c])
	}
	for i := range recs {
		cf, sf := faceCentreAndArea(points, recs[i].verts)
		if r3.Dot(sf, r3.Sub(cf, centres[recs[i].owner])) < 0 {
			recs[i].verts = reversed(recs[i].verts)
		}
	}

	var (
		internal []int
		claimed  = make(map[int]bool)
	)
	for i, r := range recs {
		if r.neighbour >= 0 {
			internal = append(internal, i)
		}
	}
	sort.Slice(internal, func(a, b int) bool {
		ra, rb := recs[internal[a]], recs[internal[b]]
		if ra.owner != rb.owner {
			return ra.owner < rb.owner
		}
		return ra.neighbour < rb.neighbour
	})
	var (
		faces     = make([][]int, 0, len(recs))
		owner     = make([]int, 0, len(recs))
		neighbour = make([]int, 0, len(internal))
		patches   []Patch
	)
	for _, i := range internal {
		faces = append(faces, recs[i].verts)
		owner = append(owner, recs[i].owner)
		neighbour = append(neighbour, recs[i].neighbour)
	}
	addPatch := func(name string, ids []int) {
		patches = append(patches, Patch{
			Name:  name,
			Type:  patchTypes[name],
			Start: len(faces),
			Size:  len(ids),
		})
		for _, i := range ids {
			faces = append(faces, recs[i].verts)
			owner = append(owner, recs[i].owner)
		}
	}
	for _, mk := range markers {
		ids := make([]int, 0, len(mk.Faces))
		for _, bf := range mk.Faces {
			fi, exists := faceMap[faceKey(bf.Nodes)]
			if !exists || recs[fi].neighbour >= 0 {
				err = fmt.Errorf("%w: marker %s face %v is not a boundary face", ErrInvalidMesh, mk.Name, bf.Nodes)
				return
			}
			if claimed[fi] {
				err = fmt.Errorf("%w: marker %s face %v already belongs to a patch", ErrInvalidMesh, mk.Name, bf.Nodes)
				return
			}
			claimed[fi] = true
			ids = append(ids, fi)
		}
		addPatch(mk.Name, ids)
	}
	var leftover []int
	for i, r := range recs {
		if r.neighbour < 0 && !claimed[i] {
			leftover = append(leftover, i)
		}
	}
	if len(leftover) != 0 {
		addPatch(DefaultPatchName, leftover)
	}
	return New(points, faces, owner, neighbour, patches)
}

// Extrude2D turns a planar mesh of triangles and quads in the z=0 plane into
// a one cell thick layer of prisms and hexes. Line markers become quad faces
// and the front and back faces form an extra empty patch named frontAndBack.
func Extrude2D(points []r3.Vec, cells []Element, markers []Marker, thickness float64,
	patchTypes map[string]types.PatchType) (m *Mesh, err error) {
	var (
		nPts    = len(points)
		pts3    = make([]r3.Vec, 2*nPts)
		cells3  = make([]Element, len(cells))
		marks3  = make([]Marker, 0, len(markers)+1)
		front   = Marker{Name: "frontAndBack"}
		pTypes3 = make(map[string]types.PatchType, len(patchTypes)+1)
	)
	for i, p := range points {
		pts3[i] = r3.Vec{X: p.X, Y: p.Y}
		pts3[i+nPts] = r3.Vec{X: p.X, Y: p.Y, Z: thickness}
	}
	up := func(n []int) (u []int) {
		u = make([]int, len(n))
		for i, v := range n {
			u[i] = v + nPts
		}
		return
	}
	for c, elem := range cells {
		switch elem.Type {
		case Triangle:
			cells3[c] = Element{Prism, append(append([]int{}, elem.Nodes...), up(elem.Nodes)...)}
			front.Faces = append(front.Faces, Element{Triangle, elem.Nodes}, Element{Triangle, up(elem.Nodes)})
		case Quad:
			cells3[c] = Element{Hex, append(append([]int{}, elem.Nodes...), up(elem.Nodes)...)}
			front.Faces = append(front.Faces, Element{Quad, elem.Nodes}, Element{Quad, up(elem.Nodes)})
		default:
			err = fmt.Errorf("%w: cannot extrude 2D cell %d of type %s", ErrInvalidMesh, c, elem.Type)
			return
		}
	}
	for _, mk := range markers {
		m3 := Marker{Name: mk.Name}
		for _, bf := range mk.Faces {
			if bf.Type != Line {
				err = fmt.Errorf("%w: 2D marker %s has %s face", ErrInvalidMesh, mk.Name, bf.Type)
				return
			}
			a, b := bf.Nodes[0], bf.Nodes[1]
			m3.Faces = append(m3.Faces, Element{Quad, []int{a, b, b + nPts, a + nPts}})
		}
		marks3 = append(marks3, m3)
	}
	marks3 = append(marks3, front)
	for k, v := range patchTypes {
		pTypes3[k] = v
	}
	if _, set := pTypes3[front.Name]; !set {
		pTypes3[front.Name] = types.PatchEmpty
	}
	return FromElements(pts3, cells3, marks3, pTypes3)
}
