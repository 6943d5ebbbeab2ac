package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/lesfilter/types"
)

// su2ElementTypeMap maps SU2/VTK element type identifiers to ElementType
var su2ElementTypeMap = map[int]ElementType{
	3:  Line,     // VTK_LINE
	5:  Triangle, // VTK_TRIANGLE
	9:  Quad,     // VTK_QUAD
	10: Tet,      // VTK_TETRA
	12: Hex,      // VTK_HEXAHEDRON
	13: Prism,    // VTK_WEDGE
	14: Pyramid,  // VTK_PYRAMID
}

// ReadSU2 reads an SU2 native mesh file. Two dimensional meshes are extruded
// one unit thick with an empty frontAndBack patch.
func ReadSU2(filename string, patchTypes map[string]types.PatchType) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadSU2From(file, patchTypes)
}

func ReadSU2From(r io.Reader, patchTypes map[string]types.PatchType) (m *Mesh, err error) {
	var (
		scanner          = bufio.NewScanner(r)
		ndime            int
		hasNDIME         bool
		points           []r3.Vec
		cells            []Element
		markers          []Marker
		nextLine         func() (string, bool)
		readElementLines func(n int, what string) ([]Element, error)
	)
	nextLine = func() (line string, ok bool) {
		for scanner.Scan() {
			line = strings.TrimSpace(scanner.Text())
			// Skip comments (text after %)
			if idx := strings.Index(line, "%"); idx >= 0 {
				line = strings.TrimSpace(line[:idx])
			}
			if line != "" {
				return line, true
			}
		}
		return "", false
	}
	readElementLines = func(n int, what string) (elems []Element, err error) {
		elems = make([]Element, 0, n)
		for i := 0; i < n; i++ {
			line, ok := nextLine()
			if !ok {
				return nil, fmt.Errorf("unexpected EOF reading %s", what)
			}
			fields := strings.Fields(line)
			su2Type, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, fmt.Errorf("invalid %s element type: %v", what, err)
			}
			etype, known := su2ElementTypeMap[su2Type]
			if !known {
				return nil, fmt.Errorf("unknown %s element type: %d", what, su2Type)
			}
			numNodes := etype.NumNodes()
			if len(fields) < numNodes+1 {
				return nil, fmt.Errorf("%s element type %v expects %d nodes, got %d fields",
					what, etype, numNodes, len(fields)-1)
			}
			nodes := make([]int, numNodes)
			for j := 0; j < numNodes; j++ {
				if nodes[j], err = strconv.Atoi(fields[1+j]); err != nil {
					return nil, fmt.Errorf("invalid node index: %v", err)
				}
				if nodes[j] < 0 || nodes[j] >= len(points) && len(points) != 0 {
					return nil, fmt.Errorf("node index %d out of range [0,%d)", nodes[j], len(points))
				}
			}
			elems = append(elems, Element{Type: etype, Nodes: nodes})
		}
		return
	}

	for {
		line, ok := nextLine()
		if !ok {
			break
		}
		switch {
		case strings.HasPrefix(line, "NDIME="):
			hasNDIME = true
			if ndime, err = atoiAfter(line, "NDIME="); err != nil {
				return
			}
			if ndime != 2 && ndime != 3 {
				return nil, fmt.Errorf("unsupported dimension: NDIME=%d", ndime)
			}
		case strings.HasPrefix(line, "NPOIN="):
			var npoin int
			if npoin, err = atoiAfter(line, "NPOIN="); err != nil {
				return
			}
			points = make([]r3.Vec, npoin)
			for i := 0; i < npoin; i++ {
				pl, ok := nextLine()
				if !ok {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(pl)
				if len(fields) < ndime {
					return nil, fmt.Errorf("invalid node line: expected at least %d coordinates", ndime)
				}
				var coords [3]float64
				for j := 0; j < ndime; j++ {
					if coords[j], err = strconv.ParseFloat(fields[j], 64); err != nil {
						return nil, fmt.Errorf("invalid coordinate: %v", err)
					}
				}
				points[i] = r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}
			}
		case strings.HasPrefix(line, "NELEM="):
			var nelem int
			if nelem, err = atoiAfter(line, "NELEM="); err != nil {
				return
			}
			if cells, err = readElementLines(nelem, "cell"); err != nil {
				return
			}
		case strings.HasPrefix(line, "NMARK="):
			var nmark int
			if nmark, err = atoiAfter(line, "NMARK="); err != nil {
				return
			}
			for i := 0; i < nmark; i++ {
				tagLine, ok := nextLine()
				if !ok || !strings.HasPrefix(tagLine, "MARKER_TAG=") {
					return nil, fmt.Errorf("expected MARKER_TAG=, got: %s", tagLine)
				}
				mk := Marker{Name: strings.TrimSpace(strings.TrimPrefix(tagLine, "MARKER_TAG="))}
				elemLine, ok := nextLine()
				if !ok {
					return nil, fmt.Errorf("unexpected EOF reading marker elements for %s", mk.Name)
				}
				var nMarkerElems int
				if nMarkerElems, err = atoiAfter(elemLine, "MARKER_ELEMS="); err != nil {
					return
				}
				if mk.Faces, err = readElementLines(nMarkerElems, "boundary"); err != nil {
					return
				}
				markers = append(markers, mk)
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}
	if !hasNDIME {
		return nil, fmt.Errorf("missing required NDIME= section")
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("missing required NPOIN= section")
	}
	if ndime == 2 {
		return Extrude2D(points, cells, markers, 1., patchTypes)
	}
	return FromElements(points, cells, markers, patchTypes)
}

func atoiAfter(line, prefix string) (n int, err error) {
	if !strings.HasPrefix(line, prefix) {
		return 0, fmt.Errorf("expected %s, got: %s", prefix, line)
	}
	if n, err = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, prefix))); err != nil {
		err = fmt.Errorf("invalid %s line: %s", prefix, line)
	}
	return
}
