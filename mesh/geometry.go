package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	vSmall = 1.e-300
	// Lower bound on the face normal projection of delta, relative to |delta|
	nonOrthLimit = 0.05
)

// Face centres and area vectors by triangle decomposition about the point
// average. Triangles are area weighted so warped faces get a sensible centre.
func (m *Mesh) makeFaceCentresAndAreas() {
	var (
		nFaces = len(m.Faces)
	)
	m.Cf = make([]r3.Vec, nFaces)
	m.Sf = make([]r3.Vec, nFaces)
	m.MagSf = make([]float64, nFaces)
	for f := range m.Faces {
		m.Cf[f], m.Sf[f] = faceCentreAndArea(m.Points, m.Faces[f])
		m.MagSf[f] = r3.Norm(m.Sf[f])
	}
}

func faceCentreAndArea(points []r3.Vec, face []int) (cf, sf r3.Vec) {
	var (
		nPoints = len(face)
	)
	if nPoints == 3 {
		p0, p1, p2 := points[face[0]], points[face[1]], points[face[2]]
		cf = r3.Scale(1./3., r3.Add(r3.Add(p0, p1), p2))
		sf = r3.Scale(0.5, r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0)))
		return
	}
	var (
		fCentre   r3.Vec
		sumN      r3.Vec
		sumAc     r3.Vec
		sumA      float64
		thisPoint r3.Vec
		nextPoint r3.Vec
	)
	for _, pt := range face {
		fCentre = r3.Add(fCentre, points[pt])
	}
	fCentre = r3.Scale(1./float64(nPoints), fCentre)
	for pi := 0; pi < nPoints; pi++ {
		thisPoint = points[face[pi]]
		nextPoint = points[face[(pi+1)%nPoints]]
		c := r3.Add(r3.Add(thisPoint, nextPoint), fCentre)
		n := r3.Cross(r3.Sub(nextPoint, thisPoint), r3.Sub(fCentre, thisPoint))
		a := r3.Norm(n)
		sumN = r3.Add(sumN, n)
		sumA += a
		sumAc = r3.Add(sumAc, r3.Scale(a, c))
	}
	if sumA < vSmall {
		cf = fCentre
	} else {
		cf = r3.Scale(1./(3.*sumA), sumAc)
	}
	sf = r3.Scale(0.5, sumN)
	return
}

// Cell centres and volumes by pyramid decomposition about an estimated centre
func (m *Mesh) makeCellCentresAndVols() {
	var (
		nCells   = m.nCells
		cEst     = m.estimatedCellCentres()
		cellCtrs = make([]r3.Vec, nCells)
		cellVols = make([]float64, nCells)
	)
	addPyramid := func(cell int, f int, pyr3Vol float64) {
		// Pyramid centroid sits 3/4 of the way from apex to base
		pc := r3.Add(r3.Scale(0.75, m.Cf[f]), r3.Scale(0.25, cEst[cell]))
		cellCtrs[cell] = r3.Add(cellCtrs[cell], r3.Scale(pyr3Vol, pc))
		cellVols[cell] += pyr3Vol
	}
	for f, own := range m.Owner {
		addPyramid(own, f, math.Max(r3.Dot(m.Sf[f], r3.Sub(m.Cf[f], cEst[own])), vSmall))
	}
	for f, nei := range m.Neighbour {
		addPyramid(nei, f, math.Max(r3.Dot(m.Sf[f], r3.Sub(cEst[nei], m.Cf[f])), vSmall))
	}
	m.C = make([]r3.Vec, nCells)
	m.V = make([]float64, nCells)
	for c := 0; c < nCells; c++ {
		m.C[c] = r3.Scale(1./cellVols[c], cellCtrs[c])
		m.V[c] = cellVols[c] / 3.
	}
}

func (m *Mesh) estimatedCellCentres() (cEst []r3.Vec) {
	var (
		nCellFaces = make([]int, m.nCells)
	)
	cEst = make([]r3.Vec, m.nCells)
	for f, own := range m.Owner {
		cEst[own] = r3.Add(cEst[own], m.Cf[f])
		nCellFaces[own]++
	}
	for f, nei := range m.Neighbour {
		cEst[nei] = r3.Add(cEst[nei], m.Cf[f])
		nCellFaces[nei]++
	}
	for c := range cEst {
		cEst[c] = r3.Scale(1./float64(nCellFaces[c]), cEst[c])
	}
	return
}

// Delta returns the owner to neighbour cell centre vector of every internal face
func (m *Mesh) Delta() (delta []r3.Vec) {
	delta = make([]r3.Vec, m.NInternalFaces())
	for f, nei := range m.Neighbour {
		delta[f] = r3.Sub(m.C[nei], m.C[m.Owner[f]])
	}
	return
}

// PatchDelta returns the owner cell centre to face centre vector of every face
// on the patch. The full vector is used, not its projection on the face
// normal, so on skewed boundary cells the squared spacing includes the
// tangential offset. Both agree where the cell centre lies on the face normal.
func (m *Mesh) PatchDelta(patchI int) (delta []r3.Vec) {
	var (
		p = m.Patches[patchI]
	)
	delta = make([]r3.Vec, p.Size)
	for i := range delta {
		f := p.Start + i
		delta[i] = r3.Sub(m.Cf[f], m.C[m.Owner[f]])
	}
	return
}

// DeltaCoeffs is the reciprocal of the face normal distance between the cell
// centres either side of each internal face, limited on highly non-orthogonal
// faces
func (m *Mesh) DeltaCoeffs() (dc []float64) {
	var (
		delta = m.Delta()
	)
	dc = make([]float64, len(delta))
	for f, d := range delta {
		dc[f] = deltaCoeff(m.Sf[f], m.MagSf[f], d)
	}
	return
}

func (m *Mesh) PatchDeltaCoeffs(patchI int) (dc []float64) {
	var (
		p     = m.Patches[patchI]
		delta = m.PatchDelta(patchI)
	)
	dc = make([]float64, p.Size)
	for i, d := range delta {
		f := p.Start + i
		dc[i] = deltaCoeff(m.Sf[f], m.MagSf[f], d)
	}
	return
}

func deltaCoeff(sf r3.Vec, magSf float64, delta r3.Vec) float64 {
	var (
		nfDelta  = r3.Dot(sf, delta) / magSf
		magDelta = r3.Norm(delta)
	)
	return 1. / math.Max(nfDelta, nonOrthLimit*magDelta)
}
