package fvc

import (
	"errors"
	"fmt"

	"github.com/notargets/lesfilter/field"
	"github.com/notargets/lesfilter/mesh"
	"github.com/notargets/lesfilter/types"
	"github.com/notargets/lesfilter/utils"
)

var ErrNoMesh = errors.New("no mesh")

// Below this many cells per partition the operator runs on one goroutine
const minCellsPerPartition = 4096

// LaplacianOperator is the Gauss linear uncorrected Laplacian with face
// diffusivity Gamma,
//
//	lap(P) = 1/V_P * sum_f Gamma_f |S_f| deltaCoeff_f (phi_N - phi_P)
//
// summed over the internal faces of P and the boundary faces of P on non
// empty patches, where phi_N is the boundary value. The cell coupling is
// assembled once into a sparse matrix.
type LaplacianOperator struct {
	Gamma          *field.SurfaceScalarField
	ParallelDegree int

	mesh     *mesh.Mesh
	interior utils.CSR   // Cell to cell coefficients, divided by the volume of the row cell
	bCoeffs  [][]float64 // Per patch face coefficient of the boundary value, nil on empty patches
}

func NewLaplacianOperator(gamma *field.SurfaceScalarField) (op *LaplacianOperator, err error) {
	if gamma == nil || gamma.Mesh == nil {
		err = fmt.Errorf("%w: laplacian needs a diffusivity on a mesh", ErrNoMesh)
		return
	}
	var (
		m      = gamma.Mesh
		nCells = m.NCells()
		nInt   = m.NInternalFaces()
	)
	if len(gamma.Internal) != nInt || len(gamma.Boundary) != len(m.Patches) {
		err = fmt.Errorf("%w: diffusivity %s has %d internal and %d patch entries, mesh has %d and %d",
			field.ErrSizeMismatch, gamma.Name, len(gamma.Internal), len(gamma.Boundary), nInt, len(m.Patches))
		return
	}
	op = &LaplacianOperator{
		Gamma:          gamma,
		ParallelDegree: utils.DefaultParallelDegree(nCells, minCellsPerPartition),
		mesh:           m,
		bCoeffs:        make([][]float64, len(m.Patches)),
	}
	var (
		A  = utils.NewDOK(nCells, nCells)
		dc = m.DeltaCoeffs()
	)
	for f := 0; f < nInt; f++ {
		var (
			P, N = m.Owner[f], m.Neighbour[f]
			c    = gamma.Internal[f] * m.MagSf[f] * dc[f]
		)
		A.AddAt(P, N, c/m.V[P])
		A.AddAt(P, P, -c/m.V[P])
		A.AddAt(N, P, c/m.V[N])
		A.AddAt(N, N, -c/m.V[N])
	}
	for pI, p := range m.Patches {
		if p.Type.IsDegenerate() {
			continue
		}
		if len(gamma.Boundary[pI]) != p.Size {
			err = fmt.Errorf("%w: diffusivity %s has %d values on patch %s of %d faces",
				field.ErrSizeMismatch, gamma.Name, len(gamma.Boundary[pI]), p.Name, p.Size)
			return nil, err
		}
		var (
			pdc = m.PatchDeltaCoeffs(pI)
			bc  = make([]float64, p.Size)
		)
		for i, P := range m.FaceCells(pI) {
			bc[i] = gamma.Boundary[pI][i] * m.MagSf[p.Start+i] * pdc[i] / m.V[P]
			A.AddAt(P, P, -bc[i])
		}
		op.bCoeffs[pI] = bc
	}
	A.SetReadOnly("laplacian(" + gamma.Name + ")")
	op.interior = A.ToCSR()
	return
}

func (op *LaplacianOperator) Mesh() *mesh.Mesh { return op.mesh }

type boundaryFace struct {
	patch, face, cell int
}

// boundaryFacesByBucket groups the faces of non empty patches by the
// partition of their owner cell, so each partition only writes its own cells
func (op *LaplacianOperator) boundaryFacesByBucket(pm *utils.PartitionMap) (bFaces [][]boundaryFace) {
	bFaces = make([][]boundaryFace, pm.ParallelDegree)
	for pI, bc := range op.bCoeffs {
		if bc == nil {
			continue
		}
		for i, P := range op.mesh.FaceCells(pI) {
			bn := pm.BucketOf(P)
			bFaces[bn] = append(bFaces[bn], boundaryFace{patch: pI, face: i, cell: P})
		}
	}
	return
}

// Apply returns the Laplacian of vf. The result has dimensions
// Gamma*vf/length^2 and extrapolatedCalculated boundaries, already corrected.
// The boundary values of vf are read as they are; correct them first.
func Apply[T types.Value[T]](op *LaplacianOperator, vf *field.VolField[T]) (lap *field.VolField[T], err error) {
	if vf == nil || vf.Mesh == nil {
		err = fmt.Errorf("%w: laplacian of a field without a mesh", ErrNoMesh)
		return
	}
	if vf.Mesh != op.mesh {
		err = fmt.Errorf("%w: %s and %s", field.ErrMeshMismatch, op.Gamma.Name, vf.Name)
		return
	}
	if err = vf.Check(); err != nil {
		return
	}
	var (
		m    = op.mesh
		dims = field.DivDims(field.MulDims(op.Gamma.Dims, vf.Dims), field.DimLengthSqr)
		name = fmt.Sprintf("laplacian(%s,%s)", op.Gamma.Name, vf.Name)
		pm   = utils.NewPartitionMap(op.ParallelDegree, m.NCells())
	)
	lap = field.NewVolField[T](name, m, dims)
	lap.TimeName = vf.TimeName
	bFaces := op.boundaryFacesByBucket(pm)
	for cmpt := 0; cmpt < types.KindOf[T]().NCmpts(); cmpt++ {
		pm.Run(func(bn, kMin, kMax int) {
			op.interior.MulRowRange(kMin, kMax,
				func(j int) float64 { return vf.Internal[j].Cmpt(cmpt) },
				func(i int, val float64) { lap.Internal[i] = lap.Internal[i].SetCmpt(cmpt, val) })
			for _, bf := range bFaces[bn] {
				var (
					val = lap.Internal[bf.cell].Cmpt(cmpt) +
						op.bCoeffs[bf.patch][bf.face]*vf.Boundary[bf.patch].Values[bf.face].Cmpt(cmpt)
				)
				lap.Internal[bf.cell] = lap.Internal[bf.cell].SetCmpt(cmpt, val)
			}
		})
	}
	for _, pf := range lap.Boundary {
		if pf.Type != types.BCEmpty {
			pf.Type = types.BCExtrapolatedCalculated
		}
	}
	lap.CorrectBoundaryConditions()
	return
}

// Laplacian is laplacian(gamma, vf) with a one off operator
func Laplacian[T types.Value[T]](gamma *field.SurfaceScalarField, vf *field.VolField[T]) (lap *field.VolField[T], err error) {
	var (
		op *LaplacianOperator
	)
	if op, err = NewLaplacianOperator(gamma); err != nil {
		return
	}
	return Apply(op, vf)
}
