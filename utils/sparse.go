package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK is a dictionary of keys sparse matrix used for assembly
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

// AddAt accumulates val into entry (i,j)
func (m DOK) AddAt(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m *DOK) SetReadOnly(name ...string) {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: true,
		name:     m.name,
	}
}

// CSR is a compressed sparse row matrix, read only once converted
type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}
func (m CSR) NNZ() int { return m.M.NNZ() }

// MulRowRange computes y[i] = sum_j A[i][j]*x(j) for rows rMin <= i < rMax,
// where x maps a column index to a value. Rows outside the range are not
// touched, so disjoint ranges can be computed concurrently.
func (m CSR) MulRowRange(rMin, rMax int, x func(j int) float64, y func(i int, val float64)) {
	var (
		raw = m.RawMatrix()
	)
	for i := rMin; i < rMax; i++ {
		var sum float64
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			sum += raw.Data[k] * x(raw.Ind[k])
		}
		y(i, sum)
	}
}
