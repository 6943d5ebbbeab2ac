package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparse(t *testing.T) {
	A := NewDOK(3, 3)
	A.AddAt(0, 0, 2)
	A.AddAt(0, 0, 1)
	A.AddAt(0, 2, -1)
	A.AddAt(2, 1, 4)
	assert.Equal(t, 3., A.At(0, 0))

	csr := A.ToCSR()
	assert.Equal(t, 3, csr.NNZ())
	r, c := csr.Dims()
	assert.Equal(t, [2]int{3, 3}, [2]int{r, c})

	var (
		x = []float64{1, 2, 3}
		y = []float64{-9, -9, -9}
	)
	csr.MulRowRange(0, 3, func(j int) float64 { return x[j] },
		func(i int, val float64) { y[i] = val })
	assert.Equal(t, []float64{0, 0, 8}, y)

	y = []float64{-9, -9, -9}
	csr.MulRowRange(1, 2, func(j int) float64 { return x[j] },
		func(i int, val float64) { y[i] = val })
	assert.Equal(t, []float64{-9, 0, -9}, y)

	A.SetReadOnly("A")
	assert.Panics(t, func() { A.AddAt(1, 1, 1) })
}
