package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/lesfilter/types"
)

// Stats summarises one component of a field over the cells
type Stats struct {
	Name          string
	Min, Max, Avg float64
}

// Stats returns one summary per component
func (vf *VolField[T]) Stats() (st []Stats) {
	names := types.KindOf[T]().CmptNames()
	st = make([]Stats, len(names))
	for i, cn := range names {
		var (
			vals = vf.Cmpt(i)
			name = vf.Name
		)
		if cn != "" {
			name += "." + cn
		}
		st[i] = Stats{Name: name}
		if len(vals) == 0 {
			continue
		}
		st[i].Min = floats.Min(vals)
		st[i].Max = floats.Max(vals)
		st[i].Avg = floats.Sum(vals) / float64(len(vals))
	}
	return
}

func (s Stats) Print() {
	fmt.Printf("%-24s min = %12.5e max = %12.5e avg = %12.5e\n", s.Name, s.Min, s.Max, s.Avg)
}

// Norm is the volume weighted L2 norm over all components,
// sqrt(sum_c V_c |phi_c|^2)
func (vf *VolField[T]) Norm() float64 {
	var (
		n   = len(vf.Internal)
		sum float64
	)
	if n == 0 {
		return 0
	}
	vol := mat.NewVecDense(n, vf.Mesh.V)
	for i := 0; i < types.KindOf[T]().NCmpts(); i++ {
		x := mat.NewVecDense(n, vf.Cmpt(i))
		xw := mat.NewVecDense(n, nil)
		xw.MulElemVec(x, vol)
		sum += mat.Dot(xw, x)
	}
	return math.Sqrt(sum)
}

// MaxAbs is the largest component magnitude over the cells
func (vf *VolField[T]) MaxAbs() (m float64) {
	for i := 0; i < types.KindOf[T]().NCmpts(); i++ {
		for _, v := range vf.Cmpt(i) {
			m = max(m, math.Abs(v))
		}
	}
	return
}
