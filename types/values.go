package types

import (
	"fmt"
	"strings"
)

// Value is the set of cell value kinds a mesh field can carry. Every kind is a
// fixed size array of float64 components with the same linear arithmetic, so
// algorithms written against Value behave identically for all four kinds.
type Value[T any] interface {
	Scalar | Vector | SymmTensor | Tensor
	Add(T) T
	Sub(T) T
	Scale(a float64) T
	NCmpts() int
	Cmpt(i int) float64
	SetCmpt(i int, val float64) T
}

type Kind uint8

const (
	ScalarKind Kind = iota
	VectorKind
	SymmTensorKind
	TensorKind
)

var kindNames = [...]string{"scalar", "vector", "symmTensor", "tensor"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

func ParseKind(name string) (k Kind, err error) {
	for i, kn := range kindNames {
		if strings.EqualFold(kn, name) {
			k = Kind(i)
			return
		}
	}
	err = fmt.Errorf("unknown field kind %q, valid kinds are %v", name, kindNames)
	return
}

// KindOf reports the Kind of the value type T
func KindOf[T Value[T]]() Kind {
	var zero T
	switch any(zero).(type) {
	case Vector:
		return VectorKind
	case SymmTensor:
		return SymmTensorKind
	case Tensor:
		return TensorKind
	default:
		return ScalarKind
	}
}

var cmptNames = map[Kind][]string{
	ScalarKind:     {""},
	VectorKind:     {"x", "y", "z"},
	SymmTensorKind: {"xx", "xy", "xz", "yy", "yz", "zz"},
	TensorKind:     {"xx", "xy", "xz", "yx", "yy", "yz", "zx", "zy", "zz"},
}

func (k Kind) CmptNames() []string { return cmptNames[k] }
func (k Kind) NCmpts() int         { return len(cmptNames[k]) }

type Scalar float64

func (s Scalar) Add(o Scalar) Scalar    { return s + o }
func (s Scalar) Sub(o Scalar) Scalar    { return s - o }
func (s Scalar) Scale(a float64) Scalar { return Scalar(a * float64(s)) }
func (s Scalar) NCmpts() int            { return 1 }
func (s Scalar) Cmpt(i int) float64 {
	checkCmpt(i, 1)
	return float64(s)
}
func (s Scalar) SetCmpt(i int, val float64) Scalar {
	checkCmpt(i, 1)
	return Scalar(val)
}

type Vector [3]float64

func (v Vector) Add(o Vector) Vector {
	return Vector{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}
func (v Vector) Sub(o Vector) Vector {
	return Vector{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}
func (v Vector) Scale(a float64) Vector {
	return Vector{a * v[0], a * v[1], a * v[2]}
}
func (v Vector) NCmpts() int { return 3 }
func (v Vector) Cmpt(i int) float64 {
	checkCmpt(i, 3)
	return v[i]
}
func (v Vector) SetCmpt(i int, val float64) Vector {
	checkCmpt(i, 3)
	v[i] = val
	return v
}

// SymmTensor stores the upper triangle: xx, xy, xz, yy, yz, zz
type SymmTensor [6]float64

func (t SymmTensor) Add(o SymmTensor) (r SymmTensor) {
	for i := range t {
		r[i] = t[i] + o[i]
	}
	return
}
func (t SymmTensor) Sub(o SymmTensor) (r SymmTensor) {
	for i := range t {
		r[i] = t[i] - o[i]
	}
	return
}
func (t SymmTensor) Scale(a float64) (r SymmTensor) {
	for i := range t {
		r[i] = a * t[i]
	}
	return
}
func (t SymmTensor) NCmpts() int { return 6 }
func (t SymmTensor) Cmpt(i int) float64 {
	checkCmpt(i, 6)
	return t[i]
}
func (t SymmTensor) SetCmpt(i int, val float64) SymmTensor {
	checkCmpt(i, 6)
	t[i] = val
	return t
}

// Tensor is row major: xx, xy, xz, yx, yy, yz, zx, zy, zz
type Tensor [9]float64

func (t Tensor) Add(o Tensor) (r Tensor) {
	for i := range t {
		r[i] = t[i] + o[i]
	}
	return
}
func (t Tensor) Sub(o Tensor) (r Tensor) {
	for i := range t {
		r[i] = t[i] - o[i]
	}
	return
}
func (t Tensor) Scale(a float64) (r Tensor) {
	for i := range t {
		r[i] = a * t[i]
	}
	return
}
func (t Tensor) NCmpts() int { return 9 }
func (t Tensor) Cmpt(i int) float64 {
	checkCmpt(i, 9)
	return t[i]
}
func (t Tensor) SetCmpt(i int, val float64) Tensor {
	checkCmpt(i, 9)
	t[i] = val
	return t
}

// Uniform returns a value of kind T with every component set to val
func Uniform[T Value[T]](val float64) (r T) {
	for i := 0; i < r.NCmpts(); i++ {
		r = r.SetCmpt(i, val)
	}
	return
}

func checkCmpt(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Errorf("component index %d out of range [0,%d)", i, n))
	}
}
