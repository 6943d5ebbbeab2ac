package filter

import (
	"github.com/notargets/lesfilter/config"
	"github.com/notargets/lesfilter/field"
	"github.com/notargets/lesfilter/types"
)

// LESFilter is a spatial filter over fields of every value kind. The input
// handle is consumed: an owned temporary may be released by the filter, a
// borrowed field is left in place apart from its boundary values.
type LESFilter interface {
	TypeName() string
	// Read updates the filter settings from dict
	Read(dict *config.Dict) error
	FilterScalar(t *field.Tmp[types.Scalar]) (*field.VolField[types.Scalar], error)
	FilterVector(t *field.Tmp[types.Vector]) (*field.VolField[types.Vector], error)
	FilterSymmTensor(t *field.Tmp[types.SymmTensor]) (*field.VolField[types.SymmTensor], error)
	FilterTensor(t *field.Tmp[types.Tensor]) (*field.VolField[types.Tensor], error)
}

// Filter calls the method of f that matches the value kind T
func Filter[T types.Value[T]](f LESFilter, t *field.Tmp[T]) (r *field.VolField[T], err error) {
	var res any
	switch tt := any(t).(type) {
	case *field.Tmp[types.Scalar]:
		res, err = f.FilterScalar(tt)
	case *field.Tmp[types.Vector]:
		res, err = f.FilterVector(tt)
	case *field.Tmp[types.SymmTensor]:
		res, err = f.FilterSymmTensor(tt)
	case *field.Tmp[types.Tensor]:
		res, err = f.FilterTensor(tt)
	}
	r, _ = res.(*field.VolField[T])
	return
}
