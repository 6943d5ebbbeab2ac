package field

import (
	"fmt"

	"github.com/notargets/lesfilter/types"
)

// Tmp is a handle to a field that is either owned, and may be released by
// whoever holds the handle, or borrowed from the caller and never released.
type Tmp[T types.Value[T]] struct {
	ptr   *VolField[T]
	owned bool
}

// NewTmp wraps a disposable field. Clear releases its storage.
func NewTmp[T types.Value[T]](vf *VolField[T]) *Tmp[T] {
	return &Tmp[T]{ptr: vf, owned: true}
}

// ConstRef wraps a borrowed field. Clear drops the handle only.
func ConstRef[T types.Value[T]](vf *VolField[T]) *Tmp[T] {
	return &Tmp[T]{ptr: vf}
}

func (t *Tmp[T]) IsTmp() bool { return t.owned }

func (t *Tmp[T]) Valid() bool { return t.ptr != nil }

// Get returns the field. It panics once the handle has been cleared.
func (t *Tmp[T]) Get() *VolField[T] {
	if t.ptr == nil {
		panic(fmt.Errorf("field: access to a cleared %s temporary", types.KindOf[T]()))
	}
	return t.ptr
}

func (t *Tmp[T]) Clear() {
	if t.ptr != nil && t.owned {
		t.ptr.Release()
	}
	t.ptr = nil
}
