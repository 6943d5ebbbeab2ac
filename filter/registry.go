package filter

import (
	"errors"
	"fmt"
	"sort"

	"github.com/notargets/lesfilter/config"
	"github.com/notargets/lesfilter/mesh"
)

var (
	ErrUnknownFilter   = errors.New("unknown LES filter")
	ErrDuplicateFilter = errors.New("LES filter already registered")
)

// FilterKey selects the filter type in a filter dictionary
const FilterKey = "filter"

type Constructor func(m *mesh.Mesh, dict *config.Dict) (LESFilter, error)

// Registry maps filter type names to constructors. It is built by the host
// and passed to whatever needs to select filters by name.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns a registry holding the filters of this package
func NewRegistry() (r *Registry) {
	r = &Registry{constructors: make(map[string]Constructor)}
	_ = r.Register(PolyLaplaceResidualTypeName, func(m *mesh.Mesh, dict *config.Dict) (f LESFilter, err error) {
		var plr *PolyLaplaceResidual
		if plr, err = NewPolyLaplaceResidualFromDict(m, dict); err != nil {
			return
		}
		return plr, nil
	})
	return
}

func (r *Registry) Register(name string, c Constructor) (err error) {
	if _, present := r.constructors[name]; present {
		err = fmt.Errorf("%w: %s", ErrDuplicateFilter, name)
		return
	}
	r.constructors[name] = c
	return
}

func (r *Registry) Names() (names []string) {
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func (r *Registry) New(name string, m *mesh.Mesh, dict *config.Dict) (f LESFilter, err error) {
	c, present := r.constructors[name]
	if !present {
		err = fmt.Errorf("%w: %s, valid filters are %v", ErrUnknownFilter, name, r.Names())
		return
	}
	return c(m, dict)
}

// NewFromDict constructs the filter named by the filter keyword of dict
func (r *Registry) NewFromDict(m *mesh.Mesh, dict *config.Dict) (f LESFilter, err error) {
	var (
		name string
	)
	if name, err = dict.LookupWord(FilterKey); err != nil {
		return
	}
	return r.New(name, m, dict)
}
