package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

var (
	ErrMissingKey = errors.New("keyword is undefined")
	ErrNotScalar  = errors.New("entry is not a scalar")
	ErrNotDict    = errors.New("entry is not a dictionary")
)

// Dict is a named keyword dictionary. Nested maps are sub dictionaries.
// Keywords are case insensitive: viper folds them to lower case, so D1 and d1
// name the same entry and only one of them survives loading.
type Dict struct {
	name string
	v    *viper.Viper
}

func NewDict(name string, entries map[string]interface{}) (d *Dict) {
	d = &Dict{name: name, v: viper.New()}
	if len(entries) != 0 {
		// Only fails when entries is nil
		_ = d.v.MergeConfigMap(entries)
	}
	return
}

// ReadDict parses a dictionary in any format viper understands, such as
// "yaml", "json" or "toml"
func ReadDict(name string, r io.Reader, format string) (d *Dict, err error) {
	var supported bool
	for _, ext := range viper.SupportedExts {
		supported = supported || ext == strings.ToLower(format)
	}
	if !supported {
		return nil, fmt.Errorf("reading dictionary %s: unsupported format %q, valid formats are %v",
			name, format, viper.SupportedExts)
	}
	d = &Dict{name: name, v: viper.New()}
	d.v.SetConfigType(format)
	if err = d.v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("reading dictionary %s: %w", name, err)
	}
	return
}

// ReadDictFile reads a dictionary file, its format given by the extension
func ReadDictFile(path string) (d *Dict, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(path); err != nil {
		return nil, fmt.Errorf("reading dictionary %s: %w", path, err)
	}
	defer file.Close()
	return ReadDict(path, file, strings.TrimPrefix(filepath.Ext(path), "."))
}

// FromViper wraps an existing viper instance
func FromViper(name string, v *viper.Viper) *Dict {
	return &Dict{name: name, v: v}
}

func (d *Dict) Name() string { return d.name }

func (d *Dict) Found(key string) bool { return d.v.IsSet(key) }

func (d *Dict) isDict(key string) bool {
	switch d.v.Get(key).(type) {
	case map[string]interface{}, map[interface{}]interface{}:
		return true
	}
	return false
}

func (d *Dict) SubDict(name string) (sd *Dict, err error) {
	if !d.Found(name) {
		err = fmt.Errorf("%w: %s in dictionary %s", ErrMissingKey, name, d.name)
		return
	}
	var (
		v = d.v.Sub(name)
	)
	if v == nil || !d.isDict(name) {
		err = fmt.Errorf("%w: %s in dictionary %s", ErrNotDict, name, d.name)
		return
	}
	sd = &Dict{name: d.name + "." + name, v: v}
	return
}

// OptionalSubDict returns the named sub dictionary, or the receiver when
// there is no entry of that name. An entry that is not a dictionary is an
// error.
func (d *Dict) OptionalSubDict(name string) (sd *Dict, err error) {
	if !d.Found(name) {
		return d, nil
	}
	return d.SubDict(name)
}

// LookupScalar reads a number. Booleans, words that do not parse as numbers,
// lists and dictionaries are rejected.
func (d *Dict) LookupScalar(key string) (val float64, err error) {
	if !d.Found(key) {
		err = fmt.Errorf("%w: %s in dictionary %s", ErrMissingKey, key, d.name)
		return
	}
	raw := d.v.Get(key)
	if _, isBool := raw.(bool); isBool || d.isDict(key) {
		err = fmt.Errorf("%w: %s = %v in dictionary %s", ErrNotScalar, key, raw, d.name)
		return
	}
	if val, err = cast.ToFloat64E(raw); err != nil {
		err = fmt.Errorf("%w: %s = %v in dictionary %s", ErrNotScalar, key, raw, d.name)
	}
	return
}

// LookupWord reads a single word entry
func (d *Dict) LookupWord(key string) (word string, err error) {
	if !d.Found(key) {
		err = fmt.Errorf("%w: %s in dictionary %s", ErrMissingKey, key, d.name)
		return
	}
	raw := d.v.Get(key)
	if word, err = cast.ToStringE(raw); err != nil || d.isDict(key) {
		err = fmt.Errorf("%w: %s = %v in dictionary %s is not a word", ErrNotScalar, key, raw, d.name)
	}
	return
}

// Keys returns the top level keywords, sorted. Keywords are lower case.
func (d *Dict) Keys() (keys []string) {
	for k := range d.v.AllSettings() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}
