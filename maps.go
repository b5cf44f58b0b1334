package tnl

import (
	"fmt"

	"github.com/go-gota/gota/series"
)

// FrameContext is the view of the executing frame that values-capability
// maps receive: enough to resolve column-selector arguments and to size
// generated columns, nothing more.
type FrameContext interface {
	// Column returns a copy of the column with the given name.
	Column(name string) (series.Series, error)

	// NumRows returns the frame's row count.
	NumRows() int
}

// StringMapFunc is the header-pipeline capability of a primitive: it
// rewrites a single string (a column name).
type StringMapFunc func(s string, args []RValue) (string, error)

// ValuesMapFunc is the values-pipeline capability of a primitive: it
// rewrites a whole column.
type ValuesMapFunc func(frame FrameContext, s series.Series, args []RValue) (series.Series, error)

// MapImpl declares a named primitive: its argument count and one or both
// of its capabilities. A primitive is visible to header rules iff
// MapString is set and to value rules iff MapValues is set; the parser
// only requires that the name exists in the registry.
type MapImpl struct {
	Name    string
	NumArgs int

	MapString StringMapFunc
	MapValues ValuesMapFunc
}

var builtinMaps = make(map[string]*MapImpl)

// RegisterMap registers a primitive under its name. Registering a nameless
// or capability-less primitive, or reusing a name, panics: registration
// happens at package init time and a bad registry is a programming error.
func RegisterMap(impl *MapImpl) {
	if impl.Name == "" {
		panic("RegisterMap: map has no name")
	}
	if impl.MapString == nil && impl.MapValues == nil {
		panic(fmt.Sprintf("RegisterMap: map '%s' declares no capability", impl.Name))
	}
	if _, existing := builtinMaps[impl.Name]; existing {
		panic(fmt.Sprintf("RegisterMap: map with name '%s' is already registered", impl.Name))
	}
	builtinMaps[impl.Name] = impl
}

// LookupMap returns the primitive registered under name.
func LookupMap(name string) (*MapImpl, bool) {
	impl, ok := builtinMaps[name]
	return impl, ok
}

// MapExists reports whether a primitive is registered under name.
func MapExists(name string) bool {
	_, ok := builtinMaps[name]
	return ok
}
