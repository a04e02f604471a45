// =============================================================================
// DFP/ITR Reader - Layout Registry
// =============================================================================
//
// The registry maps (category, statement kind, balance type) to the layouts
// tried for that combination, in order, plus the finish hook and the
// aggregator used by the walk.
//
// A Builder collects specs; Build returns an immutable Registry that can be
// shared by every matcher. Specs prepended later (e.g. from a layout
// workbook) take precedence over the built-in ones.
//
// =============================================================================

package layout

import (
	"fmt"
	"sort"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Key identifies one registry entry.
type Key struct {
	Category Category
	Kind     types.StatementKind
	Mode     types.BalanceType
}

func (k Key) String() string {
	return fmt.Sprintf("%s %s %s", k.Category, k.Kind, k.Mode)
}

// FinishFunc completes the attributes of a successful walk. It may derive,
// default, null out or adjust attributes.
type FinishFunc func(attrs Attributes, agg Aggregator) error

// Spec is the registry entry for one Key.
type Spec struct {
	Layouts       []*Layout
	Finish        FinishFunc
	NewAggregator func() Aggregator
}

// Layout returns the first layout covering a reference year.
func (s Spec) Layout(year int) (*Layout, bool) {
	for _, l := range s.Layouts {
		if l.Covers(year) {
			return l, true
		}
	}
	return nil, false
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder collects registry specs.
type Builder struct {
	specs map[Key]*Spec
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{specs: map[Key]*Spec{}}
}

// Register sets the spec of a key, replacing any previous one.
func (b *Builder) Register(key Key, spec Spec) *Builder {
	s := spec
	b.specs[key] = &s
	return b
}

// Prepend inserts layouts ahead of the ones already registered for a key.
// A key with no spec gets one with no finish hook and no aggregator.
func (b *Builder) Prepend(key Key, layouts ...*Layout) *Builder {
	s, ok := b.specs[key]
	if !ok {
		s = &Spec{}
		b.specs[key] = s
	}
	s.Layouts = append(append([]*Layout(nil), layouts...), s.Layouts...)
	return b
}

// Build returns an immutable registry. Layouts are copied, so later changes
// to the builder or its layouts do not leak into the registry.
func (b *Builder) Build() *Registry {
	specs := make(map[Key]Spec, len(b.specs))
	for key, s := range b.specs {
		spec := Spec{Finish: s.Finish, NewAggregator: s.NewAggregator}
		for _, l := range s.Layouts {
			spec.Layouts = append(spec.Layouts, l.Clone())
		}
		specs[key] = spec
	}
	return &Registry{specs: specs}
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is a read-only catalog of layout specs.
type Registry struct {
	specs map[Key]Spec
}

// Lookup returns the spec of a key.
func (r *Registry) Lookup(key Key) (Spec, bool) {
	s, ok := r.specs[key]
	return s, ok
}

// Keys returns every registered key in a stable order.
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.specs))
	for k := range r.specs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Mode < b.Mode
	})
	return keys
}
