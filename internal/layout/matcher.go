package layout

import (
	"fmt"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Matcher walks statements against the layouts of a registry.
type Matcher struct {
	Registry  *Registry
	NameCheck NameCheck
}

// NewMatcher returns a Matcher over a registry.
func NewMatcher(registry *Registry, check NameCheck) *Matcher {
	return &Matcher{Registry: registry, NameCheck: check}
}

// Match selects the first layout of key covering year, walks the accounts
// against it and runs the finish hook.
//
// RETURNS:
//   - The finished attributes.
//   - A *LayoutError if the walk fails, ErrLayoutMismatch if no layout is
//     registered for the key or covers the year, or the finish hook error.
func (m *Matcher) Match(key Key, year int, accounts []types.Account) (Attributes, error) {
	spec, ok := m.Registry.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: no layouts for %s", types.ErrLayoutMismatch, key)
	}

	l, ok := spec.Layout(year)
	if !ok {
		return nil, fmt.Errorf("%w: no %s layout covers %d", types.ErrLayoutMismatch, key, year)
	}

	var agg Aggregator = NoAggregator{}
	if spec.NewAggregator != nil {
		agg = spec.NewAggregator()
	}

	res, err := Walk(accounts, l, m.NameCheck, agg)
	if err != nil {
		return nil, err
	}

	attrs := res.Attributes
	if spec.Finish != nil {
		if err := spec.Finish(attrs, res.Aggregator); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	return attrs, nil
}
