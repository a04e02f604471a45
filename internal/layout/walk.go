// =============================================================================
// DFP/ITR Reader - Layout Walk
// =============================================================================
//
// The walk is a single forward pass over a statement's accounts and a
// layout's entries:
//
//   for each entry:
//     pull accounts until one is fixed with level <= layout.MaxLevel()
//       (every other account goes to the aggregator)
//     that account must carry the entry code (and name, under a name check)
//     capture its quantity if the entry names an attribute
//
// Running out of accounts mid-walk is ErrTooFewAccounts; a fixed account in
// the wrong position is ErrLayoutMismatch. Accounts left after the last entry
// are ignored.
//
// =============================================================================

package layout

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// =============================================================================
// NAME CHECK
// =============================================================================

// NameCheck selects how fixed account names are compared during a walk.
// Filers rename fixed accounts often enough that comparing codes only is the
// default.
type NameCheck int

const (
	NameCheckOff NameCheck = iota
	NameCheckStrict
	NameCheckFold
)

// ParseNameCheck maps "off", "strict" or "fold" to a NameCheck.
func ParseNameCheck(s string) (NameCheck, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return NameCheckOff, nil
	case "strict":
		return NameCheckStrict, nil
	case "fold":
		return NameCheckFold, nil
	}
	return NameCheckOff, fmt.Errorf("%w: name check '%s'", types.ErrInvalidValue, s)
}

func (c NameCheck) String() string {
	switch c {
	case NameCheckStrict:
		return "strict"
	case NameCheckFold:
		return "fold"
	default:
		return "off"
	}
}

// Match reports whether an account name matches an expected name. An empty
// expected name matches anything.
func (c NameCheck) Match(name, expected string) bool {
	if expected == "" {
		return true
	}
	switch c {
	case NameCheckStrict:
		return name == expected
	case NameCheckFold:
		return FoldName(name) == FoldName(expected)
	default:
		return true
	}
}

// FoldName lowercases a name, strips its accents and collapses whitespace.
func FoldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// =============================================================================
// LAYOUT ERROR
// =============================================================================

// LayoutError describes why a walk failed. Err is ErrLayoutMismatch or
// ErrTooFewAccounts.
type LayoutError struct {
	Err   error
	Index int

	Code string
	Name string

	ExpectedCode string
	ExpectedName string
}

func (e *LayoutError) Error() string {
	if e.Err == types.ErrTooFewAccounts {
		return fmt.Sprintf("missing account data at index %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("%v: account '%s' - '%s' at index %d (expected: '%s' - '%s')",
		e.Err, e.Code, e.Name, e.Index, e.ExpectedCode, e.ExpectedName)
}

func (e *LayoutError) Unwrap() error {
	return e.Err
}

// =============================================================================
// WALK
// =============================================================================

// WalkResult is the outcome of a successful walk.
type WalkResult struct {
	Attributes Attributes

	// Aggregator is the final aggregator state, for the finish hook.
	Aggregator Aggregator

	// Consumed is the number of accounts read up to the last layout entry.
	// Accounts after it are left unread.
	Consumed int
}

// Walk matches accounts against a layout.
//
// PARAMETERS:
//   - accounts: The statement accounts in file order.
//   - l: The layout to match.
//   - check: The name comparison policy.
//   - agg: The initial aggregator state; nil means NoAggregator.
//
// RETURNS:
//   - The captured attributes, the final aggregator state and the number of
//     accounts consumed.
//   - A *LayoutError if the accounts do not fit the layout.
func Walk(accounts []types.Account, l *Layout, check NameCheck, agg Aggregator) (*WalkResult, error) {
	if agg == nil {
		agg = NoAggregator{}
	}

	attrs := Attributes{}
	next := 0

	for i, entry := range l.Entries() {
		for {
			if next >= len(accounts) {
				return nil, &LayoutError{
					Err:          types.ErrTooFewAccounts,
					Index:        i,
					ExpectedCode: entry.Code,
					ExpectedName: entry.Name,
				}
			}
			acc := accounts[next]
			next++

			if !acc.IsFixed || acc.Level() > l.MaxLevel() {
				agg = agg.Step(acc)
				continue
			}

			if acc.Code != entry.Code || !check.Match(acc.Name, entry.Name) {
				return nil, &LayoutError{
					Err:          types.ErrLayoutMismatch,
					Index:        i,
					Code:         acc.Code,
					Name:         acc.Name,
					ExpectedCode: entry.Code,
					ExpectedName: entry.Name,
				}
			}

			if entry.Attribute != "" {
				attrs.Set(entry.Attribute, acc.Quantity)
			}
			break
		}
	}

	return &WalkResult{Attributes: attrs, Aggregator: agg, Consumed: next}, nil
}
