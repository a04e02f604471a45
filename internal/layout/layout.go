// =============================================================================
// DFP/ITR Reader - Account Layouts
// =============================================================================
//
// A Layout is the ordered list of fixed accounts a statement is expected to
// carry over a range of reference years, with the attribute each captured
// account feeds.
//
// EXAMPLE (industrial BPA, 2010 onwards):
//   1        Ativo Total                 -> total_assets
//   1.01     Ativo Circulante            -> current_assets
//   1.01.01  Caixa e Equivalentes...     -> cash_and_cash_equivalents
//   ...
//   1.02.04  Intangível                  -> intangible_assets
//
// =============================================================================

package layout

import (
	"fmt"
	"strings"
)

// Entry is one expected account of a layout. Name may be empty, in which
// case only the code is compared. Attribute is empty for accounts that are
// checked but not captured.
type Entry struct {
	Code      string
	Name      string
	Attribute string
}

// Level returns the depth of the entry code.
func (e Entry) Level() int {
	return strings.Count(e.Code, ".") + 1
}

// Layout is an ordered list of entries valid from FirstYear to LastYear
// inclusive. LastYear 0 means the layout is still in use.
type Layout struct {
	FirstYear int
	LastYear  int

	entries  []Entry
	maxLevel int
}

// New returns an empty layout for the given year range.
func New(firstYear, lastYear int) *Layout {
	return &Layout{FirstYear: firstYear, LastYear: lastYear}
}

// Add appends an entry. An entry with a code already in the layout replaces
// the existing one in place, which is how consolidated variants are derived
// from individual layouts.
func (l *Layout) Add(code, name, attribute string) *Layout {
	entry := Entry{Code: code, Name: name, Attribute: attribute}

	replaced := false
	for i := range l.entries {
		if l.entries[i].Code == code {
			l.entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		l.entries = append(l.entries, entry)
	}

	if level := entry.Level(); level > l.maxLevel {
		l.maxLevel = level
	}
	return l
}

// Entries returns the entries in walk order.
func (l *Layout) Entries() []Entry {
	return l.entries
}

// Len returns the number of entries.
func (l *Layout) Len() int {
	return len(l.entries)
}

// MaxLevel is the deepest level of any entry code.
func (l *Layout) MaxLevel() int {
	return l.maxLevel
}

// Covers reports whether the layout is valid for a reference year.
func (l *Layout) Covers(year int) bool {
	if year < l.FirstYear {
		return false
	}
	return l.LastYear == 0 || year <= l.LastYear
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	c := *l
	c.entries = append([]Entry(nil), l.entries...)
	return &c
}

func (l *Layout) String() string {
	if l.LastYear == 0 {
		return fmt.Sprintf("layout %d-", l.FirstYear)
	}
	return fmt.Sprintf("layout %d-%d", l.FirstYear, l.LastYear)
}
