package layout

import (
	"hash/crc32"
	"sort"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// LayoutAccounts returns the fixed accounts with level <= maxLevel, which
// are the accounts a layout of that depth would be checked against.
func LayoutAccounts(accounts []types.Account, maxLevel int) []types.Account {
	var out []types.Account
	for _, acc := range accounts {
		if acc.IsFixed && acc.Level() <= maxLevel {
			out = append(out, acc)
		}
	}
	return out
}

// Fingerprint hashes the codes and names of the layout accounts of a
// statement. Statements filed under the same layout share a fingerprint.
func Fingerprint(accounts []types.Account, maxLevel int) uint32 {
	h := crc32.NewIEEE()
	for _, acc := range LayoutAccounts(accounts, maxLevel) {
		h.Write([]byte(acc.Code))
		h.Write([]byte(acc.Name))
	}
	return h.Sum32()
}

// CensusEntry is one distinct layout found by a census.
type CensusEntry struct {
	Fingerprint uint32
	Accounts    []types.Account
	Members     []string

	seen int
}

// Census groups statements by the layout they were filed under.
type Census struct {
	MaxLevel int

	entries map[uint32]*CensusEntry
}

// NewCensus returns an empty census of layouts up to maxLevel deep.
func NewCensus(maxLevel int) *Census {
	return &Census{MaxLevel: maxLevel, entries: map[uint32]*CensusEntry{}}
}

// Add records the statement of one member (e.g. a company name) and returns
// its fingerprint.
func (c *Census) Add(member string, accounts []types.Account) uint32 {
	fp := Fingerprint(accounts, c.MaxLevel)

	e, ok := c.entries[fp]
	if !ok {
		e = &CensusEntry{
			Fingerprint: fp,
			Accounts:    LayoutAccounts(accounts, c.MaxLevel),
			seen:        len(c.entries),
		}
		c.entries[fp] = e
	}
	e.Members = append(e.Members, member)
	return fp
}

// Len returns the number of distinct layouts.
func (c *Census) Len() int {
	return len(c.entries)
}

// Entries returns the layouts, most used first. Ties keep discovery order.
func (c *Census) Entries() []*CensusEntry {
	out := make([]*CensusEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Members) != len(out[j].Members) {
			return len(out[i].Members) > len(out[j].Members)
		}
		return out[i].seen < out[j].seen
	})
	return out
}
