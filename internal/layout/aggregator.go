package layout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Aggregator folds the accounts a layout walk does not match: filer-chosen
// subdivisions and fixed accounts deeper than the layout cares about. Step
// is called once per such account and returns the next state; it never
// modifies the receiver.
type Aggregator interface {
	Step(acc types.Account) Aggregator
}

// NoAggregator ignores every account.
type NoAggregator struct{}

func (NoAggregator) Step(types.Account) Aggregator { return NoAggregator{} }

// Substrings that mark depreciation and amortization accounts. Names vary
// across filers ("Depreciação e Amortização", "Depreciações/Amortizacão",
// "Depreciação" and "Amortização" as two accounts...).
const (
	depreciationMarker = "deprecia"
	amortizationMarker = "amortiza"
)

// maxPartialDA bounds the number of separate depreciation or amortization
// accounts that are summed.
const maxPartialDA = 2

// DepreciationAmortization finds the depreciation and amortization figure of
// an income statement among its non-matched accounts.
//
// An account naming both is the combined figure and ends the search. An
// account naming only one is added to a running total, up to two of them.
type DepreciationAmortization struct {
	total decimal.Decimal
	found int
}

// NewDepreciationAmortization returns an empty aggregator.
func NewDepreciationAmortization() Aggregator {
	return DepreciationAmortization{}
}

func (d DepreciationAmortization) Step(acc types.Account) Aggregator {
	if d.found >= maxPartialDA {
		return d
	}

	name := strings.ToLower(acc.Name)
	hasDepreciation := strings.Contains(name, depreciationMarker)
	hasAmortization := strings.Contains(name, amortizationMarker)

	switch {
	case hasDepreciation && hasAmortization:
		return DepreciationAmortization{total: acc.Quantity, found: maxPartialDA}
	case hasDepreciation || hasAmortization:
		if d.found == 0 {
			return DepreciationAmortization{total: acc.Quantity, found: 1}
		}
		return DepreciationAmortization{total: d.total.Add(acc.Quantity), found: d.found + 1}
	}
	return d
}

// Total returns the figure found, or an invalid value if there was none.
func (d DepreciationAmortization) Total() decimal.NullDecimal {
	if d.found == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d.total)
}

// totalOf extracts the depreciation and amortization figure from an
// aggregator's final state.
func totalOf(agg Aggregator) decimal.NullDecimal {
	if da, ok := agg.(DepreciationAmortization); ok {
		return da.Total()
	}
	return decimal.NullDecimal{}
}
