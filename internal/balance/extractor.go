package balance

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/dfpitr-reader/internal/currency"
	"github.com/ginjaninja78/dfpitr-reader/internal/layout"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Attempt is one failed category tried by the extractor.
type Attempt struct {
	Category layout.Category
	Kind     types.StatementKind
	Err      error
}

// FallbackError lists every category attempt that failed for one statement.
type FallbackError struct {
	What     string
	Attempts []Attempt
}

func (e *FallbackError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s %s: %v", a.Category, a.Kind, a.Err)
	}
	return fmt.Sprintf("invalid %s: [%s]", e.What, strings.Join(parts, "; "))
}

// Unwrap exposes every attempt error to errors.Is and errors.As.
func (e *FallbackError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// Extractor builds typed balances from a document's statements.
type Extractor struct {
	Matcher *layout.Matcher
}

// NewExtractor returns an Extractor over a matcher.
func NewExtractor(m *layout.Matcher) *Extractor {
	return &Extractor{Matcher: m}
}

// Balances is the outcome of extracting one collection. A statement that
// could not be extracted is nil with its error set; the other is unaffected.
type Balances struct {
	BalanceType types.BalanceType
	Order       types.FiscalYearOrder

	BalanceSheet    *BalanceSheet
	BalanceSheetErr error

	IncomeStatement    *IncomeStatement
	IncomeStatementErr error
}

// Extract builds the balance sheet and income statement of one collection
// of a document. The company's known category is tried first.
//
// RETURNS:
//   - The balances; each statement carries its own error.
//   - ErrMissingValue if the document has no such collection.
func (e *Extractor) Extract(doc *types.Document, bt types.BalanceType, order types.FiscalYearOrder) (*Balances, error) {
	coll := doc.Collection(bt, order)
	if coll == nil {
		return nil, fmt.Errorf("%w: no %s statements for %s fiscal year", types.ErrMissingValue, bt, order)
	}

	year := doc.ReferenceDate.Year()
	hint := layout.CategoryForCVMCode(doc.CVMCode)

	out := &Balances{BalanceType: bt, Order: order}
	out.BalanceSheet, out.BalanceSheetErr = e.BalanceSheet(coll, year, hint)
	out.IncomeStatement, out.IncomeStatementErr = e.IncomeStatement(coll, year, hint)
	return out, nil
}

// BalanceSheet matches the BPA and BPP of a collection. Both must match
// under the same category.
func (e *Extractor) BalanceSheet(coll *types.Collection, year int, hint layout.Category) (*BalanceSheet, error) {
	stmts, err := currency.NormalizeAll(coll.Statement(types.BPA), coll.Statement(types.BPP))
	if err != nil {
		return nil, fmt.Errorf("balance sheet: %w", err)
	}
	bpa, bpp := stmts[0], stmts[1]

	fallback := &FallbackError{What: "BPA or BPP"}
	for _, category := range layout.FallbackOrder(hint) {
		bpaAttrs, err := e.Matcher.Match(layout.Key{Category: category, Kind: types.BPA, Mode: coll.BalanceType}, year, bpa.Accounts)
		if err != nil {
			fallback.Attempts = append(fallback.Attempts, Attempt{category, types.BPA, err})
			continue
		}

		bppAttrs, err := e.Matcher.Match(layout.Key{Category: category, Kind: types.BPP, Mode: coll.BalanceType}, year, bpp.Accounts)
		if err != nil {
			fallback.Attempts = append(fallback.Attempts, Attempt{category, types.BPP, err})
			continue
		}

		sheet, err := newBalanceSheet(category, bpaAttrs, bppAttrs)
		if err != nil {
			fallback.Attempts = append(fallback.Attempts, Attempt{category, types.BPA, err})
			continue
		}
		return sheet, nil
	}
	return nil, fallback
}

// IncomeStatement matches the DRE of a collection.
func (e *Extractor) IncomeStatement(coll *types.Collection, year int, hint layout.Category) (*IncomeStatement, error) {
	stmts, err := currency.NormalizeAll(coll.Statement(types.DRE))
	if err != nil {
		return nil, fmt.Errorf("income statement: %w", err)
	}
	dre := stmts[0]

	fallback := &FallbackError{What: "DRE"}
	for _, category := range layout.FallbackOrder(hint) {
		attrs, err := e.Matcher.Match(layout.Key{Category: category, Kind: types.DRE, Mode: coll.BalanceType}, year, dre.Accounts)
		if err != nil {
			fallback.Attempts = append(fallback.Attempts, Attempt{category, types.DRE, err})
			continue
		}

		stmt, err := newIncomeStatement(category, attrs)
		if err != nil {
			fallback.Attempts = append(fallback.Attempts, Attempt{category, types.DRE, err})
			continue
		}
		return stmt, nil
	}
	return nil, fallback
}

// Find returns the balances of one balance type and fiscal year, or nil.
func Find(all []*Balances, bt types.BalanceType, order types.FiscalYearOrder) *Balances {
	for _, b := range all {
		if b != nil && b.BalanceType == bt && b.Order == order {
			return b
		}
	}
	return nil
}
