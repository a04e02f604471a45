// =============================================================================
// DFP/ITR Reader - Balances
// =============================================================================
//
// Typed balance sheets and income statements, extracted from a document's
// statements by matching them against the layout registry.
//
// =============================================================================

package balance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/dfpitr-reader/internal/layout"
)

// BalanceSheet combines the attributes of a BPA and a BPP. Null fields do not
// apply to the category the statements were filed under.
type BalanceSheet struct {
	Category layout.Category

	TotalAssets            decimal.Decimal
	CurrentAssets          decimal.NullDecimal
	CashAndCashEquivalents decimal.Decimal
	FinancialInvestments   decimal.Decimal
	Receivables            decimal.Decimal
	NoncurrentAssets       decimal.NullDecimal
	Investments            decimal.Decimal
	FixedAssets            decimal.Decimal
	IntangibleAssets       decimal.Decimal

	TotalLiabilities            decimal.Decimal
	CurrentLiabilities          decimal.NullDecimal
	CurrentLoansAndFinancing    decimal.NullDecimal
	NoncurrentLiabilities       decimal.NullDecimal
	NoncurrentLoansAndFinancing decimal.NullDecimal

	Equity decimal.Decimal
}

// GrossDebt is |current loans + noncurrent loans|, or null when either is.
func (b *BalanceSheet) GrossDebt() decimal.NullDecimal {
	if !b.CurrentLoansAndFinancing.Valid || !b.NoncurrentLoansAndFinancing.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(b.CurrentLoansAndFinancing.Decimal.Add(b.NoncurrentLoansAndFinancing.Decimal).Abs())
}

// NetDebt is gross debt minus cash and cash equivalents.
func (b *BalanceSheet) NetDebt() decimal.NullDecimal {
	gross := b.GrossDebt()
	if !gross.Valid {
		return gross
	}
	return decimal.NewNullDecimal(gross.Decimal.Sub(b.CashAndCashEquivalents))
}

// IncomeStatement holds the attributes of a DRE.
type IncomeStatement struct {
	Category layout.Category

	Revenue                     decimal.Decimal
	Costs                       decimal.Decimal
	GrossProfit                 decimal.Decimal
	OperatingIncomeAndExpenses  decimal.Decimal
	OperatingResult             decimal.NullDecimal
	DepreciationAndAmortization decimal.NullDecimal
	OperatingProfit             decimal.Decimal
	NonoperatingResult          decimal.Decimal
	EarningsBeforeTax           decimal.Decimal
	TaxExpenses                 decimal.Decimal
	ContinuingOperationResult   decimal.Decimal
	DiscontinuedOperationResult decimal.Decimal
	NetIncome                   decimal.Decimal
}

// EBITDA is the operating result.
func (s *IncomeStatement) EBITDA() decimal.NullDecimal { return s.OperatingResult }

// EBIT is the operating profit.
func (s *IncomeStatement) EBIT() decimal.Decimal { return s.OperatingProfit }

// EBT is the result before taxes.
func (s *IncomeStatement) EBT() decimal.Decimal { return s.EarningsBeforeTax }

// =============================================================================
// ATTRIBUTE BINDING
// =============================================================================

// binder copies attributes into struct fields, remembering the first
// missing required one.
type binder struct {
	attrs layout.Attributes
	err   error
}

func (b *binder) required(name string, dst *decimal.Decimal) {
	if b.err != nil {
		return
	}
	v, err := b.attrs.Required(name)
	if err != nil {
		b.err = err
		return
	}
	*dst = v
}

func (b *binder) optional(name string, dst *decimal.NullDecimal) {
	*dst = b.attrs[name]
}

func newBalanceSheet(category layout.Category, bpa, bpp layout.Attributes) (*BalanceSheet, error) {
	s := &BalanceSheet{Category: category}

	a := binder{attrs: bpa}
	a.required(layout.AttrTotalAssets, &s.TotalAssets)
	a.optional(layout.AttrCurrentAssets, &s.CurrentAssets)
	a.required(layout.AttrCashAndCashEquivalents, &s.CashAndCashEquivalents)
	a.required(layout.AttrFinancialInvestments, &s.FinancialInvestments)
	a.required(layout.AttrReceivables, &s.Receivables)
	a.optional(layout.AttrNoncurrentAssets, &s.NoncurrentAssets)
	a.required(layout.AttrInvestments, &s.Investments)
	a.required(layout.AttrFixedAssets, &s.FixedAssets)
	a.required(layout.AttrIntangibleAssets, &s.IntangibleAssets)
	if a.err != nil {
		return nil, fmt.Errorf("BPA: %w", a.err)
	}

	p := binder{attrs: bpp}
	p.required(layout.AttrTotalLiabilities, &s.TotalLiabilities)
	p.optional(layout.AttrCurrentLiabilities, &s.CurrentLiabilities)
	p.optional(layout.AttrCurrentLoans, &s.CurrentLoansAndFinancing)
	p.optional(layout.AttrNoncurrentLiabilities, &s.NoncurrentLiabilities)
	p.optional(layout.AttrNoncurrentLoans, &s.NoncurrentLoansAndFinancing)
	p.required(layout.AttrEquity, &s.Equity)
	if p.err != nil {
		return nil, fmt.Errorf("BPP: %w", p.err)
	}

	return s, nil
}

func newIncomeStatement(category layout.Category, attrs layout.Attributes) (*IncomeStatement, error) {
	s := &IncomeStatement{Category: category}

	b := binder{attrs: attrs}
	b.required(layout.AttrRevenue, &s.Revenue)
	b.required(layout.AttrCosts, &s.Costs)
	b.required(layout.AttrGrossProfit, &s.GrossProfit)
	b.required(layout.AttrOperatingIncomeExpenses, &s.OperatingIncomeAndExpenses)
	b.optional(layout.AttrOperatingResult, &s.OperatingResult)
	b.optional(layout.AttrDepreciationAmort, &s.DepreciationAndAmortization)
	b.required(layout.AttrOperatingProfit, &s.OperatingProfit)
	b.required(layout.AttrNonoperatingResult, &s.NonoperatingResult)
	b.required(layout.AttrEarningsBeforeTax, &s.EarningsBeforeTax)
	b.required(layout.AttrTaxExpenses, &s.TaxExpenses)
	b.required(layout.AttrContinuingOperations, &s.ContinuingOperationResult)
	b.required(layout.AttrDiscontinuedOperations, &s.DiscontinuedOperationResult)
	b.required(layout.AttrNetIncome, &s.NetIncome)
	if b.err != nil {
		return nil, fmt.Errorf("DRE: %w", b.err)
	}

	return s, nil
}
