package layout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Attribute names produced by the built-in layouts.
const (
	AttrTotalAssets             = "total_assets"
	AttrCurrentAssets           = "current_assets"
	AttrCashAndCashEquivalents  = "cash_and_cash_equivalents"
	AttrFinancialInvestments    = "financial_investments"
	AttrReceivables             = "receivables"
	AttrNoncurrentAssets        = "noncurrent_assets"
	AttrInvestments             = "investments"
	AttrFixedAssets             = "fixed_assets"
	AttrIntangibleAssets        = "intangible_assets"
	AttrTotalLiabilities        = "total_liabilities"
	AttrCurrentLiabilities      = "current_liabilities"
	AttrCurrentLoans            = "current_loans_and_financing"
	AttrNoncurrentLiabilities   = "noncurrent_liabilities"
	AttrNoncurrentLoans         = "noncurrent_loans_and_financing"
	AttrEquity                  = "equity"
	AttrRevenue                 = "revenue"
	AttrCosts                   = "costs"
	AttrGrossProfit             = "gross_profit"
	AttrOperatingIncomeExpenses = "operating_income_and_expenses"
	AttrOperatingResult         = "operating_result"
	AttrDepreciationAmort       = "depreciation_and_amortization"
	AttrOperatingProfit         = "operating_profit"
	AttrNonoperatingResult      = "nonoperating_result"
	AttrEarningsBeforeTax       = "earnings_before_tax"
	AttrTaxExpenses             = "tax_expenses"
	AttrContinuingOperations    = "continuing_operation_result"
	AttrDiscontinuedOperations  = "discontinued_operation_result"
	AttrNetIncome               = "net_income"

	// Captured by insurance income statements and folded into the
	// nonoperating result by their finish hook.
	attrAdministrativeExpenses = "_administrative_expenses"
	attrEquityMethodIncome     = "_equity_method_income"
)

// Attributes maps attribute names to captured quantities. A present but
// invalid value means the attribute does not apply to the statement.
type Attributes map[string]decimal.NullDecimal

// Set stores a value.
func (a Attributes) Set(name string, v decimal.Decimal) {
	a[name] = decimal.NewNullDecimal(v)
}

// SetNull marks an attribute as not applicable.
func (a Attributes) SetNull(name string) {
	a[name] = decimal.NullDecimal{}
}

// Value returns an attribute and whether it holds a value.
func (a Attributes) Value(name string) (decimal.Decimal, bool) {
	v, ok := a[name]
	if !ok || !v.Valid {
		return decimal.Decimal{}, false
	}
	return v.Decimal, true
}

// Required returns an attribute that must hold a value.
func (a Attributes) Required(name string) (decimal.Decimal, error) {
	v, ok := a.Value(name)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: attribute '%s'", types.ErrMissingValue, name)
	}
	return v, nil
}

// pop removes and returns a required attribute.
func (a Attributes) pop(name string) (decimal.Decimal, error) {
	v, err := a.Required(name)
	if err != nil {
		return v, err
	}
	delete(a, name)
	return v, nil
}

// subtract stores a[from] - a[name] under from.
func (a Attributes) subtract(from, name string) error {
	total, err := a.Required(from)
	if err != nil {
		return err
	}
	v, err := a.Required(name)
	if err != nil {
		return err
	}
	a.Set(from, total.Sub(v))
	return nil
}
