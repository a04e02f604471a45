package layout

import (
	"github.com/shopspring/decimal"
)

// Finish hooks per category and statement kind.

// finishIndustrialBPP removes equity from the total, which the files report
// as liabilities plus equity.
func finishIndustrialBPP(attrs Attributes, _ Aggregator) error {
	return attrs.subtract(AttrTotalLiabilities, AttrEquity)
}

// finishFinancialBPA defaults receivables, which only the 2010-2017 layout
// captures, and nulls the current/noncurrent split financial institutions
// do not report.
func finishFinancialBPA(attrs Attributes, _ Aggregator) error {
	if _, ok := attrs[AttrReceivables]; !ok {
		attrs.Set(AttrReceivables, decimal.Zero)
	}
	attrs.SetNull(AttrCurrentAssets)
	attrs.SetNull(AttrNoncurrentAssets)
	return nil
}

func finishFinancialBPP(attrs Attributes, _ Aggregator) error {
	attrs.SetNull(AttrCurrentLiabilities)
	attrs.SetNull(AttrCurrentLoans)
	attrs.SetNull(AttrNoncurrentLiabilities)
	attrs.SetNull(AttrNoncurrentLoans)
	return attrs.subtract(AttrTotalLiabilities, AttrEquity)
}

func finishInsuranceBPP(attrs Attributes, _ Aggregator) error {
	attrs.SetNull(AttrCurrentLoans)
	attrs.SetNull(AttrNoncurrentLoans)
	return attrs.subtract(AttrTotalLiabilities, AttrEquity)
}

// finishCommonDRE derives the operating result (EBITDA) from the operating
// profit (EBIT) and the depreciation and amortization figure. Without that
// figure the operating result is not applicable.
func finishCommonDRE(attrs Attributes, agg Aggregator) error {
	incomeAndExpenses, err := attrs.Required(AttrOperatingIncomeExpenses)
	if err != nil {
		return err
	}

	da := totalOf(agg)
	if da.Valid {
		operatingProfit, err := attrs.Required(AttrOperatingProfit)
		if err != nil {
			return err
		}
		attrs.Set(AttrOperatingResult, operatingProfit.Add(da.Decimal.Abs()))
		incomeAndExpenses = incomeAndExpenses.Add(da.Decimal.Abs())
	} else {
		attrs.SetNull(AttrOperatingResult)
	}

	attrs[AttrDepreciationAmort] = da
	attrs.Set(AttrOperatingIncomeExpenses, incomeAndExpenses)
	return nil
}

// finishFinancialDRE treats the result before taxes as the operating profit:
// financial intermediation is the operation.
func finishFinancialDRE(attrs Attributes, agg Aggregator) error {
	ebt, err := attrs.Required(AttrEarningsBeforeTax)
	if err != nil {
		return err
	}
	attrs.Set(AttrOperatingProfit, ebt)
	attrs.Set(AttrNonoperatingResult, decimal.Zero)
	return finishCommonDRE(attrs, agg)
}

func finishInsuranceDRE(attrs Attributes, agg Aggregator) error {
	adminExpenses, err := attrs.pop(attrAdministrativeExpenses)
	if err != nil {
		return err
	}
	equityMethodIncome, err := attrs.pop(attrEquityMethodIncome)
	if err != nil {
		return err
	}
	nonoperating, err := attrs.Required(AttrNonoperatingResult)
	if err != nil {
		return err
	}
	attrs.Set(AttrNonoperatingResult, nonoperating.Add(adminExpenses).Add(equityMethodIncome))
	return finishCommonDRE(attrs, agg)
}
