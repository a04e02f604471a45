// Package currency rescales statement quantities to base currency units.
package currency

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

var thousand = decimal.NewFromInt(1000)

// Multiplier returns the scale factor of a currency size tag.
func Multiplier(size types.CurrencySize) (decimal.Decimal, error) {
	switch size {
	case types.SizeUnit:
		return decimal.NewFromInt(1), nil
	case types.SizeThousand:
		return thousand, nil
	}
	return decimal.Decimal{}, fmt.Errorf("%w: unknown currency size '%s'", types.ErrInvalidValue, size)
}

// Normalize returns a copy of s expressed in base units. A statement that
// is already in base units is returned unchanged, which makes Normalize
// idempotent. Scaled quantities are exact products; nothing is rounded.
func Normalize(s types.Statement) (types.Statement, error) {
	if s.CurrencySize == types.SizeUnit {
		return s, nil
	}

	multiplier, err := Multiplier(s.CurrencySize)
	if err != nil {
		return types.Statement{}, err
	}

	out := s
	out.CurrencySize = types.SizeUnit

	if s.Accounts != nil {
		out.Accounts = make([]types.Account, len(s.Accounts))
		for i, acc := range s.Accounts {
			acc.Quantity = scale(acc.Quantity, multiplier)
			out.Accounts[i] = acc
		}
	}

	if s.DMPLAccounts != nil {
		out.DMPLAccounts = make([]types.DMPLAccount, len(s.DMPLAccounts))
		for i, acc := range s.DMPLAccounts {
			acc.ShareCapital = scale(acc.ShareCapital, multiplier)
			acc.CapitalReserveAndTreasuryShares = scale(acc.CapitalReserveAndTreasuryShares, multiplier)
			acc.ProfitReserves = scale(acc.ProfitReserves, multiplier)
			acc.UnappropriatedRetainedEarnings = scale(acc.UnappropriatedRetainedEarnings, multiplier)
			acc.OtherComprehensiveIncome = scale(acc.OtherComprehensiveIncome, multiplier)
			acc.ControllingInterest = scale(acc.ControllingInterest, multiplier)
			acc.NonControllingInterest = scaleNull(acc.NonControllingInterest, multiplier)
			acc.ConsolidatedEquity = scaleNull(acc.ConsolidatedEquity, multiplier)
			out.DMPLAccounts[i] = acc
		}
	}

	return out, nil
}

// NormalizeAll normalizes the given statements in order and stops at the
// first failure. A nil statement is a missing value.
func NormalizeAll(stmts ...*types.Statement) ([]types.Statement, error) {
	out := make([]types.Statement, 0, len(stmts))
	for _, s := range stmts {
		if s == nil {
			return nil, fmt.Errorf("%w: statement not available", types.ErrMissingValue)
		}
		n, err := Normalize(*s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Kind, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func scale(q, multiplier decimal.Decimal) decimal.Decimal {
	return q.Mul(multiplier)
}

func scaleNull(q decimal.NullDecimal, multiplier decimal.Decimal) decimal.NullDecimal {
	if !q.Valid {
		return q
	}
	return decimal.NewNullDecimal(scale(q.Decimal, multiplier))
}
