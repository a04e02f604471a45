package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

func statement(size types.CurrencySize, quantities ...int64) types.Statement {
	s := types.Statement{Kind: types.BPA, CurrencySize: size}
	for _, q := range quantities {
		s.Accounts = append(s.Accounts, types.Account{Code: "1", Quantity: decimal.NewFromInt(q), IsFixed: true})
	}
	return s
}

func quantities(s types.Statement) []string {
	var out []string
	for _, acc := range s.Accounts {
		out = append(out, acc.Quantity.String())
	}
	return out
}

func TestNormalizeThousand(t *testing.T) {
	s := statement(types.SizeThousand, 146901002, -32, 0)

	n, err := Normalize(s)
	require.NoError(t, err)

	assert.Equal(t, types.SizeUnit, n.CurrencySize)
	assert.Equal(t, []string{"146901002000", "-32000", "0"}, quantities(n))
	assert.Equal(t, []string{"146901002", "-32", "0"}, quantities(s), "input is left untouched")
}

func TestNormalizeIsIdempotent(t *testing.T) {
	s := statement(types.SizeThousand, 10, 20)

	once, err := Normalize(s)
	require.NoError(t, err)
	twice, err := Normalize(once)
	require.NoError(t, err)

	assert.Equal(t, quantities(once), quantities(twice))
	assert.Equal(t, once.CurrencySize, twice.CurrencySize)
}

func TestNormalizeUnitIsNoop(t *testing.T) {
	s := statement(types.SizeUnit, 7)
	n, err := Normalize(s)
	require.NoError(t, err)
	assert.Equal(t, s, n)
}

func TestNormalizeRejectsUnknownTag(t *testing.T) {
	_, err := Normalize(statement("MILHAO", 1))
	assert.ErrorIs(t, err, types.ErrInvalidValue)
}

func TestNormalizeKeepsFractions(t *testing.T) {
	q := decimal.RequireFromString("1.2345")
	s := types.Statement{CurrencySize: types.SizeThousand, Accounts: []types.Account{{Quantity: q}}}
	n, err := Normalize(s)
	require.NoError(t, err)
	assert.True(t, n.Accounts[0].Quantity.Equal(q.Mul(decimal.NewFromInt(1000))))
	assert.Equal(t, "1234.5", n.Accounts[0].Quantity.String())
}

func TestNormalizeDMPLAccounts(t *testing.T) {
	s := types.Statement{
		Kind:         types.DMPL,
		CurrencySize: types.SizeThousand,
		DMPLAccounts: []types.DMPLAccount{{
			ShareCapital:           decimal.NewFromInt(5),
			NonControllingInterest: decimal.NewNullDecimal(decimal.NewFromInt(2)),
		}},
	}

	n, err := Normalize(s)
	require.NoError(t, err)

	acc := n.DMPLAccounts[0]
	assert.Equal(t, "5000", acc.ShareCapital.String())
	assert.Equal(t, "2000", acc.NonControllingInterest.Decimal.String())
	assert.False(t, acc.ConsolidatedEquity.Valid)
}

func TestNormalizeAll(t *testing.T) {
	a := statement(types.SizeThousand, 1)
	b := statement(types.SizeUnit, 2)

	out, err := NormalizeAll(&a, &b)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"1000"}, quantities(out[0]))

	_, err = NormalizeAll(&a, nil)
	assert.ErrorIs(t, err, types.ErrMissingValue)
}
