package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

func fold(agg Aggregator, accounts ...types.Account) Aggregator {
	for _, a := range accounts {
		agg = agg.Step(a)
	}
	return agg
}

func TestDepreciationAmortizationCombined(t *testing.T) {
	agg := fold(NewDepreciationAmortization(),
		acc("3.04.01", "Depreciação", -10, false),
		acc("3.04.02", "Depreciações e Amortizações", -30, false),
		acc("3.04.03", "Amortização", -5, false),
	)

	da := totalOf(agg)
	require.True(t, da.Valid)
	assert.Equal(t, "-30", da.Decimal.String())
}

func TestDepreciationAmortizationPartials(t *testing.T) {
	agg := fold(NewDepreciationAmortization(),
		acc("3.04.01", "DEPRECIAÇÃO", -10, false),
		acc("3.04.02", "Vendas", -99, false),
		acc("3.04.03", "Amortização", -5, false),
		acc("3.04.04", "Amortização de ágio", -1000, false),
	)

	assert.Equal(t, "-15", totalOf(agg).Decimal.String())
}

func TestDepreciationAmortizationNone(t *testing.T) {
	agg := fold(NewDepreciationAmortization(), acc("3.04.01", "Despesas com Vendas", -10, false))
	assert.False(t, totalOf(agg).Valid)
}

func TestDepreciationAmortizationIsAFold(t *testing.T) {
	start := NewDepreciationAmortization()
	next := start.Step(acc("3.04.01", "Depreciação", -10, false))

	assert.False(t, totalOf(start).Valid)
	assert.True(t, totalOf(next).Valid)
}

func TestNoAggregator(t *testing.T) {
	agg := fold(NoAggregator{}, acc("1", "Depreciação e Amortização", 1, false))
	assert.Equal(t, NoAggregator{}, agg)
	assert.False(t, totalOf(agg).Valid)
}
