package layout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

func industrialIncome(consolidated bool) []types.Account {
	net := "Lucro/Prejuízo do Período"
	if consolidated {
		net = "Lucro/Prejuízo Consolidado do Período"
	}
	return []types.Account{
		acc("3.01", "Receita de Venda de Bens e/ou Serviços", 1000, true),
		acc("3.02", "Custo dos Bens e/ou Serviços Vendidos", -600, true),
		acc("3.03", "Resultado Bruto", 400, true),
		acc("3.04", "Despesas/Receitas Operacionais", -150, true),
		acc("3.04.01", "Despesas com Vendas", -100, true),
		acc("3.04.01.01", "Depreciação e Amortização", -20, false),
		acc("3.04.02", "Despesas Gerais e Administrativas", -50, true),
		acc("3.05", "Resultado Antes do Resultado Financeiro e dos Tributos", 250, true),
		acc("3.06", "Resultado Financeiro", -50, true),
		acc("3.07", "Resultado Antes dos Tributos sobre o Lucro", 200, true),
		acc("3.08", "Imposto de Renda e Contribuição Social sobre o Lucro", -60, true),
		acc("3.09", "Resultado Líquido das Operações Continuadas", 140, true),
		acc("3.10", "Resultado Líquido de Operações Descontinuadas", 0, true),
		acc("3.11", net, 140, true),
	}
}

func TestMatchIndustrialDRE(t *testing.T) {
	m := NewMatcher(DefaultRegistry(), NameCheckStrict)

	attrs, err := m.Match(Key{Industrial, types.DRE, types.Consolidated}, 2021, industrialIncome(true))
	require.NoError(t, err)

	assert.Equal(t, "-20", value(t, attrs, AttrDepreciationAmort))
	assert.Equal(t, "270", value(t, attrs, AttrOperatingResult))
	assert.Equal(t, "-130", value(t, attrs, AttrOperatingIncomeExpenses))
	assert.Equal(t, "250", value(t, attrs, AttrOperatingProfit))
	assert.Equal(t, "140", value(t, attrs, AttrNetIncome))

	_, err = m.Match(Key{Industrial, types.DRE, types.Individual}, 2021, industrialIncome(true))
	assert.ErrorIs(t, err, types.ErrLayoutMismatch)
}

func TestMatchWithoutDepreciation(t *testing.T) {
	accounts := industrialIncome(false)
	accounts = append(accounts[:5], accounts[6:]...)

	attrs, err := NewMatcher(DefaultRegistry(), NameCheckOff).Match(Key{Industrial, types.DRE, types.Individual}, 2015, accounts)
	require.NoError(t, err)

	result, ok := attrs[AttrOperatingResult]
	require.True(t, ok)
	assert.False(t, result.Valid)
	assert.False(t, attrs[AttrDepreciationAmort].Valid)
	assert.Equal(t, "-150", value(t, attrs, AttrOperatingIncomeExpenses))
}

func TestMatchNoLayoutForYear(t *testing.T) {
	_, err := NewMatcher(DefaultRegistry(), NameCheckOff).Match(Key{Industrial, types.BPA, types.Individual}, 2005, industrialAssets())
	assert.ErrorIs(t, err, types.ErrLayoutMismatch)
}

func TestMatchUnknownKey(t *testing.T) {
	_, err := NewMatcher(NewBuilder().Build(), NameCheckOff).Match(Key{Industrial, types.DVA, types.Individual}, 2020, nil)
	assert.ErrorIs(t, err, types.ErrLayoutMismatch)
}

func TestMatchIndustrialBPPSubtractsEquity(t *testing.T) {
	l := industrialBPP2010()
	var accounts []types.Account
	for i, e := range l.Entries() {
		accounts = append(accounts, acc(e.Code, e.Name, int64(10*(i+1)), true))
	}
	accounts[0].Quantity = decimal.NewFromInt(1000)
	accounts[len(accounts)-1].Quantity = decimal.NewFromInt(400)

	attrs, err := NewMatcher(DefaultRegistry(), NameCheckStrict).Match(Key{Industrial, types.BPP, types.Individual}, 2020, accounts)
	require.NoError(t, err)
	assert.Equal(t, "600", value(t, attrs, AttrTotalLiabilities))
	assert.Equal(t, "400", value(t, attrs, AttrEquity))
}

func TestFinishFinancialBPA(t *testing.T) {
	attrs := Attributes{}
	attrs.Set(AttrTotalAssets, decimal.NewFromInt(10))
	require.NoError(t, finishFinancialBPA(attrs, nil))

	assert.Equal(t, "0", value(t, attrs, AttrReceivables))
	assert.False(t, attrs[AttrCurrentAssets].Valid)
	assert.False(t, attrs[AttrNoncurrentAssets].Valid)

	attrs.Set(AttrReceivables, decimal.NewFromInt(3))
	require.NoError(t, finishFinancialBPA(attrs, nil))
	assert.Equal(t, "3", value(t, attrs, AttrReceivables))
}

func TestFinishFinancialBPP(t *testing.T) {
	attrs := Attributes{}
	attrs.Set(AttrTotalLiabilities, decimal.NewFromInt(100))
	attrs.Set(AttrEquity, decimal.NewFromInt(30))
	require.NoError(t, finishFinancialBPP(attrs, nil))

	assert.Equal(t, "70", value(t, attrs, AttrTotalLiabilities))
	for _, name := range []string{AttrCurrentLiabilities, AttrCurrentLoans, AttrNoncurrentLiabilities, AttrNoncurrentLoans} {
		v, ok := attrs[name]
		assert.True(t, ok, name)
		assert.False(t, v.Valid, name)
	}
}

func TestFinishInsuranceBPPMissingEquity(t *testing.T) {
	attrs := Attributes{}
	attrs.Set(AttrTotalLiabilities, decimal.NewFromInt(100))
	assert.ErrorIs(t, finishInsuranceBPP(attrs, nil), types.ErrMissingValue)
}

func TestFinishFinancialDRE(t *testing.T) {
	attrs := Attributes{}
	attrs.Set(AttrEarningsBeforeTax, decimal.NewFromInt(80))
	attrs.Set(AttrOperatingIncomeExpenses, decimal.NewFromInt(-40))

	agg := NewDepreciationAmortization().Step(acc("3.04.09", "Depreciação e amortização", -5, false))
	require.NoError(t, finishFinancialDRE(attrs, agg))

	assert.Equal(t, "80", value(t, attrs, AttrOperatingProfit))
	assert.Equal(t, "0", value(t, attrs, AttrNonoperatingResult))
	assert.Equal(t, "85", value(t, attrs, AttrOperatingResult))
	assert.Equal(t, "-35", value(t, attrs, AttrOperatingIncomeExpenses))
}

func TestFinishInsuranceDRE(t *testing.T) {
	attrs := Attributes{}
	attrs.Set(attrAdministrativeExpenses, decimal.NewFromInt(-20))
	attrs.Set(attrEquityMethodIncome, decimal.NewFromInt(5))
	attrs.Set(AttrNonoperatingResult, decimal.NewFromInt(100))
	attrs.Set(AttrOperatingIncomeExpenses, decimal.NewFromInt(-7))

	require.NoError(t, finishInsuranceDRE(attrs, NoAggregator{}))

	assert.Equal(t, "85", value(t, attrs, AttrNonoperatingResult))
	assert.NotContains(t, attrs, attrAdministrativeExpenses)
	assert.NotContains(t, attrs, attrEquityMethodIncome)
	assert.False(t, attrs[AttrOperatingResult].Valid)
}
