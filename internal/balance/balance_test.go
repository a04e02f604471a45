package balance

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/dfpitr-reader/internal/layout"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

func acc(code, name string, quantity int64) types.Account {
	return types.Account{Code: code, Name: name, Quantity: decimal.NewFromInt(quantity), IsFixed: true}
}

func stmt(kind types.StatementKind, size types.CurrencySize, accounts ...types.Account) *types.Statement {
	return &types.Statement{Kind: kind, FiscalYearOrder: types.LastFiscalYear, CurrencySize: size, Accounts: accounts}
}

func industrialBPA() *types.Statement {
	return stmt(types.BPA, types.SizeThousand,
		acc("1", "Ativo Total", 1000),
		acc("1.01", "Ativo Circulante", 400),
		acc("1.01.01", "Caixa e Equivalentes de Caixa", 50),
		acc("1.01.02", "Aplicações Financeiras", 60),
		acc("1.01.03", "Contas a Receber", 70),
		acc("1.01.04", "Estoques", 80),
		acc("1.01.05", "Ativos Biológicos", 0),
		acc("1.01.06", "Tributos a Recuperar", 90),
		acc("1.01.07", "Despesas Antecipadas", 20),
		acc("1.01.08", "Outros Ativos Circulantes", 30),
		acc("1.02", "Ativo Não Circulante", 600),
		acc("1.02.01", "Ativo Realizável a Longo Prazo", 100),
		acc("1.02.02", "Investimentos", 150),
		acc("1.02.03", "Imobilizado", 300),
		acc("1.02.04", "Intangível", 50),
	)
}

func industrialBPP() *types.Statement {
	return stmt(types.BPP, types.SizeThousand,
		acc("2", "Passivo Total", 1000),
		acc("2.01", "Passivo Circulante", 300),
		acc("2.01.01", "Obrigações Sociais e Trabalhistas", 10),
		acc("2.01.02", "Fornecedores", 100),
		acc("2.01.03", "Obrigações Fiscais", 10),
		acc("2.01.04", "Empréstimos e Financiamentos", 120),
		acc("2.01.05", "Outras Obrigações", 40),
		acc("2.01.06", "Provisões", 20),
		acc("2.01.07", "Passivos sobre Ativos Não-Correntes a Venda e Descontinuados", 0),
		acc("2.02", "Passivo Não Circulante", 300),
		acc("2.02.01", "Empréstimos e Financiamentos", 200),
		acc("2.02.02", "Outras Obrigações", 50),
		acc("2.02.03", "Tributos Diferidos", 30),
		acc("2.02.04", "Provisões", 20),
		acc("2.02.05", "Passivos sobre Ativos Não-Correntes a Venda e Descontinuados", 0),
		acc("2.02.06", "Lucros e Receitas a Apropriar", 0),
		acc("2.03", "Patrimônio Líquido Consolidado", 400),
	)
}

func financialDRE() *types.Statement {
	return stmt(types.DRE, types.SizeUnit,
		acc("3.01", "Receitas de Intermediação Financeira", 900),
		acc("3.02", "Despesas de Intermediação Financeira", -500),
		acc("3.03", "Resultado Bruto de Intermediação Financeira", 400),
		acc("3.04", "Outras Despesas e Receitas Operacionais", -100),
		acc("3.05", "Resultado antes dos Tributos sobre o Lucro", 300),
		acc("3.06", "Imposto de Renda e Contribuição Social sobre o Lucro", -90),
		acc("3.07", "Lucro ou Prejuízo das Operações Continuadas", 210),
		acc("3.08", "Resultado Líquido das Operações Descontinuadas", 0),
		acc("3.09", "Lucro ou Prejuízo antes das Participações e Contribuições Estatutárias", 210),
		acc("3.10", "Participações nos Lucros e Contribuições Estatutárias", -10),
		acc("3.11", "Lucro ou Prejuízo Líquido Consolidado do Período", 200),
	)
}

func document(statements ...*types.Statement) *types.Document {
	coll := &types.Collection{BalanceType: types.Consolidated, Statements: map[types.StatementKind]*types.Statement{}}
	for _, s := range statements {
		coll.Statements[s.Kind] = s
	}
	return &types.Document{
		ReferenceDate: time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC),
		CVMCode:       9512,
		Consolidated:  &types.GroupedCollection{Last: coll},
	}
}

func extractor() *Extractor {
	return NewExtractor(layout.NewMatcher(layout.DefaultRegistry(), layout.NameCheckStrict))
}

func TestExtractIndustrialBalanceSheet(t *testing.T) {
	b, err := extractor().Extract(document(industrialBPA(), industrialBPP(), financialDRE()), types.Consolidated, types.LastFiscalYear)
	require.NoError(t, err)
	require.NoError(t, b.BalanceSheetErr)

	s := b.BalanceSheet
	assert.Equal(t, layout.Industrial, s.Category)
	assert.Equal(t, "1000000", s.TotalAssets.String())
	assert.Equal(t, "400000", s.CurrentAssets.Decimal.String())
	assert.Equal(t, "600000", s.TotalLiabilities.String(), "equity is removed from the total")
	assert.Equal(t, "400000", s.Equity.String())
	assert.Equal(t, "320000", s.GrossDebt().Decimal.String())
	assert.Equal(t, "270000", s.NetDebt().Decimal.String())
}

func TestExtractFallsBackToFinancialIncomeStatement(t *testing.T) {
	b, err := extractor().Extract(document(industrialBPA(), industrialBPP(), financialDRE()), types.Consolidated, types.LastFiscalYear)
	require.NoError(t, err)
	require.NoError(t, b.IncomeStatementErr)

	s := b.IncomeStatement
	assert.Equal(t, layout.Financial, s.Category)
	assert.Equal(t, "300", s.EBIT().String())
	assert.Equal(t, "300", s.EBT().String())
	assert.True(t, s.NonoperatingResult.IsZero())
	assert.False(t, s.EBITDA().Valid)
	assert.Equal(t, "200", s.NetIncome.String())
}

func TestExtractFailuresStayPerStatement(t *testing.T) {
	bpp := industrialBPP()
	bpp.Accounts = bpp.Accounts[:5]

	b, err := extractor().Extract(document(industrialBPA(), bpp, financialDRE()), types.Consolidated, types.LastFiscalYear)
	require.NoError(t, err)

	assert.Nil(t, b.BalanceSheet)
	require.Error(t, b.BalanceSheetErr)
	assert.NotNil(t, b.IncomeStatement)

	var fallback *FallbackError
	require.True(t, errors.As(b.BalanceSheetErr, &fallback))
	assert.Len(t, fallback.Attempts, 3)
	assert.Equal(t, types.BPP, fallback.Attempts[0].Kind)
	assert.ErrorIs(t, b.BalanceSheetErr, types.ErrTooFewAccounts)
	assert.ErrorIs(t, b.BalanceSheetErr, types.ErrLayoutMismatch)
	assert.Contains(t, b.BalanceSheetErr.Error(), "industrial BPP")
}

func TestExtractInvalidCurrencySize(t *testing.T) {
	bpa := industrialBPA()
	bpa.CurrencySize = "MILHAO"

	b, err := extractor().Extract(document(bpa, industrialBPP(), financialDRE()), types.Consolidated, types.LastFiscalYear)
	require.NoError(t, err)
	assert.ErrorIs(t, b.BalanceSheetErr, types.ErrInvalidValue)
}

func TestExtractMissingCollection(t *testing.T) {
	_, err := extractor().Extract(document(industrialBPA()), types.Individual, types.LastFiscalYear)
	assert.ErrorIs(t, err, types.ErrMissingValue)

	b, err := extractor().Extract(document(industrialBPA()), types.Consolidated, types.LastFiscalYear)
	require.NoError(t, err)
	assert.ErrorIs(t, b.BalanceSheetErr, types.ErrMissingValue)
	assert.ErrorIs(t, b.IncomeStatementErr, types.ErrMissingValue)
}

func TestDebtIsNullWithoutLoans(t *testing.T) {
	s := &BalanceSheet{CashAndCashEquivalents: decimal.NewFromInt(5)}
	assert.False(t, s.GrossDebt().Valid)
	assert.False(t, s.NetDebt().Valid)
}
