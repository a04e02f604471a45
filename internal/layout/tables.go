// =============================================================================
// DFP/ITR Reader - Built-in Layouts
// =============================================================================
//
// The CVM charts of accounts for industrial companies, financial
// institutions and insurers, as filed since 2010. Consolidated layouts are
// derived from the individual ones by replacing the entries whose names
// differ.
//
// =============================================================================

package layout

import "github.com/ginjaninja78/dfpitr-reader/internal/types"

// DefaultRegistry returns a registry with every built-in layout.
func DefaultRegistry() *Registry {
	return DefaultBuilder().Build()
}

// DefaultBuilder returns a builder preloaded with every built-in layout, so
// callers can prepend their own before building.
func DefaultBuilder() *Builder {
	b := NewBuilder()

	both := func(c Category, kind types.StatementKind, individual, consolidated []*Layout, finish FinishFunc, agg func() Aggregator) {
		b.Register(Key{c, kind, types.Individual}, Spec{Layouts: individual, Finish: finish, NewAggregator: agg})
		b.Register(Key{c, kind, types.Consolidated}, Spec{Layouts: consolidated, Finish: finish, NewAggregator: agg})
	}

	industrialBPA := []*Layout{industrialBPA2010()}
	both(Industrial, types.BPA, industrialBPA, industrialBPA, nil, nil)
	both(Industrial, types.BPP,
		[]*Layout{industrialBPP2010()},
		[]*Layout{industrialBPP2010().Add("2.03", "Patrimônio Líquido Consolidado", AttrEquity)},
		finishIndustrialBPP, nil)
	both(Industrial, types.DRE,
		[]*Layout{industrialDRE2010()},
		[]*Layout{industrialDRE2010().Add("3.11", "Lucro/Prejuízo Consolidado do Período", AttrNetIncome)},
		finishCommonDRE, NewDepreciationAmortization)

	financialBPA := []*Layout{financialBPA2010(), financialBPA2018(), financialBPA2020()}
	both(Financial, types.BPA, financialBPA, financialBPA, finishFinancialBPA, nil)
	both(Financial, types.BPP,
		[]*Layout{financialBPP2010(), financialBPP2020()},
		[]*Layout{
			financialBPP2010().Add("2.08", "Patrimônio Líquido Consolidado", AttrEquity),
			financialBPP2020().Add("2.07", "Patrimônio Líquido Consolidado", AttrEquity),
		},
		finishFinancialBPP, nil)
	both(Financial, types.DRE,
		[]*Layout{financialDRE2010(), financialDRE2020()},
		[]*Layout{
			financialDRE2010().Add("3.09", "Lucro/Prejuízo Consolidado do Período", AttrNetIncome),
			financialDRE2020().Add("3.11", "Lucro ou Prejuízo Líquido Consolidado do Período", AttrNetIncome),
		},
		finishFinancialDRE, NewDepreciationAmortization)

	insuranceBPA := []*Layout{insuranceBPA2010()}
	insuranceBPP := []*Layout{insuranceBPP2010()}
	both(Insurance, types.BPA, insuranceBPA, insuranceBPA, nil, nil)
	both(Insurance, types.BPP, insuranceBPP, insuranceBPP, finishInsuranceBPP, nil)
	both(Insurance, types.DRE,
		[]*Layout{insuranceDRE2010()},
		[]*Layout{insuranceDRE2010().Add("3.13", "Lucro/Prejuízo Consolidado do Período", AttrNetIncome)},
		finishInsuranceDRE, NewDepreciationAmortization)

	return b
}

// =============================================================================
// INDUSTRIAL
// =============================================================================

func industrialBPA2010() *Layout {
	return New(2010, 0).
		Add("1", "Ativo Total", AttrTotalAssets).
		Add("1.01", "Ativo Circulante", AttrCurrentAssets).
		Add("1.01.01", "Caixa e Equivalentes de Caixa", AttrCashAndCashEquivalents).
		Add("1.01.02", "Aplicações Financeiras", AttrFinancialInvestments).
		Add("1.01.03", "Contas a Receber", AttrReceivables).
		Add("1.01.04", "Estoques", "").
		Add("1.01.05", "Ativos Biológicos", "").
		Add("1.01.06", "Tributos a Recuperar", "").
		Add("1.01.07", "Despesas Antecipadas", "").
		Add("1.01.08", "Outros Ativos Circulantes", "").
		Add("1.02", "Ativo Não Circulante", AttrNoncurrentAssets).
		Add("1.02.01", "Ativo Realizável a Longo Prazo", "").
		Add("1.02.02", "Investimentos", AttrInvestments).
		Add("1.02.03", "Imobilizado", AttrFixedAssets).
		Add("1.02.04", "Intangível", AttrIntangibleAssets)
}

func industrialBPP2010() *Layout {
	return New(2010, 0).
		Add("2", "Passivo Total", AttrTotalLiabilities).
		Add("2.01", "Passivo Circulante", AttrCurrentLiabilities).
		Add("2.01.01", "Obrigações Sociais e Trabalhistas", "").
		Add("2.01.02", "Fornecedores", "").
		Add("2.01.03", "Obrigações Fiscais", "").
		Add("2.01.04", "Empréstimos e Financiamentos", AttrCurrentLoans).
		Add("2.01.05", "Outras Obrigações", "").
		Add("2.01.06", "Provisões", "").
		Add("2.01.07", "Passivos sobre Ativos Não-Correntes a Venda e Descontinuados", "").
		Add("2.02", "Passivo Não Circulante", AttrNoncurrentLiabilities).
		Add("2.02.01", "Empréstimos e Financiamentos", AttrNoncurrentLoans).
		Add("2.02.02", "Outras Obrigações", "").
		Add("2.02.03", "Tributos Diferidos", "").
		Add("2.02.04", "Provisões", "").
		Add("2.02.05", "Passivos sobre Ativos Não-Correntes a Venda e Descontinuados", "").
		Add("2.02.06", "Lucros e Receitas a Apropriar", "").
		Add("2.03", "Patrimônio Líquido", AttrEquity)
}

func industrialDRE2010() *Layout {
	return New(2010, 0).
		Add("3.01", "Receita de Venda de Bens e/ou Serviços", AttrRevenue).
		Add("3.02", "Custo dos Bens e/ou Serviços Vendidos", AttrCosts).
		Add("3.03", "Resultado Bruto", AttrGrossProfit).
		Add("3.04", "Despesas/Receitas Operacionais", AttrOperatingIncomeExpenses).
		Add("3.05", "Resultado Antes do Resultado Financeiro e dos Tributos", AttrOperatingProfit).
		Add("3.06", "Resultado Financeiro", AttrNonoperatingResult).
		Add("3.07", "Resultado Antes dos Tributos sobre o Lucro", AttrEarningsBeforeTax).
		Add("3.08", "Imposto de Renda e Contribuição Social sobre o Lucro", AttrTaxExpenses).
		Add("3.09", "Resultado Líquido das Operações Continuadas", AttrContinuingOperations).
		Add("3.10", "Resultado Líquido de Operações Descontinuadas", AttrDiscontinuedOperations).
		Add("3.11", "Lucro/Prejuízo do Período", AttrNetIncome)
}

// =============================================================================
// FINANCIAL INSTITUTIONS
// =============================================================================

func financialBPA2010() *Layout {
	return New(2010, 2017).
		Add("1", "Ativo Total", AttrTotalAssets).
		Add("1.01", "Caixa e Equivalentes de Caixa", AttrCashAndCashEquivalents).
		Add("1.02", "Aplicações Financeiras", AttrFinancialInvestments).
		Add("1.03", "Empréstimos e Recebíveis", AttrReceivables).
		Add("1.04", "Tributos Diferidos", "").
		Add("1.05", "Outros Ativos", "").
		Add("1.06", "Investimentos", AttrInvestments).
		Add("1.07", "Imobilizado", AttrFixedAssets).
		Add("1.08", "Intangível", AttrIntangibleAssets)
}

func financialBPA2018() *Layout {
	return New(2018, 2019).
		Add("1", "Ativo Total", AttrTotalAssets).
		Add("1.01", "Caixa e Equivalentes de Caixa", AttrCashAndCashEquivalents).
		Add("1.02", "Ativos Financeiros", AttrFinancialInvestments).
		Add("1.03", "Tributos Diferidos", "").
		Add("1.04", "Outros Ativos", "").
		Add("1.05", "Investimentos", AttrInvestments).
		Add("1.06", "Imobilizado", AttrFixedAssets).
		Add("1.07", "Intangível", AttrIntangibleAssets)
}

func financialBPA2020() *Layout {
	return New(2020, 0).
		Add("1", "Ativo Total", AttrTotalAssets).
		Add("1.01", "Caixa e Equivalentes de Caixa", AttrCashAndCashEquivalents).
		Add("1.02", "Ativos Financeiros", AttrFinancialInvestments).
		Add("1.03", "Tributos", "").
		Add("1.04", "Outros Ativos", "").
		Add("1.05", "Investimentos", AttrInvestments).
		Add("1.06", "Imobilizado", AttrFixedAssets).
		Add("1.07", "Intangível", AttrIntangibleAssets)
}

func financialBPP2010() *Layout {
	return New(2010, 2019).
		Add("2", "Passivo Total", AttrTotalLiabilities).
		Add("2.01", "Passivos Financeiros para Negociação", "").
		Add("2.02", "Outros Passivos Financeiros ao Valor Justo no Resultado", "").
		Add("2.03", "Passivos Financeiros ao Custo Amortizado", "").
		Add("2.04", "Provisões", "").
		Add("2.05", "Passivos Fiscais", "").
		Add("2.06", "Outros Passivos", "").
		Add("2.07", "Passivos sobre Ativos Não Correntes a Venda e Descontinuados", "").
		Add("2.08", "Patrimônio Líquido", AttrEquity)
}

func financialBPP2020() *Layout {
	return New(2020, 0).
		Add("2", "Passivo Total", AttrTotalLiabilities).
		Add("2.01", "Passivos Financeiros Avaliados ao Valor Justo através do Resultado", "").
		Add("2.02", "Passivos Financeiros ao Custo Amortizado", "").
		Add("2.03", "Provisões", "").
		Add("2.04", "Passivos Fiscais", "").
		Add("2.05", "Outros Passivos", "").
		Add("2.06", "Passivos sobre Ativos Não Correntes a Venda e Descontinuados", "").
		Add("2.07", "Patrimônio Líquido", AttrEquity)
}

func financialDRE2010() *Layout {
	return New(2010, 2019).
		Add("3.01", "Receitas da Intermediação Financeira", AttrRevenue).
		Add("3.02", "Despesas da Intermediação Financeira", AttrCosts).
		Add("3.03", "Resultado Bruto Intermediação Financeira", AttrGrossProfit).
		Add("3.04", "Outras Despesas/Receitas Operacionais", AttrOperatingIncomeExpenses).
		Add("3.05", "Resultado Antes dos Tributos sobre o Lucro", AttrEarningsBeforeTax).
		Add("3.06", "Imposto de Renda e Contribuição Social sobre o Lucro", AttrTaxExpenses).
		Add("3.07", "Resultado Líquido das Operações Continuadas", AttrContinuingOperations).
		Add("3.08", "Resultado Líquido das Operações Descontinuadas", AttrDiscontinuedOperations).
		Add("3.09", "Lucro/Prejuízo do Período", AttrNetIncome)
}

func financialDRE2020() *Layout {
	return New(2020, 0).
		Add("3.01", "Receitas de Intermediação Financeira", AttrRevenue).
		Add("3.02", "Despesas de Intermediação Financeira", AttrCosts).
		Add("3.03", "Resultado Bruto de Intermediação Financeira", AttrGrossProfit).
		Add("3.04", "Outras Despesas e Receitas Operacionais", AttrOperatingIncomeExpenses).
		Add("3.05", "Resultado antes dos Tributos sobre o Lucro", AttrEarningsBeforeTax).
		Add("3.06", "Imposto de Renda e Contribuição Social sobre o Lucro", AttrTaxExpenses).
		Add("3.07", "Lucro ou Prejuízo das Operações Continuadas", AttrContinuingOperations).
		Add("3.08", "Resultado Líquido das Operações Descontinuadas", AttrDiscontinuedOperations).
		Add("3.09", "Lucro ou Prejuízo antes das Participações e Contribuições Estatutárias", "").
		Add("3.10", "Participações nos Lucros e Contribuições Estatutárias", "").
		Add("3.11", "Lucro ou Prejuízo Líquido do Período", AttrNetIncome)
}

// =============================================================================
// INSURANCE
// =============================================================================

func insuranceBPA2010() *Layout {
	return New(2010, 0).
		Add("1", "Ativo Total", AttrTotalAssets).
		Add("1.01", "Ativo Circulante", AttrCurrentAssets).
		Add("1.01.01", "Caixa e Equivalentes de Caixa", AttrCashAndCashEquivalents).
		Add("1.01.02", "Aplicações Financeiras", AttrFinancialInvestments).
		Add("1.01.03", "Créditos das Operações", "").
		Add("1.01.04", "Títulos e Créditos a Receber", AttrReceivables).
		Add("1.01.05", "Outros Valores e Bens", "").
		Add("1.01.06", "Empréstimos e Depósitos Compulsórios", "").
		Add("1.01.07", "Despesas Antecipadas", "").
		Add("1.01.08", "Despesas de Comercialização Diferidas", "").
		Add("1.01.09", "Outros Ativos Circulantes", "").
		Add("1.02", "Ativo Não Circulante", AttrNoncurrentAssets).
		Add("1.02.01", "Ativo Realizável a Longo Prazo", "").
		Add("1.02.02", "Investimentos", AttrInvestments).
		Add("1.02.03", "Imobilizado", AttrFixedAssets).
		Add("1.02.04", "Intangível", AttrIntangibleAssets)
}

func insuranceBPP2010() *Layout {
	return New(2010, 0).
		Add("2", "Passivo Total", AttrTotalLiabilities).
		Add("2.01", "Passivo Circulante", AttrCurrentLiabilities).
		Add("2.02", "Passivo Não Circulante", AttrNoncurrentLiabilities).
		Add("2.03", "Patrimônio Líquido Consolidado", AttrEquity)
}

func insuranceDRE2010() *Layout {
	return New(2010, 0).
		Add("3.01", "Receitas das Operações", AttrRevenue).
		Add("3.02", "Sinistros e Despesas das Operações", AttrCosts).
		Add("3.03", "Resultado Bruto", AttrGrossProfit).
		Add("3.04", "Despesas Administrativas", attrAdministrativeExpenses).
		Add("3.05", "Outras Receitas e Despesas Operacionais", AttrOperatingIncomeExpenses).
		Add("3.06", "Resultado de Equivalência Patrimonial", attrEquityMethodIncome).
		Add("3.07", "Resultado Antes do Resultado Financeiro e dos Tributos", AttrOperatingProfit).
		Add("3.08", "Resultado Financeiro", AttrNonoperatingResult).
		Add("3.09", "Resultado Antes dos Tributos sobre o Lucro", AttrEarningsBeforeTax).
		Add("3.10", "Imposto de Renda e Contribuição Social sobre o Lucro", AttrTaxExpenses).
		Add("3.11", "Resultado Líquido das Operações Continuadas", AttrContinuingOperations).
		Add("3.12", "Resultado Líquido de Operações Descontinuadas", AttrDiscontinuedOperations).
		Add("3.13", "Lucro/Prejuízo do Período", AttrNetIncome)
}
