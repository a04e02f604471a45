// =============================================================================
// DFP/ITR Reader - Statement Readers
// =============================================================================
//
// This module turns one satellite batch (all rows of one document in one
// statement file) into statements. A batch usually holds two statements, one
// per fiscal year order, and ITR batches may hold extra sub-period income
// statements. Rows are grouped by:
//   - ORDEM_EXERC + DT_FIM_EXERC                (BPA, BPP)
//   - ORDEM_EXERC + DT_INI_EXERC + DT_FIM_EXERC (DRE, DRA, DFC, DMPL, DVA)
//
// Groups keep the order in which they first appear in the batch.
//
// A malformed row only costs the statement it belongs to: Read returns the
// statements it could build together with one error per skipped statement.
//
// =============================================================================

package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/dfpitr-reader/internal/csvparser"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Field names of statement files.
const (
	FieldFiscalYearOrder = "ORDEM_EXERC"
	FieldCurrency        = "MOEDA"
	FieldCurrencySize    = "ESCALA_MOEDA"
	FieldPeriodStart     = "DT_INI_EXERC"
	FieldPeriodEnd       = "DT_FIM_EXERC"
	FieldGroup           = "GRUPO_DFP"
	FieldColumn          = "COLUNA_DF"
	FieldAccountCode     = "CD_CONTA"
	FieldAccountName     = "DS_CONTA"
	FieldAccountValue    = "VL_CONTA"
	FieldAccountFixed    = "ST_CONTA_FIXA"
)

// DMPLColumnShiftYear is the first reference year whose DMPL files carry
// values one column to the right of their COLUNA_DF label.
const DMPLColumnShiftYear = 2020

// Options controls how statements are read.
type Options struct {
	// ShiftDMPLColumns realigns DMPL values with their column labels.
	ShiftDMPLColumns bool
}

// OptionsFor returns the options for a document with the given reference
// date.
func OptionsFor(referenceDate time.Time) Options {
	return Options{ShiftDMPLColumns: referenceDate.Year() >= DMPLColumnShiftYear}
}

var fiscalYearOrders = map[string]types.FiscalYearOrder{
	"ÚLTIMO":    types.LastFiscalYear,
	"PENÚLTIMO": types.SecondToLastFiscalYear,
}

var currencies = map[string]string{
	"REAL": types.CurrencyBRL,
}

// =============================================================================
// READING
// =============================================================================

// Read builds the statements of one satellite batch.
//
// PARAMETERS:
//   - kind: The statement kind of the file the rows come from.
//   - rows: The rows of one batch, in file order.
//   - opts: Reading options for the document being assembled.
//
// RETURNS:
//   - The statements that were read successfully, in first-appearance order.
//   - One error per statement (or ungroupable row) that was skipped.
func Read(kind types.StatementKind, rows []csvparser.Row, opts Options) ([]types.Statement, []error) {
	groups, errs := groupRows(kind, rows)

	statements := make([]types.Statement, 0, len(groups))
	for _, g := range groups {
		stmt, err := readStatement(kind, g.rows, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s statement at line %d: %w", kind, g.rows[0].Line(), err))
			continue
		}
		statements = append(statements, stmt)
	}

	return statements, errs
}

type rowGroup struct {
	key  string
	rows []csvparser.Row
}

func groupKeyFields(kind types.StatementKind) []string {
	if kind == types.BPA || kind == types.BPP {
		return []string{FieldFiscalYearOrder, FieldPeriodEnd}
	}
	return []string{FieldFiscalYearOrder, FieldPeriodStart, FieldPeriodEnd}
}

func groupRows(kind types.StatementKind, rows []csvparser.Row) ([]*rowGroup, []error) {
	var (
		groups []*rowGroup
		errs   []error
		index  = map[string]*rowGroup{}
		fields = groupKeyFields(kind)
	)

	for _, row := range rows {
		var key strings.Builder
		var keyErr error
		for _, field := range fields {
			v, err := row.Required(field)
			if err != nil {
				keyErr = err
				break
			}
			key.WriteString(v)
			key.WriteByte(';')
		}
		if keyErr != nil {
			errs = append(errs, fmt.Errorf("%s row at line %d: %w", kind, row.Line(), keyErr))
			continue
		}

		g, ok := index[key.String()]
		if !ok {
			g = &rowGroup{key: key.String()}
			index[g.key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}

	return groups, errs
}

func readStatement(kind types.StatementKind, rows []csvparser.Row, opts Options) (types.Statement, error) {
	first := rows[0]
	stmt := types.Statement{Kind: kind}

	var err error
	if stmt.FiscalYearOrder, err = readFiscalYearOrder(first); err != nil {
		return stmt, err
	}
	if stmt.Currency, err = readCurrency(first); err != nil {
		return stmt, err
	}
	size, err := first.Required(FieldCurrencySize)
	if err != nil {
		return stmt, err
	}
	stmt.CurrencySize = types.CurrencySize(size)

	if kind != types.BPA && kind != types.BPP {
		if stmt.PeriodStart, err = first.RequiredDate(FieldPeriodStart); err != nil {
			return stmt, err
		}
	}
	if stmt.PeriodEnd, err = first.RequiredDate(FieldPeriodEnd); err != nil {
		return stmt, err
	}

	switch kind {
	case types.DFC:
		if stmt.Method, err = readDFCMethod(first); err != nil {
			return stmt, err
		}
		stmt.Accounts, err = readAccounts(rows)
	case types.DMPL:
		stmt.DMPLAccounts, err = readDMPLAccounts(rows, opts)
	default:
		stmt.Accounts, err = readAccounts(rows)
	}
	return stmt, err
}

func readFiscalYearOrder(row csvparser.Row) (types.FiscalYearOrder, error) {
	v, err := row.Required(FieldFiscalYearOrder)
	if err != nil {
		return 0, err
	}
	order, ok := fiscalYearOrders[v]
	if !ok {
		return 0, fmt.Errorf("%w: unknown fiscal year order '%s' at field '%s'", types.ErrInvalidValue, v, FieldFiscalYearOrder)
	}
	return order, nil
}

func readCurrency(row csvparser.Row) (string, error) {
	v, err := row.Required(FieldCurrency)
	if err != nil {
		return "", err
	}
	currency, ok := currencies[v]
	if !ok {
		return "", fmt.Errorf("%w: unknown currency '%s' at field '%s'", types.ErrInvalidValue, v, FieldCurrency)
	}
	return currency, nil
}

// readDFCMethod parses the method out of GRUPO_DFP, which reads like
// "DF Consolidado - Demonstração do Fluxo de Caixa (Método Indireto)".
func readDFCMethod(row csvparser.Row) (types.DFCMethod, error) {
	group, err := row.Required(FieldGroup)
	if err != nil {
		return types.NoDFCMethod, err
	}

	_, after, found := strings.Cut(group, "(")
	if !found {
		return types.NoDFCMethod, fmt.Errorf("%w: unexpected value '%s' at field '%s'", types.ErrInvalidValue, group, FieldGroup)
	}

	name, _, _ := strings.Cut(after, ")")
	switch name {
	case "Método Direto":
		return types.DirectMethod, nil
	case "Método Indireto":
		return types.IndirectMethod, nil
	}
	return types.NoDFCMethod, fmt.Errorf("%w: unknown DFC method '%s' at field '%s'", types.ErrInvalidValue, name, FieldGroup)
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// ReadAccount reads the account columns of a statement row.
func ReadAccount(row csvparser.Row) (types.Account, error) {
	code, err := row.Required(FieldAccountCode)
	if err != nil {
		return types.Account{}, err
	}
	name, _ := row.Optional(FieldAccountName)

	quantity, err := row.RequiredDecimal(FieldAccountValue)
	if err != nil {
		return types.Account{}, err
	}

	fixed, err := row.Required(FieldAccountFixed)
	if err != nil {
		return types.Account{}, err
	}

	return types.Account{
		Code:     code,
		Name:     name,
		Quantity: quantity,
		IsFixed:  fixed == "S",
	}, nil
}

func readAccounts(rows []csvparser.Row) ([]types.Account, error) {
	accounts := make([]types.Account, 0, len(rows))
	for _, row := range rows {
		acc, err := ReadAccount(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line(), err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// =============================================================================
// DMPL
// =============================================================================

// COLUNA_DF labels of the statement of changes in equity.
const (
	ColumnShareCapital             = "Capital Social Integralizado"
	ColumnCapitalReserves          = "Reservas de Capital, Opções Outorgadas e Ações em Tesouraria"
	ColumnProfitReserves           = "Reservas de Lucro"
	ColumnRetainedEarnings         = "Lucros ou Prejuízos Acumulados"
	ColumnOtherComprehensiveIncome = "Outros Resultados Abrangentes"
	ColumnControllingInterest      = "Patrimônio Líquido"
	ColumnNonControllingInterest   = "Participação dos Não Controladores"
	ColumnConsolidatedEquity       = "Patrimônio Líquido Consolidado"
	ColumnValuationAdjustments     = "Ajustes de Avaliação Patrimonial"
)

// column is one COLUNA_DF value of a DMPL account, in file order.
type column struct {
	name  string
	value decimal.Decimal
}

type columns []column

// set stores a value, replacing a column of the same name in place.
func (cs columns) set(name string, value decimal.Decimal) columns {
	for i := range cs {
		if cs[i].name == name {
			cs[i].value = value
			return cs
		}
	}
	return append(cs, column{name: name, value: value})
}

func (cs columns) get(name string) (decimal.Decimal, bool) {
	for _, c := range cs {
		if c.name == name {
			return c.value, true
		}
	}
	return decimal.Decimal{}, false
}

func (cs columns) required(name string) (decimal.Decimal, error) {
	v, ok := cs.get(name)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: missing DMPL column '%s'", types.ErrMissingValue, name)
	}
	return v, nil
}

func (cs columns) optional(name string) decimal.NullDecimal {
	v, ok := cs.get(name)
	return decimal.NullDecimal{Decimal: v, Valid: ok}
}

// shift moves every value from the fourth column on back under the label
// of the column before it. The fourth value belongs to the valuation
// adjustments column, which the files leave out of COLUNA_DF.
func (cs columns) shift() columns {
	shifted := make(columns, 0, len(cs))
	prev := ""
	for i, c := range cs {
		switch {
		case i < 3:
			shifted = shifted.set(c.name, c.value)
		case i == 3:
			shifted = shifted.set(ColumnValuationAdjustments, c.value)
		default:
			shifted = shifted.set(prev, c.value)
		}
		prev = c.name
	}
	return shifted
}

// readDMPLAccounts folds consecutive rows with the same account name into
// one DMPL account, one row per column.
func readDMPLAccounts(rows []csvparser.Row, opts Options) ([]types.DMPLAccount, error) {
	var (
		accounts []types.DMPLAccount
		last     *types.Account
		values   columns
	)

	flush := func() error {
		if opts.ShiftDMPLColumns {
			values = values.shift()
		}
		acc, err := newDMPLAccount(*last, values)
		if err != nil {
			return fmt.Errorf("account '%s': %w", last.Code, err)
		}
		accounts = append(accounts, acc)
		values = nil
		return nil
	}

	for _, row := range rows {
		name, err := row.RequiredAllowEmpty(FieldColumn)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line(), err)
		}
		acc, err := ReadAccount(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line(), err)
		}

		if last != nil && acc.Name != last.Name {
			if err := flush(); err != nil {
				return nil, err
			}
		}

		values = values.set(name, acc.Quantity)
		last = &acc
	}

	if last != nil {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func newDMPLAccount(acc types.Account, values columns) (types.DMPLAccount, error) {
	out := types.DMPLAccount{
		Code:                   acc.Code,
		Name:                   acc.Name,
		IsFixed:                acc.IsFixed,
		NonControllingInterest: values.optional(ColumnNonControllingInterest),
		ConsolidatedEquity:     values.optional(ColumnConsolidatedEquity),
	}

	required := []struct {
		name string
		dst  *decimal.Decimal
	}{
		{ColumnShareCapital, &out.ShareCapital},
		{ColumnCapitalReserves, &out.CapitalReserveAndTreasuryShares},
		{ColumnProfitReserves, &out.ProfitReserves},
		{ColumnRetainedEarnings, &out.UnappropriatedRetainedEarnings},
		{ColumnOtherComprehensiveIncome, &out.OtherComprehensiveIncome},
		{ColumnControllingInterest, &out.ControllingInterest},
	}
	for _, r := range required {
		v, err := values.required(r.name)
		if err != nil {
			return types.DMPLAccount{}, err
		}
		*r.dst = v
	}

	return out, nil
}
