// =============================================================================
// DFP/ITR Reader - Shared Types
// =============================================================================
//
// This package contains the domain types shared across the reader packages to
// avoid import cycles. Types defined here are used by:
//   - batch, statement, fiscal (building documents)
//   - layout, balance, currency (interpreting statements)
//   - xmlwriter, validation, converter (exporting results)
//
// =============================================================================

package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BatchKey identifies the rows of one document inside a tabular stream.
// Equal natural keys always produce equal BatchKeys.
type BatchKey uint32

// =============================================================================
// ENUMERATIONS
// =============================================================================

// StatementKind identifies one of the financial statements carried by a
// DFP/ITR filing.
type StatementKind int

const (
	BPA StatementKind = iota + 1
	BPP
	DRE
	DRA
	DFC
	DMPL
	DVA
)

// StatementKinds lists every kind in archive order.
var StatementKinds = []StatementKind{BPA, BPP, DRE, DRA, DFC, DMPL, DVA}

var statementKindNames = map[StatementKind]string{
	BPA:  "BPA",
	BPP:  "BPP",
	DRE:  "DRE",
	DRA:  "DRA",
	DFC:  "DFC",
	DMPL: "DMPL",
	DVA:  "DVA",
}

var statementKindDescriptions = map[StatementKind]string{
	BPA:  "Balanço Patrimonial Ativo",
	BPP:  "Balanço Patrimonial Passivo",
	DRE:  "Demonstração de Resultado",
	DRA:  "Demonstração de Resultado Abrangente",
	DFC:  "Demonstração de Fluxo de Caixa",
	DMPL: "Demonstração das Mutações do Patrimônio Líquido",
	DVA:  "Demonstração de Valor Adicionado",
}

func (k StatementKind) String() string {
	if name, ok := statementKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Description returns the Portuguese name of the statement.
func (k StatementKind) Description() string {
	return statementKindDescriptions[k]
}

// ParseStatementKind accepts the short names ("BPA", "dre", ...).
func ParseStatementKind(s string) (StatementKind, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for kind, name := range statementKindNames {
		if name == s {
			return kind, true
		}
	}
	return 0, false
}

// BalanceType tells individual statements from consolidated ones.
type BalanceType int

const (
	Individual BalanceType = iota
	Consolidated
)

// BalanceTypes lists both balance types, individual first.
var BalanceTypes = []BalanceType{Individual, Consolidated}

func (b BalanceType) String() string {
	if b == Consolidated {
		return "consolidated"
	}
	return "individual"
}

// FiscalYearOrder is the ORDEM_EXERC tag of a statement row.
type FiscalYearOrder int

const (
	LastFiscalYear FiscalYearOrder = iota + 1
	SecondToLastFiscalYear
)

// FiscalYearOrders lists both orders, last first.
var FiscalYearOrders = []FiscalYearOrder{LastFiscalYear, SecondToLastFiscalYear}

func (o FiscalYearOrder) String() string {
	switch o {
	case LastFiscalYear:
		return "last"
	case SecondToLastFiscalYear:
		return "second_to_last"
	default:
		return "unknown"
	}
}

// DocumentType is the CATEG_DOC value of a head row.
type DocumentType int

const (
	UnknownDocument DocumentType = iota
	FCA
	DFP
	ITR
)

func (d DocumentType) String() string {
	switch d {
	case FCA:
		return "FCA"
	case DFP:
		return "DFP"
	case ITR:
		return "ITR"
	default:
		return "UNKNOWN"
	}
}

// ParseDocumentType maps a CATEG_DOC value to a DocumentType.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FCA":
		return FCA, true
	case "DFP":
		return DFP, true
	case "ITR":
		return ITR, true
	}
	return UnknownDocument, false
}

// DFCMethod is the method used to prepare a cash flow statement.
type DFCMethod int

const (
	NoDFCMethod DFCMethod = iota
	DirectMethod
	IndirectMethod
)

func (m DFCMethod) String() string {
	switch m {
	case DirectMethod:
		return "direct"
	case IndirectMethod:
		return "indirect"
	default:
		return ""
	}
}

// CurrencySize is the raw ESCALA_MOEDA tag. Only SizeUnit and SizeThousand
// are legal; anything else is rejected by the currency normalizer.
type CurrencySize string

const (
	SizeUnit     CurrencySize = "UNIDADE"
	SizeThousand CurrencySize = "MIL"
)

// CurrencyBRL is the only MOEDA value seen in DFP/ITR files.
const CurrencyBRL = "REAL"

// =============================================================================
// ACCOUNTS AND STATEMENTS
// =============================================================================

// Account is one line item of a statement.
type Account struct {
	Code     string
	Name     string
	Quantity decimal.Decimal

	// IsFixed marks canonical chart-of-accounts positions, as opposed to
	// subdivisions chosen by the filer.
	IsFixed bool
}

// Level is the depth of the account code ("1" is 1, "1.01.02" is 3).
func (a Account) Level() int {
	return strings.Count(a.Code, ".") + 1
}

// DMPLAccount is one line of the statement of changes in equity, folded
// across its COLUNA_DF columns.
type DMPLAccount struct {
	Code    string
	Name    string
	IsFixed bool

	ShareCapital                    decimal.Decimal
	CapitalReserveAndTreasuryShares decimal.Decimal
	ProfitReserves                  decimal.Decimal
	UnappropriatedRetainedEarnings  decimal.Decimal
	OtherComprehensiveIncome        decimal.Decimal
	ControllingInterest             decimal.Decimal
	NonControllingInterest          decimal.NullDecimal
	ConsolidatedEquity              decimal.NullDecimal
}

// Statement is one statement of one document as read from a satellite
// stream, before any layout interpretation.
type Statement struct {
	Kind            StatementKind
	FiscalYearOrder FiscalYearOrder
	Currency        string
	CurrencySize    CurrencySize

	// PeriodStart is zero for balance sheet statements (BPA, BPP).
	PeriodStart time.Time
	PeriodEnd   time.Time

	// Method is only set on DFC statements.
	Method DFCMethod

	Accounts     []Account
	DMPLAccounts []DMPLAccount
}

// PeriodDays returns the length of the statement period in days, or 0 for
// point-in-time statements.
func (s Statement) PeriodDays() int {
	if s.PeriodStart.IsZero() {
		return 0
	}
	return int(s.PeriodEnd.Sub(s.PeriodStart).Hours() / 24)
}

// Collection holds the statements of one balance type and one fiscal year.
type Collection struct {
	BalanceType BalanceType
	Statements  map[StatementKind]*Statement

	// ExtraDRE and ExtraDRA hold the sub-period income statements of ITR
	// documents (e.g. the first semester next to the second quarter).
	ExtraDRE *Statement
	ExtraDRA *Statement
}

// Statement returns the statement of the given kind, or nil.
func (c *Collection) Statement(kind StatementKind) *Statement {
	if c == nil {
		return nil
	}
	return c.Statements[kind]
}

// GroupedCollection splits statements by fiscal year order.
type GroupedCollection struct {
	Last     *Collection
	Previous *Collection
}

// Collection returns the collection for a fiscal year order.
func (g *GroupedCollection) Collection(order FiscalYearOrder) *Collection {
	if g == nil {
		return nil
	}
	if order == SecondToLastFiscalYear {
		return g.Previous
	}
	return g.Last
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is one DFP/ITR filing, built from one head batch and every
// satellite batch that correlated with it.
type Document struct {
	Key           BatchKey
	CNPJ          CNPJ
	ReferenceDate time.Time
	Version       int

	// Head metadata. Fields that failed to read are left at their zero value.
	CompanyName string
	CVMCode     int
	Type        DocumentType
	ID          int
	ReceiptDate time.Time
	URL         string

	Individual   *GroupedCollection
	Consolidated *GroupedCollection
}

// Balances returns the grouped statements of a balance type, or nil.
func (d *Document) Balances(balanceType BalanceType) *GroupedCollection {
	if balanceType == Consolidated {
		return d.Consolidated
	}
	return d.Individual
}

// Collection is shorthand for Balances(balanceType).Collection(order).
func (d *Document) Collection(balanceType BalanceType, order FiscalYearOrder) *Collection {
	return d.Balances(balanceType).Collection(order)
}
