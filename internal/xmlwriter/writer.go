// =============================================================================
// DFP/ITR Reader - XML Writer Module
// =============================================================================
//
// This module is responsible for generating the XML export of the documents
// read from one archive, together with the balances extracted from them.
//
// XML STRUCTURE:
//   <dfpitr archive="dfp_cia_aberta_2020">         <!-- Root element -->
//     <document n="1" id="12345">                   <!-- One per document -->
//       <cnpj>00.000.000/0001-91</cnpj>             <!-- Head metadata -->
//       <company>BANCO DO BRASIL S.A.</company>
//       <balances type="consolidated" order="last">
//         <balanceSheet category="financial">
//           <totalAssets>1000</totalAssets>
//         </balanceSheet>
//         <incomeStatementError>...</incomeStatementError>
//         <statement kind="BPA" end="2020-12-31" currencySize="MIL">
//           <account code="1" fixed="true" name="Ativo Total">1</account>
//         </statement>
//       </balances>
//     </document>
//   </dfpitr>
//
// Null quantities are omitted; balances that could not be extracted are
// replaced by an error element carrying the reason.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/dfpitr-reader/internal/balance"
	"github.com/ginjaninja78/dfpitr-reader/internal/csvparser"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	XMLVersion string
	Encoding   string

	// RootElement and DocumentElement name the two outer levels.
	// Defaults: "dfpitr" and "document".
	RootElement     string
	DocumentElement string

	// RootAttributes are additional attributes for the root element.
	// Example: {"archive": "dfp_cia_aberta_2020"}
	RootAttributes map[string]string

	// IncludeStatements adds the raw accounts of every statement next to
	// the extracted balances.
	// Default: true
	IncludeStatements bool

	// DocumentIndexAttribute is the attribute name for the document index.
	// Default: "n"
	DocumentIndexAttribute string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                 "  ",
		IncludeXMLDeclaration:  true,
		XMLVersion:             "1.0",
		Encoding:               "UTF-8",
		RootElement:            "dfpitr",
		DocumentElement:        "document",
		RootAttributes:         make(map[string]string),
		IncludeStatements:      true,
		DocumentIndexAttribute: "n",
	}
}

// Record is one document to export with the balances extracted from it.
type Record struct {
	Document *types.Document
	Balances []*balance.Balances
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate creates an XML document from the records with default options.
func Generate(records []Record) ([]byte, error) {
	return GenerateWithOptions(records, DefaultGenerateOptions())
}

// GenerateWithOptions creates an XML document with custom options.
//
// PARAMETERS:
//   - records: The documents to export, in output order.
//   - options: The generation options.
//
// RETURNS:
//   - The XML document as a byte slice.
//   - An error if generation fails.
func GenerateWithOptions(records []Record, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding))
	}

	root, err := buildRoot(records, options)
	if err != nil {
		return nil, err
	}

	writeElement(&buffer, root, options.Indent, 0)

	return buffer.Bytes(), nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLElement represents a generic XML element.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement
}

func newElement(name string, attrs ...string) XMLElement {
	e := XMLElement{XMLName: xml.Name{Local: name}}
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] == "" {
			continue
		}
		e.Attributes = append(e.Attributes, xml.Attr{Name: xml.Name{Local: attrs[i]}, Value: attrs[i+1]})
	}
	return e
}

// addText appends a simple child element. Empty values are skipped.
func (e *XMLElement) addText(name, value string) {
	if value == "" {
		return
	}
	e.Children = append(e.Children, XMLElement{XMLName: xml.Name{Local: name}, Value: value})
}

func (e *XMLElement) addDecimal(name string, value decimal.Decimal) {
	e.addText(name, value.String())
}

func (e *XMLElement) addNullDecimal(name string, value decimal.NullDecimal) {
	if value.Valid {
		e.addDecimal(name, value.Decimal)
	}
}

func buildRoot(records []Record, options GenerateOptions) (XMLElement, error) {
	root := newElement(options.RootElement)
	if root.XMLName.Local == "" {
		return XMLElement{}, fmt.Errorf("root element name must not be empty")
	}

	for _, key := range sortedKeys(options.RootAttributes) {
		root.Attributes = append(root.Attributes, xml.Attr{
			Name:  xml.Name{Local: key},
			Value: options.RootAttributes[key],
		})
	}

	for i, rec := range records {
		if rec.Document == nil {
			return XMLElement{}, fmt.Errorf("record %d has no document", i+1)
		}
		root.Children = append(root.Children, buildDocumentElement(i+1, rec, options))
	}

	return root, nil
}

// buildDocumentElement constructs one document element.
//
// STRUCTURE:
//   <document n="1" id="12345">
//     <cnpj>...</cnpj>
//     ...
//     <balances type="individual" order="last">...</balances>
//   </document>
func buildDocumentElement(index int, rec Record, options GenerateOptions) XMLElement {
	doc := rec.Document

	element := newElement(options.DocumentElement,
		options.DocumentIndexAttribute, strconv.Itoa(index),
		"id", optionalInt(doc.ID),
	)

	element.addText("cnpj", doc.CNPJ.String())
	element.addText("company", doc.CompanyName)
	element.addText("cvmCode", optionalInt(doc.CVMCode))
	if doc.Type != types.UnknownDocument {
		element.addText("type", doc.Type.String())
	}
	if !doc.ReferenceDate.IsZero() {
		element.addText("referenceDate", doc.ReferenceDate.Format(csvparser.DateLayout))
	}
	element.addText("version", strconv.Itoa(doc.Version))
	if !doc.ReceiptDate.IsZero() {
		element.addText("receiptDate", doc.ReceiptDate.Format(csvparser.DateLayout))
	}
	element.addText("url", doc.URL)

	for _, bt := range types.BalanceTypes {
		for _, order := range types.FiscalYearOrders {
			coll := doc.Collection(bt, order)
			if coll == nil {
				continue
			}
			element.Children = append(element.Children, buildBalancesElement(coll, balance.Find(rec.Balances, bt, order), bt, order, options))
		}
	}

	return element
}

func buildBalancesElement(coll *types.Collection, b *balance.Balances, bt types.BalanceType, order types.FiscalYearOrder, options GenerateOptions) XMLElement {
	element := newElement("balances", "type", bt.String(), "order", order.String())

	if b != nil {
		if b.BalanceSheet != nil {
			element.Children = append(element.Children, balanceSheetElement(b.BalanceSheet))
		} else if b.BalanceSheetErr != nil {
			element.addText("balanceSheetError", b.BalanceSheetErr.Error())
		}

		if b.IncomeStatement != nil {
			element.Children = append(element.Children, incomeStatementElement(b.IncomeStatement))
		} else if b.IncomeStatementErr != nil {
			element.addText("incomeStatementError", b.IncomeStatementErr.Error())
		}
	}

	if !options.IncludeStatements {
		return element
	}

	for _, kind := range types.StatementKinds {
		if stmt := coll.Statement(kind); stmt != nil {
			element.Children = append(element.Children, statementElement(stmt, ""))
		}
	}
	if coll.ExtraDRE != nil {
		element.Children = append(element.Children, statementElement(coll.ExtraDRE, "true"))
	}
	if coll.ExtraDRA != nil {
		element.Children = append(element.Children, statementElement(coll.ExtraDRA, "true"))
	}

	return element
}

func balanceSheetElement(s *balance.BalanceSheet) XMLElement {
	e := newElement("balanceSheet", "category", s.Category.String())

	e.addDecimal("totalAssets", s.TotalAssets)
	e.addNullDecimal("currentAssets", s.CurrentAssets)
	e.addDecimal("cashAndCashEquivalents", s.CashAndCashEquivalents)
	e.addDecimal("financialInvestments", s.FinancialInvestments)
	e.addDecimal("receivables", s.Receivables)
	e.addNullDecimal("noncurrentAssets", s.NoncurrentAssets)
	e.addDecimal("investments", s.Investments)
	e.addDecimal("fixedAssets", s.FixedAssets)
	e.addDecimal("intangibleAssets", s.IntangibleAssets)
	e.addDecimal("totalLiabilities", s.TotalLiabilities)
	e.addNullDecimal("currentLiabilities", s.CurrentLiabilities)
	e.addNullDecimal("currentLoansAndFinancing", s.CurrentLoansAndFinancing)
	e.addNullDecimal("noncurrentLiabilities", s.NoncurrentLiabilities)
	e.addNullDecimal("noncurrentLoansAndFinancing", s.NoncurrentLoansAndFinancing)
	e.addDecimal("equity", s.Equity)
	e.addNullDecimal("grossDebt", s.GrossDebt())
	e.addNullDecimal("netDebt", s.NetDebt())

	return e
}

func incomeStatementElement(s *balance.IncomeStatement) XMLElement {
	e := newElement("incomeStatement", "category", s.Category.String())

	e.addDecimal("revenue", s.Revenue)
	e.addDecimal("costs", s.Costs)
	e.addDecimal("grossProfit", s.GrossProfit)
	e.addDecimal("operatingIncomeAndExpenses", s.OperatingIncomeAndExpenses)
	e.addNullDecimal("ebitda", s.EBITDA())
	e.addNullDecimal("depreciationAndAmortization", s.DepreciationAndAmortization)
	e.addDecimal("ebit", s.EBIT())
	e.addDecimal("nonoperatingResult", s.NonoperatingResult)
	e.addDecimal("ebt", s.EBT())
	e.addDecimal("taxExpenses", s.TaxExpenses)
	e.addDecimal("continuingOperationResult", s.ContinuingOperationResult)
	e.addDecimal("discontinuedOperationResult", s.DiscontinuedOperationResult)
	e.addDecimal("netIncome", s.NetIncome)

	return e
}

// statementElement writes the raw accounts of a statement. DMPL accounts
// become one element per account with one child per equity column.
func statementElement(stmt *types.Statement, extra string) XMLElement {
	var start string
	if !stmt.PeriodStart.IsZero() {
		start = stmt.PeriodStart.Format(csvparser.DateLayout)
	}

	e := newElement("statement",
		"kind", stmt.Kind.String(),
		"extra", extra,
		"start", start,
		"end", stmt.PeriodEnd.Format(csvparser.DateLayout),
		"currencySize", string(stmt.CurrencySize),
		"method", stmt.Method.String(),
	)

	for _, acc := range stmt.Accounts {
		a := newElement("account", "code", acc.Code, "fixed", strconv.FormatBool(acc.IsFixed), "name", acc.Name)
		a.Value = acc.Quantity.String()
		e.Children = append(e.Children, a)
	}

	for _, acc := range stmt.DMPLAccounts {
		a := newElement("account", "code", acc.Code, "fixed", strconv.FormatBool(acc.IsFixed), "name", acc.Name)
		a.addDecimal("shareCapital", acc.ShareCapital)
		a.addDecimal("capitalReserveAndTreasuryShares", acc.CapitalReserveAndTreasuryShares)
		a.addDecimal("profitReserves", acc.ProfitReserves)
		a.addDecimal("unappropriatedRetainedEarnings", acc.UnappropriatedRetainedEarnings)
		a.addDecimal("otherComprehensiveIncome", acc.OtherComprehensiveIncome)
		a.addDecimal("controllingInterest", acc.ControllingInterest)
		a.addNullDecimal("nonControllingInterest", acc.NonControllingInterest)
		a.addNullDecimal("consolidatedEquity", acc.ConsolidatedEquity)
		e.Children = append(e.Children, a)
	}

	return e
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func optionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	for _, attr := range element.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name.Local, escapeXML(attr.Value)))
	}

	// Self-closing tag.
	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if element.Value != "" {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer
	if err := xml.EscapeText(&buffer, []byte(s)); err != nil {
		return s
	}
	return buffer.String()
}
