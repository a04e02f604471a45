// =============================================================================
// DFP/ITR Reader - Validation Engine
// =============================================================================
//
// This module cross-checks assembled documents before they are exported.
// It validates:
//   - Account trees: a fixed BPA/BPP account equals the sum of its direct
//     fixed children
//   - Account codes: a statement lists each code once
//   - Balance sheets: total assets equal current plus noncurrent assets, and
//     total assets equal total liabilities
//
// VALIDATION STRATEGY:
//   Validation is performed at two levels:
//   1. Statement-level: Each raw statement of a collection
//   2. Balance-level: The typed balance sheet extracted from a collection
//
// ERROR HANDLING:
//   - Errors are collected, not returned immediately
//   - Each error carries the document, balance type, fiscal year and account
//   - Arithmetic mismatches are warnings; structural problems are errors
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/dfpitr-reader/internal/balance"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string

	// DocumentID and CNPJ identify the document.
	DocumentID int
	CNPJ       string

	BalanceType types.BalanceType
	Order       types.FiscalYearOrder

	// Kind and Account locate the finding inside a statement. Account is
	// empty for balance-level findings.
	Kind    types.StatementKind
	Account string

	// Value is the offending quantity, if any.
	Value string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	where := fmt.Sprintf("Document %d (%s, %s, %s)", e.DocumentID, e.CNPJ, e.BalanceType, e.Order)
	if e.Kind != 0 {
		where += " " + e.Kind.String()
	}
	if e.Account != "" {
		where += fmt.Sprintf(" account '%s'", e.Account)
	}

	msg := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), where, e.Message)
	if e.Value != "" {
		msg += fmt.Sprintf(" (value: '%s')", e.Value)
	}
	return msg
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings (including warnings).
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	DocumentsValidated  int
	StatementsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks documents and their extracted balances.
type Validator struct {
	options ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// StopOnFirstError stops validation after the first fatal error.
	StopOnFirstError bool

	// TreatWarningsAsErrors makes any warning invalidate the result.
	TreatWarningsAsErrors bool

	// Tolerance is the largest difference accepted by arithmetic checks,
	// in the statement's own currency size.
	Tolerance decimal.Decimal

	// CustomValidators run once per collection, keyed by rule name. A
	// non-empty return value becomes a warning.
	CustomValidators map[string]CustomValidatorFunc
}

// CustomValidatorFunc checks one collection and returns a message on failure.
type CustomValidatorFunc func(ctx ValidationContext) string

// ValidationContext is what a custom validator sees.
type ValidationContext struct {
	Document   *types.Document
	Collection *types.Collection
	Balances   *balance.Balances
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		Tolerance:        decimal.Zero,
		CustomValidators: make(map[string]CustomValidatorFunc),
	}
}

// NewValidator creates a Validator with the default options.
func NewValidator() *Validator {
	return &Validator{options: DefaultValidationOptions()}
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	if options.CustomValidators == nil {
		options.CustomValidators = make(map[string]CustomValidatorFunc)
	}
	return &Validator{options: options}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Subject is one document together with the balances extracted from it.
type Subject struct {
	Document *types.Document
	Balances []*balance.Balances
}

// ValidateAll validates every subject and returns a detailed result.
func (v *Validator) ValidateAll(subjects []Subject) *ValidationResult {
	result := &ValidationResult{
		IsValid: true,
		Errors:  make([]*ValidationError, 0),
	}

	for _, s := range subjects {
		result.DocumentsValidated++

		findings, statements := v.ValidateDocument(s.Document, s.Balances)
		result.StatementsValidated += statements

		for _, f := range findings {
			result.Errors = append(result.Errors, f)

			if f.Severity == SeverityError {
				result.ErrorCount++
				result.IsValid = false

				if v.options.StopOnFirstError {
					return result
				}
			} else {
				result.WarningCount++

				if v.options.TreatWarningsAsErrors {
					result.IsValid = false
				}
			}
		}
	}

	return result
}

// ValidateDocument validates every collection of a document.
//
// PARAMETERS:
//   - doc: The assembled document.
//   - balances: The balances extracted from it, in any order. Collections
//     without balances only get statement-level checks.
//
// RETURNS:
//   - The findings.
//   - The number of statements checked.
func (v *Validator) ValidateDocument(doc *types.Document, balances []*balance.Balances) ([]*ValidationError, int) {
	var findings []*ValidationError
	statements := 0

	for _, bt := range types.BalanceTypes {
		for _, order := range types.FiscalYearOrders {
			coll := doc.Collection(bt, order)
			if coll == nil {
				continue
			}

			at := location{doc: doc, balanceType: bt, order: order}
			for _, kind := range types.StatementKinds {
				stmt := coll.Statement(kind)
				if stmt == nil {
					continue
				}
				statements++
				findings = append(findings, v.validateStatement(at, stmt)...)
			}

			b := balance.Find(balances, bt, order)
			if b != nil && b.BalanceSheet != nil {
				findings = append(findings, v.validateBalanceSheet(at, b.BalanceSheet)...)
			}

			findings = append(findings, v.runCustom(at, coll, b)...)
		}
	}

	return findings, statements
}

// location is the document context shared by the findings of a collection.
type location struct {
	doc         *types.Document
	balanceType types.BalanceType
	order       types.FiscalYearOrder
}

func (l location) finding(severity, rule string, kind types.StatementKind, account, message string) *ValidationError {
	return &ValidationError{
		Severity:    severity,
		Rule:        rule,
		Message:     message,
		DocumentID:  l.doc.ID,
		CNPJ:        l.doc.CNPJ.String(),
		BalanceType: l.balanceType,
		Order:       l.order,
		Kind:        kind,
		Account:     account,
	}
}

// =============================================================================
// STATEMENT VALIDATORS
// =============================================================================

func (v *Validator) validateStatement(at location, stmt *types.Statement) []*ValidationError {
	var findings []*ValidationError

	seen := make(map[string]bool, len(stmt.Accounts))
	for _, acc := range stmt.Accounts {
		if seen[acc.Code] {
			findings = append(findings, at.finding(SeverityError, "duplicate_code", stmt.Kind, acc.Code,
				"Account code appears more than once"))
		}
		seen[acc.Code] = true
	}

	if stmt.Kind == types.BPA || stmt.Kind == types.BPP {
		findings = append(findings, v.validateAccountTree(at, stmt)...)
	}

	return findings
}

// validateAccountTree checks that every fixed account with fixed children
// equals the sum of its direct fixed children.
func (v *Validator) validateAccountTree(at location, stmt *types.Statement) []*ValidationError {
	type node struct {
		account  types.Account
		sum      decimal.Decimal
		children int
	}

	nodes := make(map[string]*node, len(stmt.Accounts))
	var codes []string
	for _, acc := range stmt.Accounts {
		if !acc.IsFixed {
			continue
		}
		if _, ok := nodes[acc.Code]; ok {
			continue
		}
		nodes[acc.Code] = &node{account: acc}
		codes = append(codes, acc.Code)
	}

	for _, code := range codes {
		i := strings.LastIndexByte(code, '.')
		if i < 0 {
			continue
		}
		parent, ok := nodes[code[:i]]
		if !ok {
			continue
		}
		parent.sum = parent.sum.Add(nodes[code].account.Quantity)
		parent.children++
	}

	sort.Strings(codes)

	var findings []*ValidationError
	for _, code := range codes {
		n := nodes[code]
		if n.children == 0 {
			continue
		}
		if n.account.Quantity.Sub(n.sum).Abs().GreaterThan(v.options.Tolerance) {
			f := at.finding(SeverityWarning, "children_sum", stmt.Kind, code,
				fmt.Sprintf("Account differs from the sum of its %d direct children (%s)", n.children, n.sum))
			f.Value = n.account.Quantity.String()
			findings = append(findings, f)
		}
	}
	return findings
}

// =============================================================================
// BALANCE VALIDATORS
// =============================================================================

func (v *Validator) validateBalanceSheet(at location, sheet *balance.BalanceSheet) []*ValidationError {
	var findings []*ValidationError

	if sheet.CurrentAssets.Valid && sheet.NoncurrentAssets.Valid {
		sum := sheet.CurrentAssets.Decimal.Add(sheet.NoncurrentAssets.Decimal)
		if sheet.TotalAssets.Sub(sum).Abs().GreaterThan(v.options.Tolerance) {
			f := at.finding(SeverityWarning, "assets_split", types.BPA, "",
				fmt.Sprintf("Total assets differ from current plus noncurrent assets (%s)", sum))
			f.Value = sheet.TotalAssets.String()
			findings = append(findings, f)
		}
	}

	if sheet.TotalAssets.Sub(sheet.TotalLiabilities).Abs().GreaterThan(v.options.Tolerance) {
		f := at.finding(SeverityWarning, "assets_liabilities", types.BPP, "",
			fmt.Sprintf("Total liabilities differ from total assets (%s)", sheet.TotalAssets))
		f.Value = sheet.TotalLiabilities.String()
		findings = append(findings, f)
	}

	return findings
}

func (v *Validator) runCustom(at location, coll *types.Collection, b *balance.Balances) []*ValidationError {
	if len(v.options.CustomValidators) == 0 {
		return nil
	}

	rules := make([]string, 0, len(v.options.CustomValidators))
	for rule := range v.options.CustomValidators {
		rules = append(rules, rule)
	}
	sort.Strings(rules)

	var findings []*ValidationError
	ctx := ValidationContext{Document: at.doc, Collection: coll, Balances: b}
	for _, rule := range rules {
		if msg := v.options.CustomValidators[rule](ctx); msg != "" {
			findings = append(findings, at.finding(SeverityWarning, rule, 0, "", msg))
		}
	}
	return findings
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - errors: The validation errors to format.
//
// RETURNS:
//   - A formatted string containing all errors.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation errors to a log file.
//
// PARAMETERS:
//   - errors: The validation errors to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Validation log written %s\n\n", time.Now().Format(time.RFC3339))
	writer.WriteString(FormatErrors(errors))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return file.Close()
}
