package csvparser

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// DateLayout is the date format used by every CVM file.
const DateLayout = "2006-01-02"

// Row is one record of a Stream, keyed by header name. A field whose
// column is missing from a short record is absent, which is different from
// an empty value.
type Row struct {
	fields map[string]string
	line   int
}

func newRow(headers, record []string, line int) Row {
	fields := make(map[string]string, len(headers))
	for i, header := range headers {
		if i >= len(record) {
			break
		}
		fields[header] = record[i]
	}
	return Row{fields: fields, line: line}
}

// NewRow builds a Row from a field map. It is mostly useful in tests and
// for sources other than CSV.
func NewRow(fields map[string]string) Row {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Row{fields: copied}
}

// Line returns the source line number, or 0 when unknown.
func (r Row) Line() int {
	return r.line
}

// Get returns the raw value of a field and whether it is present.
func (r Row) Get(name string) (string, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Optional returns the value of a field, or "" and false when absent.
func (r Row) Optional(name string) (string, bool) {
	return r.Get(name)
}

// RequiredAllowEmpty returns a field that must be present but may be empty.
func (r Row) RequiredAllowEmpty(name string) (string, error) {
	v, ok := r.fields[name]
	if !ok {
		return "", fmt.Errorf("%w: missing field '%s'", types.ErrMissingValue, name)
	}
	return v, nil
}

// Required returns a field that must be present and non-empty.
func (r Row) Required(name string) (string, error) {
	v, err := r.RequiredAllowEmpty(name)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%w: got empty string at field '%s'", types.ErrMissingValue, name)
	}
	return v, nil
}

// RequiredInt parses a required integer field.
func (r Row) RequiredInt(name string) (int, error) {
	v, err := r.Required(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalid(name, v, err)
	}
	return n, nil
}

// RequiredDate parses a required YYYY-MM-DD field.
func (r Row) RequiredDate(name string) (time.Time, error) {
	v, err := r.Required(name)
	if err != nil {
		return time.Time{}, err
	}
	d, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, invalid(name, v, err)
	}
	return d, nil
}

// RequiredDecimal parses a required decimal field.
func (r Row) RequiredDecimal(name string) (decimal.Decimal, error) {
	v, err := r.Required(name)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, invalid(name, v, err)
	}
	return d, nil
}

func invalid(name, value string, err error) error {
	return fmt.Errorf("%w: failed to create object from value '%s' at field '%s': %v", types.ErrInvalidValue, value, name, err)
}
