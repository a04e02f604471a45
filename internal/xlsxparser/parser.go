// =============================================================================
// DFP/ITR Reader - Layout Workbook Parser
// =============================================================================
//
// This module loads extra account layouts from an XLSX workbook, so a new
// chart of accounts can be supported without a rebuild. Every sheet holds
// one layout and is named after the registry key and the year range it
// covers:
//
//   <category>_<kind>_<mode>_<first>[_<last>]
//
//   industrial_BPA_con_2023        industrial consolidated BPA, 2023 onwards
//   financial_DRE_ind_2010_2019    financial individual DRE, 2010 to 2019
//
// Sheets whose name starts with "_" are notes or drafts and are skipped.
//
// SHEET STRUCTURE (Expected Columns):
//
//   | Column A | Column B              | Column C           |
//   |----------|-----------------------|--------------------|
//   | Code     | Name                  | Attribute          |
//   | 1        | Ativo Total           | total_assets       |
//   | 1.01     | Ativo Circulante      | current_assets     |
//   | 1.01.01  | Caixa e Equivalentes  | cash_and_cash_...  |
//   | 1.01.02  | Aplicações Financeiras|                    |
//
// An empty name matches any account name; an empty attribute checks the
// account without capturing it. Loaded layouts take precedence over the
// built-in ones for the same key.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/dfpitr-reader/internal/layout"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// =============================================================================
// WORKBOOK STRUCTURE
// =============================================================================

// SheetLayout is the layout read from one sheet.
type SheetLayout struct {
	Sheet  string
	Key    layout.Key
	Layout *layout.Layout
}

// Workbook is the parsed content of a layout workbook.
type Workbook struct {
	// File is the path to the source workbook.
	File string

	// Layouts are in sheet order.
	Layouts []SheetLayout
}

// =============================================================================
// SHEET COLUMN CONFIGURATION
// =============================================================================

// SheetColumns defines which columns of a sheet contain which data.
// Column indices are 0-based (A=0, B=1, C=2, etc.)
type SheetColumns struct {
	CodeColumn      int
	NameColumn      int
	AttributeColumn int

	// DataStartRow is the row number where data begins (0-based).
	// Default: 1 (Row 2)
	DataStartRow int
}

// DefaultSheetColumns returns the default column configuration.
func DefaultSheetColumns() SheetColumns {
	return SheetColumns{
		CodeColumn:      0, // Column A
		NameColumn:      1, // Column B
		AttributeColumn: 2, // Column C
		DataStartRow:    1, // Row 2
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// LoadLayouts reads a layout workbook.
//
// PARAMETERS:
//   - path: The path to the XLSX workbook.
//
// RETURNS:
//   - The parsed workbook.
//   - An error if the file cannot be read, a sheet name is malformed or a
//     sheet holds no accounts.
func LoadLayouts(path string) (*Workbook, error) {
	return LoadLayoutsWithConfig(path, DefaultSheetColumns())
}

// LoadLayoutsWithConfig reads a layout workbook using a custom column
// configuration.
func LoadLayoutsWithConfig(path string, columns SheetColumns) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{File: path}

	for _, sheetName := range f.GetSheetList() {
		if strings.HasPrefix(sheetName, "_") {
			continue
		}

		sl, err := parseSheet(f, sheetName, columns)
		if err != nil {
			return nil, fmt.Errorf("error parsing sheet '%s': %w", sheetName, err)
		}
		wb.Layouts = append(wb.Layouts, sl)
	}

	return wb, nil
}

// parseSheet parses a single sheet from an open XLSX file.
func parseSheet(f *excelize.File, sheetName string, columns SheetColumns) (SheetLayout, error) {
	key, first, last, err := ParseSheetName(sheetName)
	if err != nil {
		return SheetLayout{}, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return SheetLayout{}, fmt.Errorf("failed to read rows: %w", err)
	}

	l := layout.New(first, last)
	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]

		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		getCell := func(index int) string {
			if index < len(row) {
				return strings.TrimSpace(row[index])
			}
			return ""
		}

		code := getCell(columns.CodeColumn)
		if code == "" {
			return SheetLayout{}, fmt.Errorf("row %d: empty account code", i+1)
		}
		l.Add(code, getCell(columns.NameColumn), getCell(columns.AttributeColumn))
	}

	if l.Len() == 0 {
		return SheetLayout{}, fmt.Errorf("sheet has no accounts")
	}

	return SheetLayout{Sheet: sheetName, Key: key, Layout: l}, nil
}

// ParseSheetName splits a sheet name into its registry key and year range.
func ParseSheetName(name string) (layout.Key, int, int, error) {
	parts := strings.Split(name, "_")
	if len(parts) != 4 && len(parts) != 5 {
		return layout.Key{}, 0, 0, fmt.Errorf("sheet name '%s' is not <category>_<kind>_<mode>_<first>[_<last>]", name)
	}

	category, err := layout.ParseCategory(parts[0])
	if err != nil {
		return layout.Key{}, 0, 0, err
	}

	kind, ok := types.ParseStatementKind(parts[1])
	if !ok {
		return layout.Key{}, 0, 0, fmt.Errorf("unknown statement kind '%s'", parts[1])
	}

	var mode types.BalanceType
	switch strings.ToLower(parts[2]) {
	case "con":
		mode = types.Consolidated
	case "ind":
		mode = types.Individual
	default:
		return layout.Key{}, 0, 0, fmt.Errorf("unknown balance type '%s'", parts[2])
	}

	first, err := strconv.Atoi(parts[3])
	if err != nil {
		return layout.Key{}, 0, 0, fmt.Errorf("invalid first year '%s'", parts[3])
	}

	last := 0
	if len(parts) == 5 {
		if last, err = strconv.Atoi(parts[4]); err != nil {
			return layout.Key{}, 0, 0, fmt.Errorf("invalid last year '%s'", parts[4])
		}
		if last < first {
			return layout.Key{}, 0, 0, fmt.Errorf("last year %d is before first year %d", last, first)
		}
	}

	return layout.Key{Category: category, Kind: kind, Mode: mode}, first, last, nil
}

// SheetName is the inverse of ParseSheetName.
func SheetName(key layout.Key, first, last int) string {
	mode := "ind"
	if key.Mode == types.Consolidated {
		mode = "con"
	}
	name := fmt.Sprintf("%s_%s_%s_%d", key.Category, key.Kind, mode, first)
	if last != 0 {
		name += "_" + strconv.Itoa(last)
	}
	return name
}

// =============================================================================
// REGISTRY INTEGRATION
// =============================================================================

// ApplyTo prepends the workbook layouts to a registry builder. Layouts of
// the same key keep their sheet order.
func (w *Workbook) ApplyTo(b *layout.Builder) {
	var keys []layout.Key
	byKey := map[layout.Key][]*layout.Layout{}
	for _, sl := range w.Layouts {
		if _, ok := byKey[sl.Key]; !ok {
			keys = append(keys, sl.Key)
		}
		byKey[sl.Key] = append(byKey[sl.Key], sl.Layout)
	}

	for _, key := range keys {
		b.Prepend(key, byKey[key]...)
	}
}

// =============================================================================
// EXPORT
// =============================================================================

// Draft is an unnamed layout to export, e.g. one found by a layout census.
// Drafts are written to sheets prefixed with "_" so that LoadLayouts skips
// them until they are renamed.
type Draft struct {
	Title    string
	Accounts []types.Account
}

// ExportDrafts writes one sheet per draft to a new workbook.
//
// PARAMETERS:
//   - path: The output XLSX path.
//   - drafts: The drafts, in sheet order.
//
// RETURNS:
//   - An error if the workbook cannot be written.
func ExportDrafts(path string, drafts []Draft) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, d := range drafts {
		sheet := draftSheetName(i, d.Title)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet, "A1", &[]any{"Code", "Name", "Attribute"}); err != nil {
			return err
		}
		for j, acc := range d.Accounts {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &[]any{acc.Code, acc.Name}); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// draftSheetName keeps sheet names within the 31 characters Excel allows.
func draftSheetName(index int, title string) string {
	name := fmt.Sprintf("_%d_%s", index+1, title)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
