// =============================================================================
// DFP/ITR Reader - Layouts Command
// =============================================================================
//
// This file defines the 'layouts' command, a census of the chart-of-accounts
// layouts found in one archive. It is the tool for adding support for a new
// layout: run the census, inspect the layouts no registered one covers,
// export them as drafts and name them in the layouts workbook.
//
// COMMAND USAGE:
//   dfpitr layouts <archive> [--kind BPA] [--max-level 3] [--out dir] [--xlsx file]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/dfpitr-reader/internal/layout"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
	"github.com/ginjaninja78/dfpitr-reader/internal/xlsxparser"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	censusKind       string
	censusMaxLevel   int
	censusOutDir     string
	censusXLSX       string
	censusIndividual bool
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts <archive>",
	Short: "List the distinct account layouts of one statement kind",
	Long: `The layouts command fingerprints the fixed accounts (up to --max-level) of
one statement kind for every filing in the archive and lists each distinct
layout with the companies that filed under it, most used first.

--out writes one text file per layout; --xlsx writes every layout as a draft
sheet that can be renamed and copied into the layouts workbook.`,

	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runLayouts(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(layoutsCmd)

	layoutsCmd.Flags().StringVar(&censusKind, "kind", "BPA", "Statement kind (BPA, BPP, DRE, ...)")
	layoutsCmd.Flags().IntVar(&censusMaxLevel, "max-level", 3, "Deepest account level that is part of a layout")
	layoutsCmd.Flags().StringVar(&censusOutDir, "out", "", "Directory for one text file per layout")
	layoutsCmd.Flags().StringVar(&censusXLSX, "xlsx", "", "Workbook to export the layouts to as drafts")
	layoutsCmd.Flags().BoolVar(&censusIndividual, "individual", false, "Use the individual statements")
}

// =============================================================================
// CENSUS
// =============================================================================

func runLayouts(out io.Writer, path string) error {
	kind, ok := types.ParseStatementKind(censusKind)
	if !ok {
		return fmt.Errorf("unknown statement kind '%s'", censusKind)
	}
	if censusMaxLevel < 1 {
		return fmt.Errorf("--max-level must be at least 1")
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	bt := types.Consolidated
	if censusIndividual {
		bt = types.Individual
	}

	arc, asm, err := openDocuments(path, bt, cfg, logger)
	if err != nil {
		return err
	}
	defer arc.Close()

	census := layout.NewCensus(censusMaxLevel)
	for doc, err := range asm.All() {
		if err != nil {
			return err
		}
		stmt := doc.Collection(bt, types.LastFiscalYear).Statement(kind)
		if stmt == nil {
			continue
		}
		census.Add(fmt.Sprintf("%s (%s)", doc.CompanyName, doc.CNPJ), stmt.Accounts)
	}

	entries := census.Entries()
	fmt.Fprintf(out, "%d distinct %s %s layout(s) up to level %d\n\n", len(entries), bt, kind, censusMaxLevel)
	for i, e := range entries {
		fmt.Fprintf(out, "Layout %d [%08x]: %d accounts, %d filing(s)\n", i+1, e.Fingerprint, len(e.Accounts), len(e.Members))
		for _, m := range e.Members {
			fmt.Fprintf(out, "  %s\n", m)
		}
	}

	if censusOutDir != "" {
		if err := writeLayoutFiles(censusOutDir, kind, entries); err != nil {
			return err
		}
	}

	if censusXLSX != "" {
		drafts := make([]xlsxparser.Draft, len(entries))
		for i, e := range entries {
			drafts[i] = xlsxparser.Draft{Title: fmt.Sprintf("%s_%08x", kind, e.Fingerprint), Accounts: e.Accounts}
		}
		if err := xlsxparser.ExportDrafts(censusXLSX, drafts); err != nil {
			return err
		}
	}

	return nil
}

// writeLayoutFiles writes every layout to <dir>/<kind>_<n>_<fingerprint>.txt:
// the accounts first, then the filings that use the layout.
func writeLayoutFiles(dir string, kind types.StatementKind, entries []*layout.CensusEntry) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	for i, e := range entries {
		var b strings.Builder
		for _, acc := range e.Accounts {
			fmt.Fprintf(&b, "%s\t%s\n", acc.Code, acc.Name)
		}
		b.WriteString("\n")
		for _, m := range e.Members {
			fmt.Fprintf(&b, "# %s\n", m)
		}

		name := fmt.Sprintf("%s_%02d_%08x.txt", kind, i+1, e.Fingerprint)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("failed to write layout file: %w", err)
		}
	}
	return nil
}
