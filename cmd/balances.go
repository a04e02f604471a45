// =============================================================================
// DFP/ITR Reader - Balances Command
// =============================================================================
//
// This file defines the 'balances' command, which prints the balance sheet
// and income statement of every filing in one archive.
//
// COMMAND USAGE:
//   dfpitr balances <archive> [--individual]
//
// OUTPUT (one block per filing, last fiscal year, currency normalized):
//   ALPHA S.A. (11.111.111/0001-11) 2023-12-31 v1 consolidated
//     Balance sheet (industrial)
//       Total assets        1000000
//       ...
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/dfpitr-reader/internal/archive"
	"github.com/ginjaninja78/dfpitr-reader/internal/balance"
	"github.com/ginjaninja78/dfpitr-reader/internal/config"
	"github.com/ginjaninja78/dfpitr-reader/internal/converter"
	"github.com/ginjaninja78/dfpitr-reader/internal/csvparser"
	"github.com/ginjaninja78/dfpitr-reader/internal/document"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// individual selects the individual statements instead of the consolidated ones.
var individual bool

var balancesCmd = &cobra.Command{
	Use:   "balances <archive>",
	Short: "Print the balance sheet and income statement of every filing",
	Long: `The balances command reads one archive and prints, for every filing, the
balance sheet and income statement of the last fiscal year. Consolidated
statements are used unless --individual is given.`,

	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		bt := types.Consolidated
		if individual {
			bt = types.Individual
		}
		return printBalances(cmd.OutOrStdout(), args[0], bt, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(balancesCmd)

	balancesCmd.Flags().BoolVar(
		&individual,
		"individual",
		false,
		"Use the individual statements",
	)
}

// openDocuments opens an archive for one balance type only, so that the
// statement files of the other type need not be present.
func openDocuments(path string, bt types.BalanceType, cfg *config.MainConfig, logger *slog.Logger) (*archive.Archive, *document.Assembler, error) {
	opts := converter.ArchiveOptions(cfg)
	opts.Individual = bt == types.Individual
	opts.Consolidated = bt == types.Consolidated

	arc, err := archive.Open(path, opts)
	if err != nil {
		return nil, nil, err
	}

	asm, err := document.New(arc, document.Options{
		CSV:     cfg.Reader.CSV,
		Grouper: converter.NewGrouper(cfg, logger),
		Logger:  logger,
	})
	if err != nil {
		arc.Close()
		return nil, nil, err
	}
	return arc, asm, nil
}

func printBalances(out io.Writer, path string, bt types.BalanceType, cfg *config.MainConfig, logger *slog.Logger) error {
	matcher, err := converter.NewMatcher(cfg)
	if err != nil {
		return err
	}
	extractor := balance.NewExtractor(matcher)

	arc, asm, err := openDocuments(path, bt, cfg, logger)
	if err != nil {
		return err
	}
	defer arc.Close()

	for doc, err := range asm.All() {
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s (%s) %s v%d %s\n",
			doc.CompanyName, doc.CNPJ, doc.ReferenceDate.Format(csvparser.DateLayout), doc.Version, bt)

		b, err := extractor.Extract(doc, bt, types.LastFiscalYear)
		if err != nil {
			fmt.Fprintf(out, "  %v\n\n", err)
			continue
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		writeBalanceSheet(tw, b)
		writeIncomeStatement(tw, b)
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}

func writeBalanceSheet(w io.Writer, b *balance.Balances) {
	s := b.BalanceSheet
	if s == nil {
		fmt.Fprintf(w, "  Balance sheet: %v\n", b.BalanceSheetErr)
		return
	}

	fmt.Fprintf(w, "  Balance sheet (%s)\n", s.Category)
	rows := []struct {
		label string
		value decimal.NullDecimal
	}{
		{"Total assets", decimal.NewNullDecimal(s.TotalAssets)},
		{"Current assets", s.CurrentAssets},
		{"Cash and cash equivalents", decimal.NewNullDecimal(s.CashAndCashEquivalents)},
		{"Noncurrent assets", s.NoncurrentAssets},
		{"Total liabilities", decimal.NewNullDecimal(s.TotalLiabilities)},
		{"Current liabilities", s.CurrentLiabilities},
		{"Noncurrent liabilities", s.NoncurrentLiabilities},
		{"Equity", decimal.NewNullDecimal(s.Equity)},
		{"Gross debt", s.GrossDebt()},
		{"Net debt", s.NetDebt()},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "    %s\t%s\n", r.label, formatNull(r.value))
	}
}

func writeIncomeStatement(w io.Writer, b *balance.Balances) {
	s := b.IncomeStatement
	if s == nil {
		fmt.Fprintf(w, "  Income statement: %v\n", b.IncomeStatementErr)
		return
	}

	fmt.Fprintf(w, "  Income statement (%s)\n", s.Category)
	rows := []struct {
		label string
		value decimal.NullDecimal
	}{
		{"Revenue", decimal.NewNullDecimal(s.Revenue)},
		{"Gross profit", decimal.NewNullDecimal(s.GrossProfit)},
		{"EBITDA", s.EBITDA()},
		{"Depreciation and amortization", s.DepreciationAndAmortization},
		{"EBIT", decimal.NewNullDecimal(s.EBIT())},
		{"EBT", decimal.NewNullDecimal(s.EBT())},
		{"Net income", decimal.NewNullDecimal(s.NetIncome)},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "    %s\t%s\n", r.label, formatNull(r.value))
	}
}

func formatNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.String()
}
