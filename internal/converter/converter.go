// =============================================================================
// DFP/ITR Reader - Converter Module
// =============================================================================
//
// This module contains the per-archive pipeline. It takes one DFP/ITR ZIP
// archive from the input directory to one XML file in the output directory.
//
// CONVERSION PIPELINE:
//   1. Open the archive and classify its members
//   2. Assemble documents from the head file and the statement files
//   3. Drop documents rejected by the configured filters
//   4. Extract the balance sheet and income statement of every collection
//   5. Validate the documents and their balances
//   6. Generate the XML document
//   7. Write the output file
//   8. Archive the processed files
//
// CONCURRENCY:
//   Each archive is processed by its own Converter. The matcher and the
//   grouper are read-only after setup and may be shared between converters.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/dfpitr-reader/internal/archive"
	"github.com/ginjaninja78/dfpitr-reader/internal/balance"
	"github.com/ginjaninja78/dfpitr-reader/internal/config"
	"github.com/ginjaninja78/dfpitr-reader/internal/document"
	"github.com/ginjaninja78/dfpitr-reader/internal/fiscal"
	"github.com/ginjaninja78/dfpitr-reader/internal/layout"
	"github.com/ginjaninja78/dfpitr-reader/internal/logging"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
	"github.com/ginjaninja78/dfpitr-reader/internal/validation"
	"github.com/ginjaninja78/dfpitr-reader/internal/xlsxparser"
	"github.com/ginjaninja78/dfpitr-reader/internal/xmlwriter"
	"github.com/ginjaninja78/dfpitr-reader/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single archive.
type Result struct {
	// FilePath is the path to the input archive that was processed.
	FilePath string

	// OutputFile is the path to the generated XML file.
	// This is empty if processing failed or was a dry run.
	OutputFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Findings are the validation findings, warnings included.
	Findings []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// DocumentsRead is the number of documents assembled from the archive.
	DocumentsRead int

	// DocumentsFiltered is the number of documents dropped by the filters.
	DocumentsFiltered int

	// DocumentsExported is the number of documents written to the XML.
	DocumentsExported int

	// BalancesExtracted counts the collections balances were extracted from.
	BalancesExtracted int

	// BalanceErrors counts balance sheets and income statements that no
	// layout could be matched to.
	BalanceErrors int

	ValidationErrors   int
	ValidationWarnings int

	// ProcessingTime is the time taken to process the archive.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER
// =============================================================================

// Options holds the collaborators of a Converter.
type Options struct {
	Config *config.MainConfig

	// Matcher matches statements to layouts. Nil builds one from Config.
	Matcher *layout.Matcher

	// Grouper files statements by fiscal year. Nil builds one from Config.
	Grouper *fiscal.Grouper

	// Validator checks the extracted balances. Nil uses the defaults.
	Validator *validation.Validator

	Logger *slog.Logger

	// DryRun reads and validates without writing or moving any file.
	DryRun bool
}

// Converter processes one archive.
type Converter struct {
	archivePath string
	config      *config.MainConfig
	extractor   *balance.Extractor
	grouper     *fiscal.Grouper
	validator   *validation.Validator
	filter      *Filter
	files       *utils.FileManager
	logger      *slog.Logger
	dryRun      bool
}

// New creates a Converter for the archive at archivePath.
//
// RETURNS:
//   - The converter.
//   - An error if the matcher has to be built and the layouts workbook
//     cannot be loaded.
func New(archivePath string, opts Options) (*Converter, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := logging.OrDiscard(opts.Logger).With("archive", filepath.Base(archivePath))

	matcher := opts.Matcher
	if matcher == nil {
		var err error
		if matcher, err = NewMatcher(cfg); err != nil {
			return nil, err
		}
	}

	grouper := opts.Grouper
	if grouper == nil {
		grouper = NewGrouper(cfg, logger)
	}

	validator := opts.Validator
	if validator == nil {
		validator = validation.NewValidator()
	}

	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)

	return &Converter{
		archivePath: archivePath,
		config:      cfg,
		extractor:   balance.NewExtractor(matcher),
		grouper:     grouper,
		validator:   validator,
		filter:      NewFilter(cfg.Filters),
		files:       files,
		logger:      logger,
		dryRun:      opts.DryRun,
	}, nil
}

// =============================================================================
// PIPELINE SETUP
// =============================================================================

// NewMatcher builds the layout matcher described by cfg: the built-in
// layouts, preceded by those of the layouts workbook if one is configured.
func NewMatcher(cfg *config.MainConfig) (*layout.Matcher, error) {
	check, err := layout.ParseNameCheck(cfg.Reader.NameCheck)
	if err != nil {
		return nil, err
	}

	builder := layout.DefaultBuilder()
	if cfg.LayoutsWorkbook != "" {
		wb, err := xlsxparser.LoadLayouts(cfg.LayoutsWorkbook)
		if err != nil {
			return nil, fmt.Errorf("layouts workbook: %w", err)
		}
		wb.ApplyTo(builder)
	}

	return layout.NewMatcher(builder.Build(), check), nil
}

// NewGrouper builds a fiscal-year grouper with the configured thresholds.
func NewGrouper(cfg *config.MainConfig, logger *slog.Logger) *fiscal.Grouper {
	g := fiscal.NewGrouper(logger)
	g.DFP = fiscal.Thresholds{ExtraMinDays: cfg.Fiscal.DFP.ExtraMinDays, ExtraMaxDays: cfg.Fiscal.DFP.ExtraMaxDays}
	g.ITR = fiscal.Thresholds{ExtraMinDays: cfg.Fiscal.ITR.ExtraMinDays, ExtraMaxDays: cfg.Fiscal.ITR.ExtraMaxDays}
	return g
}

// ArchiveOptions returns the archive options described by cfg.
func ArchiveOptions(cfg *config.MainConfig) archive.Options {
	return archive.Options{
		PrefixLength: cfg.Reader.MemberPrefixLength,
		Individual:   cfg.Reader.Individual,
		Consolidated: cfg.Reader.Consolidated,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the full pipeline for the archive.
//
// PROCESSING STEPS:
//   1. Open the archive
//   2. Assemble documents
//   3. Filter documents
//   4. Extract balances
//   5. Validate
//   6. Generate the XML document
//   7. Write the output file
//   8. Archive the processed files
//
// RETURNS:
//   - A Result; Error is set when Success is false.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{FilePath: c.archivePath}
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	// =========================================================================
	// STEP 1: OPEN THE ARCHIVE
	// =========================================================================

	c.logger.Info("processing archive", "path", c.archivePath)

	arc, err := archive.Open(c.archivePath, ArchiveOptions(c.config))
	if err != nil {
		result.Error = err
		return result
	}
	defer arc.Close()

	// =========================================================================
	// STEP 2: ASSEMBLE DOCUMENTS
	// =========================================================================

	asm, err := document.New(arc, document.Options{
		CSV:     c.config.Reader.CSV,
		Grouper: c.grouper,
		Logger:  c.logger,
	})
	if err != nil {
		result.Error = fmt.Errorf("failed to open statement files: %w", err)
		return result
	}

	// =========================================================================
	// STEPS 3-4: FILTER DOCUMENTS AND EXTRACT BALANCES
	// =========================================================================
	// Documents are read one at a time; only the kept ones and their
	// balances stay in memory until the XML is written.

	var records []xmlwriter.Record
	for doc, err := range asm.All() {
		if err != nil {
			result.Error = fmt.Errorf("failed to read documents: %w", err)
			return result
		}
		if err := ctx.Err(); err != nil {
			result.Error = err
			return result
		}

		result.Stats.DocumentsRead++
		if !c.filter.Keep(doc) {
			result.Stats.DocumentsFiltered++
			continue
		}

		records = append(records, xmlwriter.Record{
			Document: doc,
			Balances: c.extractBalances(doc, &result.Stats),
		})
	}

	c.logger.Debug("documents assembled",
		"read", result.Stats.DocumentsRead, "filtered", result.Stats.DocumentsFiltered)

	// =========================================================================
	// STEP 5: VALIDATE
	// =========================================================================

	subjects := make([]validation.Subject, len(records))
	for i, rec := range records {
		subjects[i] = validation.Subject{Document: rec.Document, Balances: rec.Balances}
	}

	validated := c.validator.ValidateAll(subjects)
	result.Findings = validated.Errors
	result.Stats.ValidationErrors = validated.ErrorCount
	result.Stats.ValidationWarnings = validated.WarningCount

	for _, f := range validated.Errors {
		if f.Severity == validation.SeverityError {
			c.logger.Warn("validation error", "finding", f.Error())
		} else {
			c.logger.Debug("validation warning", "finding", f.Error())
		}
	}

	if !validated.IsValid && !c.config.ContinueOnError {
		result.Error = fmt.Errorf("validation failed with %d error(s)", validated.ErrorCount)
		return result
	}

	// =========================================================================
	// STEP 6: GENERATE XML DOCUMENT
	// =========================================================================

	options := xmlwriter.DefaultGenerateOptions()
	options.RootAttributes["archive"] = archiveName(c.archivePath)

	xmlDoc, err := xmlwriter.GenerateWithOptions(records, options)
	if err != nil {
		result.Error = fmt.Errorf("failed to generate XML: %w", err)
		return result
	}
	result.Stats.DocumentsExported = len(records)

	if c.dryRun {
		c.logger.Info("dry run, nothing written", "documents", len(records), "bytes", len(xmlDoc))
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 7: WRITE OUTPUT FILE
	// =========================================================================

	outputPath, err := c.files.WriteOutput(c.config.OutputNameFormat, map[string]string{
		"archive": archiveName(c.archivePath),
	}, xmlDoc)
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = outputPath
	c.logger.Info("wrote output", "path", outputPath, "documents", len(records))

	if len(validated.Errors) > 0 {
		logPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "_validation.txt"
		if err := validation.WriteErrorLog(validated.Errors, logPath); err != nil {
			c.logger.Warn("failed to write validation log", "error", err)
		}
	}

	// =========================================================================
	// STEP 8: ARCHIVE FILES
	// =========================================================================
	// The archive handle is released first so that the input can be moved.

	arc.Close()
	if err := c.archiveFiles(outputPath); err != nil {
		// Log the error but don't fail the processing.
		c.logger.Warn("failed to archive files", "error", err)
	}

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// extractBalances extracts every collection a document carries. Statements
// that match no layout are counted and logged; they do not drop the document.
func (c *Converter) extractBalances(doc *types.Document, stats *ProcessingStats) []*balance.Balances {
	var out []*balance.Balances
	for _, bt := range types.BalanceTypes {
		for _, order := range types.FiscalYearOrders {
			if doc.Collection(bt, order) == nil {
				continue
			}

			b, err := c.extractor.Extract(doc, bt, order)
			if err != nil {
				c.logger.Debug("no balances", "cnpj", doc.CNPJ, "balance_type", bt, "order", order, "error", err)
				continue
			}
			stats.BalancesExtracted++

			if b.BalanceSheetErr != nil {
				stats.BalanceErrors++
				c.logger.Warn("balance sheet not extracted",
					"cnpj", doc.CNPJ, "company", doc.CompanyName, "balance_type", bt, "order", order, "error", b.BalanceSheetErr)
			}
			if b.IncomeStatementErr != nil {
				stats.BalanceErrors++
				c.logger.Warn("income statement not extracted",
					"cnpj", doc.CNPJ, "company", doc.CompanyName, "balance_type", bt, "order", order, "error", b.IncomeStatementErr)
			}
			out = append(out, b)
		}
	}
	return out
}

// archiveFiles moves the processed archive to the input archive directory
// and copies the output file to the output archive directory.
func (c *Converter) archiveFiles(outputPath string) error {
	if c.config.InputArchiveDir != "" {
		if _, err := c.files.ArchiveInputFile(c.archivePath); err != nil {
			return fmt.Errorf("failed to archive input file: %w", err)
		}
	}
	if c.config.OutputArchiveDir != "" {
		if _, err := c.files.ArchiveOutputFile(outputPath); err != nil {
			return fmt.Errorf("failed to archive output file: %w", err)
		}
	}
	return nil
}

// archiveName is the archive file name without its extension.
func archiveName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
