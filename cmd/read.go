// =============================================================================
// DFP/ITR Reader - Read Command
// =============================================================================
//
// This file defines the 'read' command, the main command of the tool. It
// turns every DFP/ITR archive of the input directory into one XML file.
//
// COMMAND USAGE:
//   dfpitr read [flags]
//
// FLAGS:
//   --dry-run : Read and validate without writing or moving any file
//   --file    : Process this archive instead of scanning the input directory
//
// PROCESSING PIPELINE:
//   1. Load the configuration
//   2. Discover archives in the input directory
//   3. Build the layout matcher (built-in layouts plus the layouts workbook)
//   4. Process archives concurrently, at most max_concurrency at a time
//   5. Print and write the processing summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/dfpitr-reader/internal/converter"
	"github.com/ginjaninja78/dfpitr-reader/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun simulates processing without writing output files.
var dryRun bool

// filePath is a single archive to process.
var filePath string

// =============================================================================
// READ COMMAND DEFINITION
// =============================================================================

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read DFP/ITR archives and export them to XML",
	Long: `The read command scans the input directory for DFP/ITR archives (*.zip)
and converts each of them to one XML file holding every filing, its statements
and its extracted balances.

Archives are processed concurrently. Unless continue_on_error is set, the
first failing archive stops the run.

On successful processing:
  - The generated XML is placed in the output directory
  - The archive is moved to the input archive directory
  - A summary report is generated

On error:
  - The archive remains in the input directory`,

	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runRead(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Read and validate without writing output files",
	)

	readCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a single archive to process",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runRead(ctx context.Context) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger = logger.With("run", runID)

	if !dryRun {
		if err := cfg.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)

	var inputFiles []string
	if filePath != "" {
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = files.DiscoverArchives("")
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Println("No archives found in the input directory.")
		return nil
	}

	logger.Info("starting run", "archives", len(inputFiles), "dry_run", dryRun)

	// =========================================================================
	// STEP 3: BUILD THE MATCHER
	// =========================================================================
	// The matcher and the grouper are shared by every archive.

	matcher, err := converter.NewMatcher(cfg)
	if err != nil {
		return err
	}
	grouper := converter.NewGrouper(cfg, logger)

	// =========================================================================
	// STEP 4: PROCESS ARCHIVES CONCURRENTLY
	// =========================================================================

	results := make([]converter.Result, len(inputFiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrency)

	for i, path := range inputFiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = converter.Result{FilePath: path, Error: err}
				return nil
			}

			conv, err := converter.New(path, converter.Options{
				Config:  cfg,
				Matcher: matcher,
				Grouper: grouper,
				Logger:  logger,
				DryRun:  dryRun,
			})
			if err != nil {
				results[i] = converter.Result{FilePath: path, Error: err}
			} else {
				results[i] = conv.Run(gctx)
			}

			if !results[i].Success && !cfg.ContinueOnError {
				return fmt.Errorf("%s: %w", filepath.Base(path), results[i].Error)
			}
			return nil
		})
	}

	runErr := g.Wait()

	// =========================================================================
	// STEP 5: SUMMARY
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  startTime,
		TotalFiles: len(inputFiles),
	}

	for _, result := range results {
		summary.DocumentsRead += result.Stats.DocumentsRead
		summary.BalanceErrors += result.Stats.BalanceErrors
		summary.ValidationErrors += result.Stats.ValidationErrors
		summary.ValidationWarnings += result.Stats.ValidationWarnings

		if result.Success {
			summary.SuccessfulFiles++
			summary.DocumentsExported += result.Stats.DocumentsExported
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFile:  result.OutputFile,
				Documents:   result.Stats.DocumentsExported,
				ProcessTime: result.Stats.ProcessingTime,
			})
			fmt.Printf("  ✓ %s -> %s (%d documents)\n", filepath.Base(result.FilePath), outputLabel(result), result.Stats.DocumentsExported)
			continue
		}

		summary.FailedFiles++
		message := "not processed"
		if result.Error != nil {
			message = result.Error.Error()
		}
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    result.FilePath,
			ErrorMessage: message,
		})
		fmt.Printf("  ✗ %s: %s\n", filepath.Base(result.FilePath), message)
	}
	summary.EndTime = time.Now()

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total archives:  %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Documents:       %d\n", summary.DocumentsExported)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if !dryRun {
		summaryPath, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
		if err != nil {
			logger.Warn("failed to write summary", "error", err)
		} else {
			logger.Info("wrote summary", "path", summaryPath)
		}
	}

	return runErr
}

func outputLabel(result converter.Result) string {
	if result.OutputFile == "" {
		return "(dry run)"
	}
	return filepath.Base(result.OutputFile)
}
