// =============================================================================
// DFP/ITR Reader - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the reader, including:
//   - Archive discovery in the input directory
//   - File archival (moving processed archives)
//   - Output file naming and writing
//   - Processing summary generation
//
// ARCHIVAL STRATEGY:
//   - Input archives are moved to input_archive after successful processing
//   - Output files are copied to output_archive for long-term storage
//   - Failed archives remain in their original location
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the reader.
type FileManager struct {
	// InputDir is the directory where input archives are placed.
	InputDir string

	// OutputDir is the directory where output files are placed.
	OutputDir string

	// InputArchiveDir is the directory for archived input files.
	InputArchiveDir string

	// OutputArchiveDir is the directory for archived output files.
	OutputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in archives.
	// Example: input_archive/2024/01/15/dfp_cia_aberta_2023.zip
	UseTimestampSubdirs bool

	// now is replaced in tests.
	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		now:              time.Now,
	}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverArchives lists the archives of the input directory whose names
// match the pattern ("*.zip" when empty). Subdirectories are ignored.
//
// RETURNS:
//   - The matching file paths, sorted by name.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverArchives(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.zip"
	}

	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", fm.InputDir, err)
	}

	var archives []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("bad archive pattern '%s': %w", pattern, err)
		}
		if ok {
			archives = append(archives, filepath.Join(fm.InputDir, entry.Name()))
		}
	}

	sort.Strings(archives)
	return archives, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a processed archive out of the input directory so
// that the next run does not pick it up again.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	return fm.archive(fm.InputArchiveDir, filePath, true)
}

// ArchiveOutputFile keeps a copy of an exported file; the file itself stays
// in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	return fm.archive(fm.OutputArchiveDir, filePath, false)
}

func (fm *FileManager) archive(dir, filePath string, move bool) (string, error) {
	target := fm.getArchivePath(dir, filePath)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if move && os.Rename(filePath, target) == nil {
		return target, nil
	}

	// Rename fails across devices; fall back to copying.
	if err := copyFile(filePath, target); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", filepath.Base(filePath), err)
	}
	if move {
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove %s after archiving: %w", filePath, err)
		}
	}
	return target, nil
}

// getArchivePath returns dir/<name>, or dir/YYYY/MM/DD/<name> with
// UseTimestampSubdirs.
func (fm *FileManager) getArchivePath(dir, filePath string) string {
	name := filepath.Base(filePath)
	if !fm.UseTimestampSubdirs {
		return filepath.Join(dir, name)
	}
	return filepath.Join(dir, filepath.FromSlash(fm.clock().Format("2006/01/02")), name)
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// OUTPUT FILES
// =============================================================================

// WriteOutput writes data to a new file in the output directory, named by
// GenerateOutputFileName.
//
// RETURNS:
//   - The path to the written file.
//   - An error if the file cannot be written.
func (fm *FileManager) WriteOutput(format string, params map[string]string, data []byte) (string, error) {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(fm.OutputDir, GenerateOutputFileName(format, params))
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return outputPath, nil
}

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {archive}   - Archive file name (without extension)
//   - params: A map of placeholder values, e.g. {"archive": "dfp_cia_aberta_2023"}.
//
// RETURNS:
//   - The generated file name, always ending in ".xml".
//
// EXAMPLE:
//   format: "{archive}_{uuid}.xml"
//   output: "dfp_cia_aberta_2023_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xml"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	pairs := []string{
		"{uuid}", uuid.NewString(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
	}
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", value)
	}
	name := strings.NewReplacer(pairs...).Replace(format)

	if strings.EqualFold(filepath.Ext(name), ".xml") {
		return name
	}
	return name + ".xml"
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	// RunID identifies the run in the logs.
	RunID string

	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int

	DocumentsRead      int
	DocumentsExported  int
	BalanceErrors      int
	ValidationErrors   int
	ValidationWarnings int

	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed archive.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	Documents   int
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed archive.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a log file.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryFileName := fmt.Sprintf("processing_summary_%s.txt", summary.StartTime.Format("20060102_150405"))
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "DFP/ITR Reader - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Archives:      %d\n"+
		"  Successful:          %d\n"+
		"  Failed:              %d\n"+
		"  Documents Read:      %d\n"+
		"  Documents Exported:  %d\n"+
		"  Balance Errors:      %d\n"+
		"  Validation Errors:   %d\n"+
		"  Validation Warnings: %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.DocumentsRead,
		summary.DocumentsExported,
		summary.BalanceErrors,
		summary.ValidationErrors,
		summary.ValidationWarnings)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Archives:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			if pf.OutputFile != "" {
				fmt.Fprintf(writer, "  Output:       %s\n", pf.OutputFile)
			}
			fmt.Fprintf(writer, "  Documents:    %d\n", pf.Documents)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Archives:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
