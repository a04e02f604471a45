package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "input_archive"),
		filepath.Join(root, "output_archive"),
	)
	require.NoError(t, os.MkdirAll(fm.InputDir, 0755))
	return fm
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDiscoverArchives(t *testing.T) {
	fm := newTestManager(t)
	touch(t, filepath.Join(fm.InputDir, "itr_cia_aberta_2021.zip"), "x")
	touch(t, filepath.Join(fm.InputDir, "dfp_cia_aberta_2020.zip"), "x")
	touch(t, filepath.Join(fm.InputDir, "notes.txt"), "x")
	require.NoError(t, os.Mkdir(filepath.Join(fm.InputDir, "dir.zip"), 0755))

	files, err := fm.DiscoverArchives("")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "dfp_cia_aberta_2020.zip", filepath.Base(files[0]))
	assert.Equal(t, "itr_cia_aberta_2021.zip", filepath.Base(files[1]))

	files, err = fm.DiscoverArchives("itr_*.zip")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{archive}_{uuid}", map[string]string{"archive": "dfp_cia_aberta_2020"})
	assert.Regexp(t, regexp.MustCompile(`^dfp_cia_aberta_2020_[0-9a-f-]{36}\.xml$`), name)

	assert.NotEqual(t,
		GenerateOutputFileName("{uuid}.xml", nil),
		GenerateOutputFileName("{uuid}.xml", nil))

	assert.Regexp(t, `^out_\d{8}_\d{6}\.XML$`, GenerateOutputFileName("out_{timestamp}.XML", nil))
}

func TestWriteOutputAndArchive(t *testing.T) {
	fm := newTestManager(t)

	out, err := fm.WriteOutput("{archive}.xml", map[string]string{"archive": "a"}, []byte("<dfpitr/>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.OutputDir, "a.xml"), out)

	archived, err := fm.ArchiveOutputFile(out)
	require.NoError(t, err)
	assert.True(t, FileExists(out), "output files are copied")
	data, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, "<dfpitr/>", string(data))

	input := filepath.Join(fm.InputDir, "dfp_cia_aberta_2020.zip")
	touch(t, input, "zip")
	moved, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.False(t, FileExists(input), "input files are moved")
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "dfp_cia_aberta_2020.zip"), moved)
}

func TestArchiveUsesTimestampSubdirs(t *testing.T) {
	fm := newTestManager(t)
	fm.UseTimestampSubdirs = true
	fm.now = func() time.Time { return time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC) }

	input := filepath.Join(fm.InputDir, "itr_cia_aberta_2023.zip")
	touch(t, input, "zip")

	moved, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.InputArchiveDir, "2024", "01", "05", "itr_cia_aberta_2023.zip"), moved)
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	path, err := WriteSummaryLog(ProcessingSummary{
		RunID:             "run-1",
		StartTime:         start,
		EndTime:           start.Add(2 * time.Second),
		TotalFiles:        2,
		SuccessfulFiles:   1,
		FailedFiles:       1,
		DocumentsRead:     10,
		DocumentsExported: 9,
		ProcessedFiles:    []ProcessedFileInfo{{InputFile: "a.zip", OutputFile: "a.xml", Documents: 9}},
		FailedFilesList:   []FailedFileInfo{{InputFile: "b.zip", ErrorMessage: "bad archive"}},
	}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "processing_summary_20240301_093000.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Run ID:         run-1")
	assert.Contains(t, text, "Documents Exported:  9")
	assert.Contains(t, text, "Output:       a.xml")
	assert.Contains(t, text, "Error: bad archive")
	assert.Contains(t, text, "Duration:       2s")
}
