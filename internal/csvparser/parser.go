// =============================================================================
// DFP/ITR Reader - CSV Row Stream
// =============================================================================
//
// This module turns one tabular member of an archive into a stream of named
// rows. It handles:
//   - Delimiters (";" for CVM files, configurable)
//   - Legacy single-byte encodings (ISO-8859-1 by default)
//   - Short records: trailing columns are absent, not empty
//
// Rows are read one at a time; a member is never loaded into memory whole.
//
// USAGE:
//   stream, err := csvparser.NewStream(member, settings)
//   if err != nil {
//       return err
//   }
//   for stream.Next() {
//       row := stream.Row()
//       // Process the row...
//   }
//   if err := stream.Err(); err != nil {
//       return err
//   }
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/dfpitr-reader/internal/config"
)

// =============================================================================
// STREAM
// =============================================================================

// Stream yields the rows of one CSV source after its header row.
type Stream struct {
	reader  *csv.Reader
	headers []string
	current Row
	line    int
	err     error
}

// NewStream reads the header row of r and returns a stream over the
// remaining rows.
//
// PARAMETERS:
//   - r: The raw (still encoded) CSV source.
//   - settings: Delimiter and encoding.
//
// RETURNS:
//   - The stream, positioned before the first data row.
//   - An error if the encoding is unknown or the header cannot be read.
func NewStream(r io.Reader, settings config.CSVSettings) (*Stream, error) {
	decoder, err := decoderFor(settings.Encoding)
	if err != nil {
		return nil, err
	}

	var src io.Reader = bufio.NewReader(r)
	if decoder != nil {
		src = transform.NewReader(src, decoder.NewDecoder())
	}

	reader := csv.NewReader(src)
	configureReader(reader, settings)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	return &Stream{
		reader:  reader,
		headers: cleanHeaders(header),
		line:    1,
	}, nil
}

// Next advances to the next row. It returns false at the end of the source
// or on the first read error; check Err afterwards.
func (s *Stream) Next() bool {
	if s.err != nil {
		return false
	}

	for {
		record, err := s.reader.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = fmt.Errorf("csv: %w", err)
			}
			s.current = Row{}
			return false
		}
		s.line, _ = s.reader.FieldPos(0)

		if isRecordEmpty(record) {
			continue
		}

		s.current = newRow(s.headers, record, s.line)
		return true
	}
}

// Row returns the current row.
func (s *Stream) Row() Row {
	return s.current
}

// Headers returns the column names of the stream.
func (s *Stream) Headers() []string {
	return s.headers
}

// Line returns the line number of the current row (the header is line 1).
func (s *Stream) Line() int {
	return s.line
}

// Err returns the first read error, if any.
func (s *Stream) Err() error {
	return s.err
}

// =============================================================================
// READER CONFIGURATION
// =============================================================================

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ",", "comma":
		reader.Comma = ','
	default:
		reader.Comma = ';'
	}

	// Short records are legal; missing columns become absent fields.
	reader.FieldsPerRecord = -1

	// CVM exports contain unescaped quotes inside account names.
	reader.LazyQuotes = true
}

// decoderFor returns the decoder for an encoding name, or nil for UTF-8.
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "ISO-8859-1", "ISO8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	case "UTF-8", "UTF8":
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

// cleanHeaders trims header names and drops a leading byte order mark.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, "\ufeff")
		}
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

// isRecordEmpty checks if a record contains only empty values.
func isRecordEmpty(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
