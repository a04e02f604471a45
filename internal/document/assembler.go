// =============================================================================
// DFP/ITR Reader - Document Assembler
// =============================================================================
//
// The assembler walks the head file and every statement file of an archive
// in lockstep. Each head batch becomes one Document; each statement reader
// is asked for the batch with the same key:
//
//   - a matching batch is read into statements and attached
//   - a batch of a later document is kept pending for that document
//   - an exhausted statement file contributes nothing
//
// Nothing is loaded into memory beyond the current batch of each file and
// one lookahead row per reader. Row and statement errors are logged and only
// cost the record they belong to.
//
// USAGE:
//   asm, err := document.New(arc, opts)
//   if err != nil {
//       return err
//   }
//   for doc, err := range asm.All() {
//       if err != nil {
//           return err
//       }
//       // Use doc...
//   }
//
// =============================================================================

package document

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/ginjaninja78/dfpitr-reader/internal/archive"
	"github.com/ginjaninja78/dfpitr-reader/internal/batch"
	"github.com/ginjaninja78/dfpitr-reader/internal/config"
	"github.com/ginjaninja78/dfpitr-reader/internal/csvparser"
	"github.com/ginjaninja78/dfpitr-reader/internal/fiscal"
	"github.com/ginjaninja78/dfpitr-reader/internal/logging"
	"github.com/ginjaninja78/dfpitr-reader/internal/statement"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Options configures an Assembler.
type Options struct {
	CSV config.CSVSettings

	// Grouper files statements by fiscal year order. Nil uses the default
	// thresholds.
	Grouper *fiscal.Grouper

	Logger *slog.Logger
}

// Source is a statement row stream for NewFromStreams.
type Source struct {
	Kind types.StatementKind
	Mode types.BalanceType
	Name string
	Rows batch.RowSource
}

type satellite struct {
	kind   types.StatementKind
	name   string
	reader *batch.Reader
}

// Assembler yields the documents of one archive.
type Assembler struct {
	head       *batch.Reader
	satellites map[types.BalanceType][]*satellite
	grouper    *fiscal.Grouper
	logger     *slog.Logger
	stack      archive.Stack
}

// New opens the head file and the statement files of every balance type the
// archive was opened for. Every opened member is released by Close, or
// right away if New fails.
func New(arc *archive.Archive, opts Options) (*Assembler, error) {
	var stack archive.Stack

	open := func(name string) (*csvparser.Stream, error) {
		member, err := arc.OpenMember(name)
		if err != nil {
			return nil, err
		}
		stack.Push(member)

		stream, err := csvparser.NewStream(member, opts.CSV)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return stream, nil
	}

	head, err := open(arc.Names.Head)
	if err != nil {
		stack.Close()
		return nil, err
	}

	var sources []Source
	for _, mode := range types.BalanceTypes {
		if (mode == types.Individual && !arc.Options.Individual) || (mode == types.Consolidated && !arc.Options.Consolidated) {
			continue
		}
		for _, sat := range arc.Names.Satellites(mode) {
			stream, err := open(sat.Name)
			if err != nil {
				stack.Close()
				return nil, err
			}
			sources = append(sources, Source{Kind: sat.Kind, Mode: mode, Name: sat.Name, Rows: stream})
		}
	}

	a := NewFromStreams(head, sources, opts)
	a.stack = stack
	return a, nil
}

// NewFromStreams builds an assembler over already open row streams. The
// sources of one balance type are read in the given order.
func NewFromStreams(head batch.RowSource, sources []Source, opts Options) *Assembler {
	logger := logging.OrDiscard(opts.Logger)

	grouper := opts.Grouper
	if grouper == nil {
		grouper = fiscal.NewGrouper(logger)
	}

	a := &Assembler{
		head:       batch.NewReader(head, batch.DocumentRowKey, batch.WithSkipHandler(skipLogger(logger, "head"))),
		satellites: map[types.BalanceType][]*satellite{},
		grouper:    grouper,
		logger:     logger,
	}

	for _, src := range sources {
		a.satellites[src.Mode] = append(a.satellites[src.Mode], &satellite{
			kind:   src.Kind,
			name:   src.Name,
			reader: batch.NewReader(src.Rows, batch.DocumentRowKey, batch.WithSkipHandler(skipLogger(logger, src.Name))),
		})
	}

	return a
}

func skipLogger(logger *slog.Logger, source string) func(csvparser.Row, error) {
	return func(row csvparser.Row, err error) {
		logger.Warn("skipping row without a valid document key", "source", source, "line", row.Line(), "error", err)
	}
}

// Next returns the next document, or io.EOF after the last one. Statement
// files that still hold data when the head file ends are not read further.
func (a *Assembler) Next() (*types.Document, error) {
	head, err := a.head.ReadBatch()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("head: %w", err)
	}

	row := head.Rows[0]
	key, err := batch.ReadNaturalKey(row)
	if err != nil {
		return nil, fmt.Errorf("head line %d: %w", row.Line(), err)
	}

	doc := &types.Document{
		Key:           head.Key,
		CNPJ:          key.CNPJ,
		ReferenceDate: key.ReferenceDate,
		Version:       key.Version,
	}
	a.readHead(doc, row)

	logger := a.logger.With("cnpj", doc.CNPJ.String(), "reference_date", doc.ReferenceDate.Format(csvparser.DateLayout), "version", doc.Version)
	if head.Len() > 1 {
		logger.Debug("head batch has more than one row", "rows", head.Len())
	}

	for _, mode := range types.BalanceTypes {
		sats, ok := a.satellites[mode]
		if !ok {
			continue
		}

		grouped, err := a.readBalances(doc, mode, sats, logger)
		if err != nil {
			return nil, err
		}
		if mode == types.Individual {
			doc.Individual = grouped
		} else {
			doc.Consolidated = grouped
		}
	}

	return doc, nil
}

func (a *Assembler) readHead(doc *types.Document, row csvparser.Row) {
	for _, f := range headFields {
		if err := f.read(row, doc); err != nil {
			a.logger.Warn("head field unavailable", "field", f.name, "line", row.Line(), "error", err)
		}
	}
}

// readBalances reads the statements of one balance type. A document with no
// statements of that type, or whose statements cannot be grouped, gets nil.
func (a *Assembler) readBalances(doc *types.Document, mode types.BalanceType, sats []*satellite, logger *slog.Logger) (*types.GroupedCollection, error) {
	opts := statement.OptionsFor(doc.ReferenceDate)

	var statements []types.Statement
	for _, sat := range sats {
		b, ok, err := sat.reader.ReadExpected(doc.Key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sat.name, err)
		}
		if !ok {
			logger.Debug("no statement data", "source", sat.name)
			continue
		}

		stmts, errs := statement.Read(sat.kind, b.Rows, opts)
		for _, err := range errs {
			logger.Warn("skipping statement", "source", sat.name, "error", err)
		}
		statements = append(statements, stmts...)
	}

	if len(statements) == 0 {
		return nil, nil
	}

	grouped, err := a.grouper.Group(doc.Type, mode, statements)
	if err != nil {
		logger.Warn(fmt.Sprintf("skipping %s balances", mode), "document_id", doc.ID, "company", doc.CompanyName, "error", err)
		return nil, nil
	}
	return grouped, nil
}

// All returns an iterator over the remaining documents. The assembler is
// closed when the iteration ends, including when the consumer stops early.
// A read error is yielded once and ends the iteration.
func (a *Assembler) All() iter.Seq2[*types.Document, error] {
	return func(yield func(*types.Document, error) bool) {
		defer a.Close()
		for {
			doc, err := a.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(doc, err) || err != nil {
				return
			}
		}
	}
}

// Close releases every member opened by New. It is safe to call twice.
func (a *Assembler) Close() error {
	return a.stack.Close()
}
