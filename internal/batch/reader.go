// =============================================================================
// DFP/ITR Reader - Batch Reader
// =============================================================================
//
// A batch is the maximal run of consecutive rows of one stream that share a
// batch key. The reader keeps at most one row of lookahead: the first row of
// the next batch, which seeds the following ReadBatch call.
//
// =============================================================================

package batch

import (
	"errors"
	"io"

	"github.com/ginjaninja78/dfpitr-reader/internal/csvparser"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// RowSource is the row stream a Reader consumes. *csvparser.Stream
// satisfies it.
type RowSource interface {
	Next() bool
	Row() csvparser.Row
	Err() error
}

// KeyFunc derives the batch key of a row.
type KeyFunc func(csvparser.Row) (types.BatchKey, error)

// Batch is a key plus the non-empty, ordered rows that share it.
type Batch struct {
	Key  types.BatchKey
	Rows []csvparser.Row
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	return len(b.Rows)
}

// Reader groups consecutive same-key rows of a RowSource into batches.
type Reader struct {
	src    RowSource
	key    KeyFunc
	onSkip func(csvparser.Row, error)

	// pushed is the lookahead row; pushedKey is its already computed key.
	pushed    *csvparser.Row
	pushedKey types.BatchKey

	// pending is a whole batch set aside by ReadExpected.
	pending *Batch
}

// Option configures a Reader.
type Option func(*Reader)

// WithSkipHandler registers a callback for rows whose key cannot be derived.
// Such rows are dropped and never end a batch.
func WithSkipHandler(fn func(csvparser.Row, error)) Option {
	return func(r *Reader) {
		r.onSkip = fn
	}
}

// NewReader returns a Reader over src.
func NewReader(src RowSource, key KeyFunc, opts ...Option) *Reader {
	r := &Reader{src: src, key: key}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadBatch returns the next batch, or io.EOF once the stream is exhausted.
// Rows are never reordered; the reader consumes exactly the returned rows
// plus the lookahead row.
func (r *Reader) ReadBatch() (*Batch, error) {
	var b *Batch

	if r.pushed != nil {
		b = &Batch{Key: r.pushedKey, Rows: []csvparser.Row{*r.pushed}}
		r.pushed = nil
	} else {
		row, key, err := r.next()
		if err != nil {
			return nil, err
		}
		b = &Batch{Key: key, Rows: []csvparser.Row{row}}
	}

	for {
		row, key, err := r.next()
		if errors.Is(err, io.EOF) {
			return b, nil
		}
		if err != nil {
			return nil, err
		}
		if key != b.Key {
			r.pushed = &row
			r.pushedKey = key
			return b, nil
		}
		b.Rows = append(b.Rows, row)
	}
}

// ReadExpected returns the next batch if it carries the expected key.
//
// The candidate is the pending batch from an earlier mismatch, if any, or a
// freshly read one. On a mismatch the candidate is kept as pending for a
// later document and ok is false. End of stream also reports ok false.
func (r *Reader) ReadExpected(expected types.BatchKey) (b *Batch, ok bool, err error) {
	if r.pending != nil {
		b, r.pending = r.pending, nil
	} else {
		b, err = r.ReadBatch()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
	}

	if b.Key != expected {
		r.pending = b
		return nil, false, nil
	}
	return b, true, nil
}

// Pending returns the batch set aside by the last mismatch, or nil.
func (r *Reader) Pending() *Batch {
	return r.pending
}

// next pulls the next keyable row from the source.
func (r *Reader) next() (csvparser.Row, types.BatchKey, error) {
	for r.src.Next() {
		row := r.src.Row()
		key, err := r.key(row)
		if err != nil {
			if r.onSkip != nil {
				r.onSkip(row, err)
			}
			continue
		}
		return row, key, nil
	}
	if err := r.src.Err(); err != nil {
		return csvparser.Row{}, 0, err
	}
	return csvparser.Row{}, 0, io.EOF
}
