// =============================================================================
// DFP/ITR Reader - Fiscal-Year Grouper
// =============================================================================
//
// The grouper files the statements read from one document's satellite
// batches into a GroupedCollection: one Collection per fiscal year order.
//
// ITR documents also carry year-to-date income statements next to the
// quarterly ones (e.g. the first semester next to the second quarter). An
// income statement is "extra" when its period length falls strictly between
// the ExtraMinDays and ExtraMaxDays thresholds of the document type. Extras
// are kept apart in ExtraDRE / ExtraDRA.
//
// For each (kind, order) slot the first statement wins. Later duplicates are
// logged and dropped.
//
// =============================================================================

package fiscal

import (
	"fmt"
	"log/slog"

	"github.com/ginjaninja78/dfpitr-reader/internal/logging"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Default extra-statement thresholds, in days. They are heuristics tuned
// against observed filings.
const (
	DefaultExtraMinDays = 91
	DefaultExtraMaxDays = 360
)

// RequiredKinds must be present in every collection.
var RequiredKinds = []types.StatementKind{types.BPA, types.BPP, types.DRE, types.DFC}

// Thresholds bound the period of an extra statement: Min < days < Max.
type Thresholds struct {
	ExtraMinDays int
	ExtraMaxDays int
}

// DefaultThresholds returns the built-in thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{ExtraMinDays: DefaultExtraMinDays, ExtraMaxDays: DefaultExtraMaxDays}
}

// IsExtra reports whether a statement of the given period length is extra.
func (t Thresholds) IsExtra(days int) bool {
	return days > t.ExtraMinDays && days < t.ExtraMaxDays
}

// Grouper splits statements by fiscal year order.
type Grouper struct {
	DFP    Thresholds
	ITR    Thresholds
	Logger *slog.Logger
}

// NewGrouper returns a Grouper with the default thresholds.
func NewGrouper(logger *slog.Logger) *Grouper {
	return &Grouper{
		DFP:    DefaultThresholds(),
		ITR:    DefaultThresholds(),
		Logger: logger,
	}
}

// Thresholds returns the thresholds for a document type. Documents of an
// unknown type use the DFP thresholds.
func (g *Grouper) Thresholds(docType types.DocumentType) Thresholds {
	if docType == types.ITR {
		return g.ITR
	}
	return g.DFP
}

// Group files statements into a GroupedCollection.
//
// PARAMETERS:
//   - docType: The document type, which selects the thresholds.
//   - balanceType: The balance type every statement belongs to.
//   - statements: The statements of every satellite, in reading order.
//
// RETURNS:
//   - The grouped collection. Previous is nil when the document carries no
//     complete previous fiscal year.
//   - An ErrMissingValue error if the last fiscal year lacks a required
//     statement.
func (g *Grouper) Group(docType types.DocumentType, balanceType types.BalanceType, statements []types.Statement) (*types.GroupedCollection, error) {
	logger := logging.OrDiscard(g.Logger)
	thresholds := g.Thresholds(docType)

	grouped := &types.GroupedCollection{}
	for i := range statements {
		stmt := &statements[i]

		coll, err := collectionFor(grouped, balanceType, stmt.FiscalYearOrder)
		if err != nil {
			return nil, err
		}

		if isIncomeStatement(stmt.Kind) && thresholds.IsExtra(stmt.PeriodDays()) {
			slot := &coll.ExtraDRE
			if stmt.Kind == types.DRA {
				slot = &coll.ExtraDRA
			}
			if *slot == nil {
				*slot = stmt
				continue
			}
			// A second extra statement takes the regular slot if it is free.
		}

		if coll.Statements[stmt.Kind] != nil {
			logger.Warn("dropping duplicate statement",
				"kind", stmt.Kind, "order", stmt.FiscalYearOrder, "days", stmt.PeriodDays())
			continue
		}
		coll.Statements[stmt.Kind] = stmt
	}

	if err := checkRequired(grouped.Last); err != nil {
		return nil, fmt.Errorf("%s fiscal year: %w", types.LastFiscalYear, err)
	}
	if grouped.Previous != nil {
		if err := checkRequired(grouped.Previous); err != nil {
			logger.Debug("dropping incomplete previous fiscal year", "balance_type", balanceType, "error", err)
			grouped.Previous = nil
		}
	}

	return grouped, nil
}

func collectionFor(g *types.GroupedCollection, balanceType types.BalanceType, order types.FiscalYearOrder) (*types.Collection, error) {
	var slot **types.Collection
	switch order {
	case types.LastFiscalYear:
		slot = &g.Last
	case types.SecondToLastFiscalYear:
		slot = &g.Previous
	default:
		return nil, fmt.Errorf("%w: fiscal year order %d", types.ErrInvalidValue, order)
	}

	if *slot == nil {
		*slot = &types.Collection{
			BalanceType: balanceType,
			Statements:  map[types.StatementKind]*types.Statement{},
		}
	}
	return *slot, nil
}

func isIncomeStatement(kind types.StatementKind) bool {
	return kind == types.DRE || kind == types.DRA
}

func checkRequired(coll *types.Collection) error {
	if coll == nil {
		return fmt.Errorf("%w: no statements", types.ErrMissingValue)
	}
	for _, kind := range RequiredKinds {
		if coll.Statements[kind] == nil {
			return fmt.Errorf("%w: missing %s", types.ErrMissingValue, kind)
		}
	}
	return nil
}
