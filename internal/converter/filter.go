package converter

import (
	"github.com/ginjaninja78/dfpitr-reader/internal/config"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// =============================================================================
// DOCUMENT FILTER
// =============================================================================

// Filter decides which documents of an archive are exported.
type Filter struct {
	cvmCodes map[int]bool
	docTypes map[types.DocumentType]bool
	minYear  int
	maxYear  int
}

// NewFilter creates a Filter from the configured settings. Empty settings
// keep every document.
func NewFilter(settings config.FilterSettings) *Filter {
	f := &Filter{minYear: settings.MinYear, maxYear: settings.MaxYear}

	if len(settings.CVMCodes) > 0 {
		f.cvmCodes = make(map[int]bool, len(settings.CVMCodes))
		for _, code := range settings.CVMCodes {
			f.cvmCodes[code] = true
		}
	}

	if len(settings.DocumentTypes) > 0 {
		f.docTypes = make(map[types.DocumentType]bool, len(settings.DocumentTypes))
		for _, name := range settings.DocumentTypes {
			if dt, ok := types.ParseDocumentType(name); ok {
				f.docTypes[dt] = true
			}
		}
	}

	return f
}

// Keep reports whether a document passes every configured filter. The year
// filters apply to the reference date.
func (f *Filter) Keep(doc *types.Document) bool {
	if f.cvmCodes != nil && !f.cvmCodes[doc.CVMCode] {
		return false
	}
	if f.docTypes != nil && !f.docTypes[doc.Type] {
		return false
	}

	year := doc.ReferenceDate.Year()
	if f.minYear != 0 && year < f.minYear {
		return false
	}
	if f.maxYear != 0 && year > f.maxYear {
		return false
	}
	return true
}
