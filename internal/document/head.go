package document

import (
	"fmt"

	"github.com/ginjaninja78/dfpitr-reader/internal/csvparser"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// headField reads one metadata field of a head row into a document. A
// failure leaves the field at its zero value.
type headField struct {
	name string
	read func(row csvparser.Row, doc *types.Document) error
}

var headFields = []headField{
	{"DENOM_CIA", func(row csvparser.Row, doc *types.Document) (err error) {
		doc.CompanyName, err = row.Required("DENOM_CIA")
		return err
	}},
	{"CD_CVM", func(row csvparser.Row, doc *types.Document) (err error) {
		doc.CVMCode, err = row.RequiredInt("CD_CVM")
		return err
	}},
	{"CATEG_DOC", func(row csvparser.Row, doc *types.Document) error {
		v, err := row.Required("CATEG_DOC")
		if err != nil {
			return err
		}
		t, ok := types.ParseDocumentType(v)
		if !ok {
			return fmt.Errorf("%w: unknown document type '%s' at field 'CATEG_DOC'", types.ErrInvalidValue, v)
		}
		doc.Type = t
		return nil
	}},
	{"ID_DOC", func(row csvparser.Row, doc *types.Document) (err error) {
		doc.ID, err = row.RequiredInt("ID_DOC")
		return err
	}},
	{"DT_RECEB", func(row csvparser.Row, doc *types.Document) (err error) {
		doc.ReceiptDate, err = row.RequiredDate("DT_RECEB")
		return err
	}},
	{"LINK_DOC", func(row csvparser.Row, doc *types.Document) (err error) {
		doc.URL, err = row.Required("LINK_DOC")
		return err
	}},
}
