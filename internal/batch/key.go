package batch

import (
	"fmt"
	"hash/crc32"
	"strconv"
	"time"

	"github.com/ginjaninja78/dfpitr-reader/internal/csvparser"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Field names of the natural key repeated on every DFP/ITR row.
const (
	FieldCNPJ          = "CNPJ_CIA"
	FieldReferenceDate = "DT_REFER"
	FieldVersion       = "VERSAO"
)

// DocumentKey hashes the natural key of a DFP/ITR document. Statement files
// carry no document id, so rows are correlated by CRC32 over the zero-filled
// CNPJ digits, the reference date and the version. Collisions between
// distinct natural keys are possible and accepted.
func DocumentKey(cnpj types.CNPJ, referenceDate time.Time, version int) types.BatchKey {
	s := cnpj.Digits() + referenceDate.Format(csvparser.DateLayout) + strconv.Itoa(version)
	return types.BatchKey(crc32.ChecksumIEEE([]byte(s)))
}

// NaturalKey is the parsed natural key of a row.
type NaturalKey struct {
	CNPJ          types.CNPJ
	ReferenceDate time.Time
	Version       int
}

// ReadNaturalKey reads CNPJ_CIA, DT_REFER and VERSAO from a row.
func ReadNaturalKey(row csvparser.Row) (NaturalKey, error) {
	raw, err := row.Required(FieldCNPJ)
	if err != nil {
		return NaturalKey{}, err
	}
	cnpj, err := types.ParseCNPJ(raw)
	if err != nil {
		return NaturalKey{}, fmt.Errorf("field '%s': %w", FieldCNPJ, err)
	}

	referenceDate, err := row.RequiredDate(FieldReferenceDate)
	if err != nil {
		return NaturalKey{}, err
	}

	version, err := row.RequiredInt(FieldVersion)
	if err != nil {
		return NaturalKey{}, err
	}

	return NaturalKey{CNPJ: cnpj, ReferenceDate: referenceDate, Version: version}, nil
}

// Key returns the batch key of the natural key.
func (k NaturalKey) Key() types.BatchKey {
	return DocumentKey(k.CNPJ, k.ReferenceDate, k.Version)
}

// DocumentRowKey is the KeyFunc shared by head and statement files.
func DocumentRowKey(row csvparser.Row) (types.BatchKey, error) {
	k, err := ReadNaturalKey(row)
	if err != nil {
		return 0, err
	}
	return k.Key(), nil
}
