package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCNPJ(t *testing.T) {
	formatted, err := ParseCNPJ("00.000.000/0001-91")
	require.NoError(t, err)
	assert.Equal(t, CNPJ(191), formatted)
	assert.Equal(t, "00000000000191", formatted.Digits())
	assert.Equal(t, "00.000.000/0001-91", formatted.String())

	plain, err := ParseCNPJ("00000000000191")
	require.NoError(t, err)
	assert.Equal(t, formatted, plain)
}

func TestParseCNPJRejectsMalformedValues(t *testing.T) {
	for _, value := range []string{"", "00.000.000-0001/91", "00.000.000/0001-9", "0", "12a", "00.000.000/0001-91x"} {
		_, err := ParseCNPJ(value)
		assert.ErrorIs(t, err, ErrInvalidValue, value)
	}
}

func TestAccountLevel(t *testing.T) {
	assert.Equal(t, 1, Account{Code: "1"}.Level())
	assert.Equal(t, 3, Account{Code: "1.01.02"}.Level())
}

func TestStatementPeriodDays(t *testing.T) {
	s := Statement{
		PeriodStart: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2010, 6, 30, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 180, s.PeriodDays())
	assert.Zero(t, Statement{PeriodEnd: s.PeriodEnd}.PeriodDays())
}

func TestParseStatementKind(t *testing.T) {
	kind, ok := ParseStatementKind("dre")
	require.True(t, ok)
	assert.Equal(t, DRE, kind)

	_, ok = ParseStatementKind("XYZ")
	assert.False(t, ok)
}

func TestDocumentCollectionOnMissingBalances(t *testing.T) {
	doc := &Document{}
	assert.Nil(t, doc.Collection(Consolidated, LastFiscalYear))
	assert.Nil(t, doc.Collection(Individual, SecondToLastFiscalYear).Statement(BPA))
}
