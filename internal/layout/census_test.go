package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

func TestFingerprintIgnoresFreeFormAndDeepAccounts(t *testing.T) {
	base := industrialAssets()
	noisy := append([]types.Account{}, base...)
	noisy = append(noisy,
		acc("1.02.04.01", "Software", 1, true),
		acc("1.02.05", "Outros", 1, false),
	)

	assert.Equal(t, Fingerprint(base, 3), Fingerprint(noisy, 3))
	assert.NotEqual(t, Fingerprint(base, 3), Fingerprint(base, 2))
	assert.Len(t, LayoutAccounts(noisy, 2), 3)
}

func TestCensus(t *testing.T) {
	c := NewCensus(3)

	renamed := industrialAssets()
	renamed[1].Name = "Circulante"

	c.Add("A", renamed)
	fp := c.Add("B", industrialAssets())
	c.Add("C", industrialAssets())

	require.Equal(t, 2, c.Len())
	entries := c.Entries()
	assert.Equal(t, fp, entries[0].Fingerprint)
	assert.Equal(t, []string{"B", "C"}, entries[0].Members)
	assert.Len(t, entries[0].Accounts, 15)
	assert.Equal(t, []string{"A"}, entries[1].Members)
}
