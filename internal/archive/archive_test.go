package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

var middles = []string{"BPA", "BPP", "DFC_MD", "DFC_MI", "DMPL", "DRA", "DRE", "DVA"}

func memberNames(prefix string, modes ...string) []string {
	names := []string{prefix + "_2020.csv"}
	for _, mode := range modes {
		for _, m := range middles {
			names = append(names, prefix+"_"+m+"_"+mode+"_2020.csv")
		}
	}
	return names
}

func zipBytes(t *testing.T, names []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestParseMemberNames(t *testing.T) {
	m, err := ParseMemberNames(memberNames("dfp_cia_aberta", "con", "ind"), DefaultPrefixLength, true, true)
	require.NoError(t, err)

	assert.Equal(t, "dfp_cia_aberta_2020.csv", m.Head)

	sats := m.Satellites(types.Consolidated)
	require.Len(t, sats, 8)
	assert.Equal(t, types.BPA, sats[0].Kind)
	assert.Equal(t, "dfp_cia_aberta_BPA_con_2020.csv", sats[0].Name)
	assert.Equal(t, types.DFC, sats[4].Kind)
	assert.Equal(t, types.DirectMethod, sats[4].Method)
	assert.Equal(t, types.IndirectMethod, sats[5].Method)
	assert.Equal(t, "dfp_cia_aberta_DFC_MI_con_2020.csv", sats[5].Name)

	for _, s := range m.Satellites(types.Individual) {
		assert.Equal(t, types.Individual, s.Mode)
		assert.Contains(t, s.Name, "_ind_")
	}
}

func TestParseMemberNamesOnlyRequiresEnabledModes(t *testing.T) {
	names := memberNames("itr_cia_aberta", "con")

	_, err := ParseMemberNames(names, DefaultPrefixLength, false, true)
	require.NoError(t, err)

	_, err = ParseMemberNames(names, DefaultPrefixLength, true, true)
	require.ErrorIs(t, err, types.ErrBadArchive)
	assert.Contains(t, err.Error(), "BPA_ind")
}

func TestParseMemberNamesRejectsBadArchives(t *testing.T) {
	cases := map[string][]string{
		"unknown role":   append(memberNames("dfp_cia_aberta", "con"), "dfp_cia_aberta_XYZ_con_2020.csv"),
		"short name":     append(memberNames("dfp_cia_aberta", "con"), "readme.txt"),
		"bad year":       append(memberNames("dfp_cia_aberta", "con"), "dfp_cia_aberta_BPA_ind_20XX.csv"),
		"missing head":   memberNames("dfp_cia_aberta", "con")[1:],
		"two head files": append(memberNames("dfp_cia_aberta", "con"), "itr_cia_aberta_2020.csv"),
	}
	for name, names := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMemberNames(names, DefaultPrefixLength, false, true)
			assert.ErrorIs(t, err, types.ErrBadArchive)
		})
	}
}

func TestParseMemberNamesSkipsDirectories(t *testing.T) {
	names := append([]string{"dfp/"}, memberNames("dfp_cia_aberta", "con")...)
	_, err := ParseMemberNames(names, DefaultPrefixLength, false, true)
	assert.NoError(t, err)
}

func TestNewReaderOpensMembers(t *testing.T) {
	data := zipBytes(t, memberNames("dfp_cia_aberta", "con", "ind"))

	a, err := NewReader(bytes.NewReader(data), int64(len(data)), DefaultOptions())
	require.NoError(t, err)
	defer a.Close()

	rc, err := a.OpenMember(a.Names.Head)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "content of dfp_cia_aberta_2020.csv", string(content))

	_, err = a.OpenMember("nope.csv")
	assert.ErrorIs(t, err, types.ErrBadArchive)
}

func TestOpenFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dfp_cia_aberta_2020.zip")
	require.NoError(t, os.WriteFile(path, zipBytes(t, memberNames("dfp_cia_aberta", "con", "ind")), 0o644))

	a, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	assert.NoError(t, a.Close())

	_, err = Open(filepath.Join(t.TempDir(), "missing.zip"), DefaultOptions())
	assert.ErrorIs(t, err, types.ErrBadArchive)

	bad := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
	_, err = Open(bad, DefaultOptions())
	assert.ErrorIs(t, err, types.ErrBadArchive)
}

type recordingCloser struct {
	name  string
	order *[]string
	err   error
}

func (c recordingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

func TestStackClosesInReverseOrder(t *testing.T) {
	var order []string
	errB := errors.New("b failed")

	var s Stack
	s.Push(recordingCloser{"a", &order, nil})
	s.Push(recordingCloser{"b", &order, errB})
	s.Push(recordingCloser{"c", &order, nil})

	err := s.Close()
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, []string{"c", "b", "a"}, order)

	assert.NoError(t, s.Close())
	assert.Len(t, order, 3)
}
