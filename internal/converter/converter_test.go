package converter

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/dfpitr-reader/internal/config"
	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

const (
	headHeader      = "CNPJ_CIA;DT_REFER;VERSAO;DENOM_CIA;CD_CVM;CATEG_DOC;ID_DOC;DT_RECEB;LINK_DOC"
	statementHeader = "CNPJ_CIA;DT_REFER;VERSAO;DENOM_CIA;CD_CVM;GRUPO_DFP;MOEDA;ESCALA_MOEDA;ORDEM_EXERC;DT_INI_EXERC;DT_FIM_EXERC;CD_CONTA;DS_CONTA;VL_CONTA;ST_CONTA_FIXA"
)

type company struct {
	cnpj string
	name string
	cvm  int
}

var (
	alpha = company{"11.111.111/0001-11", "ALPHA S.A.", 1001}
	beta  = company{"22.222.222/0001-22", "BETA S.A.", 1002}
)

func (c company) head() string {
	return strings.Join([]string{
		c.cnpj, "2020-12-31", "1", c.name, strconv.Itoa(c.cvm), "DFP",
		strconv.Itoa(c.cvm), "2021-03-01", "https://example.com/" + strconv.Itoa(c.cvm),
	}, ";")
}

func (c company) line(group, code, name, value string) string {
	return strings.Join([]string{
		c.cnpj, "2020-12-31", "1", c.name, strconv.Itoa(c.cvm), group,
		"REAL", "MIL", "ÚLTIMO", "2020-01-01", "2020-12-31", code, name, value, "S",
	}, ";")
}

// statements returns the minimal consolidated member lines of one company,
// keyed by member role.
func (c company) statements() map[string][]string {
	return map[string][]string{
		"BPA":    {c.line("DF Consolidado - Balanço Patrimonial Ativo", "1", "Ativo Total", "100")},
		"BPP":    {c.line("DF Consolidado - Balanço Patrimonial Passivo", "2", "Passivo Total", "100")},
		"DRE":    {c.line("DF Consolidado - Demonstração do Resultado", "3.01", "Receita de Venda de Bens e/ou Serviços", "50")},
		"DFC_MI": {c.line("DF Consolidado - Demonstração do Fluxo de Caixa (Método Indireto)", "6.01", "Caixa Líquido Atividades Operacionais", "10")},
	}
}

// writeArchive writes a consolidated-only DFP archive for the companies to
// dir and returns its path.
func writeArchive(t *testing.T, dir string, companies ...company) string {
	t.Helper()
	return writeArchiveWith(t, dir, companies, func(_ string, lines []string) []string { return lines })
}

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "input_archive")
	cfg.OutputArchiveDir = filepath.Join(root, "output_archive")
	cfg.Reader.Individual = false
	cfg.Reader.CSV.Encoding = "UTF-8"
	require.NoError(t, cfg.EnsureDirectories())
	return cfg
}

func run(t *testing.T, path string, opts Options) Result {
	t.Helper()
	conv, err := New(path, opts)
	require.NoError(t, err)
	return conv.Run(context.Background())
}

func TestRunWritesXMLAndArchives(t *testing.T) {
	cfg := testConfig(t)
	path := writeArchive(t, cfg.InputDir, alpha, beta)

	result := run(t, path, Options{Config: cfg})
	require.NoError(t, result.Error)
	assert.True(t, result.Success)

	assert.Equal(t, 2, result.Stats.DocumentsRead)
	assert.Equal(t, 2, result.Stats.DocumentsExported)
	assert.Equal(t, 2, result.Stats.BalancesExtracted)
	assert.Positive(t, result.Stats.BalanceErrors, "single-account statements match no layout")
	assert.Zero(t, result.Stats.ValidationErrors)

	assert.Equal(t, cfg.OutputDir, filepath.Dir(result.OutputFile))
	assert.True(t, strings.HasPrefix(filepath.Base(result.OutputFile), "dfp_cia_aberta_2020_"))

	data, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	xml := string(data)
	assert.Contains(t, xml, `archive="dfp_cia_aberta_2020"`)
	assert.Contains(t, xml, "ALPHA S.A.")
	assert.Contains(t, xml, "BETA S.A.")
	assert.Contains(t, xml, "balanceSheetError")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "input archive is moved")
	_, err = os.Stat(filepath.Join(cfg.InputArchiveDir, "dfp_cia_aberta_2020.zip"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutputArchiveDir, filepath.Base(result.OutputFile)))
	assert.NoError(t, err)
}

func TestRunAppliesFilters(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filters.CVMCodes = []int{beta.cvm}
	path := writeArchive(t, cfg.InputDir, alpha, beta)

	result := run(t, path, Options{Config: cfg})
	require.NoError(t, result.Error)
	assert.Equal(t, 2, result.Stats.DocumentsRead)
	assert.Equal(t, 1, result.Stats.DocumentsFiltered)
	assert.Equal(t, 1, result.Stats.DocumentsExported)

	data, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ALPHA S.A.")
	assert.Contains(t, string(data), "BETA S.A.")
}

func TestRunDryRunWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	path := writeArchive(t, cfg.InputDir, alpha)

	result := run(t, path, Options{Config: cfg, DryRun: true})
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Empty(t, result.OutputFile)
	assert.Equal(t, 1, result.Stats.DocumentsExported)

	_, err := os.Stat(path)
	assert.NoError(t, err, "input archive stays in place")

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunFailsOnValidationErrors(t *testing.T) {
	cfg := testConfig(t)
	gamma := company{"33.333.333/0001-33", "GAMMA S.A.", 1003}
	path := writeArchiveWith(t, cfg.InputDir, []company{gamma}, func(role string, lines []string) []string {
		if role == "BPA" {
			return append(lines, lines[0])
		}
		return lines
	})

	result := run(t, path, Options{Config: cfg})
	assert.False(t, result.Success)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "validation failed")
	assert.Equal(t, 1, result.Stats.ValidationErrors)

	cfg.ContinueOnError = true
	result = run(t, path, Options{Config: cfg})
	require.NoError(t, result.Error)
	assert.True(t, result.Success)

	_, err := os.Stat(strings.TrimSuffix(result.OutputFile, ".xml") + "_validation.txt")
	assert.NoError(t, err, "findings are written next to the output")
}

// writeArchiveWith is writeArchive with a hook to edit the member lines.
func writeArchiveWith(t *testing.T, dir string, companies []company, edit func(role string, lines []string) []string) string {
	t.Helper()

	members := map[string][]string{}
	var heads []string
	for _, c := range companies {
		heads = append(heads, c.head())
		for role, lines := range c.statements() {
			members[role] = append(members[role], edit(role, lines)...)
		}
	}

	path := filepath.Join(dir, "dfp_cia_aberta_2020.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	write := func(name, header string, lines []string) {
		member, err := w.Create(name)
		require.NoError(t, err)
		_, err = member.Write([]byte(header + "\n" + strings.Join(lines, "\n") + "\n"))
		require.NoError(t, err)
	}

	write("dfp_cia_aberta_2020.csv", headHeader, heads)
	for _, role := range []string{"BPA", "BPP", "DFC_MD", "DFC_MI", "DMPL", "DRA", "DRE", "DVA"} {
		write("dfp_cia_aberta_"+role+"_con_2020.csv", statementHeader, members[role])
	}
	require.NoError(t, w.Close())

	return path
}

func TestRunRejectsBadArchive(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(cfg.InputDir, "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	result := run(t, path, Options{Config: cfg})
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, types.ErrBadArchive))
}

func TestRunHonorsCancellation(t *testing.T) {
	cfg := testConfig(t)
	path := writeArchive(t, cfg.InputDir, alpha)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv, err := New(path, Options{Config: cfg})
	require.NoError(t, err)
	result := conv.Run(ctx)
	assert.ErrorIs(t, result.Error, context.Canceled)
}

func TestNewMatcherRejectsMissingWorkbook(t *testing.T) {
	cfg := config.Default()
	cfg.LayoutsWorkbook = filepath.Join(t.TempDir(), "missing.xlsx")

	_, err := NewMatcher(cfg)
	assert.Error(t, err)

	cfg.LayoutsWorkbook = ""
	cfg.Reader.NameCheck = "loose"
	_, err = NewMatcher(cfg)
	assert.ErrorIs(t, err, types.ErrInvalidValue)
}

func TestNewGrouperUsesConfiguredThresholds(t *testing.T) {
	cfg := config.Default()
	cfg.Fiscal.ITR.ExtraMinDays = 80

	g := NewGrouper(cfg, nil)
	assert.Equal(t, 80, g.Thresholds(types.ITR).ExtraMinDays)
	assert.Equal(t, 91, g.Thresholds(types.DFP).ExtraMinDays)
}

func TestFilterKeep(t *testing.T) {
	doc := func(code int, dt types.DocumentType, year int) *types.Document {
		return &types.Document{CVMCode: code, Type: dt, ReferenceDate: time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)}
	}

	assert.True(t, NewFilter(config.FilterSettings{}).Keep(doc(1, types.DFP, 2020)))

	f := NewFilter(config.FilterSettings{
		CVMCodes:      []int{1, 2},
		DocumentTypes: []string{"ITR"},
		MinYear:       2015,
		MaxYear:       2020,
	})
	assert.True(t, f.Keep(doc(1, types.ITR, 2015)))
	assert.True(t, f.Keep(doc(2, types.ITR, 2020)))
	assert.False(t, f.Keep(doc(3, types.ITR, 2018)), "code")
	assert.False(t, f.Keep(doc(1, types.DFP, 2018)), "type")
	assert.False(t, f.Keep(doc(1, types.ITR, 2014)), "min year")
	assert.False(t, f.Keep(doc(1, types.ITR, 2021)), "max year")
}
