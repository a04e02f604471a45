package cmd

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	headHeader      = "CNPJ_CIA;DT_REFER;VERSAO;DENOM_CIA;CD_CVM;CATEG_DOC;ID_DOC;DT_RECEB;LINK_DOC"
	statementHeader = "CNPJ_CIA;DT_REFER;VERSAO;DENOM_CIA;CD_CVM;GRUPO_DFP;MOEDA;ESCALA_MOEDA;ORDEM_EXERC;DT_INI_EXERC;DT_FIM_EXERC;CD_CONTA;DS_CONTA;VL_CONTA;ST_CONTA_FIXA"
)

// testEnv writes a config file into a temporary directory and points the
// --config flag at it.
func testEnv(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	yaml := strings.Join([]string{
		"input_dir: " + filepath.Join(root, "input"),
		"output_dir: " + filepath.Join(root, "output"),
		"input_archive_dir: " + filepath.Join(root, "input_archive"),
		"output_archive_dir: " + filepath.Join(root, "output_archive"),
		"log_level: error",
		"reader:",
		"  individual: false",
		"  csv:",
		"    encoding: UTF-8",
	}, "\n")
	path := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "input"), 0755))

	cfgFile = path
	t.Cleanup(func() { cfgFile = "config.yaml" })
	return root
}

func filingLine(cnpj, company, cvm, group, code, name, value string) string {
	return strings.Join([]string{
		cnpj, "2020-12-31", "1", company, cvm, group,
		"REAL", "MIL", "ÚLTIMO", "2020-01-01", "2020-12-31", code, name, value, "S",
	}, ";")
}

// writeArchive writes a consolidated-only archive. Companies whose name
// starts with "G" file a BPA with an extra account, i.e. another layout.
func writeArchive(t *testing.T, dir string, companies ...string) string {
	t.Helper()

	members := map[string][]string{}
	var heads []string
	for i, company := range companies {
		cnpj := strings.Repeat(string(rune('1'+i)), 2) + ".111.111/0001-11"
		cvm := string(rune('1' + i))
		heads = append(heads, strings.Join([]string{cnpj, "2020-12-31", "1", company, cvm, "DFP", cvm, "2021-03-01", ""}, ";"))

		members["BPA"] = append(members["BPA"], filingLine(cnpj, company, cvm, "DF Consolidado - Balanço Patrimonial Ativo", "1", "Ativo Total", "100"))
		if strings.HasPrefix(company, "G") {
			members["BPA"] = append(members["BPA"], filingLine(cnpj, company, cvm, "DF Consolidado - Balanço Patrimonial Ativo", "1.01", "Ativo Circulante", "100"))
		}
		members["BPP"] = append(members["BPP"], filingLine(cnpj, company, cvm, "DF Consolidado - Balanço Patrimonial Passivo", "2", "Passivo Total", "100"))
		members["DRE"] = append(members["DRE"], filingLine(cnpj, company, cvm, "DF Consolidado - Demonstração do Resultado", "3.01", "Receita", "50"))
		members["DFC_MI"] = append(members["DFC_MI"], filingLine(cnpj, company, cvm, "DF Consolidado - Demonstração do Fluxo de Caixa (Método Indireto)", "6.01", "Caixa", "10"))
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

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dryRun, filePath = false, ""
	individual = false
	censusKind, censusMaxLevel, censusOutDir, censusXLSX, censusIndividual = "BPA", 3, "", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "DFP/ITR Reader")
	assert.Contains(t, out, "Version:    "+Version)
}

func TestLayoutsCommand(t *testing.T) {
	root := testEnv(t)
	path := writeArchive(t, filepath.Join(root, "input"), "ALPHA S.A.", "BETA S.A.", "GAMMA S.A.")
	outDir := filepath.Join(root, "layouts")
	xlsx := filepath.Join(root, "drafts.xlsx")

	out, err := execute(t, "layouts", path, "--kind", "BPA", "--max-level", "2", "--out", outDir, "--xlsx", xlsx)
	require.NoError(t, err)

	assert.Contains(t, out, "2 distinct consolidated BPA layout(s) up to level 2")
	assert.Contains(t, out, "Layout 1")
	assert.Contains(t, out, "2 filing(s)")
	assert.Contains(t, out, "GAMMA S.A.")

	files, err := filepath.Glob(filepath.Join(outDir, "BPA_*.txt"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = os.Stat(xlsx)
	assert.NoError(t, err)
}

func TestLayoutsCommandRejectsUnknownKind(t *testing.T) {
	root := testEnv(t)
	path := writeArchive(t, filepath.Join(root, "input"), "ALPHA S.A.")

	_, err := execute(t, "layouts", path, "--kind", "XYZ")
	assert.Error(t, err)
}

func TestBalancesCommand(t *testing.T) {
	root := testEnv(t)
	path := writeArchive(t, filepath.Join(root, "input"), "ALPHA S.A.")

	out, err := execute(t, "balances", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ALPHA S.A.")
	assert.Contains(t, out, "consolidated")
	assert.Contains(t, out, "Balance sheet")
	assert.Contains(t, out, "Income statement")
}

func TestReadCommand(t *testing.T) {
	root := testEnv(t)
	path := writeArchive(t, filepath.Join(root, "input"), "ALPHA S.A.", "BETA S.A.")

	_, err := execute(t, "read")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "processed archives are moved")

	xmls, err := filepath.Glob(filepath.Join(root, "output", "dfp_cia_aberta_2020_*.xml"))
	require.NoError(t, err)
	assert.Len(t, xmls, 1)

	summaries, err := filepath.Glob(filepath.Join(root, "output", "processing_summary_*.txt"))
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestReadCommandDryRun(t *testing.T) {
	root := testEnv(t)
	path := writeArchive(t, filepath.Join(root, "input"), "ALPHA S.A.")

	_, err := execute(t, "read", "--dry-run", "--file", path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "output"))
	if err == nil {
		assert.Empty(t, entries)
	}
}

func TestReadCommandStopsOnBadArchive(t *testing.T) {
	root := testEnv(t)
	bad := filepath.Join(root, "input", "broken.zip")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0644))

	_, err := execute(t, "read")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.zip")
}
