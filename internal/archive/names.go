// =============================================================================
// DFP/ITR Reader - Archive Member Names
// =============================================================================
//
// A DFP/ITR archive holds one head file and up to sixteen statement files:
//
//   <name>    ::= <prefix> <role> "_" <year> ".csv"
//   <prefix>  ::= "dfp_cia_aberta" | "itr_cia_aberta"
//   <role>    ::= "" | "_BPA_con" | "_BPA_ind" | ... | "_DVA_ind"
//
// e.g. dfp_cia_aberta_2020.csv, dfp_cia_aberta_DFC_MI_con_2020.csv.
//
// =============================================================================

package archive

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// DefaultPrefixLength is len("dfp_cia_aberta").
const DefaultPrefixLength = len("dfp_cia_aberta")

const suffixLength = len("_YYYY.csv")

// Satellite is one statement file of an archive.
type Satellite struct {
	Kind types.StatementKind
	Mode types.BalanceType

	// Method tells the two DFC files apart.
	Method types.DFCMethod

	Name string
}

type role struct {
	kind   types.StatementKind
	mode   types.BalanceType
	method types.DFCMethod
}

// roles maps the middle part of member names to their role. The order of
// satellites within a balance type follows roleOrder.
var roles = map[string]role{
	"_BPA_con":    {types.BPA, types.Consolidated, types.NoDFCMethod},
	"_BPA_ind":    {types.BPA, types.Individual, types.NoDFCMethod},
	"_BPP_con":    {types.BPP, types.Consolidated, types.NoDFCMethod},
	"_BPP_ind":    {types.BPP, types.Individual, types.NoDFCMethod},
	"_DFC_MD_con": {types.DFC, types.Consolidated, types.DirectMethod},
	"_DFC_MD_ind": {types.DFC, types.Individual, types.DirectMethod},
	"_DFC_MI_con": {types.DFC, types.Consolidated, types.IndirectMethod},
	"_DFC_MI_ind": {types.DFC, types.Individual, types.IndirectMethod},
	"_DMPL_con":   {types.DMPL, types.Consolidated, types.NoDFCMethod},
	"_DMPL_ind":   {types.DMPL, types.Individual, types.NoDFCMethod},
	"_DRA_con":    {types.DRA, types.Consolidated, types.NoDFCMethod},
	"_DRA_ind":    {types.DRA, types.Individual, types.NoDFCMethod},
	"_DRE_con":    {types.DRE, types.Consolidated, types.NoDFCMethod},
	"_DRE_ind":    {types.DRE, types.Individual, types.NoDFCMethod},
	"_DVA_con":    {types.DVA, types.Consolidated, types.NoDFCMethod},
	"_DVA_ind":    {types.DVA, types.Individual, types.NoDFCMethod},
}

var roleOrder = []role{
	{types.BPA, 0, types.NoDFCMethod},
	{types.BPP, 0, types.NoDFCMethod},
	{types.DRE, 0, types.NoDFCMethod},
	{types.DRA, 0, types.NoDFCMethod},
	{types.DFC, 0, types.DirectMethod},
	{types.DFC, 0, types.IndirectMethod},
	{types.DMPL, 0, types.NoDFCMethod},
	{types.DVA, 0, types.NoDFCMethod},
}

// MemberNames is the parsed member list of an archive.
type MemberNames struct {
	Head       string
	satellites map[role]string
}

// Satellites returns the statement files of a balance type in reading order.
func (m *MemberNames) Satellites(mode types.BalanceType) []Satellite {
	out := make([]Satellite, 0, len(roleOrder))
	for _, r := range roleOrder {
		r.mode = mode
		if name, ok := m.satellites[r]; ok {
			out = append(out, Satellite{Kind: r.kind, Mode: mode, Method: r.method, Name: name})
		}
	}
	return out
}

// ParseMemberNames classifies the member names of an archive.
//
// PARAMETERS:
//   - names: Every member name of the archive.
//   - prefixLength: The length of the shared prefix (DefaultPrefixLength).
//   - individual, consolidated: Which balance types must be complete.
//
// RETURNS:
//   - The classified names.
//   - An ErrBadArchive error for an unknown name, a missing head file or a
//     missing statement file of an enabled balance type.
func ParseMemberNames(names []string, prefixLength int, individual, consolidated bool) (*MemberNames, error) {
	m := &MemberNames{satellites: map[role]string{}}

	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			continue
		}
		middle, err := middleName(name, prefixLength)
		if err != nil {
			return nil, err
		}

		if middle == "" {
			if m.Head != "" {
				return nil, fmt.Errorf("%w: two head files '%s' and '%s'", types.ErrBadArchive, m.Head, name)
			}
			m.Head = name
			continue
		}

		r, ok := roles[middle]
		if !ok {
			return nil, fmt.Errorf("%w: unknown member '%s'", types.ErrBadArchive, name)
		}
		m.satellites[r] = name
	}

	if m.Head == "" {
		return nil, fmt.Errorf("%w: missing head file", types.ErrBadArchive)
	}

	for _, mode := range types.BalanceTypes {
		if (mode == types.Individual && !individual) || (mode == types.Consolidated && !consolidated) {
			continue
		}
		for _, r := range roleOrder {
			r.mode = mode
			if _, ok := m.satellites[r]; !ok {
				return nil, fmt.Errorf("%w: missing %s statement file", types.ErrBadArchive, roleName(r))
			}
		}
	}

	return m, nil
}

func middleName(name string, prefixLength int) (string, error) {
	if len(name) < prefixLength+suffixLength {
		return "", fmt.Errorf("%w: unknown member '%s'", types.ErrBadArchive, name)
	}

	suffix := name[len(name)-suffixLength:]
	if suffix[0] != '_' || !strings.HasSuffix(suffix, ".csv") || !isDigits(suffix[1:5]) {
		return "", fmt.Errorf("%w: unknown member '%s'", types.ErrBadArchive, name)
	}
	return name[prefixLength : len(name)-suffixLength], nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func roleName(r role) string {
	for middle, candidate := range roles {
		if candidate == r {
			return strings.TrimPrefix(middle, "_")
		}
	}
	return r.kind.String()
}
