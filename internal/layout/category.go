package layout

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/dfpitr-reader/internal/types"
)

// Category is the chart of accounts family a company files under.
type Category int

const (
	Industrial Category = iota
	Financial
	Insurance
)

// Categories lists every category in fallback order.
var Categories = []Category{Industrial, Financial, Insurance}

func (c Category) String() string {
	switch c {
	case Financial:
		return "financial"
	case Insurance:
		return "insurance"
	default:
		return "industrial"
	}
}

// ParseCategory maps "industrial", "financial" or "insurance" to a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "industrial":
		return Industrial, nil
	case "financial":
		return Financial, nil
	case "insurance":
		return Insurance, nil
	}
	return Industrial, fmt.Errorf("%w: category '%s'", types.ErrInvalidValue, s)
}

// CVM codes of companies known to file financial institution statements.
var financialCVMCodes = map[int]struct{}{
	1023:  {}, // BCO BRASIL S.A.
	1120:  {}, // BCO ESTADO DE SERGIPE S.A. - BANESE
	1155:  {}, // BANESTES S.A. - BCO EST ESPIRITO SANTO
	1210:  {}, // BCO ESTADO DO RIO GRANDE DO SUL S.A.
	1325:  {}, // BCO MERCANTIL DO BRASIL S.A.
	1384:  {}, // BCO ALFA DE INVESTIMENTO S.A.
	14206: {}, // BRB BCO DE BRASILIA S.A.
	19348: {}, // ITAU UNIBANCO HOLDING S.A.
	20532: {}, // BCO SANTANDER (BRASIL) S.A.
	20567: {}, // BCO PINE S.A.
	20680: {}, // BANCO SOFISA SA
	20729: {}, // PARANA BCO S.A.
	20753: {}, // BANCO CRUZEIRO DO SUL SA
	20796: {}, // BCO DAYCOVAL S.A.
	20885: {}, // BCO INDUSVAL S.A.
	20958: {}, // BCO ABC BRASIL S.A.
	21113: {}, // BANCO INDUSTRIAL E COMERCIAL S/A
	21199: {}, // BCO PAN S.A.
	21377: {}, // BANCO INDUSTRIAL DO BRASIL
	21466: {}, // BANCO RCI BRASIL S.A.
	22616: {}, // BCO BTG PACTUAL S.A.
	22993: {}, // CIA DE CREDITO FINANCIAMENTO E INVESTIMENTO RCI BRASIL
	24600: {}, // BANCO BMG S/A
	80063: {}, // BCO PATAGONIA S.A.
	80152: {}, // PPLA PARTICIPATIONS LTD.
	80160: {}, // BANCO SANTANDER S.A.
	906:   {}, // BCO BRADESCO S.A.
	24406: {}, // BANCO INTER S.A.
}

// CVM codes of companies known to file insurance statements.
var insuranceCVMCodes = map[int]struct{}{
	23159: {}, // BB SEGURIDADE PARTICIPAÇÕES S.A.
	24180: {}, // IRB - BRASIL RESSEGUROS S.A.
	3115:  {}, // CIA SEGUROS ALIANCA DA BAHIA
}

// CategoryForCVMCode returns the category a company is known to file under.
// Unknown companies are industrial.
func CategoryForCVMCode(code int) Category {
	if _, ok := financialCVMCodes[code]; ok {
		return Financial
	}
	if _, ok := insuranceCVMCodes[code]; ok {
		return Insurance
	}
	return Industrial
}

// FallbackOrder returns the categories to try for a company, its known
// category first.
func FallbackOrder(hint Category) []Category {
	order := []Category{hint}
	for _, c := range Categories {
		if c != hint {
			order = append(order, c)
		}
	}
	return order
}
