package ledger

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/Fiado-api/internal/domain/entity"
)

// CleanName recorta y colapsa espacios internos ("  Ali   Hassan " -> "Ali Hassan").
func CleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeName clave de comparación sin distinción de mayúsculas (Unicode case folding).
// Un Caser no se comparte entre goroutines, por eso se crea en cada llamada.
func NormalizeName(name string) string {
	return cases.Fold().String(CleanName(name))
}

// MatchesName indica si name contiene query sin distinguir mayúsculas.
func MatchesName(name, query string) bool {
	q := NormalizeName(query)
	if q == "" {
		return false
	}
	return strings.Contains(NormalizeName(name), q)
}

// SortByName ordena clientes por nombre ascendente con collation Unicode (raíz),
// estable para nombres latinos y árabes. Desempata por ID.
func SortByName(list []*entity.Customer) {
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(list, func(i, j int) bool {
		if c := col.CompareString(list[i].Name, list[j].Name); c != 0 {
			return c < 0
		}
		return list[i].ID < list[j].ID
	})
}
