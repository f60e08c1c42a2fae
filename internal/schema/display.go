package schema

import "strings"

// displayFragments are matched case-insensitively against column names, in
// priority order.
var displayFragments = []string{"name", "title", "fio", "full_name", "название", "фио"}

// DisplayColumn picks the column that best represents a row to a human.
//
// Fragments are tried in priority order, columns in declared order within
// each fragment. Without a match the first variable-length text column wins,
// then the second declared column. ok is false when the table has nothing to
// offer (fewer than two columns and no match).
func DisplayColumn(t *Table) (name string, ok bool) {
	for _, frag := range displayFragments {
		for _, c := range t.Columns {
			if strings.Contains(strings.ToLower(c.Name), frag) {
				return c.Name, true
			}
		}
	}
	for _, c := range t.Columns {
		if c.IsVariableText() {
			return c.Name, true
		}
	}
	if len(t.Columns) >= 2 {
		return t.Columns[1].Name, true
	}
	return "", false
}
