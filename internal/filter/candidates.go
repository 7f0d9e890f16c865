package filter

import (
	"slices"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/ordering"
	"github.com/JonMunkholm/deeptable/internal/record"
)

// Candidates projects col out of rows, removes duplicates (first occurrence
// wins) and sorts the result with the column comparator: collated for
// String columns, numeric for everything else.
func Candidates(rows []record.Record, col column.Column, coll *ordering.Collator) []any {
	seen := make(map[any]struct{}, len(rows))
	values := make([]any, 0)

	for _, r := range rows {
		v, ok := r[col.ID]
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}

	slices.SortStableFunc(values, ordering.Comparator(col, coll))
	return values
}
