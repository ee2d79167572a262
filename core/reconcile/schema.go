package reconcile

import (
	"sort"

	"datadiff/core/dataset"
)

// DiffColumns returns the sorted column names present only in a and only in b.
func DiffColumns(a, b *dataset.Dataset) (onlyInA, onlyInB []string) {
	onlyInA = difference(a.ColumnNames(), b)
	onlyInB = difference(b.ColumnNames(), a)
	return onlyInA, onlyInB
}

// CountRows returns both row counts and their absolute difference.
func CountRows(a, b *dataset.Dataset) (countA, countB, diff int) {
	countA = a.NumRows()
	countB = b.NumRows()
	diff = countA - countB
	if diff < 0 {
		diff = -diff
	}
	return countA, countB, diff
}

func difference(names []string, other *dataset.Dataset) []string {
	out := []string{}
	for _, name := range names {
		if !other.HasColumn(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
