package program

import "sort"

func filterRows[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func countRows[T any](rows []T, match func(T) bool) int {
	n := 0
	for _, r := range rows {
		if match(r) {
			n++
		}
	}
	return n
}

func sortByOrder[T any](rows []T, order func(T) int) {
	sort.SliceStable(rows, func(i, j int) bool { return order(rows[i]) < order(rows[j]) })
}

// renumber rewrites the order of the rows in one parent scope to 0..n-1,
// keeping their current relative order.
func renumber[T any](rows []T, inScope func(T) bool, order func(T) int, setOrder func(*T, int)) {
	idx := make([]int, 0)
	for i, r := range rows {
		if inScope(r) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return order(rows[idx[a]]) < order(rows[idx[b]]) })
	for n, i := range idx {
		setOrder(&rows[i], n)
	}
}
