package cstr

import "sort"

type sorter struct {
	n    int
	less func(i, j int) bool
	swap func(i, j int)
}

func (s sorter) Len() int           { return s.n }
func (s sorter) Less(i, j int) bool { return s.less(i, j) }
func (s sorter) Swap(i, j int)      { s.swap(i, j) }

// Qsort sorts indexes [0,n) by the comparator, keeping the relative order
// of elements that compare equal. The name is historical; the pivot
// ordering of the original kept equal elements stable and callers rely on
// it.
func Qsort(n int, less func(i, j int) bool, swap func(i, j int)) {
	sort.Stable(sorter{n, less, swap})
}

// Bsearch returns the index of an element comparing equal to the key in a
// sorted sequence, or -1. cmp reports key relative to element i.
func Bsearch(n int, cmp func(i int) int) int {
	lo, hi := 0, n
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch c := cmp(mid); {
		case c == 0:
			return mid
		case c < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return -1
}
