package cat32

import "slices"

/*
IndexSet is a set of active row indices for the sparse kernels. It is kept
sorted and free of duplicates so the kernels visit rows in a fixed order.
*/
type IndexSet []int

/*
NewIndexSet builds an IndexSet from ix, dropping duplicates.
*/
func NewIndexSet(ix ...int) IndexSet {
	s := slices.Clone(ix)
	slices.Sort(s)
	return slices.Compact(s)
}

/*
Contains reports whether i is in the set.
*/
func (s IndexSet) Contains(i int) bool {
	_, ok := slices.BinarySearch(s, i)
	return ok
}

/*
Add inserts i, keeping the set sorted.
*/
func (s IndexSet) Add(i int) IndexSet {
	at, ok := slices.BinarySearch(s, i)
	if ok {
		return s
	}
	return slices.Insert(s, at, i)
}
