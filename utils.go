package psi

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// distinctSorted returns the distinct elements of vs in increasing order.
func distinctSorted[T constraints.Ordered](vs []T) []T {
	set := make(map[T]struct{}, len(vs))
	for _, v := range vs {
		set[v] = struct{}{}
	}
	out := maps.Keys(set)
	slices.Sort(out)
	return out
}
