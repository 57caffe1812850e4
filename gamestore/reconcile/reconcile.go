// Package reconcile compares two keyed collections.
package reconcile

import "slices"

// Result lists what changed between an old and a new collection. Added and
// Changed hold new values; Removed holds old ones. Each list keeps the order
// of the collection it came from.
type Result[T any] struct {
	Added   []T
	Changed []T
	Removed []T
}

// Empty reports whether the collections were equivalent.
func (r Result[T]) Empty() bool {
	return len(r.Added) == 0 && len(r.Changed) == 0 && len(r.Removed) == 0
}

// Diff matches old and new items by key. An item present in both is
// Changed when equal reports false. When a key repeats, the last item wins.
func Diff[T any, K comparable](old, new []T, key func(T) K, equal func(a, b T) bool) Result[T] {
	before := make(map[K]T, len(old))
	for _, item := range old {
		before[key(item)] = item
	}
	after := make(map[K]int, len(new))
	for i, item := range new {
		after[key(item)] = i
	}

	var res Result[T]
	for i, item := range new {
		k := key(item)
		if after[k] != i {
			continue
		}
		prev, ok := before[k]
		switch {
		case !ok:
			res.Added = append(res.Added, item)
		case !equal(prev, item):
			res.Changed = append(res.Changed, item)
		}
	}
	seen := make(map[K]struct{}, len(old))
	for i := len(old) - 1; i >= 0; i-- {
		k := key(old[i])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := after[k]; !ok {
			res.Removed = append(res.Removed, old[i])
		}
	}
	slices.Reverse(res.Removed)
	return res
}
