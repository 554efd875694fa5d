// Package intersect filters parallel collections down to the elements they
// all have in common, where "in common" is decided by a caller-supplied
// comparator rather than by ==.
package intersect

// FilterByIntersection returns one slice per input list. Each output keeps
// the elements of its input, in their original order, for which every input
// list holds at least one element that same reports as matching.
//
// If any input list is empty, every output is empty. A nil or empty lists
// argument yields nil.
func FilterByIntersection[E any](lists [][]E, same func(a, b E) bool) [][]E {
	if len(lists) == 0 {
		return nil
	}

	results := make([][]E, len(lists))
	for i, current := range lists {
		kept := make([]E, 0, len(current))
		for _, item := range current {
			if containedInAll(item, lists, same) {
				kept = append(kept, item)
			}
		}
		results[i] = kept
	}
	return results
}

func containedInAll[E any](item E, lists [][]E, same func(a, b E) bool) bool {
	for _, other := range lists {
		if !contains(other, item, same) {
			return false
		}
	}
	return true
}

func contains[E any](list []E, item E, same func(a, b E) bool) bool {
	for _, candidate := range list {
		if same(item, candidate) {
			return true
		}
	}
	return false
}

// FirstCommon returns the first element of lists[0] that every list contains,
// by the same comparator. ok is false when there is none.
func FirstCommon[E any](lists [][]E, same func(a, b E) bool) (first E, ok bool) {
	filtered := FilterByIntersection(lists, same)
	if len(filtered) == 0 || len(filtered[0]) == 0 {
		return first, false
	}
	return filtered[0][0], true
}
