package services

import "sort"

// diffIDs compares two id sets and returns the ids only in next (added) and
// the ids only in prev (removed). Duplicates are ignored and both results are
// sorted ascending.
func diffIDs(prev, next []uint) (added, removed []uint) {
	before := make(map[uint]bool, len(prev))
	for _, id := range prev {
		before[id] = true
	}
	after := make(map[uint]bool, len(next))
	for _, id := range next {
		after[id] = true
	}

	for id := range after {
		if !before[id] {
			added = append(added, id)
		}
	}
	for id := range before {
		if !after[id] {
			removed = append(removed, id)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i] < added[j] })
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return added, removed
}
