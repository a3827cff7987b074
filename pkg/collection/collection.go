// Package collection holds the generic slice helpers the services use to
// shape query results into responses.
package collection

import (
	"cmp"
	"slices"
)

func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter keeps the elements fn accepts. The result never aliases s.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Collect maps the elements fn accepts, in one pass.
func Collect[T, R any](s []T, fn func(T) (R, bool)) []R {
	var out []R
	for _, v := range s {
		if r, ok := fn(v); ok {
			out = append(out, r)
		}
	}
	return out
}

// SortedKeys maps s with key and returns the results in ascending order.
func SortedKeys[T any, K cmp.Ordered](s []T, key func(T) K) []K {
	out := Map(s, key)
	slices.Sort(out)
	return out
}

func Sum[T any, N cmp.Ordered](s []T, fn func(T) N) N {
	var total N
	for _, v := range s {
		total += fn(v)
	}
	return total
}
