// Package algo implements the sorting, rank-statistic, selection, grouping,
// and distance primitives used by the data pipelines.
package algo

import "math"

// SortBy returns a new slice with items ordered by key, ascending unless
// reverse is set. The sort is stable: items with equal keys keep their input
// order. Items with NaN keys are placed after everything else in input
// order; NaN compares false against every value, so it cannot participate
// in the partition. It is a three-way partition quicksort with the middle
// element as pivot, run on an explicit work stack so pathological inputs
// cannot exhaust the call stack. Average O(n log n); worst case O(n²) with
// this pivot choice.
func SortBy[T any](items []T, key func(T) float64, reverse bool) []T {
	out := make([]T, 0, len(items))

	var sortable, nans []T
	for _, item := range items {
		if math.IsNaN(key(item)) {
			nans = append(nans, item)
		} else {
			sortable = append(sortable, item)
		}
	}
	if len(sortable) <= 1 {
		out = append(out, sortable...)
		return append(out, nans...)
	}

	type frame struct {
		items  []T
		sorted bool
	}

	stack := []frame{{items: sortable}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.sorted || len(f.items) <= 1 {
			out = append(out, f.items...)
			continue
		}

		pivot := key(f.items[len(f.items)/2])
		var less, equal, greater []T
		for _, item := range f.items {
			k := key(item)
			switch {
			case (!reverse && k < pivot) || (reverse && k > pivot):
				less = append(less, item)
			case k == pivot:
				equal = append(equal, item)
			default:
				greater = append(greater, item)
			}
		}

		// Output order is less, equal, greater; the stack is LIFO so push in
		// reverse. The equal bucket is already in final order.
		stack = append(stack,
			frame{items: greater},
			frame{items: equal, sorted: true},
			frame{items: less},
		)
	}

	return append(out, nans...)
}

// SortFloats returns a new ascending copy of values.
func SortFloats(values []float64) []float64 {
	return SortBy(values, func(v float64) float64 { return v }, false)
}
