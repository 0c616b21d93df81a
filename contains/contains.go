/*
Package contains checks that a sequence of observed values contains an
expected sequence of values, in order, with any number of unrelated values
before, between and after them.

It is meant for tests of systems that emit logs, messages or events where the
noise can't be fully controlled:

	events := recorder.Events()
	contains.AtLeastOrderedSlices(events, []Event{Started, Flushed, Stopped}).AssertMatched(t)

# Matching policy

Matching is greedy and never backtracks. The first observed value equal to the
current expected value is always taken. An observed sequence that would only
match under a different alignment is reported as unmatched:

	observed: A B B C A
	expected: A B A B A
	missing:      B A

Each expected value needs its own observed occurrence. Order matters. Indices
of the matches are not reported, only whether matching succeeded and, if it
didn't, which trailing expected values were never reached.
*/
package contains

import (
	"iter"
	"slices"

	"github.com/google/go-cmp/cmp"

	"github.com/james-orcales/ordered/invariant"
)

// AtLeastOrdered reports whether every value of expected appears in observed, in the same order.
// Both sequences are consumed once, front to back. Observed stops being consumed as soon as the last
// expected value is found.
func AtLeastOrdered[T comparable](observed, expected iter.Seq[T]) Outcome[T] {
	return atLeastOrdered(observed, slices.Collect(expected), func(observed, expected T) bool {
		return observed == expected
	})
}

// AtLeastOrderedSlices is AtLeastOrdered over slices. Neither slice is retained or modified.
func AtLeastOrderedSlices[T comparable](observed, expected []T) Outcome[T] {
	return atLeastOrdered(slices.Values(observed), expected, func(observed, expected T) bool {
		return observed == expected
	})
}

// AtLeastOrderedFunc is AtLeastOrdered with a custom equality. eq receives the observed value first.
func AtLeastOrderedFunc[T any](observed, expected iter.Seq[T], eq func(observed, expected T) bool) Outcome[T] {
	invariant.Always(eq != nil, "AtLeastOrderedFunc is given an equality function")
	return atLeastOrdered(observed, slices.Collect(expected), eq)
}

// AtLeastOrderedCmp compares values with cmp.Equal. Like cmp.Equal, it panics on unexported fields
// unless opts tells it how to handle them.
func AtLeastOrderedCmp[T any](observed, expected iter.Seq[T], opts ...cmp.Option) Outcome[T] {
	return atLeastOrdered(observed, slices.Collect(expected), func(observed, expected T) bool {
		return cmp.Equal(observed, expected, opts...)
	})
}

func atLeastOrdered[T any](observed iter.Seq[T], expected []T, eq func(observed, expected T) bool) Outcome[T] {
	if len(expected) == 0 {
		invariant.Sometimes(true, "The empty sequence is contained in anything")
		return Outcome[T]{}
	}

	cursor := 0
	for element := range observed {
		if !eq(element, expected[cursor]) {
			invariant.Sometimes(true, "Observed element is skipped as noise")
			continue
		}
		if isLast := cursor == len(expected)-1; isLast {
			invariant.Sometimes(true, "Last expected element matched")
			return Outcome[T]{}
		}
		cursor++
	}

	invariant.Always(cursor < len(expected), "Cursor stops at an element that was never matched")
	invariant.Sometimes(cursor == 0, "Observed exhausted before the first expected element matched")
	invariant.Sometimes(cursor > 0, "Observed exhausted after a partial match")

	// Clone since expected may be the caller's slice.
	return unmatched(slices.Clone(expected[cursor:]))
}
