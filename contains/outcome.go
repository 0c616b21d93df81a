package contains

import (
	"fmt"
	"slices"

	"github.com/james-orcales/ordered/invariant"
)

// Outcome is the result of a match. It is either matched, or unmatched with the expected
// elements that were never found. The zero value is a matched outcome.
type Outcome[T any] struct {
	// remaining is nil when matched and non-empty otherwise.
	remaining []T
}

func unmatched[T any](remaining []T) Outcome[T] {
	invariant.Always(len(remaining) > 0, "Unmatched outcome has at least one missing element")
	return Outcome[T]{remaining: remaining}
}

// Matched is true if all expected elements were found in order.
func (outcome Outcome[T]) Matched() bool {
	return outcome.remaining == nil
}

// Remaining returns a copy of the expected elements starting from the first one that was never
// matched. ok is false when the outcome is matched.
func (outcome Outcome[T]) Remaining() (remaining []T, ok bool) {
	if outcome.Matched() {
		return nil, false
	}
	return slices.Clone(outcome.remaining), true
}

func (outcome Outcome[T]) String() string {
	if outcome.Matched() {
		return "matched"
	}
	return fmt.Sprintf("missing elements: %v", outcome.remaining)
}

// TB is the subset of testing.TB used by the assertions.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// AssertMatched fails the test if any expected element is missing, listing the missing elements.
func (outcome Outcome[T]) AssertMatched(t TB) {
	t.Helper()
	if !outcome.Matched() {
		t.Fatalf("Missing elements: %v", outcome.remaining)
	}
}

// AssertUnmatched fails the test if all expected elements were found. Use it to assert a
// deliberate mismatch.
func (outcome Outcome[T]) AssertUnmatched(t TB) {
	t.Helper()
	if outcome.Matched() {
		t.Fatalf("Expected assertion to be rejected, but it was accepted. Asserted on type %T.", outcome)
	}
}
