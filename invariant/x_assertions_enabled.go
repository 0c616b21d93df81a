//go:build !disable_assertions && !disable_x_assertions

package invariant

/*
XAlways evaluates fn and fails if it returns false. Use it for validations that are too expensive
to keep in builds tagged with disable_x_assertions.

	// expensiveFn is still evaluated under disable_x_assertions
	invariant.Always(expensiveFn(), "...")

	// expensiveFn is never called under disable_x_assertions
	invariant.XAlways(expensiveFn, "...")

fn should be pure since it may not run at all.
*/
//go:noinline
func XAlways(fn func() bool, msg string) {
	if fn() {
		registerAssertion()
	} else {
		assertionFailureCallback(failureMessage(msg))
	}
}
