/*
Package invariant states the assumptions of a package directly in its code and checks, at test
time, that the tests actually exercised them.

# Assertion Types

  - Always: the condition holds for every execution. One counterexample disproves it and fails
    immediately.

  - Sometimes: the condition holds for at least one execution. It can only be disproven by a
    whole test run in which it was never true, so it is a no-op outside of tests.

# Frequency analysis

Under `go test`, every assertion that evaluates to true is counted, keyed by file and line. Call
RunTestMain from TestMain:

	func TestMain(m *testing.M) {
		invariant.RunTestMain(m)
	}

Before the tests run, the non-test Go files of the package are parsed and every call of the form
`invariant.Always(...)`, `invariant.Sometimes(...)` or `invariant.XAlways(...)` is registered. After
the tests pass, any registered assertion that was never true fails the run. Otherwise the least
exercised assertions are printed (visible with `go test -v`).

The analyzer looks for the identifier `invariant`, so the package must not be imported under
another name. The message must be the last argument and a string literal.

# Build tags

  - disable_assertions: every check becomes a no-op.
  - disable_x_assertions: only the X variants, whose conditions are expensive to compute, become
    no-ops.
*/
package invariant

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/james-orcales/ordered/xdebug"
)

const (
	// AssertionFailureMsgPrefix starts every assertion failure message. When AssertionFailureIsFatal
	// is false, it identifies assertion panics:
	//
	//	defer func() {
	//		if err := recover(); err != nil {
	//			if msg, ok := err.(string); ok && strings.HasPrefix(msg, invariant.AssertionFailureMsgPrefix) {
	//				// handle assertion failure
	//			}
	//		}
	//	}()
	AssertionFailureMsgPrefix = "🚨 Assertion Failure 🚨"

	leastExercisedInvariantCount = 10
	maxAssertionsPerPackage      = 512
	maxGoFilesPerPackage         = 256
	maxFilePath                  = 260
	maxFileLines                 = 5 // In digits (99,999 lines)
	assertionIDLength            = maxFilePath + 1 + maxFileLines
)

var (
	// AssertionFailureHook runs before the failure terminates control flow. msg already carries
	// AssertionFailureMsgPrefix.
	AssertionFailureHook = func(msg string) {}
	// AssertionFailureIsFatal exits the process on failure. Otherwise the failure panics with msg.
	AssertionFailureIsFatal = true
)

// WARN: Callers rely on this to terminate control flow on failure.
func assertionFailureCallback(msg string) {
	AssertionFailureHook(msg)
	if AssertionFailureIsFatal {
		xdebug.FprintStackTrace(os.Stderr, 1)
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
	panic(msg)
}

func failureMessage(msg string) string {
	if msg == "" {
		msg = "<empty>"
	}
	return fmt.Sprintf("%s: %s", AssertionFailureMsgPrefix, msg)
}

var (
	IsRunningUnderGoTest      = hasArgPrefix("-test.")
	IsRunningUnderGoFuzz      = hasArgPrefix("-test.fuzz")
	IsRunningUnderGoBenchmark = hasArgPrefix("-test.bench")
)

func hasArgPrefix(prefix string) bool {
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, prefix) {
			return true
		}
	}
	return false
}

// RunTestMain registers the current package for analysis, runs the tests, and analyzes assertion
// frequency if they passed. It does not return.
func RunTestMain(m *testing.M) {
	RegisterPackagesForAnalysis()
	code := m.Run()
	if code == 0 {
		AnalyzeAssertionFrequency()
	}
	os.Exit(code)
}
