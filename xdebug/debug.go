package xdebug

import (
	"fmt"
	"io"
	"path"
	"runtime"
	"text/tabwriter"
)

const StackTraceDepth = 10

// FprintStackTrace writes up to StackTraceDepth frames of the current goroutine's stack to w, one
// "function | file:line" per row. skip counts frames above the caller of FprintStackTrace.
//
// Output:
//
//	invariant.Always                          | /home/me/ordered/invariant/assertions_enabled.go:212
//	contains.atLeastOrdered[...]              | /home/me/ordered/contains/contains.go:81
//	contains.AtLeastOrderedSlices[...]        | /home/me/ordered/contains/contains.go:48
//	contains_test.TestAtLeastOrdered.func1    | /home/me/ordered/contains/contains_test.go:40
//	testing.tRunner                           | /usr/local/go/src/testing/testing.go:1934
func FprintStackTrace(w io.Writer, skip int) {
	var pcs [StackTraceDepth]uintptr
	n := runtime.Callers(2+max(0, skip), pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for {
		frame, more := frames.Next()
		if frame.File != "" && frame.File != "_testmain.go" {
			fmt.Fprintf(tw, "%s\t| %s:%d\n", path.Base(frame.Function), frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	tw.Flush()
}
