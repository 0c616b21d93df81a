//go:build !disable_assertions

package invariant

import (
	"cmp"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
)

var (
	// packagesToAnalyze defaults to the current testing package.
	packagesToAnalyze = []string{"."}
	// assertionTracker counts true assertions inside packagesToAnalyze, keyed by "file:line".
	assertionTracker = make(map[string]*metadata, maxAssertionsPerPackage)
	assertionMutex   = sync.Mutex{}
)

type metadata struct {
	Frequency int
	Message   string
	Kind      string
}

// registerAssertion increments the counter of the assertion at the caller's caller. Assertions
// outside of the registered packages are ignored. Safe for concurrent use.
//
//go:noinline
func registerAssertion() {
	if !IsRunningUnderGoTest || IsRunningUnderGoBenchmark || IsRunningUnderGoFuzz {
		return
	}
	callers := [1]uintptr{}
	count := runtime.Callers(3, callers[:])
	frame, _ := runtime.CallersFrames(callers[:count]).Next()

	arr := [assertionIDLength]byte{}
	buf := arr[:0]
	buf = append(buf, frame.File...)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(frame.Line), 10)

	assertionMutex.Lock()
	if a, ok := assertionTracker[string(buf)]; ok {
		a.Frequency++
	}
	assertionMutex.Unlock()
}

// RegisterPackagesForAnalysis parses the non-test Go files of dirs and registers every assertion
// found. Dirs are relative to the working directory, which under `go test` is the package directory.
// Without dirs, the current package is registered.
//
// NOTE: During fuzzing or benchmarking, tracking is disabled because worker processes don't share
// the tracker with the parent test runner.
func RegisterPackagesForAnalysis(dirs ...string) {
	Always(IsRunningUnderGoTest, "RegisterPackagesForAnalysis is only used in testing environments")
	if IsRunningUnderGoBenchmark || IsRunningUnderGoFuzz {
		return
	}
	if len(dirs) > 0 {
		packagesToAnalyze = dirs
	}

	filesArray := [maxGoFilesPerPackage]string{}
	files := filesArray[:0]
	for _, dir := range packagesToAnalyze {
		dir, err := filepath.Abs(dir)
		if err != nil {
			panic(fmt.Sprintf("Failed to convert package path to absolute path: %s\n", err))
		}
		before := len(files)
		entries, err := os.ReadDir(dir)
		if err != nil {
			panic(fmt.Sprintf("Collecting all files to find missed invariants: %s\n", err))
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
				continue
			}
			files = append(files, filepath.Join(dir, name))
		}
		Always(before < len(files), "The directory contains go files")
	}

	var wg sync.WaitGroup
	for _, path := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registerFile(path)
		}()
	}
	wg.Wait()
}

func registerFile(path string) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return
	}
	ast.Inspect(node, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); !ok || ident.Name != "invariant" {
			return true
		}
		switch sel.Sel.Name {
		case "Always", "Sometimes", "XAlways":
		default:
			return true
		}
		Always(len(call.Args) >= 2, "All assertions have at least two parameters")
		literal, ok := call.Args[len(call.Args)-1].(*ast.BasicLit)
		if !ok || literal.Kind != token.STRING {
			panic(fmt.Sprintf("%s: the assertion message must be a string literal", fset.Position(call.Pos())))
		}
		msg, err := strconv.Unquote(literal.Value)
		if err != nil {
			msg = literal.Value
		}
		key := path + ":" + strconv.Itoa(fset.Position(call.Lparen).Line)

		assertionMutex.Lock()
		assertionTracker[key] = &metadata{Kind: sel.Sel.Name, Message: msg}
		assertionMutex.Unlock()
		return true
	})
}

// AnalyzeAssertionFrequency exits the process if any registered assertion was never true.
// Otherwise it prints the least exercised assertions. See RunTestMain.
func AnalyzeAssertionFrequency() {
	Always(IsRunningUnderGoTest, "AnalyzeAssertionFrequency is only used for testing")
	if IsRunningUnderGoBenchmark || IsRunningUnderGoFuzz {
		return
	}
	if missed := reportAssertionFrequency(os.Stdout); missed > 0 {
		os.Exit(1)
	}
}

func reportAssertionFrequency(w io.Writer) (missed int) {
	assertionMutex.Lock()
	defer assertionMutex.Unlock()

	type scored struct {
		location string
		*metadata
	}
	all := make([]scored, 0, len(assertionTracker))
	longestKind, longestMessage := 0, 0
	for location, m := range assertionTracker {
		all = append(all, scored{location, m})
		longestKind = max(longestKind, len(m.Kind))
		longestMessage = max(longestMessage, len(m.Message))
	}
	slices.SortFunc(all, func(a, b scored) int {
		if c := cmp.Compare(a.Frequency, b.Frequency); c != 0 {
			return c
		}
		return strings.Compare(a.location, b.location)
	})

	for _, a := range all {
		if a.Frequency == 0 {
			missed++
		}
	}
	if missed > 0 {
		fmt.Fprintf(w, "🚨 %d assertions were never true. 🚨\n", missed)
		for _, a := range all[:missed] {
			fmt.Fprintf(w, "\t%*s | %-*s | %s\n", longestKind, a.Kind, longestMessage, a.Message, a.location)
		}
		return missed
	}

	fmt.Fprintf(w, "Showing up to %d of the least-exercised invariants:\n", leastExercisedInvariantCount)
	for _, a := range all[:min(len(all), leastExercisedInvariantCount)] {
		fmt.Fprintf(w, "count=%-4d | %-*s | %-*s | %s\n", a.Frequency, longestKind, a.Kind, longestMessage, a.Message, a.location)
	}
	return 0
}

// Always fails if cond is false.
//
// When deferring assertions, enclose them in a closure. Otherwise, cond is evaluated immediately.
//
//	defer func() { invariant.Always(x > 0, "x is positive") }()
//
// The analyzer tracks assertions by source line, so keep each call on a single line.
//
//go:noinline
func Always(cond bool, msg string) {
	if cond {
		registerAssertion()
	} else {
		assertionFailureCallback(failureMessage(msg))
	}
}

// Sometimes records that cond was true at least once throughout the test run. It is a no-op
// outside of tests.
//
//go:noinline
func Sometimes(cond bool, msg string) {
	if !IsRunningUnderGoTest || !cond {
		return
	}
	registerAssertion()
}

//go:noinline
func Unreachable(msg string) {
	assertionFailureCallback(failureMessage(msg))
}
