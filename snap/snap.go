// Package snap implements inline snapshot tests: the expected value lives in a raw string literal
// at the call site and can be rewritten in place from the actual value.
//
//	if !snap.Init(`expected`).IsEqual(actual) {
//		t.Error("Snapshot mismatch")
//	}
//
// Chain Update() to rewrite a single snapshot, or set GO_SNAPSHOT_UPDATE_ALL to rewrite all of them.
package snap

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/james-orcales/ordered/invariant"
)

const UpdateAllEnv = "GO_SNAPSHOT_UPDATE_ALL"

type Snapshot struct {
	Data         string
	FilePath     string
	Line         int
	ShouldUpdate bool
}

// Init records data along with the location of the call, which is later used to rewrite it.
func Init(data string) Snapshot {
	callers := [1]uintptr{}
	count := runtime.Callers(2, callers[:])
	frame, _ := runtime.CallersFrames(callers[:count]).Next()

	return Snapshot{
		Data:     data,
		FilePath: frame.File,
		Line:     frame.Line,
	}
}

func (snapshot Snapshot) Update() Snapshot {
	snapshot.ShouldUpdate = true
	return snapshot
}

// IsEqual reports whether actual equals the snapshot and prints a diff if it doesn't. When updating,
// the snapshot is rewritten even if it matches so that a leftover Update() is removed.
func (snapshot Snapshot) IsEqual(actual string) bool {
	equal := snapshot.Data == actual
	shouldUpdate := snapshot.ShouldUpdate || os.Getenv(UpdateAllEnv) != ""
	if !equal && !shouldUpdate {
		fmt.Printf("Snapshot differs at %s:%d (-expected +actual):\n%s", snapshot.FilePath, snapshot.Line, cmp.Diff(snapshot.Data, actual))
	}
	if shouldUpdate {
		if err := snapshot.commit(actual); err != nil {
			panic(fmt.Sprintf("Update snapshot %s:%d | %s\n", snapshot.FilePath, snapshot.Line, err))
		}
		fmt.Printf("UPDATED SNAPSHOT %s:%d\n", snapshot.FilePath, snapshot.Line)
	}
	return equal
}

func (snapshot Snapshot) commit(actual string) error {
	info, err := os.Stat(snapshot.FilePath)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(snapshot.FilePath)
	if err != nil {
		return err
	}
	updated, err := rewrite(content, snapshot.Line, actual)
	if err != nil {
		return err
	}
	if err := os.WriteFile(snapshot.FilePath, updated, info.Mode().Perm()); err != nil {
		return err
	}
	invariant.XAlways(func() bool {
		content, err := os.ReadFile(snapshot.FilePath)
		return err == nil && bytes.Contains(content, []byte("`"+actual+"`"))
	}, "Rewritten file contains the new snapshot")
	return nil
}

var (
	errNoCall     = errors.New("couldn't find snap.Init call")
	errNoLiteral  = errors.New("couldn't find raw string literal")
	errBacktick   = errors.New("actual value contains a backtick and can't be stored in a raw string literal")
	errLineNumber = errors.New("line number is out of range")
)

// rewrite replaces the raw string literal passed to the snap.Init call on the given 1-based line, and
// drops a directly chained .Update().
func rewrite(content []byte, line int, actual string) ([]byte, error) {
	if strings.Contains(actual, "`") {
		return nil, errBacktick
	}
	if line < 1 {
		return nil, errLineNumber
	}
	endOfLine := 0
	for range line {
		next := bytes.IndexByte(content[endOfLine:], '\n')
		if next < 0 {
			endOfLine = len(content)
			break
		}
		endOfLine += next + 1
	}
	if endOfLine == 0 {
		return nil, errLineNumber
	}

	// The call may span several lines, so the reported line can be any of them.
	call := bytes.LastIndex(content[:endOfLine], []byte("snap.Init("))
	if call < 0 {
		return nil, errNoCall
	}
	open := call + len("snap.Init(")
	if open >= len(content) || content[open] != '`' {
		return nil, errNoLiteral
	}
	close := bytes.IndexByte(content[open+1:], '`')
	if close < 0 {
		return nil, errNoLiteral
	}
	close += open + 1

	rest := content[close+1:]
	if len(rest) == 0 || rest[0] != ')' {
		return nil, errNoLiteral
	}
	rest = rest[1:]
	rest = bytes.TrimPrefix(rest, []byte(".Update()"))

	var out bytes.Buffer
	out.Grow(len(content) + len(actual))
	out.Write(content[:open+1])
	out.WriteString(actual)
	out.WriteString("`)")
	out.Write(rest)
	return out.Bytes(), nil
}
