package sh

import (
	"io"
	"os"
	"os/exec"
	"strings"
)

// Spawn runs the command in the current directory with the standard streams attached.
func Spawn(arguments ...string) bool {
	return SpawnRaw("", os.Stdout, os.Stderr, arguments...)
}

// SpawnRaw runs a process, treating leading KEY=VAL entries as additional environment variables.
//
// Usage:
//
//	SpawnRaw("", nil, nil, "A=1", "B=2", "cmd")
//	SpawnRaw("", nil, nil, "A=1", "cmd", "x", "y")
//	SpawnRaw("", nil, nil, "cmd", "x")
//
// The first non-ENV token is the executable. Nil writers default to the standard streams. Returns
// true on zero exit status.
func SpawnRaw(workingDirectory string, out, err io.Writer, arguments ...string) bool {
	if len(arguments) == 0 {
		panic("sh.SpawnRaw requires at least one argument")
	}
	if out == nil {
		out = os.Stdout
	}
	if err == nil {
		err = os.Stderr
	}

	envCount := 0
	for _, arg := range arguments {
		if !strings.Contains(arg, "=") {
			break
		}
		envCount++
	}
	if envCount == len(arguments) {
		panic("sh.SpawnRaw was not provided an executable")
	}
	env, command := arguments[:envCount], arguments[envCount:]

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = out
	cmd.Stderr = err
	cmd.Stdin = os.Stdin
	if workingDirectory != "" {
		if mkdirErr := os.MkdirAll(workingDirectory, 0o755); mkdirErr != nil {
			return false
		}
		cmd.Dir = workingDirectory
	}
	return cmd.Run() == nil
}
