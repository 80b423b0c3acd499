// Package runner launches the package manager as a child process.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

var (
	ErrProcess = errors.New("process failed")
	ErrSpawn   = errors.New("process could not be started")
)

// ProcessError reports a child that exited with a non-zero code.
type ProcessError struct {
	Executable string
	ExitCode   int
	// Stderr is captured by Output only.
	Stderr []byte
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("The install process exited with error code %d.", e.ExitCode)
}

func (e *ProcessError) Unwrap() error { return ErrProcess }

// SpawnError reports an executable that could not be launched at all.
type SpawnError struct {
	Executable string
	Err        error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("could not run %s: %v. Is it installed and on your PATH?", e.Executable, e.Err)
}

func (e *SpawnError) Unwrap() []error { return []error{ErrSpawn, e.Err} }

// Executable returns the program and leading arguments that launch the
// package manager name on goos. Windows ships package managers as .cmd
// shims, which only run through cmd.exe; their arguments are escaped by
// CommandLine.
func Executable(name, goos string) (string, []string) {
	if goos == "windows" {
		return "cmd.exe", []string{"/c", name + ".cmd"}
	}
	return name, nil
}

// Runner runs a package manager with the given arguments.
type Runner interface {
	Run(ctx context.Context, name string, args []string) error
}

// Exec runs commands with os/exec. Nil streams inherit the parent's stdio.
type Exec struct {
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (e *Exec) Run(ctx context.Context, name string, args []string) error {
	cmd := command(ctx, name, args)
	cmd.Dir = e.Dir
	cmd.Stdin = orReader(e.Stdin, os.Stdin)
	cmd.Stdout = orWriter(e.Stdout, os.Stdout)
	cmd.Stderr = orWriter(e.Stderr, os.Stderr)
	return wait(ctx, name, cmd)
}

// Output runs name and returns its standard output. On a non-zero exit the
// output read so far is returned along with a *ProcessError carrying stderr.
func Output(ctx context.Context, name string, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := command(ctx, name, args)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := wait(ctx, name, cmd)
	var procErr *ProcessError
	if errors.As(err, &procErr) {
		procErr.Stderr = stderr.Bytes()
	}
	return stdout.Bytes(), err
}

func command(ctx context.Context, name string, args []string) *exec.Cmd {
	exe, prefix := Executable(name, runtime.GOOS)
	cmd := exec.CommandContext(ctx, exe, append(prefix, args...)...)
	if runtime.GOOS == "windows" {
		setCommandLine(cmd, CommandLine(name, args))
	}
	return cmd
}

func wait(ctx context.Context, name string, cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &SpawnError{Executable: name, Err: err}
	}
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ProcessError{Executable: name, ExitCode: exitErr.ExitCode()}
		}
		return &SpawnError{Executable: name, Err: err}
	}
	return nil
}

func orReader(r, def io.Reader) io.Reader {
	if r == nil {
		return def
	}
	return r
}

func orWriter(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
