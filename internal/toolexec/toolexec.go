// Package toolexec runs the external toolchain programs (objdump, linker,
// archiver, extraction tool) as synchronous child processes.
package toolexec

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner abstracts child-process invocation so callers can be tested with a
// recording fake instead of spawning real tools. Both methods block until the
// process exits and report its exit code.
type Runner interface {
	// Run executes name with args in dir (empty dir means the current
	// directory), inheriting stdout/stderr. A non-zero exit code is not an
	// error; err is non-nil only when the process could not be started.
	Run(dir, name string, args ...string) (int, error)

	// Output is Run with stdout captured instead of inherited.
	Output(dir, name string, args ...string) ([]byte, int, error)
}

// ToolError reports an external tool that could not be started or exited
// non-zero. Argv holds the full command line for diagnostics.
type ToolError struct {
	Argv []string
	Code int
	Err  error
}

func (e *ToolError) Error() string {
	cmd := strings.Join(e.Argv, " ")
	if e.Err != nil {
		return fmt.Sprintf("command %q failed: %v", cmd, e.Err)
	}
	return fmt.Sprintf("command %q exited with status %d", cmd, e.Code)
}

func (e *ToolError) Unwrap() error { return e.Err }

// NewToolError builds a ToolError for the given invocation.
func NewToolError(code int, err error, name string, args ...string) *ToolError {
	return &ToolError{Argv: append([]string{name}, args...), Code: code, Err: err}
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(dir, name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return wait(cmd, name, args)
}

func (ExecRunner) Output(dir, name string, args ...string) ([]byte, int, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	code, werr := exitStatus(err, name, args)
	return out, code, werr
}

func wait(cmd *exec.Cmd, name string, args []string) (int, error) {
	return exitStatus(cmd.Run(), name, args)
}

// exitStatus folds a non-zero exit into a plain code; anything else (binary
// missing, permission denied) becomes a ToolError.
func exitStatus(err error, name string, args []string) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, NewToolError(-1, err, name, args...)
}
