package nordvpn

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of one external process execution.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Success reports whether the process exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes an external program and waits for it to finish.
// A non-zero exit status is reported in Result, not as an error; the error
// is reserved for failures to run the program at all.
type Runner interface {
	Run(ctx context.Context, program string, args ...string) (Result, error)
}

// killGrace bounds how long Run waits for output pipes after ctx is done.
const killGrace = 500 * time.Millisecond

// ExecRunner runs programs with os/exec. It is the Runner used outside tests.
type ExecRunner struct{}

// Run implements Runner. The process is killed when ctx is done.
func (ExecRunner) Run(ctx context.Context, program string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	// Children of a killed process may hold stdout open; stop waiting for them.
	cmd.WaitDelay = killGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return result, ctx.Err()
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return result, err
	}
	return result, nil
}

// Invocation identifies one external command for logging and error reports.
type Invocation struct {
	ID      uuid.UUID
	Program string
	Args    []string
}

func newInvocation(program string, args []string) Invocation {
	return Invocation{
		ID:      uuid.New(),
		Program: program,
		Args:    append([]string(nil), args...),
	}
}

// String renders the command line, e.g. "nordvpn set dns false".
func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Program
	}
	return i.Program + " " + strings.Join(i.Args, " ")
}
