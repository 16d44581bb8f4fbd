// Package runner invokes external OS commands and captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"macswap/internal/flog"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultMaxOutput = 10 * 1024 * 1024
)

// ErrOutputTooLarge is wrapped by CommandError when a command writes more than
// the configured maximum to stdout or stderr.
var ErrOutputTooLarge = errors.New("command output exceeds limit")

// Command is a program and its arguments. Arguments are passed to the program
// verbatim; no shell is involved.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result holds the captured output of a successful command.
type Result struct {
	Stdout string
	Stderr string
}

// Runner runs one command to completion. Implementations must be safe for
// sequential reuse; concurrent use is allowed but never required by callers.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// CommandError describes a command that could not be started, exited non-zero,
// timed out, or produced too much output.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	b.WriteString(e.Command)
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString(": ")
		b.WriteString(s)
	}
	return b.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// Exec runs commands with os/exec.
type Exec struct {
	Timeout   time.Duration
	MaxOutput int
}

// NewExec returns an Exec runner, substituting defaults for zero values.
func NewExec(timeout time.Duration, maxOutput int) *Exec {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}
	return &Exec{Timeout: timeout, MaxOutput: maxOutput}
}

func (r *Exec) Run(ctx context.Context, cmd Command) (*Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limit := r.MaxOutput
	if limit <= 0 {
		limit = DefaultMaxOutput
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	stdout := &limitedBuffer{limit: limit, onOverflow: cancel}
	stderr := &limitedBuffer{limit: limit, onOverflow: cancel}
	c.Stdout = stdout
	c.Stderr = stderr
	c.WaitDelay = time.Second

	flog.Debugf("exec: %s", cmd)
	start := time.Now()
	err := c.Run()
	flog.Debugf("exec: %s finished in %v", cmd, time.Since(start))

	if stdout.overflow || stderr.overflow {
		return nil, &CommandError{
			Command:  cmd.String(),
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      fmt.Errorf("%w (%d bytes)", ErrOutputTooLarge, limit),
		}
	}
	if err != nil {
		cerr := &CommandError{Command: cmd.String(), ExitCode: -1, Stderr: stderr.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cerr.ExitCode = exitErr.ExitCode()
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			cerr.Err = fmt.Errorf("timed out after %v: %w", timeout, context.DeadlineExceeded)
		} else if ctx.Err() != nil {
			cerr.Err = ctx.Err()
		}
		return nil, cerr
	}

	return &Result{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// limitedBuffer stops accepting data past limit and reports the overflow
// through onOverflow so the process can be killed.
type limitedBuffer struct {
	buf        bytes.Buffer
	limit      int
	overflow   bool
	onOverflow func()
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.overflow {
		return len(p), nil
	}
	if b.buf.Len()+len(p) > b.limit {
		b.overflow = true
		if b.onOverflow != nil {
			b.onOverflow()
		}
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) String() string { return b.buf.String() }
