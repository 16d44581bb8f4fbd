package adapter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"macswap/internal/runner"
)

// fakeRunner records every command and answers through respond.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []runner.Command
	respond func(cmd runner.Command) (*runner.Result, error)
}

func (f *fakeRunner) Run(_ context.Context, cmd runner.Command) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()
	if f.respond == nil {
		return &runner.Result{}, nil
	}
	return f.respond(cmd)
}

func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.String()
	}
	return out
}

func ok(stdout string) (*runner.Result, error) {
	return &runner.Result{Stdout: stdout}, nil
}

func fail(msg string) (*runner.Result, error) {
	return nil, &runner.CommandError{Command: "fake", ExitCode: 1, Err: errors.New(msg)}
}

func contains(cmd runner.Command, sub string) bool {
	return strings.Contains(cmd.String(), sub)
}

type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func testOptions(goos string, sr *sleepRecorder) Options {
	opts := DefaultOptions()
	opts.Platform = func() string { return goos }
	opts.Sleep = sr.sleep
	return opts
}

