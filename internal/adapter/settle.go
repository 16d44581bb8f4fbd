package adapter

import (
	"context"
	"fmt"
	"time"

	"macswap/internal/flog"
)

type SettleMode string

const (
	SettleDelay SettleMode = "delay"
	SettlePoll  SettleMode = "poll"
)

// Probe reports whether an adapter has reached the state the previous step
// asked for.
type Probe func(ctx context.Context) (bool, error)

// Settler waits between reconfiguration steps. In delay mode, and in poll
// mode when no probe is available, it sleeps for Delay. In poll mode it calls
// the probe every PollInterval until it succeeds or PollTimeout elapses, then
// lets the sequence continue either way.
type Settler struct {
	Mode         SettleMode
	Delay        time.Duration
	PollInterval time.Duration
	PollTimeout  time.Duration

	// Sleep replaces the context-aware wait, for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (s Settler) Wait(ctx context.Context, probe Probe) error {
	if s.Mode != SettlePoll || probe == nil {
		return s.sleep(ctx, s.Delay)
	}

	interval := s.PollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.Now().Add(s.PollTimeout)
	for {
		ok, err := probe(ctx)
		if err == nil && ok {
			return nil
		}
		if err != nil {
			flog.Debugf("settle probe: %v", err)
		}
		if !time.Now().Before(deadline) {
			flog.Warnf("adapter did not settle within %v, continuing", s.PollTimeout)
			return nil
		}
		if err := s.sleep(ctx, interval); err != nil {
			return err
		}
	}
}

func (s Settler) sleep(ctx context.Context, d time.Duration) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("settle wait interrupted: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}
