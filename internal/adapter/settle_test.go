package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"macswap/internal/runner"
)

func TestSettlerDelayMode(t *testing.T) {
	sr := &sleepRecorder{}
	s := Settler{Mode: SettleDelay, Delay: 300 * time.Millisecond, Sleep: sr.sleep}
	probed := false
	err := s.Wait(context.Background(), func(context.Context) (bool, error) {
		probed = true
		return true, nil
	})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if probed {
		t.Error("delay mode must not probe")
	}
	if len(sr.waits) != 1 || sr.waits[0] != 300*time.Millisecond {
		t.Errorf("waits = %v", sr.waits)
	}
}

func TestSettlerPollWithoutProbeFallsBackToDelay(t *testing.T) {
	sr := &sleepRecorder{}
	s := Settler{Mode: SettlePoll, Delay: 50 * time.Millisecond, Sleep: sr.sleep}
	if err := s.Wait(context.Background(), nil); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(sr.waits) != 1 || sr.waits[0] != 50*time.Millisecond {
		t.Errorf("waits = %v", sr.waits)
	}
}

func TestSettlerPollUntilReady(t *testing.T) {
	sr := &sleepRecorder{}
	s := Settler{Mode: SettlePoll, PollInterval: 10 * time.Millisecond, PollTimeout: time.Minute, Sleep: sr.sleep}
	calls := 0
	err := s.Wait(context.Background(), func(context.Context) (bool, error) {
		calls++
		if calls == 2 {
			return false, errors.New("transient")
		}
		return calls >= 3, nil
	})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if calls != 3 {
		t.Errorf("probe calls = %d, want 3", calls)
	}
	if len(sr.waits) != 2 {
		t.Errorf("waits = %v", sr.waits)
	}
}

func TestSettlerPollTimeoutContinues(t *testing.T) {
	s := Settler{Mode: SettlePoll, PollInterval: time.Millisecond, PollTimeout: 20 * time.Millisecond}
	start := time.Now()
	err := s.Wait(context.Background(), func(context.Context) (bool, error) { return false, nil })
	if err != nil {
		t.Fatalf("timeout should not be an error, got %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("returned before poll timeout")
	}
}

func TestSettlerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := Settler{Mode: SettleDelay, Delay: time.Hour}
	if err := s.Wait(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestChangeAbortsWhenCancelledDuringSettle(t *testing.T) {
	f := &fakeRunner{respond: macOSResponder(false, false, false)}
	ctx, cancel := context.WithCancel(context.Background())
	opts := testOptions("darwin", &sleepRecorder{})
	opts.Sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}
	svc := NewService(f, opts)

	out := svc.ChangeMac(ctx, "en0", "02:00:00:00:00:01")
	if out.Success {
		t.Fatal("expected failure after cancellation")
	}
	if n := len(f.commands()); n != 2 {
		t.Errorf("only capture and down should run, got %v", f.commands())
	}
}

func TestChangePollModeVerifiesAddress(t *testing.T) {
	applied := ""
	f := &fakeRunner{}
	f.respond = func(cmd runner.Command) (*runner.Result, error) {
		switch {
		case cmd.String() == "ifconfig en0":
			current := "00:11:22:33:44:55"
			if applied != "" {
				current = applied
			}
			return ok("en0: flags=0<> mtu 1500\n\tether " + current + "\n")
		case contains(cmd, " ether "):
			applied = cmd.Args[len(cmd.Args)-1]
		}
		return ok("")
	}
	sr := &sleepRecorder{}
	opts := testOptions("darwin", sr)
	opts.SettleMode = SettlePoll
	svc := NewService(f, opts)

	out := svc.ChangeMac(context.Background(), "en0", "02:00:00:00:00:01")
	if !out.Success {
		t.Fatalf("expected success, got %+v", out)
	}
	// capture, down, set, probe read, up
	if n := len(f.commands()); n != 5 {
		t.Errorf("commands = %v", f.commands())
	}
	if len(sr.waits) != 1 {
		t.Errorf("only the down step should use a fixed delay, waits = %v", sr.waits)
	}
}
