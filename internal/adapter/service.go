package adapter

import (
	"context"
	"runtime"
	"time"

	"macswap/internal/flog"
	"macswap/internal/mac"
	"macswap/internal/runner"
)

// Options tune the platform strategies. Zero delays are honoured as zero.
type Options struct {
	// Platform reports the operating system identifier (runtime.GOOS values).
	// It is read on every call; nil means runtime.GOOS.
	Platform func() string

	Sudo       bool
	PowerShell string

	SettleMode          SettleMode
	DarwinDelay         time.Duration
	WindowsDelay        time.Duration
	DarwinRestartDelay  time.Duration
	WindowsRestartDelay time.Duration
	PollInterval        time.Duration
	PollTimeout         time.Duration

	// Sleep replaces settle waits, for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultOptions mirrors the settle delays the commands have always used.
func DefaultOptions() Options {
	return Options{
		Sudo:                true,
		PowerShell:          "powershell",
		SettleMode:          SettleDelay,
		DarwinDelay:         200 * time.Millisecond,
		WindowsDelay:        500 * time.Millisecond,
		DarwinRestartDelay:  500 * time.Millisecond,
		WindowsRestartDelay: time.Second,
		PollInterval:        100 * time.Millisecond,
		PollTimeout:         5 * time.Second,
	}
}

func (o Options) settler(delay time.Duration) Settler {
	return Settler{
		Mode:         o.SettleMode,
		Delay:        delay,
		PollInterval: o.PollInterval,
		PollTimeout:  o.PollTimeout,
		Sleep:        o.Sleep,
	}
}

// Select returns the strategy for goos.
func Select(goos string, r runner.Runner, opts Options) Strategy {
	switch goos {
	case "darwin":
		return &macOS{
			runner:  r,
			sudo:    opts.Sudo,
			settle:  opts.settler(opts.DarwinDelay),
			restart: Settler{Delay: opts.DarwinRestartDelay, Sleep: opts.Sleep},
		}
	case "windows":
		return &windows{
			runner:  r,
			bin:     opts.PowerShell,
			settle:  opts.settler(opts.WindowsDelay),
			restart: Settler{Delay: opts.WindowsRestartDelay, Sleep: opts.Sleep},
		}
	default:
		return unsupported{platform: goos}
	}
}

// Service exposes the adapter operations as plain data in, plain data out.
// It keeps no state between calls and does not serialize callers: overlapping
// changes to the same adapter must be prevented by whoever dispatches them.
type Service struct {
	runner runner.Runner
	opts   Options
}

func NewService(r runner.Runner, opts Options) *Service {
	return &Service{runner: r, opts: opts}
}

func (s *Service) Platform() string {
	if s.opts.Platform != nil {
		return s.opts.Platform()
	}
	return runtime.GOOS
}

func (s *Service) strategy() Strategy {
	return Select(s.Platform(), s.runner, s.opts)
}

// ListAdapters enumerates adapters that report a hardware address.
func (s *Service) ListAdapters(ctx context.Context) ([]Record, error) {
	records, err := s.strategy().List(ctx)
	if err != nil {
		flog.Errorf("list adapters: %v", err)
		return nil, err
	}
	flog.Debugf("list adapters: %d found", len(records))
	return records, nil
}

// ChangeMac captures the adapter's current address, then applies newMac.
func (s *Service) ChangeMac(ctx context.Context, name, newMac string) Outcome {
	out := s.strategy().Change(ctx, name, newMac)
	logOutcome("change", name, out)
	return out
}

// RestoreMac applies an address the caller captured earlier.
func (s *Service) RestoreMac(ctx context.Context, name, originalMac string) Outcome {
	out := s.strategy().Restore(ctx, name, originalMac)
	logOutcome("restore", name, out)
	return out
}

// RestartAdapter power-cycles the adapter without touching its address.
func (s *Service) RestartAdapter(ctx context.Context, name string) error {
	if err := s.strategy().Restart(ctx, name); err != nil {
		flog.Errorf("restart %s: %v", name, err)
		return err
	}
	flog.Infof("restart %s: done", name)
	return nil
}

func (s *Service) ValidateMac(raw string) mac.Validation { return mac.Validate(raw) }

func (s *Service) GenerateRandomMac() string { return mac.GenerateRandom() }

func logOutcome(op, name string, out Outcome) {
	if out.Success {
		flog.Infof("%s %s: %s", op, name, out.Message)
		return
	}
	flog.Errorf("%s %s: %s", op, name, out.Message)
}
