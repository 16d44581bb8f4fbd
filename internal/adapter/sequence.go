package adapter

import (
	"context"

	"macswap/internal/flog"
	"macswap/internal/runner"
)

// step is one command of a reconfiguration sequence. A failing optional step
// is logged and skipped; a failing mandatory step aborts the sequence. probe,
// when set, is used by the settle wait that follows the step.
type step struct {
	name     string
	cmd      runner.Command
	optional bool
	probe    Probe
}

// runSteps issues steps strictly in order, settling between consecutive
// steps. Nothing is rolled back when a step fails.
func runSteps(ctx context.Context, r runner.Runner, settler Settler, adapterName string, steps []step) error {
	for i, st := range steps {
		flog.Infof("adapter %s: %s", adapterName, st.name)
		if _, err := r.Run(ctx, st.cmd); err != nil {
			if !st.optional {
				flog.Errorf("adapter %s: %s failed: %v", adapterName, st.name, err)
				return err
			}
			flog.Warnf("adapter %s: %s failed, continuing: %v", adapterName, st.name, err)
		}
		if i == len(steps)-1 {
			break
		}
		if err := settler.Wait(ctx, st.probe); err != nil {
			return err
		}
	}
	return nil
}

// macProbe builds a probe comparing an adapter's current address to want.
func macProbe(read func(ctx context.Context, name string) (string, error), name, want string) Probe {
	return func(ctx context.Context) (bool, error) {
		got, err := read(ctx, name)
		if err != nil {
			return false, err
		}
		return got == want, nil
	}
}
