package conf

import (
	"fmt"
	"time"

	"macswap/internal/runner"
)

type Runner struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxOutput  int           `yaml:"max_output"`
	Sudo       *bool         `yaml:"sudo"`       // macOS only
	PowerShell string        `yaml:"powershell"` // Windows only
}

func (r *Runner) setDefaults() {
	if r.Timeout == 0 {
		r.Timeout = runner.DefaultTimeout
	}
	if r.MaxOutput == 0 {
		r.MaxOutput = runner.DefaultMaxOutput
	}
	if r.Sudo == nil {
		sudo := true
		r.Sudo = &sudo
	}
	if r.PowerShell == "" {
		r.PowerShell = "powershell"
	}
}

func (r *Runner) validate() []error {
	var errors []error

	if r.Timeout < time.Second || r.Timeout > 10*time.Minute {
		errors = append(errors, fmt.Errorf("runner timeout must be between 1s-10m"))
	}
	if r.MaxOutput < 1024 {
		errors = append(errors, fmt.Errorf("runner max_output must be >= 1024 bytes"))
	}
	if r.MaxOutput > 100*1024*1024 {
		errors = append(errors, fmt.Errorf("runner max_output too large (max 100MB)"))
	}

	return errors
}

// NewRunner builds the command runner described by this section.
func (r *Runner) NewRunner() *runner.Exec {
	return runner.NewExec(r.Timeout, r.MaxOutput)
}
