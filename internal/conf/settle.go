package conf

import (
	"fmt"
	"slices"
	"time"
)

type Settle struct {
	Mode           string        `yaml:"mode"` // "delay" | "poll"
	Darwin         *time.Duration `yaml:"darwin"`
	Windows        *time.Duration `yaml:"windows"`
	DarwinRestart  *time.Duration `yaml:"darwin_restart"`
	WindowsRestart *time.Duration `yaml:"windows_restart"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	PollTimeout    time.Duration `yaml:"poll_timeout"`
}

func (s *Settle) setDefaults() {
	if s.Mode == "" {
		s.Mode = "delay"
	}
	s.Darwin = defaultDelay(s.Darwin, 200*time.Millisecond)
	s.Windows = defaultDelay(s.Windows, 500*time.Millisecond)
	s.DarwinRestart = defaultDelay(s.DarwinRestart, 500*time.Millisecond)
	s.WindowsRestart = defaultDelay(s.WindowsRestart, time.Second)
	if s.PollInterval == 0 {
		s.PollInterval = 100 * time.Millisecond
	}
	if s.PollTimeout == 0 {
		s.PollTimeout = 5 * time.Second
	}
}

func (s *Settle) validate() []error {
	var errors []error

	validModes := []string{"delay", "poll"}
	if !slices.Contains(validModes, s.Mode) {
		errors = append(errors, fmt.Errorf("settle mode must be one of: %v", validModes))
	}

	delays := map[string]time.Duration{
		"darwin":          *s.Darwin,
		"windows":         *s.Windows,
		"darwin_restart":  *s.DarwinRestart,
		"windows_restart": *s.WindowsRestart,
	}
	for _, name := range []string{"darwin", "windows", "darwin_restart", "windows_restart"} {
		if d := delays[name]; d < 0 || d > 10*time.Second {
			errors = append(errors, fmt.Errorf("settle %s must be between 0-10s", name))
		}
	}

	if s.Mode == "poll" {
		if s.PollInterval <= 0 {
			errors = append(errors, fmt.Errorf("settle poll_interval must be positive"))
		}
		if s.PollTimeout < s.PollInterval {
			errors = append(errors, fmt.Errorf("settle poll_timeout must be >= poll_interval"))
		}
	}

	return errors
}

// defaultDelay keeps an explicitly configured delay, zero included.
func defaultDelay(d *time.Duration, def time.Duration) *time.Duration {
	if d != nil {
		return d
	}
	return &def
}
