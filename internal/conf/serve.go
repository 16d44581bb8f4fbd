package conf

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

type Serve struct {
	Listen    string        `yaml:"listen"`
	Metrics   *bool         `yaml:"metrics"`
	ListCache time.Duration `yaml:"list_cache"`
}

func (s *Serve) setDefaults() {
	if s.Listen == "" {
		s.Listen = "127.0.0.1:8787"
	}
	if s.Metrics == nil {
		metrics := true
		s.Metrics = &metrics
	}
	if s.ListCache == 0 {
		s.ListCache = time.Second
	}
}

func (s *Serve) validate() []error {
	var errors []error

	if s.ListCache > time.Minute {
		errors = append(errors, fmt.Errorf("serve list_cache must be at most 1m (negative disables it)"))
	}

	_, port, err := net.SplitHostPort(s.Listen)
	if err != nil {
		errors = append(errors, fmt.Errorf("serve listen address '%s' is invalid: %v", s.Listen, err))
		return errors
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		errors = append(errors, fmt.Errorf("serve listen port must be between 0-65535"))
	}

	return errors
}
