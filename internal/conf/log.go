package conf

import (
	"fmt"

	"macswap/internal/flog"
)

type Log struct {
	Level_ string     `yaml:"level"`
	Level  flog.Level `yaml:"-"`
}

func (l *Log) setDefaults() {
	if l.Level_ == "" {
		l.Level_ = "info"
	}
}

func (l *Log) validate() []error {
	var errors []error

	level, ok := flog.ParseLevel(l.Level_)
	if !ok {
		errors = append(errors, fmt.Errorf("log level must be one of: debug, info, warn, error, none (got '%s')", l.Level_))
	}
	l.Level = level

	return errors
}
