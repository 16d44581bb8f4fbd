// Package app wires configuration, logging and the adapter service for the
// command line.
package app

import (
	"errors"
	"fmt"

	"macswap/internal/adapter"
	"macswap/internal/conf"
	"macswap/internal/flog"
	"macswap/internal/metrics"
	"macswap/internal/runner"
)

// ErrFailed marks a command whose failure has already been printed.
var ErrFailed = errors.New("operation failed")

// Set from the root command's persistent flags.
var (
	ConfigPath string
	LogLevel   string
)

type Env struct {
	Conf    *conf.Conf
	Service *adapter.Service
	Metrics *metrics.Collector
}

// Setup loads the configuration, applies the log level and builds the
// adapter service. With withMetrics set, every command the service runs is
// counted on the default Prometheus registry.
func Setup(withMetrics bool) (*Env, error) {
	c, err := conf.Load(ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if LogLevel != "" {
		level, ok := flog.ParseLevel(LogLevel)
		if !ok {
			return nil, fmt.Errorf("unknown log level '%s'", LogLevel)
		}
		c.Log.Level = level
	}
	flog.SetLevel(c.Log.Level)

	var r runner.Runner = c.Runner.NewRunner()
	var collector *metrics.Collector
	if withMetrics {
		collector, err = metrics.NewCollector(nil)
		if err != nil {
			return nil, err
		}
		r = collector.Runner(r)
	}

	svc := adapter.NewService(r, c.AdapterOptions())
	flog.Debugf("platform %s, config %q", svc.Platform(), ConfigPath)
	return &Env{Conf: c, Service: svc, Metrics: collector}, nil
}
