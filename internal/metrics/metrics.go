// Package metrics exposes Prometheus collectors for external command runs,
// adapter operations and the HTTP boundary.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"time"

	"macswap/internal/flog"
	"macswap/internal/runner"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the macswap metrics and the gatherer they are exposed from.
type Collector struct {
	gatherer prometheus.Gatherer

	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Operations      *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice against the same registry reuses the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	commands, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "macswap_commands_total",
		Help: "External commands run, labeled by program and outcome.",
	}, []string{"program", "outcome"}))
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "macswap_command_duration_seconds",
		Help:    "External command latency in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"program"}))
	if err != nil {
		return nil, err
	}

	operations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "macswap_operations_total",
		Help: "Adapter operations handled, labeled by operation and result.",
	}, []string{"operation", "result"}))
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "macswap_http_requests_total",
		Help: "HTTP requests handled, labeled by route and status code.",
	}, []string{"route", "code"}))
	if err != nil {
		return nil, err
	}

	dropped := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "macswap_log_lines_dropped_total",
		Help: "Log lines dropped because the logger's queue was full.",
	}, func() float64 { return float64(flog.Dropped()) })
	if err := reg.Register(dropped); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("register counter: %w", err)
		}
	}

	return &Collector{
		gatherer:        gatherer,
		Commands:        commands,
		CommandDuration: durations,
		Operations:      operations,
		HTTPRequests:    requests,
	}, nil
}

// Handler serves the gathered metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ObserveOperation counts one adapter operation.
func (c *Collector) ObserveOperation(operation string, ok bool) {
	if c == nil || c.Operations == nil {
		return
	}
	c.Operations.WithLabelValues(operation, result(ok)).Inc()
}

// ObserveHTTP counts one HTTP response.
func (c *Collector) ObserveHTTP(route string, code int) {
	if c == nil || c.HTTPRequests == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Runner wraps next so every command is counted and timed.
func (c *Collector) Runner(next runner.Runner) runner.Runner {
	if c == nil {
		return next
	}
	return &instrumentedRunner{next: next, c: c}
}

type instrumentedRunner struct {
	next runner.Runner
	c    *Collector
}

func (r *instrumentedRunner) Run(ctx context.Context, cmd runner.Command) (*runner.Result, error) {
	program := programLabel(cmd)
	start := time.Now()
	res, err := r.next.Run(ctx, cmd)
	r.c.CommandDuration.WithLabelValues(program).Observe(time.Since(start).Seconds())
	r.c.Commands.WithLabelValues(program, outcome(err)).Inc()
	return res, err
}

// programLabel names the program actually doing the work, looking through a
// sudo prefix.
func programLabel(cmd runner.Command) string {
	name := cmd.Name
	if name == "sudo" {
		for _, a := range cmd.Args {
			if len(a) > 0 && a[0] != '-' {
				name = a
				break
			}
		}
	}
	return path.Base(name)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, runner.ErrOutputTooLarge) {
		return "overflow"
	}
	return "error"
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register counter: %w", err)
	}
	return c, nil
}

func registerHistogramVec(reg prometheus.Registerer, h *prometheus.HistogramVec) (*prometheus.HistogramVec, error) {
	if err := reg.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register histogram: %w", err)
	}
	return h, nil
}
