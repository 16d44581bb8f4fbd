package flog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Level int

const None Level = -1
const (
	Debug Level = iota
	Info
	Warn
	Error
)

var (
	minLevel atomic.Int32
	logCh    = make(chan string, 1024)
	dropped  atomic.Uint64
	pending  sync.WaitGroup
	drainer  sync.Once

	outMu sync.Mutex
	out   io.Writer = os.Stderr
)

func init() {
	minLevel.Store(int32(Info))
}

// Dropped returns the number of log messages dropped due to channel full.
func Dropped() uint64 { return dropped.Load() }

var levelStrings = [...]string{
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
}

// ParseLevel maps a config value onto a Level. Unknown values report ok=false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, true
	case "info", "":
		return Info, true
	case "warn", "warning":
		return Warn, true
	case "error":
		return Error, true
	case "none", "off":
		return None, true
	}
	return Info, false
}

func SetLevel(l Level) {
	minLevel.Store(int32(l))
	if l != None {
		drainer.Do(func() { go drain() })
	}
}

// SetOutput replaces the destination of log lines. Lines already queued are
// written to the new destination.
func SetOutput(w io.Writer) {
	outMu.Lock()
	out = w
	outMu.Unlock()
}

func drain() {
	for msg := range logCh {
		outMu.Lock()
		fmt.Fprint(out, msg)
		outMu.Unlock()
		pending.Done()
	}
}

func logf(level Level, format string, args ...any) {
	min := Level(minLevel.Load())
	if min == None || level < min {
		return
	}

	// Check channel capacity before formatting to avoid wasted allocations
	if len(logCh) == cap(logCh) {
		dropped.Add(1)
		return
	}

	now := time.Now().Format("2006-01-02 15:04:05.000")
	line := fmt.Sprintf("%s [%s] %s\n", now, level, fmt.Sprintf(format, args...))

	pending.Add(1)
	select {
	case logCh <- line:
	default:
		pending.Done()
		dropped.Add(1)
	}
}

func (l Level) String() string {
	if int(l) >= 0 && int(l) < len(levelStrings) {
		return levelStrings[l]
	}
	if l == None {
		return "None"
	}
	return "UNKNOWN"
}

func Debugf(format string, args ...any) { logf(Debug, format, args...) }
func Infof(format string, args ...any)  { logf(Info, format, args...) }
func Warnf(format string, args ...any)  { logf(Warn, format, args...) }
func Errorf(format string, args ...any) { logf(Error, format, args...) }

// Flush blocks until every queued line has been written.
func Flush() {
	if Level(minLevel.Load()) == None {
		return
	}
	drainer.Do(func() { go drain() })
	pending.Wait()
}
