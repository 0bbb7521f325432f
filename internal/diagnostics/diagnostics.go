// Package diagnostics is the append-only event log described in
// spec.md §2 component I: per-module build events recorded during a
// build, each printed as it is recorded (the recorded list is not printed
// again at the end), plus the CLI's stdout progress lines from spec.md §6
// ("<id> built", "Build complete in <ms>ms").
//
// Event logging itself uses github.com/sirupsen/logrus (the structured
// logger already present in the example pack's grafana-k6 fork) rather
// than plain fmt.Println, so fields like module id and duration are
// queryable when output is redirected to a log aggregator instead of a
// terminal.
package diagnostics

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// event is one append-only diagnostic record.
type event struct {
	moduleID string
	warning  string
	duration time.Duration
}

// Sink collects build events in the order they are recorded and prints
// each one at once; nothing is replayed at the end of a compilation.
// ModuleBuilt is called from the engine's result loop and Warn from worker
// goroutines, so both append under mu.
type Sink struct {
	mu     sync.Mutex
	events []event
	log    *logrus.Logger
}

// New returns a Sink that writes progress lines to os.Stdout.
func New() *Sink {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if isTerminal(os.Stdout) {
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	}
	return &Sink{log: log}
}

// ModuleBuilt records a successful module build and prints the
// "<id> built" progress line from spec.md §6.
func (s *Sink) ModuleBuilt(moduleID string, duration time.Duration) {
	s.mu.Lock()
	s.events = append(s.events, event{moduleID: moduleID, duration: duration})
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"module":      moduleID,
		"duration_ms": duration.Milliseconds(),
	}).Infof("%s built", moduleID)
}

// Warn records a non-fatal lowering warning (e.g. a non-literal
// require() argument, per spec.md §9).
func (s *Sink) Warn(path, message string) {
	s.mu.Lock()
	s.events = append(s.events, event{moduleID: path, warning: message})
	s.mu.Unlock()

	s.log.WithField("module", path).Warn(message)
}

// Complete prints the final "Build complete in <ms>ms" line.
func (s *Sink) Complete(elapsed time.Duration) {
	s.log.Infof("Build complete in %dms", elapsed.Milliseconds())
}

// Fail prints a fatal diagnostic line in the "<kind>: <path>: <detail>"
// form required by spec.md §7.
func Fail(err error) {
	fmt.Fprintln(os.Stderr, err)
}

// isTerminal reports whether f looks like a character device rather than
// a redirected file or pipe. We intentionally avoid an ioctl-based check
// here (see DESIGN.md: golang.org/x/sys was dropped from this package)
// since os.ModeCharDevice is portable and sufficient for deciding
// whether to colorize progress output.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
