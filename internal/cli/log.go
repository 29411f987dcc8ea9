// Package cli implements the pedigree command-line interface.
//
// The commands build the lineage of one individual from a record source and
// either print the assembled scene, render it to files, explore it in the
// terminal or serve it to a rendering client over HTTP.
//
// # Commands
//
//   - scene: print the scene JSON a rendering client consumes
//   - render: write SVG, DOT, JSON, PDF or PNG artifacts
//   - explore: browse and select individuals in a terminal UI
//   - serve: run the HTTP API on the configured record store
//   - cache: inspect or clear the position and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through
// charmbracelet/log. Status lines go to stdout, logs to stderr.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, plus any
// extra key/value pairs.
// Example output: "Built scene (12ms) nodes=5"
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg+" ("+time.Since(p.start).Round(time.Millisecond).String()+")", keyvals...)
}
