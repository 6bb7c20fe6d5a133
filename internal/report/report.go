// Package report carries the line-oriented progress and diagnostic channel
// consumed by whatever presents a scan to the user.
package report

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
)

// Reporter receives one progress or diagnostic line at a time.
type Reporter interface {
	Report(line string)
}

// Func adapts a plain function to a Reporter.
type Func func(line string)

// Report calls f(line).
func (f Func) Report(line string) {
	f(line)
}

// Discard drops every line.
var Discard Reporter = Func(func(string) {})

// Writer writes each line, newline terminated, to an io.Writer. Write errors
// are logged and otherwise ignored: the channel is append-only and lossy.
type Writer struct {
	w      io.Writer
	logger hclog.Logger
}

// NewWriter creates a Writer reporter.
func NewWriter(w io.Writer, logger hclog.Logger) *Writer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Writer{w: w, logger: logger}
}

// Report writes line to the underlying writer.
func (r *Writer) Report(line string) {
	if _, err := fmt.Fprintln(r.w, line); err != nil {
		r.logger.Debug("Failed to write report line", "error", err)
	}
}

// Recorder keeps every reported line in order.
type Recorder struct {
	Lines []string
}

// Report appends line.
func (r *Recorder) Report(line string) {
	r.Lines = append(r.Lines, line)
}

// Multi fans each line out to all reporters in order.
func Multi(reporters ...Reporter) Reporter {
	return Func(func(line string) {
		for _, r := range reporters {
			r.Report(line)
		}
	})
}
