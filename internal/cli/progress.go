package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

type scanProgressReporter struct {
	w       io.Writer
	enabled bool
	label   string
	start   time.Time
	spinner int
	lastLen int
}

// newScanProgressReporter reports on w only when w is a terminal.
func newScanProgressReporter(w io.Writer, label string, quiet bool) *scanProgressReporter {
	enabled := false
	if f, ok := w.(*os.File); ok && !quiet {
		stat, err := f.Stat()
		enabled = err == nil && (stat.Mode()&os.ModeCharDevice) != 0
	}
	return &scanProgressReporter{
		w:       w,
		enabled: enabled,
		label:   label,
		start:   time.Now(),
	}
}

func (r *scanProgressReporter) Update(file string, count int) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	file = strings.TrimSpace(file)
	if len(file) > 88 {
		file = "..." + file[len(file)-85:]
	}
	r.printStatus(fmt.Sprintf("%s %s %d parsing %s", frame, r.label, count, file))
}

func (r *scanProgressReporter) Done(count int) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.printStatus(fmt.Sprintf("%s complete (%d files in %s)", r.label, count, elapsed))
	fmt.Fprintln(r.w)
}

func (r *scanProgressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.w, "\r%s", status)
}
