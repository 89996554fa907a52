package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storyreel/internal/jobs"
)

var titleCaser = cases.Title(language.Und)

// statusLabel renders a job status for humans.
func statusLabel(status jobs.Status) string {
	if status == "" {
		return "Unknown"
	}
	return titleCaser.String(string(status))
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressPrinter reports polled job statuses. On a terminal it rewrites one
// line in place; otherwise it prints a line per status change.
type progressPrinter struct {
	out  io.Writer
	tty  bool
	last jobs.Status
	wide int
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, tty: isTerminal(out)}
}

func (p *progressPrinter) observe(job *jobs.Job, attempt int) {
	line := fmt.Sprintf("job %d [%s] %s (poll %d)", job.ID, job.RemoteID, statusLabel(job.Status), attempt)
	if p.tty {
		pad := ""
		if p.wide > len(line) {
			pad = strings.Repeat(" ", p.wide-len(line))
		}
		p.wide = len(line)
		fmt.Fprintf(p.out, "\r%s%s", line, pad)
		return
	}
	if job.Status != p.last {
		fmt.Fprintln(p.out, line)
	}
	p.last = job.Status
}

// finish ends an in-place progress line.
func (p *progressPrinter) finish() {
	if p.tty && p.wide > 0 {
		fmt.Fprintln(p.out)
		p.wide = 0
	}
}
