package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.trai.ch/stitch/internal/app"
	"go.trai.ch/stitch/internal/ui/output"
	"go.trai.ch/stitch/internal/ui/style"
)

// printer writes styled command results.
type printer struct {
	w       io.Writer
	palette style.Palette
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, palette: style.NewPalette(output.Renderer(w))}
}

func (p *printer) ok(msg string) {
	_, _ = fmt.Fprintln(p.w, p.palette.Prefix(style.Done, msg))
}

func (p *printer) fail(msg string) {
	_, _ = fmt.Fprintln(p.w, p.palette.Prefix(style.Failed, msg))
}

func (p *printer) note(msg string) {
	_, _ = fmt.Fprintln(p.w, p.palette.Dim.Render(string(style.Note)+" "+msg))
}

// report prints a one-line summary of a render pass followed by the slowest
// documents, if any were recorded.
func (p *printer) report(r *app.Report) {
	if r == nil {
		return
	}

	parts := []string{
		fmt.Sprintf("%d expanded", r.Expanded),
		fmt.Sprintf("%d copied", r.Copied),
		fmt.Sprintf("%d unchanged", r.Unchanged),
	}
	if r.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", r.Failed))
		p.fail(strings.Join(parts, ", "))
	} else {
		p.ok(strings.Join(parts, ", "))
	}

	if len(r.Timings) == 0 {
		return
	}
	_, _ = fmt.Fprintln(p.w, p.palette.Heading.Render("Slowest documents"))
	for _, t := range r.Timings {
		line := fmt.Sprintf("  %s %10s  %s", style.Item, t.Duration.Round(time.Microsecond), t.Document)
		if t.Failed {
			_, _ = fmt.Fprintln(p.w, p.palette.Error.Render(line))
			continue
		}
		_, _ = fmt.Fprintln(p.w, p.palette.Dim.Render(line))
	}
}
