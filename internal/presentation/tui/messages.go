package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Printer writes user-facing status lines. Colors are dropped automatically
// when the destination is not a terminal.
type Printer struct {
	out *termenv.Output
	err *termenv.Output
}

// NewPrinter returns a Printer writing successes to stdout and the rest to stderr.
func NewPrinter(stdout, stderr io.Writer) *Printer {
	return &Printer{
		out: termenv.NewOutput(stdout),
		err: termenv.NewOutput(stderr),
	}
}

// Success prints a green confirmation on stdout.
func (p *Printer) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.out, p.out.String(msg).Foreground(p.out.Color("#22c55e")))
}

// Error prints a red message on stderr.
func (p *Printer) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.err, p.err.String(msg).Foreground(p.err.Color("#ef4444")))
}

// Log prints a plain informational line on stderr.
func (p *Printer) Log(format string, args ...any) {
	fmt.Fprintln(p.err, fmt.Sprintf(format, args...))
}

// Highlight renders name in the accent color used for created environments.
func (p *Printer) Highlight(name string) string {
	return p.out.String(name).Foreground(p.out.Color("#22c55e")).String()
}

// Stdout returns the raw stdout writer.
func (p *Printer) Stdout() io.Writer {
	return p.out
}

// Stderr returns the raw stderr writer.
func (p *Printer) Stderr() io.Writer {
	return p.err
}
