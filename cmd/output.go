package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// StatusLinePrinter prints a dynamically updating status line to the console.
// It supports colorized printing.
type StatusLinePrinter struct {
	// UseStandardError causes the printer to use standard error for its output
	// instead of standard output (the default).
	UseStandardError bool
	// nonEmpty indicates whether or not the printer has printed any content to
	// the status line since it was last cleared.
	nonEmpty bool
}

// output returns the color-aware output stream for the printer.
func (p *StatusLinePrinter) output() io.Writer {
	if p.UseStandardError {
		return color.Error
	}
	return color.Output
}

// Print prints a message to the status line, overwriting any existing content.
// Messages are truncated or padded to a platform-dependent width so that the
// previous content is fully overwritten.
func (p *StatusLinePrinter) Print(message string) {
	fmt.Fprintf(p.output(), statusLineFormat, message)
	p.nonEmpty = true
}

// Clear wipes any content on the status line and moves the cursor back to the
// beginning of the line. It's a no-op if the status line is empty.
func (p *StatusLinePrinter) Clear() {
	if !p.nonEmpty {
		return
	}
	fmt.Fprintf(p.output(), statusLineClearFormat, "")
	p.nonEmpty = false
}

// BreakIfNonEmpty prints a newline character if the current line is non-empty.
func (p *StatusLinePrinter) BreakIfNonEmpty() {
	if p.nonEmpty {
		fmt.Fprintln(p.output())
		p.nonEmpty = false
	}
}
