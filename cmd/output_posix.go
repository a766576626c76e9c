//go:build !windows

package cmd

const (
	// statusLineFormat is the format string to use for status line printing. On
	// POSIX systems, messages are truncated and padded to exactly 80
	// characters, the minimum width of a VT100 terminal.
	statusLineFormat = "\r%-80.80s"
	// statusLineClearFormat is the format string to use for printing an empty
	// string to clear the status line.
	statusLineClearFormat = statusLineFormat + "\r"
)
