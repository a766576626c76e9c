package cmd

const (
	// statusLineFormat is the format string to use for status line printing. On
	// Windows, messages are limited to 79 characters because carriage return
	// wipes don't work once the cursor has reached the last column of an
	// 80-column console.
	statusLineFormat = "\r%-79.79s"
	// statusLineClearFormat is the format string to use for printing an empty
	// string to clear the status line.
	statusLineClearFormat = statusLineFormat + "\r"
)
