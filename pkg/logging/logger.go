package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end of
// a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	// Append the data to our internal buffer.
	w.buffer = append(w.buffer, buffer...)

	// Process all lines in the buffer, tracking the number of bytes that we
	// process.
	var processed int
	remaining := w.buffer
	for {
		// Find the index of the next newline character.
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}

		// Process the line.
		w.callback(string(trimCarriageReturn(remaining[:index])))

		// Update the number of bytes that we've processed.
		processed += index + 1

		// Update the remaining slice.
		remaining = remaining[index+1:]
	}

	// If we managed to process bytes, then truncate our internal buffer.
	if processed > 0 {
		// Compute the number of leftover bytes.
		leftover := len(w.buffer) - processed

		// If there are leftover bytes, then shift them to the front of the
		// buffer.
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}

		// Truncate the buffer.
		w.buffer = w.buffer[:leftover]
	}

	// Done.
	return len(buffer), nil
}

// sink is the shared output target for a logger and all of its subloggers.
type sink struct {
	// lock serializes writes to the underlying logger.
	lock sync.Mutex
	// output is the underlying standard library logger.
	output *log.Logger
	// colorize indicates whether or not warnings and errors should be
	// colorized.
	colorize bool
}

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. It is safe for concurrent
// usage.
type Logger struct {
	// level is the maximum level at which messages are emitted.
	level Level
	// prefix is any prefix specified for the logger.
	prefix string
	// sink is the shared output target.
	sink *sink
}

// NewLogger creates a new root logger that writes messages up to and including
// the specified level to the specified writer. Warnings and errors are
// colorized only if the writer is a terminal.
func NewLogger(level Level, output io.Writer) *Logger {
	// Determine whether or not colorization is appropriate.
	var colorize bool
	if file, ok := output.(*os.File); ok {
		fd := file.Fd()
		colorize = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	// Create the logger.
	return &Logger{
		level: level,
		sink: &sink{
			output:   log.New(output, "", log.LstdFlags),
			colorize: colorize,
		},
	}
}

// Level returns the logger's level. A nil logger reports LevelDisabled.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelDisabled
	}
	return l.level
}

// Sublogger creates a new sublogger with the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	// If the logger is nil, then the sublogger will be as well.
	if l == nil {
		return nil
	}

	// Compute the new prefix.
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}

	// Create the new logger.
	return &Logger{
		level:  l.level,
		prefix: prefix,
		sink:   l.sink,
	}
}

// enabled returns whether or not messages at the specified level should be
// emitted.
func (l *Logger) enabled(level Level) bool {
	return l != nil && level != LevelDisabled && level <= l.level
}

// output is the internal logging method.
func (l *Logger) output(line string) {
	// Add a prefix if necessary.
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}

	// Log.
	l.sink.lock.Lock()
	l.sink.output.Output(4, line)
	l.sink.lock.Unlock()
}

// highlight formats an error or warning line, colorizing it if appropriate.
func (l *Logger) highlight(attribute color.Attribute, label, message string) string {
	if l.sink.colorize {
		return color.New(attribute).Sprintf("%s: %s", label, message)
	}
	return label + ": " + message
}

// Error logs error information with an error prefix and red color.
func (l *Logger) Error(err error) {
	if l.enabled(LevelError) {
		l.output(l.highlight(color.FgRed, "Error", err.Error()))
	}
}

// Errorf logs error information with semantics equivalent to fmt.Printf, an
// error prefix, and red color.
func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.enabled(LevelError) {
		l.output(l.highlight(color.FgRed, "Error", fmt.Sprintf(format, v...)))
	}
}

// Warn logs error information with a warning prefix and yellow color.
func (l *Logger) Warn(err error) {
	if l.enabled(LevelWarn) {
		l.output(l.highlight(color.FgYellow, "Warning", err.Error()))
	}
}

// Warnf logs information with semantics equivalent to fmt.Printf, a warning
// prefix, and yellow color.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.enabled(LevelWarn) {
		l.output(l.highlight(color.FgYellow, "Warning", fmt.Sprintf(format, v...)))
	}
}

// Info logs information with semantics equivalent to fmt.Print.
func (l *Logger) Info(v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(fmt.Sprint(v...))
	}
}

// Infof logs information with semantics equivalent to fmt.Printf.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Debug logs information with semantics equivalent to fmt.Print, but only if
// the debug level is enabled (otherwise it's a no-op).
func (l *Logger) Debug(v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(fmt.Sprint(v...))
	}
}

// Debugf logs information with semantics equivalent to fmt.Printf, but only if
// the debug level is enabled (otherwise it's a no-op).
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Trace logs information with semantics equivalent to fmt.Print, but only if
// the trace level is enabled (otherwise it's a no-op).
func (l *Logger) Trace(v ...interface{}) {
	if l.enabled(LevelTrace) {
		l.output(fmt.Sprint(v...))
	}
}

// Tracef logs information with semantics equivalent to fmt.Printf, but only if
// the trace level is enabled (otherwise it's a no-op).
func (l *Logger) Tracef(format string, v ...interface{}) {
	if l.enabled(LevelTrace) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Writer returns an io.Writer that writes lines at the specified level.
func (l *Logger) Writer(level Level) io.Writer {
	// If the logger is nil or the level is disabled, then we can just discard
	// input since it won't be logged anyway. This saves us the overhead of
	// scanning lines.
	if !l.enabled(level) {
		return io.Discard
	}

	// Create the writer.
	return &writer{
		callback: func(s string) {
			l.output(s)
		},
	}
}
