// Package output prints short status lines for one-shot CLI commands.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Writer prints status lines. Write errors are ignored; this is console
// output.
type Writer struct {
	out   io.Writer
	color bool
}

// New creates a Writer. Color is used only when color is true.
func New(out io.Writer, color bool) *Writer {
	return &Writer{out: out, color: color}
}

func (w *Writer) paint(style lipgloss.Style, s string) string {
	if !w.color {
		return s
	}
	return style.Render(s)
}

// Status prints msg after a marker, or indented when marker is empty.
func (w *Writer) Status(marker, msg string) {
	if marker == "" {
		_, _ = fmt.Fprintf(w.out, "  %s\n", msg)
		return
	}
	_, _ = fmt.Fprintf(w.out, "%s %s\n", marker, msg)
}

// Statusf is Status with formatting.
func (w *Writer) Statusf(marker, format string, args ...any) {
	w.Status(marker, fmt.Sprintf(format, args...))
}

// Success prints msg marked "ok".
func (w *Writer) Success(msg string) {
	w.Status(w.paint(okStyle, "ok"), msg)
}

// Successf is Success with formatting.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints msg marked "warning:".
func (w *Writer) Warning(msg string) {
	w.Status(w.paint(warnStyle, "warning:"), msg)
}

// Warningf is Warning with formatting.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints msg marked "error:".
func (w *Writer) Error(msg string) {
	w.Status(w.paint(errStyle, "error:"), msg)
}

// Field prints an indented "key: value" line with keys padded to width.
func (w *Writer) Field(key string, width int, value any) {
	label := fmt.Sprintf("%-*s", width, key+":")
	_, _ = fmt.Fprintf(w.out, "  %s %v\n", w.paint(keyStyle, label), value)
}

// Code prints content indented between blank lines.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		_, _ = fmt.Fprintf(w.out, "    %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
