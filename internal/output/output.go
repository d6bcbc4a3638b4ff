// Package output renders colored command line output for the playbooks CLI.
package output

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	gray   = color.New(color.FgHiBlack)
	bold   = color.New(color.Bold)
	blue   = color.New(color.FgBlue)

	// Output writers (can be overridden for testing)
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

func init() {
	if os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout) {
		color.NoColor = true
	}
}

// Successf prints a success message with a checkmark
// Example: ✓ Listening on :8080
func Successf(format string, a ...any) {
	_, _ = fmt.Fprintf(Stdout, green.Sprint("✓")+" "+format+"\n", a...)
}

// Infof prints an informational message with an arrow
// Example: → Shutting down
func Infof(format string, a ...any) {
	_, _ = fmt.Fprintf(Stdout, cyan.Sprint("→")+" "+format+"\n", a...)
}

// Warningf prints a warning message with a warning symbol
func Warningf(format string, a ...any) {
	_, _ = fmt.Fprintf(Stdout, yellow.Sprint("⚠")+" "+format+"\n", a...)
}

// Errorf prints an error message with an X symbol to Stderr
// Example: ✗ failed to load configuration
func Errorf(format string, a ...any) {
	_, _ = fmt.Fprintf(Stderr, red.Sprint("✗")+" "+format+"\n", a...)
}

// Header prints a bold header followed by an underline
func Header(text string) {
	_, _ = fmt.Fprintln(Stdout)
	_, _ = fmt.Fprintln(Stdout, bold.Sprint(text))
	_, _ = fmt.Fprintln(Stdout, gray.Sprint(strings.Repeat("─", len([]rune(text)))))
}

// KeyValue prints an indented key-value pair
// Example:   Orchestrator: http://localhost:8170
func KeyValue(key, value string) {
	_, _ = fmt.Fprintf(Stdout, "  %s: %s\n", gray.Sprint(key), value)
}

// Blank prints a blank line
func Blank() {
	_, _ = fmt.Fprintln(Stdout)
}

// Bold returns text in bold
func Bold(text string) string {
	return bold.Sprint(text)
}

// Cyan returns text in cyan
func Cyan(text string) string {
	return cyan.Sprint(text)
}

// Gray returns text in gray
func Gray(text string) string {
	return gray.Sprint(text)
}

// Table prints a simple table with headers
// Example:
// Method  Path
// ──────  ────
// GET     /health
func Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = visibleLen(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && visibleLen(cell) > widths[i] {
				widths[i] = visibleLen(cell)
			}
		}
	}

	for i, h := range headers {
		_, _ = fmt.Fprint(Stdout, pad(bold.Sprint(h), widths[i]))
	}
	_, _ = fmt.Fprintln(Stdout)

	for i := range headers {
		_, _ = fmt.Fprintf(Stdout, "%s  ", gray.Sprint(strings.Repeat("─", widths[i])))
	}
	_, _ = fmt.Fprintln(Stdout)

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				_, _ = fmt.Fprint(Stdout, pad(cell, widths[i]))
			}
		}
		_, _ = fmt.Fprintln(Stdout)
	}
}

// pad left-aligns possibly colored text in a column of width.
func pad(text string, width int) string {
	return text + strings.Repeat(" ", width-visibleLen(text)) + "  "
}

// visibleLen is the length of text without ANSI escape sequences.
func visibleLen(text string) int {
	n, escape := 0, false
	for _, r := range text {
		switch {
		case r == '\x1b':
			escape = true
		case escape:
			if r == 'm' {
				escape = false
			}
		default:
			n++
		}
	}
	return n
}

// MethodBadge returns an HTTP method colored by its effect.
func MethodBadge(method string) string {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		return blue.Sprint(method)
	case http.MethodPost:
		return green.Sprint(method)
	case http.MethodPut, http.MethodPatch:
		return yellow.Sprint(method)
	case http.MethodDelete:
		return red.Sprint(method)
	default:
		return cyan.Sprint(method)
	}
}

// Duration formats a duration in a human-readable way
func Duration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fileInfo, err := f.Stat()
		if err != nil {
			return false
		}
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
