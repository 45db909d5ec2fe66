package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	out     io.Writer = os.Stdout
	isTTY   bool
	verbose bool

	cyan   = lipgloss.Color("6")
	green  = lipgloss.Color("2")
	red    = lipgloss.Color("1")
	yellow = lipgloss.Color("3")
	dim    = lipgloss.Color("8")

	// Styles - exported for use in other packages
	Primary = lipgloss.NewStyle().Foreground(cyan)
	Success = lipgloss.NewStyle().Foreground(green)
	Error   = lipgloss.NewStyle().Foreground(red)
	Warning = lipgloss.NewStyle().Foreground(yellow)
	Dim     = lipgloss.NewStyle().Foreground(dim)
	Bold    = lipgloss.NewStyle().Bold(true)
)

func init() {
	isTTY = term.IsTerminal(int(os.Stdout.Fd()))
	if !isTTY {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// SetOutput redirects all output. Anything but os.Stdout is treated as a
// non-terminal: no colors, no spinner.
func SetOutput(w io.Writer) {
	out = w
	isTTY = w == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
	if !isTTY {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// SetVerbose enables/disables verbose mode
func SetVerbose(v bool) {
	verbose = v
}

func IsVerbose() bool {
	return verbose
}

// IsTTY returns whether output goes to a terminal
func IsTTY() bool {
	return isTTY
}

// Step prints a step indicator: [1/3] Loading config
func Step(num, total int, msg string) {
	prefix := Dim.Render(fmt.Sprintf("[%d/%d]", num, total))
	fmt.Fprintf(out, "%s %s\n", prefix, msg)
}

// Detail prints indented secondary info with arrow
func Detail(msg string) {
	fmt.Fprintf(out, "  %s %s\n", Dim.Render("→"), msg)
}

// Verbosef prints a formatted message only in verbose mode
func Verbosef(format string, a ...any) {
	if verbose {
		fmt.Fprintf(out, "  %s %s\n", Dim.Render("→"), Dim.Render(fmt.Sprintf(format, a...)))
	}
}

// CommandLine prints a command the way a shell prompt would show it
func CommandLine(line string) {
	fmt.Fprintf(out, "%s %s\n", Dim.Render("$"), line)
}

// SuccessMsg prints a success message with checkmark
func SuccessMsg(msg string) {
	fmt.Fprintf(out, "%s %s\n", Success.Render("✓"), msg)
}

// ErrorMsg prints an error with formatting and optional hints
func ErrorMsg(title string, err error, hints ...string) {
	fmt.Fprintf(out, "%s %s\n", Error.Render("✗"), title)
	if err != nil {
		fmt.Fprintf(out, "  %s\n", Dim.Render(err.Error()))
	}
	for _, hint := range hints {
		fmt.Fprintf(out, "  %s %s\n", Dim.Render("Hint:"), hint)
	}
}

// WarnMsg prints a warning message
func WarnMsg(msg string) {
	fmt.Fprintf(out, "%s %s\n", Warning.Render("!"), msg)
}

// FormatDuration formats duration nicely (e.g., "234ms" or "1.2s")
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func Println(a ...any) {
	fmt.Fprintln(out, a...)
}

func Printf(format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}
