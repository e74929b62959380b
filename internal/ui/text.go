package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text. Without color the prefix
// and suffix stand in for it.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

// EnsureNewline ensures the string ends with a newline character.
func EnsureNewline(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s + "\n"
	}
	return s
}

func noColor() bool {
	// https://no-color.org/
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

// Markers that lead status lines.
const (
	MarkDone    = "✓"
	MarkFailed  = "✗"
	MarkCaution = "⚠"
	MarkHint    = "→"
)

// Semantic formatters for tunnelrelay output.
var (
	// Code is a command the user can run. `backticks` without color.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path is a settings, export or preferences file.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Flag is a CLI flag such as --service-bus-url.
	Flag = Formatter{color.New(color.FgYellow), "", ""}

	Success = Formatter{color.New(color.FgGreen), "", ""}
	Error   = Formatter{color.New(color.FgRed), "", ""}
	Warning = Formatter{color.New(color.FgYellow), "", ""}
	Info    = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight is a user value: relay host, connection name, plugin id.
	// 'single quotes' without color.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Label is a field name in settings listings.
	Label = Formatter{color.New(color.Bold), "", ""}

	// Muted is secondary text. (parentheses) without color.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}

	// Sealed marks the presence of a protected value without showing it.
	// [brackets] without color.
	Sealed = Formatter{color.New(color.FgMagenta), "[", "]"}
)

// Done renders a success status line.
func Done(message string) string {
	return Success.Sprint(MarkDone) + " " + message
}

// Failed renders an error status line.
func Failed(message string) string {
	return Error.Sprint(MarkFailed) + " " + message
}

// Caution renders a warning status line.
func Caution(message string) string {
	return Warning.Sprint(MarkCaution) + " " + message
}

// Hint renders a follow-up suggestion line.
func Hint(message string) string {
	return Info.Sprint(MarkHint) + " " + message
}

// KeyState describes whether a shared key is stored. The key itself is never
// rendered.
func KeyState(stored bool) string {
	if stored {
		return Sealed.Sprint("sealed")
	}
	return Muted.Sprint("not set")
}
