// Package output formats CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// ResolveColors disables colors when NO_COLOR is set or the terminal is dumb.
func ResolveColors(noColorFlag bool) bool {
	if noColorFlag {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func NewPrinter(out, err io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: err, useColors: useColors}
}

func (p *Printer) Out() io.Writer {
	return p.out
}

func (p *Printer) Print(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Success(format string, args ...interface{}) {
	if p.useColors {
		p.colored(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
	}
}

func (p *Printer) Warning(format string, args ...interface{}) {
	if p.useColors {
		p.colored(color.FgYellow).Fprintf(p.err, "⚠ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.err, "[WARN] "+format+"\n", args...)
	}
}

func (p *Printer) Error(format string, args ...interface{}) {
	if p.useColors {
		p.colored(color.FgRed).Fprintf(p.err, "✗ "+format+"\n", args...)
	} else {
		fmt.Fprintf(p.err, "[ERROR] "+format+"\n", args...)
	}
}

func (p *Printer) Header(title string) {
	underline := strings.Repeat("-", len([]rune(title)))
	if p.useColors {
		p.colored(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
		p.colored(color.FgWhite).Fprintf(p.out, "%s\n", underline)
	} else {
		fmt.Fprintf(p.out, "\n%s\n%s\n", title, underline)
	}
}

// Field prints an aligned "label: value" line.
func (p *Printer) Field(label, value string) {
	fmt.Fprintf(p.out, "%-18s %s\n", p.Dim(label+":"), value)
}

func (p *Printer) Bold(text string) string {
	if p.useColors {
		return p.colored(color.Bold).Sprint(text)
	}
	return text
}

func (p *Printer) Dim(text string) string {
	if p.useColors {
		return p.colored(color.Faint).Sprint(text)
	}
	return text
}

// Stars renders a 1-5 rating.
func (p *Printer) Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	stars := strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
	if p.useColors {
		return p.colored(color.FgYellow).Sprint(stars)
	}
	return stars
}

func (p *Printer) JSON(value interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// colored forces escape codes even when stdout is not a terminal; the
// caller already decided colors are wanted.
func (p *Printer) colored(attributes ...color.Attribute) *color.Color {
	c := color.New(attributes...)
	c.EnableColor()
	return c
}
