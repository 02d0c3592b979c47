package errors

import (
	"fmt"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func paint(color, s string) string {
	if !colorEnabled {
		return s
	}
	return color + s + colorReset
}

// Format renders an error for terminal display: the coded header, the
// detail, the suggestion, and the documentation link.
func Format(err error) string {
	qe, ok := err.(*QwikError)
	if !ok {
		return err.Error()
	}

	var b strings.Builder

	header := qe.Message
	if qe.Code != "" {
		header = fmt.Sprintf("[%s] %s", qe.Code, qe.Message)
	}
	b.WriteString(paint(colorRed+colorBold, header))
	b.WriteString("\n")

	if qe.Detail != "" {
		b.WriteString("\n")
		b.WriteString(qe.Detail)
		b.WriteString("\n")
	}

	if qe.Wrapped != nil {
		b.WriteString("\n")
		b.WriteString(paint(colorGray, "caused by: "+qe.Wrapped.Error()))
		b.WriteString("\n")
	}

	if qe.Suggestion != "" {
		b.WriteString("\n")
		b.WriteString(paint(colorYellow, "hint: "))
		b.WriteString(qe.Suggestion)
		b.WriteString("\n")
	}

	if qe.DocURL != "" {
		b.WriteString("\n")
		b.WriteString(paint(colorCyan, qe.DocURL))
		b.WriteString("\n")
	}

	return b.String()
}
