package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/BayFX/omtsf-sub000/internal/validation"
)

// ansiColor wraps s in an ANSI color code, but only when stdout is a
// terminal — text piped to a file or another process stays plain.
func ansiColor(code, s string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func severityColor(sev validation.Severity, s string) string {
	switch sev {
	case validation.SeverityError:
		return ansiColor("31", s)
	case validation.SeverityWarning:
		return ansiColor("33", s)
	default:
		return ansiColor("36", s)
	}
}

func outputFormat(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString("format")
	if f == "" {
		if cfg != nil && cfg.OutputFormat != "" {
			return cfg.OutputFormat
		}
		return "json"
	}
	return f
}
