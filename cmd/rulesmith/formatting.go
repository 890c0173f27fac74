package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/arthur-debert/rulesmith/pkg/distributor"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// styled applies a style only when stdout is a terminal.
func styled(s lipgloss.Style, text string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return text
	}
	return s.Render(text)
}

func renderHeading(text string) string {
	return styled(headingStyle, strings.ToUpper(text))
}

func printWarning(msg string) {
	fmt.Fprintln(os.Stderr, styled(warnStyle, "warning: "+msg))
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, styled(errorStyle, "error: ")+err.Error())
}

// renderSummary formats the sync run report.
func renderSummary(s *distributor.Summary) string {
	var b strings.Builder

	b.WriteString(styled(successStyle, fmt.Sprintf("synced %d rule(s)", s.Rules)))
	b.WriteString(fmt.Sprintf(": %d file(s), %d symlink(s)", s.Files, s.Symlinks))
	if len(s.MCP) > 0 {
		b.WriteString(fmt.Sprintf(", %d mcp output(s)", len(s.MCP)))
	}

	if s.Pruned != nil && (len(s.Pruned.Files) > 0 || len(s.Pruned.Directories) > 0) {
		b.WriteString("\n")
		b.WriteString(styled(dimStyle, fmt.Sprintf("pruned %d stale file(s), %d stale dir(s)",
			len(s.Pruned.Files), len(s.Pruned.Directories))))
	}

	return b.String()
}
