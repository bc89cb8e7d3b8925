// Package render provides terminal output helpers for the psybuild CLI:
// Glamour-based markdown rendering for component documentation and a small
// set of lipgloss styles for status messages.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"psybuilder/internal/logger"
)

// Markdown renders markdown documentation for terminal display.
type Markdown struct {
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer with auto-detected terminal styling and a
// default word wrap of 80 columns.
func NewMarkdown() (*Markdown, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Markdown{renderer: renderer}, nil
}

// NewPlainMarkdown creates a renderer that emits plain text without ANSI
// escape sequences. Used when stdout is not a terminal and in tests.
func NewPlainMarkdown() (*Markdown, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("notty"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create plain markdown renderer: %w", err)
	}
	return &Markdown{renderer: renderer}, nil
}

// Render renders markdown content to a terminal-ready string.
func (m *Markdown) Render(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return rendered, nil
}

// RenderWithStyle renders markdown with a specific Glamour style.
// Supported styles include: "auto", "dark", "light", "notty", "ascii".
// Unknown styles fall back to the configured default renderer.
func (m *Markdown) RenderWithStyle(markdown string, style string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		logger.Debug("Failed to create renderer with style, falling back to default", "style", style, "error", err)
		return m.Render(markdown)
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown with style '%s': %w", style, err)
	}
	return rendered, nil
}

// AvailableStyles returns the Glamour styles the CLI accepts.
func AvailableStyles() []string {
	return []string{"auto", "dark", "light", "notty", "ascii"}
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Underline(true)
)

// Success formats a success message for terminal display.
func Success(msg string) string {
	return successStyle.Render(msg)
}

// Error formats an error message for terminal display.
func Error(msg string) string {
	return errorStyle.Render(msg)
}

// Warning formats a warning message for terminal display.
func Warning(msg string) string {
	return warnStyle.Render(msg)
}

// Path formats a file path for terminal display.
func Path(p string) string {
	return pathStyle.Render(p)
}
