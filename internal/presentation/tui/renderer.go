package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return "", fmt.Errorf("markdown renderer unavailable: %w", err)
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// RenderCode renders source as a highlighted fenced block of the given language.
func RenderCode(language, source string) (string, error) {
	fence := "```"
	for strings.Contains(source, fence) {
		fence += "`"
	}
	markdown := fmt.Sprintf("%s%s\n%s\n%s\n", fence, language, strings.TrimRight(source, "\n"), fence)
	return NewRenderer()(markdown)
}
