// Package ui holds the presentation pieces shared by the API and the CLI: the
// role-dependent site navigation and terminal styling.
package ui

import "fmt"

// ANSI256 color codes.
const (
	colorAccent = 74  // blue
	colorDM     = 173 // orange
	colorMuted  = 245 // medium gray
	colorError  = 167 // red
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent styles headings and names.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted styles secondary detail such as timestamps and paths.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderDM marks dungeon-master-only content.
func RenderDM(s string) string { return paint(colorDM, s) }

// RenderError styles failures.
func RenderError(s string) string { return paint(colorError, s) }

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
