// Package style holds the colors, line marks and text styles of stitch's
// terminal output.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Violet = lipgloss.Color("#8B5CF6")
	Gray   = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Amber  = lipgloss.Color("#F59E0B")
)

// Mark is the glyph that prefixes a line of output.
type Mark string

// Marks.
const (
	Done   Mark = "✓"
	Failed Mark = "✗"
	Warn   Mark = "!"
	Note   Mark = "~"
	Item   Mark = "→"
)

// Color returns the color m is drawn in.
func (m Mark) Color() lipgloss.Color {
	switch m {
	case Done:
		return Green
	case Failed:
		return Red
	case Warn:
		return Amber
	default:
		return Gray
	}
}

// Width is the number of terminal cells m occupies.
func (m Mark) Width() int {
	return lipgloss.Width(string(m))
}

// Palette binds the styles used by command output to one renderer.
type Palette struct {
	r *lipgloss.Renderer

	Heading lipgloss.Style
	Dim     lipgloss.Style
	Error   lipgloss.Style
}

// NewPalette returns the styles for r.
func NewPalette(r *lipgloss.Renderer) Palette {
	return Palette{
		r:       r,
		Heading: r.NewStyle().Foreground(Violet).Bold(true),
		Dim:     r.NewStyle().Foreground(Gray),
		Error:   r.NewStyle().Foreground(Red),
	}
}

// Prefix renders m in its color followed by msg.
func (p Palette) Prefix(m Mark, msg string) string {
	return p.r.NewStyle().Foreground(m.Color()).Render(string(m)) + " " + msg
}
