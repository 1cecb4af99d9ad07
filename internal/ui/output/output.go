// Package output picks the color profile for the writers stitch prints to.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ProfileFor returns the color profile for w. NO_COLOR and writers that are
// not terminals get Ascii.
func ProfileFor(w io.Writer) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

// New returns a termenv.Output for w. A nil w writes to stderr.
func New(w io.Writer) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(ProfileFor(w)))
}

// Renderer returns a lipgloss renderer for w with the profile from ProfileFor.
func Renderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(ProfileFor(w))
	return r
}
