package output_test

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stitch/internal/ui/output"
)

func TestProfileFor(t *testing.T) {
	t.Run("no color", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		assert.Equal(t, termenv.Ascii, output.ProfileFor(&bytes.Buffer{}))
	})

	t.Run("not a terminal", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		t.Setenv("CLICOLOR_FORCE", "")
		assert.Equal(t, termenv.Ascii, output.ProfileFor(&bytes.Buffer{}))
	})
}

func TestNew_WritesPlainText(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	out := output.New(&buf)

	_, err := out.WriteString(out.String("hello").Foreground(termenv.RGBColor("#FF0000")).String())
	require.NoError(t, err)
	assert.Equal(t, "hello", buf.String())
}

func TestNew_NilWriter(t *testing.T) {
	assert.NotNil(t, output.New(nil))
}

func TestRenderer(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := output.Renderer(&bytes.Buffer{})
	s := r.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	assert.Equal(t, "plain", s.Render("plain"))
}
