package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlainMarkdown_RendersWithoutANSI(t *testing.T) {
	m, err := NewPlainMarkdown()
	require.NoError(t, err)

	out, err := m.Render("# Heading\n\nSome *emphasized* text.")
	require.NoError(t, err)

	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "emphasized")
	assert.NotContains(t, out, "\x1b[", "notty style should not emit escape sequences")
}

func TestMarkdown_Render_EmptyContent(t *testing.T) {
	m, err := NewPlainMarkdown()
	require.NoError(t, err)

	_, err = m.Render("   \n\t")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestMarkdown_RenderWithStyle(t *testing.T) {
	m, err := NewPlainMarkdown()
	require.NoError(t, err)

	out, err := m.RenderWithStyle("**bold**", "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "bold")
}

func TestAvailableStyles(t *testing.T) {
	styles := AvailableStyles()
	assert.Contains(t, styles, "auto")
	assert.Contains(t, styles, "notty")
}

func TestStatusStyles_ContainMessage(t *testing.T) {
	for _, tc := range []struct {
		name string
		fn   func(string) string
	}{
		{"success", Success},
		{"error", Error},
		{"warning", Warning},
		{"path", Path},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out := tc.fn("message text")
			assert.True(t, strings.Contains(out, "message text"))
		})
	}
}
