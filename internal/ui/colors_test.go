package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestPaletteByName(t *testing.T) {
	assert.Equal(t, []string{"aurora", "ember", "mono", "meadow"}, ThemeNames())
	assert.Equal(t, "ember", PaletteByName(" Ember ").Name)
	assert.Equal(t, defaultThemeName, PaletteByName("neon").Name)
}

func TestApplyPaletteMapsVerdictColors(t *testing.T) {
	t.Cleanup(func() { ApplyPalette(DefaultPalette()) })

	p := PaletteByName("meadow")
	ApplyPalette(p)
	assert.Equal(t, p.Valid, Success)
	assert.Equal(t, p.Invalid, Error)
	assert.Equal(t, p.Checking, Checking)

	p.Disabled = true
	ApplyPalette(p)
	assert.Equal(t, lipgloss.Color(""), Success)
	assert.Equal(t, lipgloss.Color(""), Primary)
}
