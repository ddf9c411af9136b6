package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette maps field verdicts and the submit control onto colors. Valid and
// Invalid color verdict lines, Checking colors a field waiting on an
// availability answer, and Primary marks an enabled submit button.
type Palette struct {
	Name     string
	Primary  lipgloss.Color
	Accent   lipgloss.Color
	Valid    lipgloss.Color
	Invalid  lipgloss.Color
	Checking lipgloss.Color
	Warning  lipgloss.Color
	Muted    lipgloss.Color
	Text     lipgloss.Color
	Surface  lipgloss.Color
	Border   lipgloss.Color
	Disabled bool
}

const defaultThemeName = "aurora"

// palettes is ordered as ThemeNames lists them; the first is the default.
var palettes = []Palette{
	{Name: "aurora", Primary: "#22D3EE", Accent: "#38BDF8", Valid: "#34D399", Invalid: "#F87171",
		Checking: "#A78BFA", Warning: "#FBBF24", Muted: "#94A3B8", Text: "#E2E8F0", Surface: "#0B1120", Border: "#334155"},
	{Name: "ember", Primary: "#F97316", Accent: "#FACC15", Valid: "#22C55E", Invalid: "#EF4444",
		Checking: "#FDBA74", Warning: "#F59E0B", Muted: "#A8A29E", Text: "#FAFAF9", Surface: "#1C1917", Border: "#57534E"},
	{Name: "mono", Primary: "#F8FAFC", Accent: "#CBD5E1", Valid: "#E2E8F0", Invalid: "#F8FAFC",
		Checking: "#94A3B8", Warning: "#CBD5E1", Muted: "#64748B", Text: "#E2E8F0", Surface: "#0B1220", Border: "#475569"},
	{Name: "meadow", Primary: "#4ADE80", Accent: "#A3E635", Valid: "#86EFAC", Invalid: "#FB7185",
		Checking: "#7DD3FC", Warning: "#FDE047", Muted: "#9CA3AF", Text: "#ECFDF5", Surface: "#0A0F0C", Border: "#365314"},
}

// ThemeNames returns supported palette names.
func ThemeNames() []string {
	names := make([]string, len(palettes))
	for i, p := range palettes {
		names[i] = p.Name
	}
	return names
}

// PaletteByName returns the named palette, or the default for unknown names.
func PaletteByName(name string) Palette {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range palettes {
		if p.Name == name {
			return p
		}
	}
	return palettes[0]
}

// DefaultPalette returns the default theme palette.
func DefaultPalette() Palette {
	return PaletteByName(defaultThemeName)
}
