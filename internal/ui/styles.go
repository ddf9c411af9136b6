// Package ui provides Charm-based UI components for formwatch
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iiroan/formwatch/internal/validate"
)

var (
	// Active palette colors; ApplyPalette replaces them.
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Checking   lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Border     lipgloss.Color

	// Text styles
	Bold         lipgloss.Style
	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	Tagline      lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	MutedStyle   lipgloss.Style
	HintStyle    lipgloss.Style
	HeaderStyle  lipgloss.Style

	// Box styles
	InfoBox    lipgloss.Style
	SuccessBox lipgloss.Style
	ErrorBox   lipgloss.Style

	// Status indicators
	StatusRunning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusPending lipgloss.Style
)

func init() {
	ApplyPalette(DefaultPalette())
}

// ApplyPalette rebuilds every style from p. A disabled palette renders
// without color.
func ApplyPalette(p Palette) {
	if p.Disabled {
		p = Palette{Name: p.Name, Disabled: true}
	}
	Primary, Accent, Checking = p.Primary, p.Accent, p.Checking
	Success, Error, Warning, Muted = p.Valid, p.Invalid, p.Warning, p.Muted
	Background, Foreground, Border = p.Surface, p.Text, p.Border

	Bold = lipgloss.NewStyle().Bold(true)
	Title = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Subtitle = lipgloss.NewStyle().Foreground(Accent).Italic(true)
	Tagline = lipgloss.NewStyle().Foreground(Muted).Italic(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(Error).Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(Muted)
	HintStyle = lipgloss.NewStyle().Foreground(Muted).Italic(true)
	HeaderStyle = lipgloss.NewStyle().
		Foreground(Background).
		Background(Primary).
		Padding(0, 1).
		Bold(true)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		MarginTop(1).
		MarginBottom(1)
	InfoBox = box.BorderForeground(Accent)
	SuccessBox = box.BorderForeground(Success)
	ErrorBox = box.BorderForeground(Error)

	StatusRunning = lipgloss.NewStyle().Foreground(Checking).SetString("●")
	StatusSuccess = lipgloss.NewStyle().Foreground(Success).SetString("✓")
	StatusWarning = lipgloss.NewStyle().Foreground(Warning).SetString("!")
	StatusError = lipgloss.NewStyle().Foreground(Error).SetString("✗")
	StatusPending = lipgloss.NewStyle().Foreground(Muted).SetString("○")
}

// PrimaryStyle returns bold text in the primary color.
func PrimaryStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Primary).Bold(true)
}

// Header renders a screen title bar.
func Header(title string) string {
	return HeaderStyle.Render(strings.ToUpper(title))
}

// Banner returns the formwatch ASCII banner
func Banner() string {
	banner := `
  ┌─┐┌─┐┬─┐┌┬┐┬ ┬┌─┐┌┬┐┌─┐┬ ┬
  ├┤ │ │├┬┘│││││├─┤ │ │  ├─┤
  └  └─┘┴└─┴ ┴└┴┘┴ ┴ ┴ └─┘┴ ┴`
	return PrimaryStyle().Render(banner)
}

// StatusIcon returns the indicator for a report status.
func StatusIcon(s validate.Status) string {
	switch s {
	case validate.StatusSuccess:
		return StatusSuccess.String()
	case validate.StatusWarning:
		return StatusWarning.String()
	case validate.StatusPending:
		return StatusPending.String()
	default:
		return StatusError.String()
	}
}

// FormatItem renders one report line such as "  ✓ Email  x@y.com".
func FormatItem(item validate.Item) string {
	name := fmt.Sprintf("%-9s", item.Name)
	details := item.Details
	switch item.Status {
	case validate.StatusError:
		details = ErrorStyle.Render(details)
	case validate.StatusSuccess:
		details = MutedStyle.Render(details)
	default:
		details = MutedStyle.Render("(" + details + ")")
	}
	return "  " + StatusIcon(item.Status) + " " + Bold.Render(name) + " " + details
}
