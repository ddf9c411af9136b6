package ui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// HuhTheme returns the settings and fallback form theme for the active
// palette. Validation errors share the Error color with live form verdicts.
func HuhTheme() *huh.Theme {
	t := huh.ThemeBase()
	if CurrentPreferences.NoColor {
		return t
	}
	paintFields(&t.Focused, true)
	paintFields(&t.Blurred, false)
	return t
}

// paintFields colors one huh field state. Only the focused field gets a
// border, navigation arrows and a highlighted title.
func paintFields(fs *huh.FieldStyles, focused bool) {
	title := Foreground
	if focused {
		title = Primary
	}
	fs.Title = fs.Title.Foreground(title).Bold(focused)
	fs.NoteTitle = fs.NoteTitle.Foreground(title).Bold(true)
	fs.Description = fs.Description.Foreground(Muted)

	fs.ErrorIndicator = fs.ErrorIndicator.Foreground(Error).SetString(" ✗")
	fs.ErrorMessage = fs.ErrorMessage.Foreground(Error)

	for _, s := range []*lipgloss.Style{&fs.SelectSelector, &fs.MultiSelectSelector, &fs.SelectedOption, &fs.SelectedPrefix} {
		*s = s.Foreground(Accent)
	}
	fs.Option = fs.Option.Foreground(Foreground)
	fs.UnselectedOption = fs.UnselectedOption.Foreground(Foreground)
	fs.UnselectedPrefix = fs.UnselectedPrefix.Foreground(Muted)

	fs.TextInput.Cursor = fs.TextInput.Cursor.Foreground(Checking)
	fs.TextInput.Placeholder = fs.TextInput.Placeholder.Foreground(Muted)
	fs.TextInput.Prompt = fs.TextInput.Prompt.Foreground(Accent)
	fs.TextInput.Text = fs.TextInput.Text.Foreground(Foreground)

	fs.FocusedButton = fs.FocusedButton.Foreground(Background).Background(Primary).Bold(true)
	fs.BlurredButton = fs.BlurredButton.Foreground(Muted).Background(lipgloss.Color(""))

	if !focused {
		fs.Base = fs.Base.BorderStyle(lipgloss.HiddenBorder())
		fs.NextIndicator = lipgloss.NewStyle()
		fs.PrevIndicator = lipgloss.NewStyle()
		return
	}
	fs.Base = fs.Base.BorderForeground(Border)
	fs.NextIndicator = fs.NextIndicator.Foreground(Accent)
	fs.PrevIndicator = fs.PrevIndicator.Foreground(Accent)
}
