package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"
)

// newHuhBackOnQKeyMap keeps default Huh bindings and adds q as a quit/back key.
func newHuhBackOnQKeyMap() *huh.KeyMap {
	keyMap := huh.NewDefaultKeyMap()
	keyMap.Quit = key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "back"),
	)
	return keyMap
}

// positiveDuration validates huh inputs such as "800ms". Empty is allowed
// when optional is set.
func positiveDuration(optional bool) func(string) error {
	return func(value string) error {
		if value == "" && optional {
			return nil
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("enter a duration such as 800ms or 2s")
		}
		if d <= 0 {
			return fmt.Errorf("duration must be positive")
		}
		return nil
	}
}
