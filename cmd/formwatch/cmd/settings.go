package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/iiroan/formwatch/internal/config"
	"github.com/iiroan/formwatch/internal/ui"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Configure debounce, checker, store, and display",
	RunE:  runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	next := *cfg

	debounceInput := next.Form.Debounce.String()
	fields := append([]string(nil), next.Form.Fields...)

	backend := next.Checker.Backend
	checkerURL := next.Checker.URL
	timeoutInput := next.Checker.Timeout.String()

	storeBackend := next.Store.Backend
	redisAddr := next.Store.Redis.Addr
	sqlDriver := next.Store.SQL.Driver
	sqlDSN := next.Store.SQL.DSN

	theme := next.UI.Theme
	if theme == "" {
		theme = ui.CurrentPreferences.Theme
	}
	dense := next.UI.Dense
	noColorPref := next.UI.NoColor

	themeOptions := make([]huh.Option[string], 0, len(ui.ThemeNames()))
	for _, name := range ui.ThemeNames() {
		themeOptions = append(themeOptions, huh.NewOption(name, name))
	}

	changed := false
	ui.StartScreen("SETTINGS", "Select a settings section to edit")

	for {
		choice, err := ui.RunMenu("SETTINGS", "Select a settings section", []ui.MenuItem{
			{ID: "form", TitleText: "Form", Details: "Fields shown and how long typing must pause before a check"},
			{ID: "checker", TitleText: "Availability Checker", Details: "Random demo answers, a claims store, or a remote service"},
			{ID: "store", TitleText: "Claims Store", Details: "Memory, Redis, or SQL storage for claimed values"},
			{ID: "ui", TitleText: "Display", Details: "Theme, layout density, and color mode"},
			{ID: "save", TitleText: "Save & Exit", Details: "Write updates to " + configPath()},
			{ID: "exit", TitleText: "Exit", Details: "Leave without saving"},
		}, ui.WithBackNavigation("Back"))
		if err != nil {
			return err
		}

		var form *huh.Form
		switch choice {
		case ui.MenuActionBack, ui.MenuActionQuit, "exit":
			return nil
		case "save":
			if !changed {
				return nil
			}
			return saveSettings(&next, settingsInput{
				debounce: debounceInput,
				fields:   fields,
				backend:  backend,
				url:      checkerURL,
				timeout:  timeoutInput,
				store:    storeBackend,
				redis:    redisAddr,
				driver:   sqlDriver,
				dsn:      sqlDSN,
				theme:    theme,
				dense:    dense,
				noColor:  noColorPref,
			})
		case "form":
			form = huh.NewForm(
				huh.NewGroup(
					huh.NewMultiSelect[string]().
						Title("Fields").
						Description("Fields shown on the sign-up form").
						Options(
							huh.NewOption("Email", "email"),
							huh.NewOption("Username", "username"),
							huh.NewOption("Phone", "phone"),
						).
						Value(&fields).
						Validate(func(v []string) error {
							if len(v) == 0 {
								return fmt.Errorf("select at least one field")
							}
							return nil
						}),
					huh.NewInput().
						Title("Debounce").
						Description("Idle time after the last keystroke before a field is checked").
						Placeholder("800ms").
						Value(&debounceInput).
						Validate(positiveDuration(false)),
				),
			)
		case "checker":
			form = huh.NewForm(
				huh.NewGroup(
					huh.NewSelect[string]().
						Title("Backend").
						Description("Where availability answers come from").
						Options(
							huh.NewOption("Random (demo)", "random"),
							huh.NewOption("Claims store", "store"),
							huh.NewOption("Remote formwatch service", "http"),
						).
						Value(&backend),
					huh.NewInput().
						Title("Service URL").
						Description("Base URL of formwatch serve; used by the remote backend").
						Placeholder("http://localhost:8080").
						Value(&checkerURL),
					huh.NewInput().
						Title("Timeout").
						Description("Longest a single availability lookup may take").
						Placeholder("5s").
						Value(&timeoutInput).
						Validate(positiveDuration(false)),
				),
			)
		case "store":
			form = huh.NewForm(
				huh.NewGroup(
					huh.NewSelect[string]().
						Title("Store").
						Options(
							huh.NewOption("In memory", "memory"),
							huh.NewOption("Redis", "redis"),
							huh.NewOption("SQL", "sql"),
						).
						Value(&storeBackend),
					huh.NewInput().
						Title("Redis Address").
						Placeholder("localhost:6379").
						Value(&redisAddr),
					huh.NewSelect[string]().
						Title("SQL Driver").
						Options(
							huh.NewOption("SQLite", "sqlite3"),
							huh.NewOption("PostgreSQL", "postgres"),
						).
						Value(&sqlDriver),
					huh.NewInput().
						Title("SQL DSN").
						Description("File path for SQLite, connection string for PostgreSQL").
						Value(&sqlDSN),
				),
			)
		case "ui":
			form = huh.NewForm(
				huh.NewGroup(
					huh.NewSelect[string]().
						Title("Theme").
						Options(themeOptions...).
						Value(&theme),
					huh.NewConfirm().
						Title("Dense Layout").
						Description("Reduce vertical spacing in the TUI").
						Value(&dense),
					huh.NewConfirm().
						Title("Disable Colors").
						Description("Use monochrome output").
						Value(&noColorPref),
				),
			)
		default:
			return nil
		}

		if err := form.WithTheme(ui.HuhTheme()).WithKeyMap(newHuhBackOnQKeyMap()).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue
			}
			return err
		}
		changed = true
	}
}

type settingsInput struct {
	debounce string
	fields   []string
	backend  string
	url      string
	timeout  string
	store    string
	redis    string
	driver   string
	dsn      string
	theme    string
	dense    bool
	noColor  bool
}

// apply copies the wizard answers onto c.
func (in settingsInput) apply(c *config.Config) error {
	debounce, err := time.ParseDuration(in.debounce)
	if err != nil {
		return fmt.Errorf("invalid debounce: %w", err)
	}
	timeout, err := time.ParseDuration(in.timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	c.Form.Fields = in.fields
	c.Form.Debounce = config.Duration{Duration: debounce}
	c.Checker.Backend = in.backend
	c.Checker.URL = strings.TrimSpace(in.url)
	c.Checker.Timeout = config.Duration{Duration: timeout}
	c.Store.Backend = in.store
	c.Store.Redis.Addr = strings.TrimSpace(in.redis)
	c.Store.SQL.Driver = in.driver
	c.Store.SQL.DSN = strings.TrimSpace(in.dsn)
	c.UI = config.UIConfig{Theme: in.theme, Dense: in.dense, NoColor: in.noColor}
	return nil
}

func saveSettings(next *config.Config, in settingsInput) error {
	if err := in.apply(next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}

	path := configPath()
	if err := next.Save(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cfg = next
	applyUISettings()

	fmt.Println()
	fmt.Println(ui.SuccessBox.Render("Settings saved to " + path))
	return nil
}
