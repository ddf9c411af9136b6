package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/iiroan/formwatch/internal/config"
	"github.com/iiroan/formwatch/internal/ui"
	"github.com/iiroan/formwatch/internal/version"
)

var (
	verbose  bool
	quiet    bool
	noColor  bool
	cfgFile  string
	envFiles []string
	logger   *log.Logger
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "formwatch",
	Short: "Validate sign-up fields as they are typed",
	Long: ui.Banner() + `
formwatch checks email, username and phone fields while they are
edited: syntax first, then a debounced availability lookup that is
cancelled as soon as the field changes again.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if err := config.LoadDotEnv(envFiles...); err != nil {
			logger.Warn("could not load env file", "error", err)
		}

		path := configPath()
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		cfg = loaded

		applyUISettings()
		setupLogger()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runRootTUI()
		}
		return cmd.Help()
	},
}

var rootMenuItems = []ui.MenuItem{
	{ID: "form", TitleText: "Sign-up Form", Details: "Type into the form and watch each field get checked live"},
	{ID: "check", TitleText: "Check Values", Details: "Enter values once and get a full availability report"},
	{ID: "settings", TitleText: "Settings", Details: "Tune debounce, checker backend, store, and theme"},
	{ID: "exit", TitleText: "Exit", Details: "Close formwatch"},
}

func runRootTUI() error {
	for {
		// A bad field list is reported when the form starts; the launcher
		// just leaves the panel section out.
		kinds, _ := cfg.Kinds()
		choice, err := ui.RunMenu("FORMWATCH", "Choose an action to continue.", rootMenuItems,
			ui.WithFields(kinds...),
			ui.WithInfo("Checker", cfg.Checker.Backend),
			ui.WithInfo("Store", cfg.Store.Backend),
			ui.WithInfo("Debounce", cfg.Form.Debounce.String()),
		)
		if err != nil {
			return runRootFallback()
		}

		if choice == ui.MenuActionQuit || choice == "exit" || choice == "" {
			return nil
		}

		if err := runRootChoice(choice); err != nil {
			if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, ui.ErrCanceled) {
				continue
			}
			if errors.Is(err, errChecksFailed) {
				_ = waitForEnter("Press enter to return to the menu")
				continue
			}
			return err
		}

		if err := waitForEnter("Press enter to return to the menu"); err != nil {
			return err
		}
	}
}

func runRootChoice(choice string) error {
	switch choice {
	case "form":
		return formCmd.RunE(formCmd, []string{})
	case "check":
		return runInteractiveCheck()
	case "settings":
		return settingsCmd.RunE(settingsCmd, []string{})
	default:
		return nil
	}
}

func runRootFallback() error {
	ui.StartScreen("FORMWATCH", "Choose an action to continue.")
	var choice string
	err := huh.NewSelect[string]().
		Title("formwatch").
		Description("What would you like to do?").
		Options(
			huh.NewOption("Sign-up Form", "form"),
			huh.NewOption("Check Values", "check"),
			huh.NewOption("Settings", "settings"),
			huh.NewOption("Exit", "exit"),
		).
		Value(&choice).
		WithTheme(ui.HuhTheme()).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}
	return runRootChoice(choice)
}

func waitForEnter(prompt string) error {
	if !ui.IsInteractiveTerminal() {
		return nil
	}
	fmt.Println()
	fmt.Println(ui.HintStyle.Render(prompt))
	reader := bufio.NewReader(os.Stdin)
	_, err := reader.ReadString('\n')
	return err
}

// Execute runs the root command and reports any error it returns.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errChecksFailed) {
		if logger == nil {
			setupLogger()
		}
		logger.Error(err.Error())
	}
	return err
}

func init() {
	rootCmd.Version = version.Get().Short()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file, YAML or TOML (default: $FORMWATCH_CONFIG or the user config dir)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Env files to load before reading config (default: .env)")

	rootCmd.AddCommand(formCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func applyUISettings() {
	if cfg == nil {
		ui.ApplyPreferences(ui.Preferences{NoColor: noColor})
		return
	}
	ui.ApplyPreferences(ui.Preferences{
		Theme:   cfg.UI.Theme,
		Dense:   cfg.UI.Dense,
		NoColor: cfg.UI.NoColor || noColor,
	})
}

func setupLogger() {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.WarnLevel
	}

	styles := log.DefaultStyles()
	if !noColor && os.Getenv("NO_COLOR") == "" {
		styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
			SetString("DEBUG").
			Foreground(ui.Muted).
			Bold(true)
		styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
			SetString("INFO").
			Foreground(ui.Primary).
			Bold(true)
		styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
			SetString("WARN").
			Foreground(ui.Warning).
			Bold(true)
		styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
			SetString("ERROR").
			Foreground(ui.Error).
			Bold(true)
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: verbose,
		TimeFormat:      time.Kitchen,
		Level:           level,
	})
	logger.SetStyles(styles)
}
