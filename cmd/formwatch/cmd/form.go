package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iiroan/formwatch/internal/events"
	"github.com/iiroan/formwatch/internal/pipeline"
	"github.com/iiroan/formwatch/internal/ui"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Open the live sign-up form",
	Long: `Open a terminal sign-up form. Every field is checked as you type:
syntax immediately, availability once the field has been idle for the
debounce interval. Sign up unlocks when every field is valid.

With checker.backend set to store, submitting claims the email and
username so later checks report them as taken.`,
	RunE: runForm,
}

func runForm(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.Close()

	screen := &ui.ProgramSink{}
	var sink pipeline.Sink = screen
	if cfg.Events.Enabled {
		nc, err := events.Connect(cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("publishing verdicts disabled", "error", err)
		} else {
			defer nc.Close()
			sink = pipeline.Fanout{screen, events.NewSink(nc, cfg.Events.Subject, uuid.NewString(), logger)}
		}
	}

	// The form owns the terminal while it runs; engine logs would tear it.
	opts, err := formOptions(cfg, log.New(io.Discard))
	if err != nil {
		return err
	}
	form, err := pipeline.New(be.checker, sink, opts...)
	if err != nil {
		return err
	}

	result, err := ui.RunSignupForm(form, form.Kinds(), screen)
	form.Shutdown()
	if errors.Is(err, ui.ErrNotInteractive) {
		return fmt.Errorf("the sign-up form needs an interactive terminal; use formwatch check instead")
	}
	if err != nil {
		return err
	}

	if !result.Submitted {
		fmt.Println(ui.MutedStyle.Render("Sign-up cancelled."))
		return nil
	}

	var lines []string
	for _, kind := range form.Kinds() {
		value := result.Values[kind]
		lines = append(lines, fmt.Sprintf("%-9s %s", kind.Label(), value))
		if be.store == nil || !kind.Remote() {
			continue
		}
		if err := be.store.Claim(ctx, kind, value); err != nil {
			return fmt.Errorf("claiming %s: %w", kind, err)
		}
		logger.Debug("value claimed", "field", kind.String(), "value", value)
	}

	fmt.Println()
	fmt.Println(ui.SuccessBox.Render("Signed up!\n\n" + strings.Join(lines, "\n")))
	return nil
}

