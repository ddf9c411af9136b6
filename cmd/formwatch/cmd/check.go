package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iiroan/formwatch/internal/avail"
	"github.com/iiroan/formwatch/internal/ci"
	"github.com/iiroan/formwatch/internal/ui"
	"github.com/iiroan/formwatch/internal/validate"
)

// errChecksFailed is returned after a failing report has been printed.
var errChecksFailed = errors.New("one or more fields failed")

var (
	checkEmail    string
	checkUsername string
	checkPhone    string
	checkJSON     bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check field values once",
	Long: `Check values without the live form: syntax first, then availability
for fields that passed. Exits non-zero when any field fails.

Under GitHub Actions failures are also reported as annotations, a step
summary, and a "valid" step output.

Examples:
  formwatch check --email x@y.com --username newuser
  formwatch check --phone 9876543210 --json`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkEmail, "email", "", "Email address to check")
	checkCmd.Flags().StringVar(&checkUsername, "username", "", "Username to check")
	checkCmd.Flags().StringVar(&checkPhone, "phone", "", "Phone number to check")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print verdicts as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	values := map[validate.Kind]string{}
	for name, kind := range map[string]validate.Kind{
		"email":    validate.Email,
		"username": validate.Username,
		"phone":    validate.Phone,
	} {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetString(name)
			values[kind] = v
		}
	}
	if len(values) == 0 {
		return fmt.Errorf("nothing to check; pass --email, --username or --phone")
	}
	return checkValues(commandContext(cmd), values)
}

// runInteractiveCheck asks for values with huh, then runs the same check.
func runInteractiveCheck() error {
	kinds, err := cfg.Kinds()
	if err != nil {
		return err
	}
	inputs := make(map[validate.Kind]*string, len(kinds))
	fields := make([]huh.Field, 0, len(kinds))
	for _, kind := range kinds {
		kind := kind
		value := new(string)
		inputs[kind] = value
		fields = append(fields, huh.NewInput().
			Title(kind.Label()).
			Description("Leave empty to skip").
			Value(value).
			Validate(func(s string) error {
				if s == "" {
					return nil
				}
				if res := validate.Syntax(kind, s); !res.Valid {
					return errors.New(res.Reason)
				}
				return nil
			}))
	}

	ui.StartScreen("CHECK VALUES", "Syntax is checked as you type; availability after you confirm.")
	form := huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(ui.HuhTheme()).
		WithKeyMap(newHuhBackOnQKeyMap())
	if err := form.Run(); err != nil {
		return err
	}

	values := map[validate.Kind]string{}
	for kind, v := range inputs {
		if *v != "" {
			values[kind] = *v
		}
	}
	if len(values) == 0 {
		fmt.Println(ui.MutedStyle.Render("Nothing to check."))
		return nil
	}
	return checkValues(context.Background(), values)
}

// fieldCheck is one field's value and final verdict.
type fieldCheck struct {
	Kind   validate.Kind
	Value  string
	Result validate.Result[string]
}

func checkValues(ctx context.Context, values map[validate.Kind]string) error {
	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.Close()

	var checks []fieldCheck
	if checkJSON || !ui.IsInteractiveTerminal() {
		checks, err = checkFields(ctx, be.checker, values)
	} else {
		err = ui.RunWithSpinner(ctx, "Checking availability", func(ctx context.Context) error {
			var err error
			checks, err = checkFields(ctx, be.checker, values)
			return err
		})
	}
	if err != nil {
		return err
	}

	report := buildReport(checks)
	publishCI(ci.Detect(), report)

	if checkJSON {
		verdicts := make([]avail.Verdict, 0, len(checks))
		for _, c := range checks {
			verdicts = append(verdicts, avail.VerdictFrom(c.Kind, c.Result))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(verdicts); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if !report.OK() {
		return errChecksFailed
	}
	return nil
}

// checkFields runs syntax checks in field order, then the availability
// lookups for the fields that passed, concurrently.
func checkFields(ctx context.Context, checker avail.Checker, values map[validate.Kind]string) ([]fieldCheck, error) {
	var checks []fieldCheck
	for _, kind := range validate.Kinds() {
		value, ok := values[kind]
		if !ok {
			continue
		}
		checks = append(checks, fieldCheck{Kind: kind, Value: value, Result: validate.Syntax(kind, value)})
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range checks {
		c := &checks[i]
		if !c.Result.Valid || !c.Kind.Remote() {
			continue
		}
		g.Go(func() error {
			c.Result = checker.CheckSync(gctx, c.Kind, c.Value)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return checks, nil
}

func buildReport(checks []fieldCheck) *validate.Report {
	report := &validate.Report{}
	for _, c := range checks {
		report.AddResult(c.Kind.Label(), c.Result)
		if c.Kind != validate.Phone && validate.ContainsPhoneNumber(c.Value) {
			report.AddWarning(c.Kind.Label() + " contains what looks like a phone number")
		}
	}
	return report
}

func printReport(report *validate.Report) {
	ui.StartScreen("CHECK", "Syntax and availability per field")
	for _, item := range report.Items {
		fmt.Println(ui.FormatItem(item))
	}
	for _, w := range report.Warnings {
		fmt.Println("  " + ui.StatusWarning.String() + " " + ui.WarningStyle.Render(w))
	}
	fmt.Println()

	switch {
	case len(report.Errors) > 0:
		fmt.Println(ui.ErrorBox.Render(fmt.Sprintf("%d field(s) failed\n\n%s",
			len(report.Errors), strings.Join(report.Errors, "\n"))))
	case len(report.Pending) > 0:
		fmt.Println(ui.InfoBox.Render("Some fields have no value:\n\n" + strings.Join(report.Pending, "\n")))
	default:
		fmt.Println(ui.SuccessBox.Render("All fields valid"))
	}
}

// publishCI mirrors the report into GitHub Actions annotations, the step
// summary, and a "valid" output. Outside Actions it does nothing.
func publishCI(env *ci.Environment, report *validate.Report) {
	if !env.IsGitHubActions {
		return
	}
	ann := ci.NewAnnotator(env, os.Stdout)
	ann.StartGroup("formwatch check")
	for _, msg := range report.Errors {
		ann.Error("formwatch check", msg)
	}
	for _, msg := range report.Warnings {
		ann.Warning("formwatch check", msg)
	}
	ann.EndGroup()

	if err := env.SetOutput("valid", strconv.FormatBool(report.OK())); err != nil {
		logger.Warn("could not write step output", "error", err)
	}
	if err := env.AddSummary(summaryMarkdown(report)); err != nil {
		logger.Warn("could not write step summary", "error", err)
	}
}

func summaryMarkdown(report *validate.Report) string {
	var b strings.Builder
	b.WriteString("### formwatch check\n\n")
	b.WriteString("| Field | Status | Details |\n")
	b.WriteString("|-------|--------|---------|\n")
	for _, item := range report.Items {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", item.Name, item.Status, strings.ReplaceAll(item.Details, "|", `\|`))
	}
	return b.String()
}
