// Package ci formats check output for CI runners
package ci

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Environment represents the CI environment
type Environment struct {
	IsCI            bool
	IsGitHubActions bool

	Repository string
	SHA        string
	RunID      string

	// Files the runner reads back; empty outside GitHub Actions.
	OutputFile  string
	SummaryFile string
}

// Detect detects the current CI environment
func Detect() *Environment {
	return DetectFrom(os.Getenv)
}

// DetectFrom reads the environment through getenv.
func DetectFrom(getenv func(string) string) *Environment {
	env := &Environment{
		IsCI:            getenv("CI") == "true",
		IsGitHubActions: getenv("GITHUB_ACTIONS") == "true",
	}
	if env.IsGitHubActions {
		env.IsCI = true
		env.Repository = getenv("GITHUB_REPOSITORY")
		env.SHA = getenv("GITHUB_SHA")
		env.RunID = getenv("GITHUB_RUN_ID")
		env.OutputFile = getenv("GITHUB_OUTPUT")
		env.SummaryFile = getenv("GITHUB_STEP_SUMMARY")
	}
	return env
}

// Annotator writes GitHub Actions workflow commands. Outside GitHub Actions
// every method is a no-op.
type Annotator struct {
	env *Environment
	w   io.Writer
}

// NewAnnotator writes commands for env to w.
func NewAnnotator(env *Environment, w io.Writer) *Annotator {
	return &Annotator{env: env, w: w}
}

// StartGroup starts a collapsible log group
func (a *Annotator) StartGroup(name string) {
	a.printf("::group::%s\n", name)
}

// EndGroup ends a log group
func (a *Annotator) EndGroup() {
	a.printf("::endgroup::\n")
}

// Error logs an error annotation
func (a *Annotator) Error(title, message string) {
	a.printf("::error title=%s::%s\n", escapeProperty(title), escapeData(message))
}

// Warning logs a warning annotation
func (a *Annotator) Warning(title, message string) {
	a.printf("::warning title=%s::%s\n", escapeProperty(title), escapeData(message))
}

// Notice logs a notice annotation
func (a *Annotator) Notice(message string) {
	a.printf("::notice::%s\n", escapeData(message))
}

func (a *Annotator) printf(format string, args ...any) {
	if a == nil || !a.env.IsGitHubActions {
		return
	}
	fmt.Fprintf(a.w, format, args...) //nolint:errcheck
}

// SetOutput sets a step output variable
func (e *Environment) SetOutput(name, value string) error {
	if e.OutputFile == "" {
		return nil
	}
	if strings.Contains(value, "\n") {
		delimiter := fmt.Sprintf("EOF%d", time.Now().UnixNano())
		return appendFile(e.OutputFile, fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter))
	}
	return appendFile(e.OutputFile, fmt.Sprintf("%s=%s\n", name, value))
}

// AddSummary adds markdown to the job summary
func (e *Environment) AddSummary(markdown string) error {
	if e.SummaryFile == "" {
		return nil
	}
	return appendFile(e.SummaryFile, markdown+"\n")
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

func escapeProperty(s string) string {
	s = escapeData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	return strings.ReplaceAll(s, ",", "%2C")
}
