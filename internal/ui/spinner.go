package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCanceled is returned when the user quits a spinner before fn finishes.
var ErrCanceled = errors.New("canceled")

// SpinnerModel shows progress while a blocking check runs
type SpinnerModel struct {
	spinner  spinner.Model
	message  string
	cancel   context.CancelFunc
	quitting bool
	aborted  bool
	elapsed  time.Duration
	started  time.Time
	err      error
}

// NewSpinner creates a new spinner with a message. cancel is called if the
// user quits early.
func NewSpinner(message string, cancel context.CancelFunc) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(Primary)
	return SpinnerModel{
		spinner: s,
		message: message,
		cancel:  cancel,
		started: time.Now(),
	}
}

func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			m.aborted = true
			m.quitting = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case spinnerDoneMsg:
		m.err = msg.err
		m.elapsed = time.Since(m.started)
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SpinnerModel) View() string {
	if m.quitting {
		switch {
		case m.aborted:
			return WarningStyle.Render("! "+m.message+" canceled") + "\n"
		case m.err != nil:
			return ErrorStyle.Render("✗ "+m.message+" failed: "+m.err.Error()) + "\n"
		default:
			return SuccessStyle.Render("✓ "+m.message) + " " + MutedStyle.Render(m.elapsed.Round(time.Millisecond).String()) + "\n"
		}
	}
	return m.spinner.View() + " " + m.message + " " + MutedStyle.Render("(q to cancel)") + "\n"
}

type spinnerDoneMsg struct{ err error }

// RunWithSpinner runs fn with a spinner. On non-interactive terminals it
// prints plain progress lines instead.
func RunWithSpinner(ctx context.Context, message string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !IsInteractiveTerminal() {
		fmt.Printf("⏳ %s...\n", message)
		start := time.Now()
		err := fn(ctx)
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			fmt.Printf("✗ %s failed (%s): %v\n", message, elapsed, err)
		} else {
			fmt.Printf("✓ %s (%s)\n", message, elapsed)
		}
		return err
	}

	p := tea.NewProgram(NewSpinner(message, cancel))

	errChan := make(chan error, 1)
	go func() {
		err := fn(ctx)
		errChan <- err
		p.Send(spinnerDoneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("spinner error: %w", err)
	}
	if m, ok := final.(SpinnerModel); ok && m.aborted {
		<-errChan
		return ErrCanceled
	}
	return <-errChan
}
