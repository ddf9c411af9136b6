package ui

import (
	"strings"
	"sync"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/iiroan/formwatch/internal/validate"
)

// FieldStatusMsg carries one field verdict into the sign-up screen.
type FieldStatusMsg struct {
	Kind   validate.Kind
	Reason string
	Valid  bool
}

// SubmitEnabledMsg carries the aggregate verdict into the sign-up screen.
type SubmitEnabledMsg struct {
	Enabled bool
}

// Editor receives raw text changes from the sign-up screen.
type Editor interface {
	Edit(kind validate.Kind, text string) error
}

// SignupResult is what the user left the sign-up screen with.
type SignupResult struct {
	Submitted bool
	Values    map[validate.Kind]string
}

type rowStatus int

const (
	rowUntouched rowStatus = iota
	rowPending
	rowValid
	rowInvalid
)

type formRow struct {
	kind   validate.Kind
	input  textinput.Model
	status rowStatus
	reason string
}

type signupKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

func newSignupKeyMap() signupKeyMap {
	return signupKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k signupKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Quit}
}

func (k signupKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Submit, k.Quit}}
}

// SignupModel is the terminal sign-up screen. Rows are the form fields; the
// focus index one past the last row is the submit control.
type SignupModel struct {
	rows          []formRow
	focus         int
	editor        Editor
	submitEnabled bool
	submitted     bool
	quitting      bool
	editErr       error

	help help.Model
	keys signupKeyMap

	width  int
	height int
}

var placeholders = map[validate.Kind]string{
	validate.Email:    "you@example.com",
	validate.Username: "3 to 20 letters, digits, . or _",
	validate.Phone:    "10 digits starting with 7, 8 or 9",
}

// NewSignupModel builds a screen with one input per kind.
func NewSignupModel(editor Editor, kinds []validate.Kind) SignupModel {
	rows := make([]formRow, 0, len(kinds))
	for _, kind := range kinds {
		in := textinput.New()
		in.Prompt = "› "
		in.Placeholder = placeholders[kind]
		in.CharLimit = 256
		rows = append(rows, formRow{kind: kind, input: in})
	}
	if len(rows) > 0 {
		rows[0].input.Focus()
	}

	h := help.New()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Accent))).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Muted)))
	h.Styles.ShortKey = keyStyle
	h.Styles.ShortDesc = hintStyle
	h.Styles.FullKey = keyStyle
	h.Styles.FullDesc = hintStyle

	return SignupModel{
		rows:   rows,
		editor: editor,
		help:   h,
		keys:   newSignupKeyMap(),
	}
}

func (m SignupModel) Init() tea.Cmd {
	return nil
}

func (m SignupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case FieldStatusMsg:
		m.applyStatus(msg)
		return m, nil
	case SubmitEnabledMsg:
		m.submitEnabled = msg.Enabled
		return m, nil
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			return m, m.moveFocus(1)
		case key.Matches(msg, m.keys.Prev):
			return m, m.moveFocus(-1)
		case key.Matches(msg, m.keys.Submit):
			if m.onSubmit() {
				if m.submitEnabled {
					m.submitted = true
					m.quitting = true
					return m, tea.Quit
				}
				return m, nil
			}
			return m, m.moveFocus(1)
		}
	}

	if m.onSubmit() {
		return m, nil
	}
	row := &m.rows[m.focus]
	before := row.input.Value()
	var cmd tea.Cmd
	row.input, cmd = row.input.Update(msg)
	if after := row.input.Value(); after != before {
		m.edited(m.focus, after)
	}
	return m, cmd
}

// edited forwards a changed value and marks the row as awaiting a verdict.
func (m *SignupModel) edited(idx int, text string) {
	row := &m.rows[idx]
	row.status = rowPending
	row.reason = ""
	if m.editor == nil {
		return
	}
	m.editErr = m.editor.Edit(row.kind, text)
}

func (m *SignupModel) applyStatus(msg FieldStatusMsg) {
	for i := range m.rows {
		if m.rows[i].kind != msg.Kind {
			continue
		}
		m.rows[i].reason = msg.Reason
		if msg.Valid {
			m.rows[i].status = rowValid
		} else {
			m.rows[i].status = rowInvalid
		}
	}
}

func (m *SignupModel) onSubmit() bool {
	return m.focus >= len(m.rows)
}

func (m *SignupModel) moveFocus(delta int) tea.Cmd {
	slots := len(m.rows) + 1
	if !m.onSubmit() {
		m.rows[m.focus].input.Blur()
	}
	m.focus = (m.focus + delta + slots) % slots
	if m.onSubmit() {
		return nil
	}
	return m.rows[m.focus].input.Focus()
}

// Result reports the final values and whether the user submitted.
func (m SignupModel) Result() SignupResult {
	values := make(map[validate.Kind]string, len(m.rows))
	for _, row := range m.rows {
		values[row.kind] = row.input.Value()
	}
	return SignupResult{Submitted: m.submitted, Values: values}
}

func (m SignupModel) View() tea.View {
	if m.quitting {
		return tea.View{}
	}

	width := m.width
	if width <= 0 {
		width = terminalWidth()
	}
	inner := max(30, min(width-4, 72))

	label := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Foreground))).Bold(true)
	focusLabel := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Primary))).Bold(true)
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Success)))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Error)))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Muted)))
	checking := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Checking)))

	var b strings.Builder
	for i, row := range m.rows {
		style := label
		if i == m.focus {
			style = focusLabel
		}
		b.WriteString(style.Render(row.kind.Label()))
		b.WriteString("\n")
		b.WriteString(row.input.View())
		b.WriteString("\n")

		switch row.status {
		case rowPending:
			b.WriteString(checking.Render("  checking..."))
		case rowValid:
			b.WriteString(okStyle.Render("  ✓ looks good"))
		case rowInvalid:
			if row.reason != "" {
				b.WriteString(errStyle.Render("  ✗ " + row.reason))
			} else {
				b.WriteString(muted.Render("  required"))
			}
		}
		b.WriteString("\n")
		if !CurrentPreferences.Dense {
			b.WriteString("\n")
		}
	}

	button := lipgloss.NewStyle().Padding(0, 3).Bold(true)
	switch {
	case m.submitEnabled && m.onSubmit():
		button = button.
			Foreground(lipgloss.Color(string(Background))).
			Background(lipgloss.Color(string(Primary)))
	case m.submitEnabled:
		button = button.
			Foreground(lipgloss.Color(string(Primary))).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(string(Primary)))
	default:
		button = button.
			Foreground(lipgloss.Color(string(Muted))).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(string(Border)))
	}
	b.WriteString(button.Render("Sign up"))

	if m.editErr != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.editErr.Error()))
	}

	body := lipgloss.NewStyle().Width(inner).Render(b.String())
	subtitle := "Fields are checked as you type."
	if !m.submitEnabled {
		subtitle += " Sign up unlocks once every field is valid."
	}
	v := tea.NewView(Frame("SIGN UP", subtitle, body, m.help.View(m.keys)))
	v.AltScreen = true
	return v
}

// ProgramSink forwards form verdicts to a running program. Calls made
// before Attach or after the program exits are dropped.
type ProgramSink struct {
	mu sync.Mutex
	p  *tea.Program
}

// Attach starts forwarding to p.
func (s *ProgramSink) Attach(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
}

func (s *ProgramSink) FieldStatus(kind validate.Kind, reason string, valid bool) {
	s.send(FieldStatusMsg{Kind: kind, Reason: reason, Valid: valid})
}

func (s *ProgramSink) SubmitEnabled(enabled bool) {
	s.send(SubmitEnabledMsg{Enabled: enabled})
}

func (s *ProgramSink) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// RunSignupForm shows the sign-up screen until the user submits or quits.
// The caller owns editor and shuts it down once this returns.
func RunSignupForm(editor Editor, kinds []validate.Kind, sink *ProgramSink) (SignupResult, error) {
	if !IsInteractiveTerminal() {
		return SignupResult{}, ErrNotInteractive
	}
	p := tea.NewProgram(NewSignupModel(editor, kinds))
	sink.Attach(p)

	final, err := p.Run()
	if err != nil {
		return SignupResult{}, err
	}
	if m, ok := final.(SignupModel); ok {
		return m.Result(), nil
	}
	return SignupResult{}, nil
}
