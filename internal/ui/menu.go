package ui

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/iiroan/formwatch/internal/validate"
	"github.com/iiroan/formwatch/internal/version"
)

// Returned by RunMenu instead of an item ID.
const (
	MenuActionBack = "__back__"
	MenuActionQuit = "__quit__"
)

// ErrNotInteractive is returned when a TUI cannot run on this terminal.
var ErrNotInteractive = errors.New("non-interactive terminal")

// MenuItem is one launcher entry.
type MenuItem struct {
	ID        string
	TitleText string
	Details   string
}

// MenuOption customizes RunMenu.
type MenuOption func(*menuConfig)

type menuConfig struct {
	// backLabel is empty when esc and q quit instead of going back.
	backLabel string
	info      []menuInfo
	fields    []validate.Kind
}

type menuInfo struct {
	label string
	value string
}

// WithBackNavigation makes esc and q return MenuActionBack.
func WithBackNavigation(label string) MenuOption {
	return func(cfg *menuConfig) {
		if label == "" {
			label = "back"
		}
		cfg.backLabel = label
	}
}

// WithInfo adds a label/value line to the side panel.
func WithInfo(label, value string) MenuOption {
	return func(cfg *menuConfig) {
		cfg.info = append(cfg.info, menuInfo{label: label, value: value})
	}
}

// WithFields lists the form fields in the side panel with the checks each
// one goes through.
func WithFields(kinds ...validate.Kind) MenuOption {
	return func(cfg *menuConfig) {
		cfg.fields = append(cfg.fields, kinds...)
	}
}

type menuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Jump   key.Binding
	Back   key.Binding
	Quit   key.Binding
}

func newMenuKeyMap(backLabel string) menuKeyMap {
	k := menuKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Jump:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "open by number")),
	}
	if backLabel != "" {
		k.Back = key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", backLabel))
		k.Quit = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	} else {
		k.Back = key.NewBinding(key.WithDisabled())
		k.Quit = key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("q", "quit"))
	}
	return k
}

func (k menuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Jump, k.Back, k.Quit}
}

func (k menuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Select, k.Jump}, {k.Back, k.Quit}}
}

type menuModel struct {
	title    string
	subtitle string
	items    []MenuItem
	cursor   int
	choice   string
	done     bool

	info   []menuInfo
	fields []validate.Kind

	keys  menuKeyMap
	help  help.Model
	width int
}

func newMenuModel(title, subtitle string, items []MenuItem, cfg menuConfig) menuModel {
	h := help.New()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Accent))).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Muted)))
	h.Styles.ShortKey = keyStyle
	h.Styles.ShortDesc = hintStyle
	h.Styles.ShortSeparator = hintStyle

	return menuModel{
		title:    title,
		subtitle: subtitle,
		items:    items,
		info:     append([]menuInfo{{label: "CLI", value: version.Get().Short()}}, cfg.info...),
		fields:   cfg.fields,
		keys:     newMenuKeyMap(cfg.backLabel),
		help:     h,
	}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Select):
			if len(m.items) > 0 {
				return m.finish(m.items[m.cursor].ID)
			}
		case key.Matches(msg, m.keys.Jump):
			if m.jump(msg.String()) {
				return m.finish(m.items[m.cursor].ID)
			}
		case key.Matches(msg, m.keys.Back):
			return m.finish(MenuActionBack)
		case key.Matches(msg, m.keys.Quit):
			return m.finish(MenuActionQuit)
		}
	}
	return m, nil
}

func (m menuModel) finish(choice string) (tea.Model, tea.Cmd) {
	m.choice = choice
	m.done = true
	return m, tea.Quit
}

// move shifts the cursor, wrapping at both ends.
func (m *menuModel) move(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.items)) % len(m.items)
}

// jump puts the cursor on the item numbered digit, counting from 1.
func (m *menuModel) jump(digit string) bool {
	if len(digit) != 1 || digit[0] < '1' || digit[0] > '9' {
		return false
	}
	idx := int(digit[0] - '1')
	if idx >= len(m.items) {
		return false
	}
	m.cursor = idx
	return true
}

func (m menuModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}

	width := m.width
	if width <= 0 {
		width = terminalWidth()
	}
	left, right, stacked := menuColumns(width)

	list := lipgloss.NewStyle().Width(left).Render(m.renderItems(left))
	side := lipgloss.NewStyle().Width(right).Render(m.renderSide(right))

	var body string
	if stacked {
		body = lipgloss.JoinVertical(lipgloss.Left, list, "", side)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", side)
	}

	v := tea.NewView(Frame(m.title, m.subtitle, body, m.help.View(m.keys)))
	v.AltScreen = true
	return v
}

// menuColumns splits width into the item list and the side panel. Below 90
// columns the panel goes under the list.
func menuColumns(width int) (left, right int, stacked bool) {
	if width < 90 {
		w := max(20, width-2)
		return w, w, true
	}
	left = width * 3 / 5
	return left, width - left - 2, false
}

func (m menuModel) renderItems(width int) string {
	normal := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Foreground)))
	selected := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Primary))).Bold(true)
	number := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Muted)))

	lines := make([]string, 0, len(m.items))
	for i, item := range m.items {
		text := item.TitleText
		if item.Details != "" && width > 60 {
			text += " - " + item.Details
		}
		text = ansi.Truncate(text, max(10, width-6), "...")
		slot := fmt.Sprintf("%d.", i+1)
		if i == m.cursor {
			lines = append(lines, "> "+selected.Render(slot+" "+text))
			continue
		}
		lines = append(lines, "  "+number.Render(slot)+" "+normal.Render(text))
	}
	return strings.Join(lines, "\n")
}

func (m menuModel) renderSide(width int) string {
	heading := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Accent))).Bold(true)
	fit := func(s string) string { return ansi.Truncate(s, max(10, width), "...") }

	var lines []string
	if len(m.items) > 0 {
		item := m.items[m.cursor]
		lines = append(lines, heading.Render(item.TitleText))
		if item.Details != "" {
			lines = append(lines, MutedStyle.Render(fit(item.Details)))
		}
		lines = append(lines, "")
	}

	if len(m.fields) > 0 {
		lines = append(lines, heading.Render("Fields"))
		for _, kind := range m.fields {
			lines = append(lines, MutedStyle.Render(fit(fmt.Sprintf("%-9s %s", kind.String(), fieldChecks(kind)))))
		}
		lines = append(lines, "")
	}

	lines = append(lines, heading.Render("Setup"))
	for _, in := range m.info {
		value := in.value
		if strings.TrimSpace(value) == "" {
			value = "unset"
		}
		lines = append(lines, MutedStyle.Render(fit(fmt.Sprintf("%-9s %s", strings.ToLower(in.label)+":", value))))
	}
	return strings.Join(lines, "\n")
}

// fieldChecks describes what a field is validated against.
func fieldChecks(kind validate.Kind) string {
	if kind.Remote() {
		return "syntax, then availability"
	}
	return "syntax only"
}

// RunMenu shows a launcher and returns the chosen item ID, or one of the
// MenuAction values.
func RunMenu(title, subtitle string, items []MenuItem, options ...MenuOption) (string, error) {
	if !IsInteractiveTerminal() {
		return "", ErrNotInteractive
	}
	var cfg menuConfig
	for _, opt := range options {
		opt(&cfg)
	}

	final, err := tea.NewProgram(newMenuModel(title, subtitle, items, cfg)).Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(menuModel); ok {
		return m.choice, nil
	}
	return "", nil
}
