package ui

import (
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiroan/formwatch/internal/validate"
)

type edit struct {
	kind validate.Kind
	text string
}

type fakeEditor struct {
	edits []edit
	err   error
}

func (e *fakeEditor) Edit(kind validate.Kind, text string) error {
	e.edits = append(e.edits, edit{kind, text})
	return e.err
}

func update(t *testing.T, m SignupModel, msg tea.Msg) (SignupModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(SignupModel)
	require.True(t, ok)
	return model, cmd
}

func TestSignupAppliesVerdicts(t *testing.T) {
	m := NewSignupModel(&fakeEditor{}, validate.Kinds())

	m, _ = update(t, m, FieldStatusMsg{Kind: validate.Email, Reason: "Email is already taken"})
	m, _ = update(t, m, FieldStatusMsg{Kind: validate.Phone, Valid: true})

	assert.Equal(t, rowInvalid, m.rows[0].status)
	assert.Equal(t, "Email is already taken", m.rows[0].reason)
	assert.Equal(t, rowUntouched, m.rows[1].status)
	assert.Equal(t, rowValid, m.rows[2].status)
	assert.False(t, m.submitEnabled)

	m, _ = update(t, m, SubmitEnabledMsg{Enabled: true})
	assert.True(t, m.submitEnabled)
}

func TestSignupForwardsEdits(t *testing.T) {
	ed := &fakeEditor{}
	m := NewSignupModel(ed, validate.Kinds())

	m.edited(1, "alice")
	assert.Equal(t, []edit{{validate.Username, "alice"}}, ed.edits)
	assert.Equal(t, rowPending, m.rows[1].status)

	ed.err = errors.New("form is shut down")
	m.edited(1, "alice2")
	assert.EqualError(t, m.editErr, "form is shut down")
}

func TestSignupSubmitRequiresEnabled(t *testing.T) {
	m := NewSignupModel(&fakeEditor{}, validate.Kinds())
	tab := tea.KeyPressMsg{Code: tea.KeyTab}
	enter := tea.KeyPressMsg{Code: tea.KeyEnter}

	for range validate.Kinds() {
		m, _ = update(t, m, tab)
	}
	require.True(t, m.onSubmit())

	m, cmd := update(t, m, enter)
	assert.Nil(t, cmd)
	assert.False(t, m.Result().Submitted)

	m, _ = update(t, m, SubmitEnabledMsg{Enabled: true})
	m, cmd = update(t, m, enter)
	assert.NotNil(t, cmd)
	assert.True(t, m.Result().Submitted)
}

func TestSignupFocusWraps(t *testing.T) {
	m := NewSignupModel(&fakeEditor{}, []validate.Kind{validate.Email})

	m.moveFocus(-1)
	assert.True(t, m.onSubmit())
	m.moveFocus(1)
	assert.Equal(t, 0, m.focus)
}

func TestProgramSinkDropsWithoutProgram(t *testing.T) {
	var sink ProgramSink
	assert.NotPanics(t, func() {
		sink.FieldStatus(validate.Email, "", false)
		sink.SubmitEnabled(true)
	})
}

func TestFormatItem(t *testing.T) {
	ApplyTheme("mono", true)
	t.Cleanup(func() { ApplyTheme(defaultThemeName, false) })

	line := FormatItem(validate.Item{Name: "Email", Status: validate.StatusError, Details: "Email is already taken"})
	assert.Contains(t, line, "✗")
	assert.Contains(t, line, "Email is already taken")
	assert.Equal(t, "○", StatusIcon(validate.StatusPending))
}
