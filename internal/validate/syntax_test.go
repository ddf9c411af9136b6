package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		valid  bool
		reason string
	}{
		{name: "empty has no message", input: "", valid: false, reason: ""},
		{name: "missing at", input: "alice.example.com", valid: false, reason: ReasonEmailFormat},
		{name: "missing tld", input: "alice@example", valid: false, reason: ReasonEmailFormat},
		{name: "plain address", input: "x@y.com", valid: true},
		{name: "plus and dots", input: "first.last+tag@mail.io", valid: true},
		{name: "substring match", input: "mail me at bob@host.org please", valid: true},
		{name: "dotted domain label rejected", input: "a@b-c.com", valid: false, reason: ReasonEmailFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Email(tt.input)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, tt.input, res.Data)
		})
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		valid  bool
		reason string
	}{
		{name: "empty has no message", input: "", reason: ""},
		{name: "too short", input: "ab", reason: ReasonUsernameLength},
		{name: "short multibyte", input: "éé", reason: ReasonUsernameLength},
		{name: "leading digit", input: "1alice", reason: ReasonUsernameChars},
		{name: "dash", input: "al-ice", reason: ReasonUsernameChars},
		{name: "too long", input: "abcdefghijklmnopqrstu", reason: ReasonUsernameChars},
		{name: "minimum", input: "abc", valid: true},
		{name: "maximum", input: "abcdefghijklmnopqrst", valid: true},
		{name: "dots and underscores", input: "a.l_ice9", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Username(tt.input)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		valid  bool
		reason string
	}{
		{name: "empty has no message", input: "", reason: ""},
		{name: "nine digits", input: "987654321", reason: ReasonPhoneFormat},
		{name: "eleven digits", input: "98765432101", reason: ReasonPhoneFormat},
		{name: "bad leading digit", input: "6876543210", reason: ReasonPhoneFormat},
		{name: "valid number behind a country digit", input: "19876543210", reason: ReasonPhoneFormat},
		{name: "valid number with trailing text", input: "9876543210 ext", reason: ReasonPhoneFormat},
		{name: "letters", input: "98765abcde", reason: ReasonPhoneFormat},
		{name: "starts with 7", input: "7000000000", valid: true},
		{name: "starts with 9", input: "9876543210", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Phone(tt.input)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestSyntaxIsDeterministic(t *testing.T) {
	inputs := []string{"", "x@y.com", "alice", "9876543210", "??"}
	for _, kind := range Kinds() {
		for _, in := range inputs {
			first := Syntax(kind, in)
			second := Syntax(kind, in)
			assert.Equal(t, first, second, "%s %q", kind, in)
		}
	}
}

func TestValidResultsCarryNoReason(t *testing.T) {
	for kind, in := range map[Kind]string{Email: "x@y.com", Username: "alice", Phone: "9876543210"} {
		res := Syntax(kind, in)
		require.True(t, res.Valid, kind.String())
		again := Syntax(kind, res.Data)
		assert.True(t, again.Valid)
		assert.Empty(t, again.Reason)
	}
}

func TestContainsHelpers(t *testing.T) {
	assert.True(t, ContainsPhoneNumber("call 9876543210 now"))
	assert.False(t, ContainsPhoneNumber("call 123 now"))
	assert.True(t, ContainsDigitRun("user12345"))
	assert.False(t, ContainsDigitRun("user1234"))
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds() {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
	_, err := ParseKind("address")
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.True(t, Email.Remote())
	assert.True(t, Username.Remote())
	assert.False(t, Phone.Remote())
	assert.Equal(t, "Username", Username.Label())
}

func TestReportAddResult(t *testing.T) {
	var r Report
	r.AddResult("email", Success("x@y.com"))
	r.AddResult("phone", Failure("", ""))
	r.AddResult("username", Failure(ReasonUsernameLength, "ab"))

	require.Len(t, r.Items, 3)
	assert.Equal(t, StatusSuccess, r.Items[0].Status)
	assert.Equal(t, StatusPending, r.Items[1].Status)
	assert.Equal(t, StatusError, r.Items[2].Status)
	assert.Equal(t, []string{"username: " + ReasonUsernameLength}, r.Errors)
	assert.False(t, r.OK())
}
