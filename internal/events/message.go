// Package events defines the verdict messages formwatch emits and publishes
// them to NATS.
package events

import (
	"github.com/iiroan/formwatch/internal/validate"
)

// Message types.
const (
	TypeEdit          = "edit"
	TypeFieldStatus   = "field_status"
	TypeSubmitEnabled = "submit_enabled"
	TypeError         = "error"
)

// Message is one form event on the wire. For submit_enabled, Valid carries
// whether submitting is allowed.
type Message struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
	Valid bool   `json:"valid"`
}

// FieldStatus builds a field_status message.
func FieldStatus(kind validate.Kind, reason string, valid bool) Message {
	return Message{Type: TypeFieldStatus, Field: kind.String(), Error: reason, Valid: valid}
}

// SubmitEnabled builds a submit_enabled message.
func SubmitEnabled(enabled bool) Message {
	return Message{Type: TypeSubmitEnabled, Valid: enabled}
}

// Failure builds an error message for a request the receiver could not act on.
func Failure(err error) Message {
	return Message{Type: TypeError, Error: err.Error()}
}
