package pipeline

import "github.com/iiroan/formwatch/internal/validate"

// Sink receives everything a form publishes. Calls arrive one at a time from
// the form's coordinating goroutine, so a Sink must not call Shutdown.
type Sink interface {
	// FieldStatus reports the latest verdict of one field. An empty reason
	// with valid=false means the field is empty.
	FieldStatus(kind validate.Kind, reason string, valid bool)
	// SubmitEnabled reports the AND of all field verdicts.
	SubmitEnabled(enabled bool)
}

// SinkFuncs adapts plain functions to Sink. Nil funcs are skipped.
type SinkFuncs struct {
	OnFieldStatus   func(kind validate.Kind, reason string, valid bool)
	OnSubmitEnabled func(enabled bool)
}

func (s SinkFuncs) FieldStatus(kind validate.Kind, reason string, valid bool) {
	if s.OnFieldStatus != nil {
		s.OnFieldStatus(kind, reason, valid)
	}
}

func (s SinkFuncs) SubmitEnabled(enabled bool) {
	if s.OnSubmitEnabled != nil {
		s.OnSubmitEnabled(enabled)
	}
}

// Fanout forwards every call to each sink in order.
type Fanout []Sink

func (f Fanout) FieldStatus(kind validate.Kind, reason string, valid bool) {
	for _, s := range f {
		s.FieldStatus(kind, reason, valid)
	}
}

func (f Fanout) SubmitEnabled(enabled bool) {
	for _, s := range f {
		s.SubmitEnabled(enabled)
	}
}
