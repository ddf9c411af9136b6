package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiroan/formwatch/internal/pipeline"
	"github.com/iiroan/formwatch/internal/validate"
)

var _ pipeline.Sink = (*Sink)(nil)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{subject: subject, data: data})
	return nil
}

func TestSinkPublishesEnvelopes(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewSink(pub, "formwatch", "session-1", nil)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return at }

	sink.FieldStatus(validate.Email, "Email is already taken", false)
	sink.SubmitEnabled(true)
	require.Len(t, pub.msgs, 2)

	assert.Equal(t, "formwatch.field_status", pub.msgs[0].subject)
	var status Envelope
	require.NoError(t, json.Unmarshal(pub.msgs[0].data, &status))
	assert.Equal(t, "session-1", status.Session)
	assert.True(t, at.Equal(status.At))
	assert.Equal(t, FieldStatus(validate.Email, "Email is already taken", false), status.Message)
	_, err := uuid.Parse(status.ID)
	assert.NoError(t, err)

	assert.Equal(t, "formwatch.submit_enabled", pub.msgs[1].subject)
	assert.JSONEq(t,
		`{"id":"x","session":"session-1","at":"2026-03-01T12:00:00Z","type":"submit_enabled","valid":true}`,
		replaceID(t, pub.msgs[1].data))
}

func TestSinkSwallowsPublishErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	sink := NewSink(pub, "", "s", nil)

	assert.NotPanics(t, func() { sink.SubmitEnabled(false) })
	assert.Equal(t, "submit_enabled", sink.Subject(TypeSubmitEnabled))
}

func TestMessageEncoding(t *testing.T) {
	data, err := json.Marshal(FieldStatus(validate.Phone, "", false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"field_status","field":"phone","valid":false}`, string(data))
}

func replaceID(t *testing.T, data []byte) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	m["id"] = "x"
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}
