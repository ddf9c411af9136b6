package events

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/iiroan/formwatch/internal/validate"
)

// Publisher is the part of *nats.Conn the sink uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Envelope wraps a message with its identity for the bus.
type Envelope struct {
	ID      string    `json:"id"`
	Session string    `json:"session"`
	At      time.Time `json:"at"`
	Message
}

// Connect dials NATS with reconnects enabled and logs connection changes.
func Connect(url string, logger *log.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	nc, err := nats.Connect(url,
		nats.Name("formwatch"),
		nats.MaxReconnects(10000),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "err", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	return nc, nil
}

// Sink publishes form verdicts as JSON envelopes on
// <prefix>.field_status and <prefix>.submit_enabled. Publish failures are
// logged and dropped.
type Sink struct {
	pub     Publisher
	prefix  string
	session string
	logger  *log.Logger
	now     func() time.Time
}

// NewSink returns a sink that tags every envelope with session.
func NewSink(pub Publisher, prefix, session string, logger *log.Logger) *Sink {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Sink{
		pub:     pub,
		prefix:  prefix,
		session: session,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Sink) FieldStatus(kind validate.Kind, reason string, valid bool) {
	s.send(FieldStatus(kind, reason, valid))
}

func (s *Sink) SubmitEnabled(enabled bool) {
	s.send(SubmitEnabled(enabled))
}

// Subject returns the subject a message type is published on.
func (s *Sink) Subject(msgType string) string {
	if s.prefix == "" {
		return msgType
	}
	return s.prefix + "." + msgType
}

func (s *Sink) send(m Message) {
	env := Envelope{
		ID:      uuid.NewString(),
		Session: s.session,
		At:      s.now().UTC(),
		Message: m,
	}
	data, err := json.Marshal(env)
	if err != nil {
		s.logger.Error("marshal event failed", "type", m.Type, "err", err)
		return
	}
	if err := s.pub.Publish(s.Subject(m.Type), data); err != nil {
		s.logger.Warn("publish event failed", "type", m.Type, "err", err)
	}
}
