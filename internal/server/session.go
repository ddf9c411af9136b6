package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/iiroan/formwatch/internal/events"
	"github.com/iiroan/formwatch/internal/pipeline"
	"github.com/iiroan/formwatch/internal/validate"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 4096
)

// session streams one form's verdicts to a websocket client.
type session struct {
	conn   *websocket.Conn
	logger *log.Logger

	mu sync.Mutex
}

func (s *session) FieldStatus(kind validate.Kind, reason string, valid bool) {
	s.write(events.FieldStatus(kind, reason, valid))
}

func (s *session) SubmitEnabled(enabled bool) {
	s.write(events.SubmitEnabled(enabled))
}

func (s *session) write(m events.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(m); err != nil {
		s.logger.Debug("websocket write failed", "type", m.Type, "error", err)
	}
}

// handleFormSession runs a form for as long as the websocket stays open.
// Clients send {"type":"edit","field":"email","text":"..."} and receive
// field_status and submit_enabled messages.
func (s *Server) handleFormSession(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	logger := s.logger.With("session", id)
	sess := &session{conn: conn, logger: logger}

	var sink pipeline.Sink = sess
	if s.opts.Events != nil {
		sink = pipeline.Fanout{sess, events.NewSink(s.opts.Events, s.opts.EventsPrefix, id, logger)}
	}

	opts := append(append([]pipeline.Option(nil), s.opts.FormOptions...),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(s.opts.Metrics),
	)
	form, err := pipeline.New(s.opts.Checker, sink, opts...)
	if err != nil {
		sess.write(events.Failure(err))
		return
	}
	defer form.Shutdown()

	logger.Info("form session opened", "remote", r.RemoteAddr)
	conn.SetReadLimit(maxMessageSize)

	for {
		var msg events.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", "error", err)
			} else {
				logger.Info("form session closed")
			}
			return
		}

		if msg.Type != events.TypeEdit {
			sess.write(events.Failure(fmt.Errorf("unknown message type %q", msg.Type)))
			continue
		}
		kind, err := validate.ParseKind(msg.Field)
		if err != nil {
			sess.write(events.Failure(err))
			continue
		}
		if err := form.Edit(kind, msg.Text); err != nil {
			sess.write(events.Failure(err))
		}
	}
}
