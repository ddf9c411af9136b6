// Package server exposes availability lookups, value claims and live form
// sessions over HTTP.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iiroan/formwatch/internal/avail"
	"github.com/iiroan/formwatch/internal/events"
	"github.com/iiroan/formwatch/internal/metrics"
	"github.com/iiroan/formwatch/internal/pipeline"
	"github.com/iiroan/formwatch/internal/store"
	"github.com/iiroan/formwatch/internal/validate"
)

// Options configures a Server. Checker is required.
type Options struct {
	Checker avail.Checker
	// Store backs the claims endpoints; without it they answer 501.
	Store    store.Store
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Pipeline
	// FormOptions apply to every websocket form session.
	FormOptions []pipeline.Option
	// Events, when set, also receives every session verdict.
	Events       events.Publisher
	EventsPrefix string
	Logger       *log.Logger
}

// Server routes the formwatch HTTP API.
type Server struct {
	router   chi.Router
	opts     Options
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		router: chi.NewRouter(),
		opts:   opts,
		logger: opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the handler with the given address and timeouts.
func (s *Server) HTTPServer(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/availability/{kind}", s.handleAvailability)
		r.Post("/claims/{kind}", s.handleClaim)
		r.Delete("/claims/{kind}", s.handleRelease)
		r.Get("/forms/ws", s.handleFormSession)
	})
}

// requestLogger logs one line per request once it completes.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type claimRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.remoteKind(w, r)
	if !ok {
		return
	}
	value := r.URL.Query().Get("value")
	if value == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "value is required"})
		return
	}

	res := s.opts.Checker.CheckSync(r.Context(), kind, value)
	writeJSON(w, http.StatusOK, avail.VerdictFrom(kind, res))
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.remoteKind(w, r)
	if !ok {
		return
	}
	if s.opts.Store == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "no store configured"})
		return
	}

	var req claimRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	if res := validate.Syntax(kind, req.Value); !res.Valid {
		reason := res.Reason
		if reason == "" {
			reason = "value is required"
		}
		writeJSON(w, http.StatusUnprocessableEntity, avail.VerdictFrom(kind, validate.Failure(reason, req.Value)))
		return
	}

	taken, err := s.opts.Store.Taken(r.Context(), kind, req.Value)
	if err != nil {
		s.storeError(w, "lookup", err)
		return
	}
	if taken {
		writeJSON(w, http.StatusConflict, avail.VerdictFrom(kind, validate.Failure(avail.TakenReason(kind), req.Value)))
		return
	}
	if err := s.opts.Store.Claim(r.Context(), kind, req.Value); err != nil {
		s.storeError(w, "claim", err)
		return
	}
	s.logger.Info("value claimed", "field", kind.String(), "value", req.Value)
	writeJSON(w, http.StatusCreated, avail.VerdictFrom(kind, validate.Success(req.Value)))
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.remoteKind(w, r)
	if !ok {
		return
	}
	if s.opts.Store == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "no store configured"})
		return
	}
	value := r.URL.Query().Get("value")
	if value == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "value is required"})
		return
	}
	if err := s.opts.Store.Release(r.Context(), kind, value); err != nil {
		s.storeError(w, "release", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// remoteKind parses {kind} and rejects fields that have no availability.
func (s *Server) remoteKind(w http.ResponseWriter, r *http.Request) (validate.Kind, bool) {
	kind, err := validate.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return 0, false
	}
	if !kind.Remote() {
		writeJSON(w, http.StatusNotFound, errorBody{Error: kind.String() + " has no availability"})
		return 0, false
	}
	return kind, true
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("store "+op+" failed", "error", err)
	writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: op + " failed"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
