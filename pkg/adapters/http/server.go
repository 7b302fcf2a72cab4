package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/dumpling"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/observability"
	"github.com/aretw0/dumpling/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 64 << 10

// Wizard is the part of the dumpling facade the HTTP API drives.
type Wizard interface {
	Start(ctx context.Context, sessionID string) (*domain.State, error)
	Load(ctx context.Context, sessionID string) (*domain.State, error)
	Next(ctx context.Context, sessionID string) (*domain.State, error)
	Back(ctx context.Context, sessionID string) (*domain.State, error)
	Reset(ctx context.Context, sessionID string) (*domain.State, error)
	Answer(ctx context.Context, sessionID string, stepID int, value string) (*domain.State, error)
	CustomAnswer(ctx context.Context, sessionID string, stepID int, text string) (*domain.State, error)
	SetControls(ctx context.Context, sessionID string, stepID int, value domain.ControlValue) (*domain.State, error)
	SetContact(ctx context.Context, sessionID string, contact string) (*domain.State, error)
	Generate(ctx context.Context, sessionID string) (*domain.State, error)
	Deliver(ctx context.Context, sessionID string, channels ...domain.Channel) ([]domain.Notification, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
	ViewOf(state *domain.State) domain.View
	Observe(fn dumpling.StateObserver) func()
	Monitor() *observability.GenerationMonitor
}

var _ Wizard = (*dumpling.Wizard)(nil)

// Server serves the wizard over JSON/HTTP.
type Server struct {
	Wizard   Wizard
	Streams  *StreamManager
	gatherer prometheus.Gatherer
	router   http.Handler
	stop     func()
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer selects the registry exposed at /metrics (default: the global one).
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithStreams replaces the SSE stream manager.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// NewHandler creates the HTTP handler of the API. Every persisted change of a
// session is published to its SSE subscribers as a domain.StateDiff until
// Close is called.
func NewHandler(w Wizard, opts ...Option) *Server {
	s := &Server{
		Wizard:   w,
		Streams:  NewStreamManager(0),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stop = w.Observe(s.publish)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/generations", s.GetGenerations)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.StartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/next", s.step(s.Wizard.Next))
			r.Post("/back", s.step(s.Wizard.Back))
			r.Post("/reset", s.step(s.Wizard.Reset))
			r.Post("/generate", s.step(s.Wizard.Generate))
			r.Post("/deliver", s.Deliver)
			r.Put("/answers/{step}", s.SetAnswer)
			r.Put("/custom/{step}", s.SetCustomAnswer)
			r.Put("/controls/{step}", s.SetControls)
			r.Put("/contact", s.SetContact)
		})
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops publishing session changes. Open event streams stay connected
// but receive nothing more.
func (s *Server) Close() error {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	return nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <title>Dumpling API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => { window.ui = SwaggerUIBundle({ url: '/openapi.yaml', dom_id: '#swagger-ui' }); };
</script>
</body>
</html>
`

// SessionResponse is returned by every session operation.
type SessionResponse struct {
	State *domain.State `json:"state"`
	View  domain.View   `json:"view"`
}

func (s *Server) publish(_ context.Context, prev, next *domain.State) {
	diff := domain.Diff(prev, next)
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		slog.Error("failed to encode state diff", "session_id", next.SessionID, "error", err)
		return
	}
	s.Streams.Broadcast(next.SessionID, string(data))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSessionExists),
		errors.Is(err, domain.ErrAdvanceBlocked),
		errors.Is(err, domain.ErrNotReady),
		errors.Is(err, domain.ErrGenerating),
		errors.Is(err, domain.ErrNoResult):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnknownStep),
		errors.Is(err, domain.ErrStepKindMismatch),
		errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrInvalidContact),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrGenerationFailed):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	} else {
		slog.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	http.Error(w, err.Error(), status)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func stepParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		http.Error(w, "step must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, state *domain.State, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, SessionResponse{State: state, View: s.Wizard.ViewOf(state)})
}

// step adapts a session operation without a body to a handler.
func (s *Server) step(op func(context.Context, string) (*domain.State, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := op(r.Context(), chi.URLParam(r, "id"))
		s.respond(w, r, http.StatusOK, state, err)
	}
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := Spec(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "dumpling-http",
		"version":     dumpling.Version,
		"api_version": apiVersion,
	})
}

// GetSpec handles GET /openapi.yaml.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(RawSpec())
}

// GetGenerations handles GET /generations.
func (s *Server) GetGenerations(w http.ResponseWriter, r *http.Request) {
	m := s.Wizard.Monitor()
	writeJSON(w, http.StatusOK, map[string]any{
		"limit":   m.Limit(),
		"history": m.History(),
		"stats":   m.Stats(),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Wizard.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// StartSession handles POST /sessions. The body is optional.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}

	state, err := s.Wizard.Start(r.Context(), body.SessionID)
	s.respond(w, r, http.StatusCreated, state, err)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Wizard.Load(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, http.StatusOK, state, err)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Wizard.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetAnswer handles PUT /sessions/{id}/answers/{step}.
func (s *Server) SetAnswer(w http.ResponseWriter, r *http.Request) {
	stepID, ok := stepParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	state, err := s.Wizard.Answer(r.Context(), chi.URLParam(r, "id"), stepID, body.Value)
	s.respond(w, r, http.StatusOK, state, err)
}

// SetCustomAnswer handles PUT /sessions/{id}/custom/{step}.
func (s *Server) SetCustomAnswer(w http.ResponseWriter, r *http.Request) {
	stepID, ok := stepParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	text, err := runner.SanitizeInput(body.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	state, err := s.Wizard.CustomAnswer(r.Context(), chi.URLParam(r, "id"), stepID, text)
	s.respond(w, r, http.StatusOK, state, err)
}

// SetControls handles PUT /sessions/{id}/controls/{step}.
func (s *Server) SetControls(w http.ResponseWriter, r *http.Request) {
	stepID, ok := stepParam(w, r)
	if !ok {
		return
	}
	var body domain.ControlValue
	if !decodeBody(w, r, &body) {
		return
	}
	state, err := s.Wizard.SetControls(r.Context(), chi.URLParam(r, "id"), stepID, body)
	s.respond(w, r, http.StatusOK, state, err)
}

// SetContact handles PUT /sessions/{id}/contact.
func (s *Server) SetContact(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Contact string `json:"contact"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	state, err := s.Wizard.SetContact(r.Context(), chi.URLParam(r, "id"), body.Contact)
	s.respond(w, r, http.StatusOK, state, err)
}

// Deliver handles POST /sessions/{id}/deliver. Without a body every channel is used.
func (s *Server) Deliver(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Channels []domain.Channel `json:"channels"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}
	for _, ch := range body.Channels {
		switch ch {
		case domain.ChannelPrint, domain.ChannelSave, domain.ChannelEmail:
		default:
			http.Error(w, fmt.Sprintf("unknown channel %q", ch), http.StatusBadRequest)
			return
		}
	}

	notes, err := s.Wizard.Deliver(r.Context(), chi.URLParam(r, "id"), body.Channels...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// SubscribeEvents handles GET /events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var watch []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			watch = append(watch, strings.TrimSpace(f))
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	slog.Info("SSE: subscribed", "session_id", sessionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			slog.Info("SSE: client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matchesWatch(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// matchesWatch reports whether the diff touches one of the watched fields.
func matchesWatch(msg string, watch []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watch {
		switch field {
		case "position":
			if diff.Position != nil {
				return true
			}
		case "status":
			if diff.Status != nil || diff.Generating != nil {
				return true
			}
		case "answers":
			if len(diff.Answers) > 0 || len(diff.CustomAnswers) > 0 || len(diff.ControlsChanged) > 0 {
				return true
			}
		case "result":
			if diff.Result != nil || diff.ResultCleared {
				return true
			}
		}
	}
	return false
}
