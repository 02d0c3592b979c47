// Package server hosts the task runtime behind HTTP: a one-shot render
// endpoint that executes a component's tasks on the server platform, a
// Prometheus metrics endpoint, and a websocket stream of task lifecycle
// events for debugging.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/GustavoMelloGit/qwik/internal/config"
	qwikerrors "github.com/GustavoMelloGit/qwik/internal/errors"
	"github.com/GustavoMelloGit/qwik/pkg/platform"
	"github.com/GustavoMelloGit/qwik/pkg/qwik"
	"github.com/GustavoMelloGit/qwik/pkg/scheduler"
	"github.com/GustavoMelloGit/qwik/pkg/store"
)

// SetupFunc declares a component's tasks against a fresh container. It runs
// once per render request with a store seeded from the request's query
// parameters.
type SetupFunc func(ctx context.Context, ic *qwik.InvokeContext, st *store.Store) error

// Server hosts render requests over HTTP.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	setup   SetupFunc
	hub     *Hub
	metrics *Metrics
	tracer  trace.Tracer

	registry *prometheus.Registry
	http     *http.Server
}

// New creates a server for cfg. setup is invoked for every render request;
// it must not be nil.
func New(cfg *config.Config, logger *slog.Logger, setup SetupFunc) *Server {
	if setup == nil {
		panic("[QWIK E141] server.New: setup function is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		setup:    setup,
		hub:      NewHub(logger),
		registry: prometheus.NewRegistry(),
		tracer:   otel.Tracer("github.com/GustavoMelloGit/qwik/pkg/server"),
	}
	if cfg.Metrics.Enabled {
		s.metrics = NewMetrics(cfg.Metrics.Namespace, s.registry)
	}
	return s
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/render", s.handleRender)
	r.Get("/healthz", s.handleHealth)

	if s.cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	if s.cfg.Debug {
		r.Get("/debug/events", s.hub.ServeHTTP)
	}
	return r
}

// Start begins serving on the configured address and blocks until Shutdown
// or a listener error.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server listening", "address", s.cfg.Address, "debug", s.cfg.Debug)

	err := s.http.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return qwikerrors.New("E141").Wrap(err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// observe fans a task lifecycle event out to the collectors and the debug
// stream.
func (s *Server) observe(ev qwik.TaskEvent) {
	if s.metrics != nil {
		s.metrics.Observe(ev)
	}
	if s.cfg.Debug {
		s.hub.Broadcast(ev)
	}
}

// renderResult is the JSON response of the render endpoint.
type renderResult struct {
	Element    string         `json:"element"`
	State      map[string]any `json:"state"`
	Tasks      int            `json:"tasks"`
	DurationMS float64        `json:"duration_ms"`
}

// handleRender executes one server render: it builds a fresh container,
// seeds a store from the query string, declares the component's tasks, and
// flushes the scheduler until the dirty set drains. The resulting store
// snapshot is returned as JSON.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "qwik.render",
		trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	start := time.Now()

	manager := store.NewManager()
	sched := scheduler.New(s.logger)
	container := qwik.NewContainer(qwik.ContainerConfig{
		Subs:      manager,
		Platform:  platform.ServerPlatform(),
		Scheduler: sched,
		Hooks:     sched,
		Logger:    s.logger,
		Observer:  s.observe,
	})
	sched.Bind(container)

	el := qwik.NewElement(middleware.GetReqID(ctx))
	el.StartRender()
	st := store.New(manager, stateFromQuery(r))
	ic := qwik.NewInvokeContext(container, el)

	if err := s.setup(ctx, ic, st); err != nil {
		s.renderError(w, span, err, "component setup failed")
		return
	}

	flushCtx, flushSpan := s.tracer.Start(ctx, "qwik.flush")
	err := sched.Flush(flushCtx)
	flushSpan.End()
	if err != nil {
		s.renderError(w, span, err, "task flush failed")
		return
	}

	elCtx := qwik.GetContext(el)
	span.SetAttributes(
		attribute.Int("qwik.tasks", len(elCtx.Watches)),
		attribute.Int("qwik.state_props", st.Len()),
	)

	result := renderResult{
		Element:    el.ID(),
		State:      snapshot(st),
		Tasks:      len(elCtx.Watches),
		DurationMS: float64(time.Since(start)) / float64(time.Millisecond),
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) renderError(w http.ResponseWriter, span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.Error(msg, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": fmt.Sprintf("%s: %v", msg, err),
	})
}

// stateFromQuery seeds the initial store from the request's query string.
// Repeated keys keep the first value.
func stateFromQuery(r *http.Request) map[string]any {
	initial := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			initial[key] = values[0]
		}
	}
	return initial
}

func snapshot(st *store.Store) map[string]any {
	state := make(map[string]any, st.Len())
	for _, key := range st.Keys() {
		state[key] = st.Peek(key)
	}
	return state
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
