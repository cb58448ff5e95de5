// Package server exposes the HTTP surface: the Slack events webhook, the
// monitoring dashboard, and the JSON stats/logs endpoints behind it.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-qualifier/internal/activity"
	"github.com/sells-group/lead-qualifier/internal/model"
)

// Runner executes the qualification pipeline for one inbound message.
type Runner interface {
	Run(ctx context.Context, channel, threadTS, text string) model.ActivityEntry
}

// Server serves the webhook and dashboard endpoints.
type Server struct {
	runner       Runner
	log          *activity.Log
	channelAllow []string

	// baseCtx is the lifecycle context for detached pipeline runs; webhook
	// deliveries are acknowledged before the run finishes.
	baseCtx context.Context
}

// New creates a Server. channelAllow restricts which Slack channels are
// processed; empty means all channels.
func New(baseCtx context.Context, runner Runner, log *activity.Log, channelAllow []string) *Server {
	return &Server{
		runner:       runner,
		log:          log,
		channelAllow: channelAllow,
		baseCtx:      baseCtx,
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/webhook", s.handleWebhook)
	r.Get("/", s.handleDashboard)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/logs", s.handleLogs)
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "lead-qualifier",
	})
}

// slackEnvelope is the outer payload of a Slack Events API delivery.
type slackEnvelope struct {
	Type      string     `json:"type"`
	Challenge string     `json:"challenge"`
	Event     slackEvent `json:"event"`
}

type slackEvent struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	BotID   string `json:"bot_id"`
	Text    string `json:"text"`
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// handleWebhook acknowledges the delivery immediately and runs the pipeline
// on a detached goroutine. Slack retries deliveries that take longer than a
// few seconds, so blocking here would double-process every lead.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var env slackEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if env.Type == "url_verification" {
		zap.L().Info("webhook url verification")
		writeJSON(w, http.StatusOK, map[string]string{"challenge": env.Challenge})
		return
	}

	if env.Type != "event_callback" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ev := env.Event
	switch {
	case ev.BotID != "" || ev.Subtype != "":
		zap.L().Debug("skipping bot or subtype message", zap.String("subtype", ev.Subtype))
	case ev.Type != "message":
		zap.L().Debug("skipping non-message event", zap.String("type", ev.Type))
	case ev.Text == "" || ev.Channel == "":
		zap.L().Debug("skipping empty message")
	case !s.channelAllowed(ev.Channel):
		zap.L().Debug("skipping disallowed channel", zap.String("channel", ev.Channel))
	default:
		// Detached from the request: chi's Recoverer cannot see this
		// goroutine, so it carries its own recover.
		go func() {
			defer func() {
				if r := recover(); r != nil {
					zap.L().Error("webhook run panicked",
						zap.Any("panic", r),
						zap.String("channel", ev.Channel),
						zap.Stack("stack"))
				}
			}()
			s.runner.Run(s.baseCtx, ev.Channel, ev.TS, ev.Text)
		}()
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) channelAllowed(channel string) bool {
	return len(s.channelAllow) == 0 || slices.Contains(s.channelAllow, channel)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats, _ := s.log.Snapshot(0)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleLogs(w http.ResponseWriter, _ *http.Request) {
	_, entries := s.log.Snapshot(50)
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
