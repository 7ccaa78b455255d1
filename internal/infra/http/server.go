package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"yakmarket-admin-bot/internal/config"
	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/infra/adapters/strapi"
	"yakmarket-admin-bot/internal/infra/logging"
	"yakmarket-admin-bot/internal/infra/metrics"
	"yakmarket-admin-bot/internal/infra/worker"
)

const (
	eventEntryCreate = "entry.create"
	maxWebhookBody   = 1 << 20
)

// Notifier fans a freshly created product out to operators.
type Notifier interface {
	NotifyNewProduct(ctx context.Context, p *model.Product) (int, error)
}

// Dispatcher runs work detached from the request. Implemented by worker.Pool.
type Dispatcher interface {
	Dispatch(task worker.Task) error
}

// webhookEvent is the envelope Strapi posts on content changes.
type webhookEvent struct {
	Event string          `json:"event"`
	Model string          `json:"model"`
	Entry json.RawMessage `json:"entry"`
}

type Server struct {
	cfg          config.WebhookConfig
	mediaBaseURL string
	models       map[string]struct{}
	notifier     Notifier
	pool         Dispatcher
	now          func() time.Time
	log          *zerolog.Logger

	server *http.Server
}

func NewServer(cfg config.WebhookConfig, mediaBaseURL string, notifier Notifier, pool Dispatcher, logger *zerolog.Logger) *Server {
	models := make(map[string]struct{}, len(cfg.ProductModels))
	for _, m := range cfg.ProductModels {
		models[m] = struct{}{}
	}
	l := logger.With().Str("component", "http").Logger()
	return &Server{
		cfg:          cfg,
		mediaBaseURL: mediaBaseURL,
		models:       models,
		notifier:     notifier,
		pool:         pool,
		now:          time.Now,
		log:          &l,
	}
}

// Handler builds the router with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	webhook := BearerSecret(s.cfg.Secret, s.log)(http.HandlerFunc(s.handleWebhook))
	r.Method(http.MethodPost, s.cfg.Path, webhook)
	if s.cfg.Path != "/strapi-webhook" {
		r.Method(http.MethodPost, "/strapi-webhook", webhook)
	}
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return Chain(r, Recover(s.log), TraceID(), RequestLog(s.log), Timeout(timeout))
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Str("addr", s.server.Addr).Str("webhook", s.cfg.Path).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"bot":       "running",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), s.log)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		metrics.IncWebhookEvent("error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		metrics.IncWebhookEvent("error")
		log.Warn().Err(err).Msg("undecodable webhook body")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	log.Info().Str("event", ev.Event).Str("model", ev.Model).Msg("webhook received")

	if !s.isProductCreate(ev) {
		metrics.IncWebhookEvent("ignored")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	p, err := strapi.ParseProduct(ev.Entry, s.mediaBaseURL)
	if err != nil {
		metrics.IncWebhookEvent("error")
		log.Warn().Err(err).Msg("malformed product entry")
		msg := "malformed entry"
		if !errors.Is(err, domain.ErrMalformedEvent) {
			msg = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
		return
	}

	traceID := logging.TraceID(r.Context())
	err = s.pool.Dispatch(func(ctx context.Context) error {
		ctx = logging.WithEntityID(logging.WithTraceID(ctx, traceID), p.ID.String())
		_, err := s.notifier.NotifyNewProduct(ctx, p)
		return err
	})
	if err != nil {
		metrics.IncWebhookEvent("error")
		log.Error().Err(err).Str("product_id", p.ID.String()).Msg("fan-out not scheduled")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	metrics.IncWebhookEvent("notified")
	writeJSON(w, http.StatusOK, map[string]string{"status": "notified"})
}

func (s *Server) isProductCreate(ev webhookEvent) bool {
	if ev.Event != eventEntryCreate {
		return false
	}
	_, ok := s.models[strings.TrimSpace(ev.Model)]
	return ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
