// Package httpapi exposes the REST surface of the demo service: a small
// endpoint directory, liveness probes against the managed dependencies, mail
// submission, event publishing, and the Prometheus exposition endpoint.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"

	"github.com/infrademo/infrademo/internal/app/metrics"
	"github.com/infrademo/infrademo/internal/connections"
	"github.com/infrademo/infrademo/internal/mail"
	"github.com/infrademo/infrademo/pkg/logger"
)

// Client-visible error strings. The exact text is part of the HTTP contract;
// monitoring matches on it.
var (
	errRedisUnavailable    = errors.New("Redis unavailable")
	errPostgresUnavailable = errors.New("PostgreSQL unavailable")
	errProduceFailed       = errors.New("Failed to produce event")
	errEventNotObject      = errors.New("event body must be a JSON object")
)

// Dependencies is the view of the connection manager the handlers need.
type Dependencies interface {
	Postgres(ctx context.Context) (*sql.DB, error)
	Redis(ctx context.Context) (*redis.Client, error)
	Kafka(ctx context.Context) (message.Publisher, error)
}

// Mailer submits one message to the SMTP relay.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// handler bundles the HTTP endpoints over the shared dependency handles.
type handler struct {
	deps     Dependencies
	mailer   Mailer
	log      *logger.Logger
	validate *validator.Validate
}

// NewHandler returns a router exposing the service endpoints.
func NewHandler(deps Dependencies, mailer Mailer, log *logger.Logger) http.Handler {
	h := &handler{
		deps:     deps,
		mailer:   mailer,
		log:      log,
		validate: validator.New(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/ping", h.ping).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/sendmail", h.sendMail).Methods(http.MethodPost)
	r.HandleFunc("/event", h.publishEvent).Methods(http.MethodPost)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	return r
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Message   string            `json:"message"`
		Endpoints map[string]string `json:"endpoints"`
	}{
		Message: "Welcome to Infra Demo API",
		Endpoints: map[string]string{
			"ping":     "/ping",
			"metrics":  "/metrics",
			"sendmail": "/sendmail",
			"event":    "/event",
			"health":   "/health",
		},
	})
}

// ping touches Redis and Postgres on every call. The unnamespaced request
// counter only ticks here; see the metrics package.
func (h *handler) ping(w http.ResponseWriter, r *http.Request) {
	metrics.CountLegacyRequest()
	ctx := r.Context()

	rdb, err := h.deps.Redis(ctx)
	if err != nil {
		h.log.WithError(err).Error("ping: redis handle unavailable")
		writeError(w, http.StatusServiceUnavailable, errRedisUnavailable)
		return
	}
	hits, err := rdb.Incr(ctx, "hits").Result()
	if err != nil {
		h.log.WithError(err).Error("ping: redis INCR failed")
		writeError(w, http.StatusServiceUnavailable, errRedisUnavailable)
		return
	}

	db, err := h.deps.Postgres(ctx)
	if err != nil {
		h.log.WithError(err).Error("ping: postgres handle unavailable")
		writeError(w, http.StatusServiceUnavailable, errPostgresUnavailable)
		return
	}
	var now time.Time
	if err := db.QueryRowContext(ctx, "SELECT NOW()").Scan(&now); err != nil {
		h.log.WithError(err).Error("ping: postgres query failed")
		writeError(w, http.StatusServiceUnavailable, errPostgresUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		Hits   int64  `json:"hits"`
		Time   string `json:"time"`
	}{
		Status: "ok",
		Hits:   hits,
		Time:   now.Format(time.RFC3339),
	})
}

func (h *handler) sendMail(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ToEmail   string `json:"to_email" validate:"required,email"`
		FromEmail string `json:"from_email" validate:"required,email"`
		Subject   string `json:"subject" validate:"required"`
		Body      string `json:"body" validate:"required"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err := h.validate.Struct(&payload); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	msg := mail.Message{
		To:      payload.ToEmail,
		From:    payload.FromEmail,
		Subject: payload.Subject,
		Body:    payload.Body,
	}
	if err := h.mailer.Send(r.Context(), msg); err != nil {
		h.log.WithError(err).Error("sendmail: relay submission failed")
		writeError(w, http.StatusInternalServerError, fmt.Errorf("Email sending failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "sent"})
}

// publishEvent forwards the request body verbatim to the events topic. Any
// JSON object is accepted; the payload is not interpreted here.
func (h *handler) publishEvent(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		writeError(w, http.StatusUnprocessableEntity, errEventNotObject)
		return
	}

	pub, err := h.deps.Kafka(r.Context())
	if err != nil {
		h.log.WithError(err).Error("event: kafka handle unavailable")
		writeError(w, http.StatusInternalServerError, errProduceFailed)
		return
	}

	err = pub.Publish(connections.EventsTopic, message.NewMessage(watermill.NewUUID(), body))
	metrics.RecordEventPublish(err == nil)
	if err != nil {
		h.log.WithError(err).Error("event: publish failed")
		writeError(w, http.StatusInternalServerError, errProduceFailed)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

// health probes all three dependencies independently and always reports all
// of them. The endpoint itself never fails: an unreachable dependency shows
// up as an error entry and flips the status to 503.
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	services := make(map[string]string, 3)
	healthy := true

	record := func(kind connections.Kind, err error) {
		if err != nil {
			services[string(kind)] = "error: " + err.Error()
			healthy = false
			return
		}
		services[string(kind)] = "ok"
	}

	record(connections.KindPostgres, h.checkPostgres(ctx))
	record(connections.KindRedis, h.checkRedis(ctx))
	record(connections.KindKafka, h.checkKafka(ctx))

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}{Status: status, Services: services})
}

func (h *handler) checkPostgres(ctx context.Context) error {
	db, err := h.deps.Postgres(ctx)
	if err != nil {
		return err
	}
	var one int
	return db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

func (h *handler) checkRedis(ctx context.Context) error {
	rdb, err := h.deps.Redis(ctx)
	if err != nil {
		return err
	}
	return rdb.Ping(ctx).Err()
}

func (h *handler) checkKafka(ctx context.Context) error {
	_, err := h.deps.Kafka(ctx)
	return err
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": err.Error()})
}
