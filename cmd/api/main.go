package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/t-fbd/loc-api/common"
	"github.com/t-fbd/loc-api/internal/harvest"
	"github.com/t-fbd/loc-api/internal/kafka"
	"github.com/t-fbd/loc-api/internal/loc"
	"github.com/t-fbd/loc-api/internal/metrics"
	"github.com/t-fbd/loc-api/internal/models"
	"github.com/t-fbd/loc-api/internal/store"
)

// urlResolver rebases built endpoints onto the configured catalog. *loc.Client satisfies it.
type urlResolver interface {
	ResolveURL(ep loc.Endpoint) (string, error)
}

type server struct {
	prod     kafka.JobProducer
	store    store.StatusStore
	resolver urlResolver
}

// harvestResponse is the accepted status plus the first page the harvest will fetch.
type harvestResponse struct {
	models.HarvestStatus
	FirstPage string `json:"first_page"`
}

func newServer(prod kafka.JobProducer, store store.StatusStore, resolver urlResolver) *server {
	return &server{
		prod:     prod,
		store:    store,
		resolver: resolver,
	}
}

func main() {
	common.SetupLogging()

	broker := common.GetEnv("KAFKA_BROKER", "localhost:9092")
	topic := common.GetEnv("KAFKA_TOPIC", "loc.harvest.jobs")
	redisAddr := common.GetEnv("REDIS_ADDR", "localhost:6379")
	statusTTL := common.ParseDuration(common.GetEnv("STATUS_TTL", "24h"), 24*time.Hour)
	baseURL := common.GetEnv("LOC_API_BASE_URL", loc.DefaultBaseURL)
	addr := common.GetEnv("API_ADDR", ":8080")

	prod := kafka.NewProducer(broker, topic)
	defer func() {
		if err := prod.Close(); err != nil {
			log.Error().Err(err).Msg("close producer")
		}
	}()

	statusStore := store.NewRedisStatusStore(redisAddr, store.DefaultStatusPrefix, statusTTL)
	defer func() {
		if err := statusStore.Close(); err != nil {
			log.Error().Err(err).Msg("close status store")
		}
	}()

	srv := newServer(prod, statusStore, loc.NewClient(loc.Config{BaseURL: baseURL}))

	log.Info().Str("addr", addr).Str("topic", topic).Msg("api listening")
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatal().Err(err).Msg("api server")
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/harvest", instrument("harvest", s.handleHarvest))
	mux.Handle("/harvest/", instrument("harvest_status", s.handleHarvestStatus))
	mux.Handle("/preview", instrument("preview", s.handlePreview))
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// handleHarvest enqueues a harvest job and records it as queued.
//
// Method: POST
// Path:   /harvest?kind=...&q=...
// Example:
//
//	curl -X POST "http://localhost:8080/harvest?kind=collection&collection=civil+war+maps&max_pages=3"
func (s *server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	job, err := harvest.JobFromValues(r.Form)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	firstPage, err := s.firstPage(job)
	if err != nil {
		writeBuildError(w, err)
		return
	}

	job.SessionID = newSessionID()
	status := models.HarvestStatus{
		SessionID: job.SessionID,
		Kind:      job.Kind,
		Status:    models.StatusQueued,
		CreatedAt: job.CreatedAt,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := s.prod.WriteJob(ctx, job); err != nil {
		log.Error().Err(err).Str("session_id", job.SessionID).Msg("enqueue job")
		http.Error(w, "failed to enqueue job", http.StatusBadGateway)
		return
	}

	if err := s.store.SetStatus(ctx, status); err != nil {
		log.Error().Err(err).Str("session_id", job.SessionID).Msg("persist status")
		http.Error(w, "failed to persist status", http.StatusBadGateway)
		return
	}

	log.Info().Str("session_id", job.SessionID).Str("kind", string(job.Kind)).Str("first_page", firstPage).Msg("harvest queued")
	writeJSON(w, harvestResponse{HarvestStatus: status, FirstPage: firstPage}, http.StatusAccepted)
}

// handleHarvestStatus returns status for a previously created harvest session.
//
// Method: GET
// Path:   /harvest/{sessionID}
// Example:
//
//	curl "http://localhost:8080/harvest/20260119120000000000000"
func (s *server) handleHarvestStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/harvest/"), "/")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	status, ok, err := s.store.GetStatus(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("load status")
		http.Error(w, "failed to load status", http.StatusBadGateway)
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, status, http.StatusOK)
}

// handlePreview returns the first-page URL a harvest request would fetch, without fetching it.
//
// Method: GET
// Path:   /preview?kind=...&q=...
// Example:
//
//	curl "http://localhost:8080/preview?kind=format&media=maps&q=ohio"
func (s *server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	job, err := harvest.JobFromValues(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	firstPage, err := s.firstPage(job)
	if err != nil {
		writeBuildError(w, err)
		return
	}
	writeJSON(w, map[string]string{"url": firstPage}, http.StatusOK)
}

func (s *server) firstPage(job models.HarvestJob) (string, error) {
	start, _ := harvest.Pages(job)
	ep, err := harvest.Endpoint(job, start)
	if err != nil {
		return "", err
	}
	return s.resolver.ResolveURL(ep)
}

// writeBuildError maps request-shape errors to 400 and configuration errors to 500.
func writeBuildError(w http.ResponseWriter, err error) {
	var buildErr *loc.BuildError
	if errors.As(err, &buildErr) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Error().Err(err).Msg("resolve url")
	http.Error(w, "failed to resolve url", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, payload any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func newSessionID() string {
	return strings.ReplaceAll(time.Now().UTC().Format("20060102150405.000000000"), ".", "")
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts requests to route by response code.
func instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
	})
}
