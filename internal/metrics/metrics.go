package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/t-fbd/loc-api/internal/loc"
)

const namespace = "locapi"

var (
	FetchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_latency_seconds",
		Help:      "Catalog fetch latency by route.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"route"})
	FetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_total",
		Help:      "Catalog fetches by route and outcome.",
	}, []string{"route", "outcome"})
	RateLimitHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_hits_total",
		Help:      "Catalog HTTP 429 responses.",
	})

	HarvestJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "harvest_jobs_total",
		Help:      "Harvest jobs by outcome (received, invalid, completed, failed).",
	}, []string{"outcome"})
	HarvestRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "harvest_records_total",
		Help:      "Harvested results by outcome (published, duplicate, skipped).",
	}, []string{"outcome"})
	HarvestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "harvest_in_flight",
		Help:      "Harvest jobs currently being processed.",
	})

	CommitErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commit_errors_total",
		Help:      "Kafka CommitMessages failures.",
	})
	CommitPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "commit_pending",
		Help:      "Messages buffered awaiting an in-order commit.",
	})
	CommitLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "commit_latency_seconds",
		Help:      "Kafka commit latency.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	GraphWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "graph_writes_total",
		Help:      "Neo4j writes by payload kind and outcome.",
	}, []string{"kind", "outcome"})

	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "API requests by route and status code.",
	}, []string{"route", "code"})
)

func init() {
	prometheus.MustRegister(
		FetchLatency, FetchTotal, RateLimitHits,
		HarvestJobs, HarvestRecords, HarvestInFlight,
		CommitErrors, CommitPending, CommitLatency,
		GraphWrites, APIRequests,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve runs a /metrics listener on addr until ctx is done.
func Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("metrics shutdown")
		}
	}()

	go func() {
		log.Info().Str("addr", addr).Msg("metrics listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server")
		}
	}()
}

type instrumentedFetcher struct {
	next loc.Fetcher
}

// InstrumentFetcher records latency and outcome for every fetch made through next.
func InstrumentFetcher(next loc.Fetcher) loc.Fetcher {
	return instrumentedFetcher{next: next}
}

func (f instrumentedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	route := RouteOf(url)
	start := time.Now()
	body, err := f.next.Fetch(ctx, url)
	FetchLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	FetchTotal.WithLabelValues(route, outcomeOf(err)).Inc()
	return body, err
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var transportErr *loc.TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode != 0 {
		if transportErr.StatusCode == http.StatusTooManyRequests {
			RateLimitHits.Inc()
		}
		return "http_" + strconv.Itoa(transportErr.StatusCode)
	}
	return "error"
}

// RouteOf maps a catalog URL to a low-cardinality route label: the first path
// segment ("search", "item", "maps"...), or "root".
func RouteOf(rawURL string) string {
	path := loc.PathFromURL(rawURL)
	path = strings.Trim(path, "/")
	if path == "" {
		return "root"
	}
	first, _, _ := strings.Cut(path, "/")
	if first == "robots.txt" {
		return "robots"
	}
	if _, ok := loc.ParseMediaType(first); ok {
		return "format"
	}
	return first
}
