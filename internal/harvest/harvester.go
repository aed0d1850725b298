package harvest

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	lkafka "github.com/t-fbd/loc-api/internal/kafka"
	"github.com/t-fbd/loc-api/internal/loc"
	"github.com/t-fbd/loc-api/internal/metrics"
	"github.com/t-fbd/loc-api/internal/models"
	"github.com/t-fbd/loc-api/internal/store"
)

// DefaultDedupeTTL bounds how long a visited item stays claimed.
const DefaultDedupeTTL = 24 * time.Hour

// Catalog is the subset of *loc.Client a harvest walks.
type Catalog interface {
	Search(ctx context.Context, query string, includeCollections bool, opts loc.ListOptions) (*models.SearchResponse, string, error)
	GetFormat(ctx context.Context, media loc.MediaType, query string, opts loc.ListOptions) (*models.FormatResponse, string, error)
	GetCollection(ctx context.Context, name, query string, opts loc.ListOptions) (*models.CollectionResponse, string, error)
	GetCollections(ctx context.Context, query string, opts loc.ListOptions) (*models.CollectionsResponse, string, error)
	ResolveURL(ep loc.Endpoint) (string, error)
}

// Config wires a Harvester. Nil stores and writers disable that step.
type Config struct {
	Catalog   Catalog
	Dedupe    store.DedupeStore
	Status    store.StatusStore
	Records   lkafka.MessageWriter
	Edges     lkafka.MessageWriter
	DLQ       lkafka.MessageWriter
	DedupeTTL time.Duration
	Robots    *loc.RobotsRules
	PageDelay time.Duration
	Logger    *zerolog.Logger
}

// Harvester walks the pages of a listing and publishes what it finds.
type Harvester struct {
	cfg Config
	log zerolog.Logger
}

// page is one decoded listing page reduced to what the harvester needs.
type page struct {
	url     string
	results int
	records []models.HarvestRecord
	hasNext bool
}

// ErrRobotsDisallowed is returned when robots.txt forbids a page URL.
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

func New(cfg Config) *Harvester {
	if cfg.DedupeTTL <= 0 {
		cfg.DedupeTTL = DefaultDedupeTTL
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Harvester{cfg: cfg, log: logger}
}

// Process runs job to completion and returns its final status. Each page is
// one catalog call. The walk stops after MaxPages, at a page without a next
// link, or at an empty page. A failed job is written to the DLQ.
func (h *Harvester) Process(ctx context.Context, job models.HarvestJob) (models.HarvestStatus, error) {
	metrics.HarvestInFlight.Inc()
	defer metrics.HarvestInFlight.Dec()

	status := models.HarvestStatus{
		SessionID: job.SessionID,
		Kind:      job.Kind,
		Status:    models.StatusRunning,
		CreatedAt: job.CreatedAt,
	}
	if status.CreatedAt.IsZero() {
		status.CreatedAt = time.Now().UTC()
	}

	if err := Validate(job); err != nil {
		return h.fail(ctx, job, status, 0, "", err)
	}
	h.saveStatus(ctx, &status)

	start, count := Pages(job)
	for n := start; n < start+count; n++ {
		if n > start && h.cfg.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return h.fail(ctx, job, status, n, status.LastURL, ctx.Err())
			case <-time.After(h.cfg.PageDelay):
			}
		}

		p, err := h.fetchPage(ctx, job, n)
		if err != nil {
			return h.fail(ctx, job, status, n, p.url, err)
		}
		status.Pages++
		status.LastURL = p.url

		for _, record := range p.records {
			published, err := h.publish(ctx, record)
			if err != nil {
				return h.fail(ctx, job, status, n, p.url, err)
			}
			if published {
				status.Records++
				metrics.HarvestRecords.WithLabelValues("published").Inc()
			} else {
				status.Skipped++
				metrics.HarvestRecords.WithLabelValues("duplicate").Inc()
			}
		}
		if skipped := p.results - len(p.records); skipped > 0 {
			status.Skipped += skipped
			metrics.HarvestRecords.WithLabelValues("skipped").Add(float64(skipped))
		}

		h.log.Debug().
			Str("session_id", job.SessionID).
			Str("url", p.url).
			Int("page", n).
			Int("results", p.results).
			Msg("harvested page")

		if p.results == 0 || !p.hasNext {
			break
		}
		h.saveStatus(ctx, &status)
	}

	status.Status = models.StatusCompleted
	h.saveStatus(ctx, &status)
	metrics.HarvestJobs.WithLabelValues("completed").Inc()
	h.log.Info().
		Str("session_id", job.SessionID).
		Int("pages", status.Pages).
		Int("records", status.Records).
		Int("skipped", status.Skipped).
		Msg("harvest completed")
	return status, nil
}

// fetchPage resolves page n of job, checks robots.txt and performs the call
// matching the job kind. The returned page carries its URL even on error.
func (h *Harvester) fetchPage(ctx context.Context, job models.HarvestJob, n int) (page, error) {
	ep, err := Endpoint(job, n)
	if err != nil {
		return page{}, err
	}
	pageURL, err := h.cfg.Catalog.ResolveURL(ep)
	if err != nil {
		return page{}, err
	}
	if !h.cfg.Robots.AllowedURL(pageURL) {
		return page{url: pageURL}, ErrRobotsDisallowed
	}

	var (
		results    []models.ResultItem
		pagination *models.Pagination
		finalURL   string
	)
	switch e := ep.(type) {
	case loc.SearchEndpoint:
		var resp *models.SearchResponse
		resp, finalURL, err = h.cfg.Catalog.Search(ctx, job.Query, false, listOptions(e.Params.Common))
		if resp != nil {
			results, pagination = resp.Results, resp.Pagination
		}
	case loc.FormatEndpoint:
		var resp *models.FormatResponse
		resp, finalURL, err = h.cfg.Catalog.GetFormat(ctx, e.Media, job.Query, listOptions(e.Params))
		if resp != nil {
			results, pagination = resp.Results, resp.Pagination
		}
	case loc.CollectionEndpoint:
		var resp *models.CollectionResponse
		resp, finalURL, err = h.cfg.Catalog.GetCollection(ctx, e.Name, job.Query, listOptions(e.Params))
		if resp != nil {
			results, pagination = resp.Results, resp.Pagination
		}
	case loc.CollectionsEndpoint:
		var resp *models.CollectionsResponse
		resp, finalURL, err = h.cfg.Catalog.GetCollections(ctx, job.Query, listOptions(e.Params))
		if err != nil {
			return page{url: pick(finalURL, pageURL)}, err
		}
		p := page{url: pick(finalURL, pageURL), results: len(resp.Results)}
		for _, item := range resp.Results {
			if record, ok := models.NewCollectionRecord(job, p.url, item); ok {
				p.records = append(p.records, record)
			}
		}
		_, p.hasNext = resp.Pagination.NextURL()
		return p, nil
	default:
		return page{url: pageURL}, errors.Errorf("unsupported endpoint %T", ep)
	}
	if err != nil {
		return page{url: pick(finalURL, pageURL)}, err
	}

	p := page{url: pick(finalURL, pageURL), results: len(results)}
	for _, item := range results {
		if record, ok := models.NewHarvestRecord(job, p.url, item); ok {
			p.records = append(p.records, record)
		}
	}
	_, p.hasNext = pagination.NextURL()
	return p, nil
}

// publish claims the record in the dedupe store and writes it with its edges.
// It reports false when the record was already claimed.
func (h *Harvester) publish(ctx context.Context, record models.HarvestRecord) (bool, error) {
	if h.cfg.Dedupe != nil {
		claimed, err := h.cfg.Dedupe.SetNX(ctx, store.ItemKey(record.NodeType, record.ItemID), record.SessionID, h.cfg.DedupeTTL)
		if err != nil {
			return false, errors.Wrap(err, "dedupe")
		}
		if !claimed {
			return false, nil
		}
	}
	if err := lkafka.Publish(ctx, h.cfg.Records, record.ItemID, record); err != nil {
		return false, errors.Wrap(err, "publish record")
	}
	for _, edge := range models.EdgesFor(record) {
		if err := lkafka.Publish(ctx, h.cfg.Edges, edge.From, edge); err != nil {
			return false, errors.Wrap(err, "publish edge")
		}
	}
	return true, nil
}

func (h *Harvester) fail(ctx context.Context, job models.HarvestJob, status models.HarvestStatus, n int, pageURL string, cause error) (models.HarvestStatus, error) {
	status.Status = models.StatusFailed
	status.Error = cause.Error()
	if pageURL != "" {
		status.LastURL = pageURL
	}
	h.saveStatus(ctx, &status)
	metrics.HarvestJobs.WithLabelValues("failed").Inc()

	failure := models.HarvestFailure{
		SessionID: job.SessionID,
		Kind:      job.Kind,
		URL:       pageURL,
		Page:      n,
		Error:     cause.Error(),
		FailedAt:  time.Now().UTC(),
	}
	if err := lkafka.Publish(ctx, h.cfg.DLQ, job.SessionID, failure); err != nil {
		h.log.Error().Err(err).Str("session_id", job.SessionID).Msg("dlq publish")
	}
	h.log.Warn().Err(cause).Str("session_id", job.SessionID).Str("url", pageURL).Msg("harvest failed")
	return status, cause
}

func (h *Harvester) saveStatus(ctx context.Context, status *models.HarvestStatus) {
	if h.cfg.Status == nil {
		return
	}
	status.UpdatedAt = time.Now().UTC()
	if err := h.cfg.Status.SetStatus(ctx, *status); err != nil {
		h.log.Error().Err(err).Str("session_id", status.SessionID).Msg("status update")
	}
}

// listOptions recovers the facade options from built params. The query is
// passed separately because the facade applies its own "+" conversion.
func listOptions(p loc.CommonParams) loc.ListOptions {
	return loc.ListOptions{
		Attributes: p.Attributes,
		Filter:     p.Filter,
		PerPage:    p.PerPage,
		Page:       p.Page,
		Sort:       p.Sort,
	}
}

func pick(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
