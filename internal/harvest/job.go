package harvest

import (
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/t-fbd/loc-api/common"
	"github.com/t-fbd/loc-api/internal/loc"
	"github.com/t-fbd/loc-api/internal/models"
)

const (
	DefaultMaxPages = 1
	MaxPagesLimit   = 100
	MaxPerPage      = 1000
)

// JobFromValues parses a harvest request from query or form values:
//
//	kind=search|collections|collection|format  q=<text>  collection=<name>
//	media=<maps|audio|...>  fa=<field:value>[|...]  c=<per page>  sp=<start page>
//	max_pages=<n>  sb=<sort>  session_id=<id>
//
// kind defaults to search. fa may repeat. The job is validated before it is returned.
func JobFromValues(values url.Values) (models.HarvestJob, error) {
	kind := models.HarvestKind(strings.ToLower(strings.TrimSpace(values.Get("kind"))))
	if kind == "" {
		kind = models.HarvestSearch
	}

	var filters []string
	for _, raw := range values["fa"] {
		filters = append(filters, common.SplitList(raw, "|")...)
	}

	job := models.HarvestJob{
		SessionID:  strings.TrimSpace(values.Get("session_id")),
		Kind:       kind,
		Query:      strings.TrimSpace(values.Get("q")),
		Collection: strings.TrimSpace(values.Get("collection")),
		Media:      strings.ToLower(strings.TrimSpace(values.Get("media"))),
		Filters:    filters,
		PerPage:    common.ParseInt(values.Get("c"), 0),
		StartPage:  common.ParseInt(values.Get("sp"), 0),
		MaxPages:   common.ParseInt(values.Get("max_pages"), DefaultMaxPages),
		Sort:       strings.TrimSpace(values.Get("sb")),
		CreatedAt:  time.Now().UTC(),
	}
	if err := Validate(job); err != nil {
		return models.HarvestJob{}, err
	}
	return job, nil
}

// Validate rejects jobs that cannot produce a first-page URL, including an
// empty search.
func Validate(job models.HarvestJob) error {
	if !job.Kind.Valid() {
		return errors.Errorf("unknown harvest kind %q", job.Kind)
	}
	if job.MaxPages < 0 || job.MaxPages > MaxPagesLimit {
		return errors.Errorf("max_pages must be between 0 and %d", MaxPagesLimit)
	}
	if job.PerPage < 0 || job.PerPage > MaxPerPage {
		return errors.Errorf("per page must be between 0 and %d", MaxPerPage)
	}
	if job.StartPage < 0 {
		return errors.New("start page must not be negative")
	}
	if job.Sort != "" {
		if _, ok := loc.ParseSortField(job.Sort); !ok {
			return errors.Errorf("unknown sort %q", job.Sort)
		}
	}
	ep, err := Endpoint(job, 0)
	if err != nil {
		return err
	}
	_, err = ep.URL()
	return err
}

// Endpoint builds the listing endpoint for one page of job. A zero page leaves
// the page clause at its default.
func Endpoint(job models.HarvestJob, page int) (loc.Endpoint, error) {
	opts := loc.ListOptions{
		PerPage: job.PerPage,
		Page:    page,
	}
	if len(job.Filters) > 0 {
		opts.Filter = &loc.FacetFilter{Filters: job.Filters}
	}
	if sort, ok := loc.ParseSortField(job.Sort); ok {
		opts.Sort = sort
	}

	target := ""
	switch job.Kind {
	case models.HarvestCollection:
		target = job.Collection
	case models.HarvestFormat:
		target = job.Media
	}
	return loc.Listing(string(job.Kind), target, job.Query, opts)
}

// Pages returns the first page and the number of pages job walks.
func Pages(job models.HarvestJob) (start, count int) {
	start = job.StartPage
	if start <= 0 {
		start = 1
	}
	count = job.MaxPages
	if count <= 0 {
		count = DefaultMaxPages
	}
	return start, count
}
