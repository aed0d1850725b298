package models

import "time"

// HarvestKind names the listing route a harvest walks.
type HarvestKind string

const (
	HarvestSearch      HarvestKind = "search"
	HarvestCollections HarvestKind = "collections"
	HarvestCollection  HarvestKind = "collection"
	HarvestFormat      HarvestKind = "format"
)

// Valid reports whether k is a known kind.
func (k HarvestKind) Valid() bool {
	switch k {
	case HarvestSearch, HarvestCollections, HarvestCollection, HarvestFormat:
		return true
	}
	return false
}

// HarvestJob is a unit of work on the jobs topic: walk up to MaxPages pages
// of one listing and emit a record per result.
type HarvestJob struct {
	SessionID  string      `json:"session_id"`
	Kind       HarvestKind `json:"kind"`
	Query      string      `json:"query,omitempty"`
	Collection string      `json:"collection,omitempty"`
	Media      string      `json:"media,omitempty"`
	Filters    []string    `json:"filters,omitempty"`
	PerPage    int         `json:"per_page,omitempty"`
	StartPage  int         `json:"start_page,omitempty"`
	MaxPages   int         `json:"max_pages"`
	Sort       string      `json:"sort,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// HarvestFailure captures a failed harvest job for the DLQ.
type HarvestFailure struct {
	SessionID string      `json:"session_id"`
	Kind      HarvestKind `json:"kind"`
	URL       string      `json:"url,omitempty"`
	Page      int         `json:"page"`
	Error     string      `json:"error"`
	FailedAt  time.Time   `json:"failed_at"`
}
