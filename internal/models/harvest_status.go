package models

import "time"

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// HarvestStatus tracks the state of a harvest session.
type HarvestStatus struct {
	SessionID string      `json:"session_id"`
	Kind      HarvestKind `json:"kind"`
	Status    string      `json:"status"`
	Pages     int         `json:"pages"`
	Records   int         `json:"records"`
	Skipped   int         `json:"skipped"`
	LastURL   string      `json:"last_url,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at,omitempty"`
}

// Terminal reports whether the session has finished.
func (s HarvestStatus) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}
