package store

import (
	"context"
	"time"

	"github.com/t-fbd/loc-api/internal/models"
)

//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks github.com/t-fbd/loc-api/internal/store StatusStore,DedupeStore

// StatusStore persists harvest session status.
type StatusStore interface {
	SetStatus(ctx context.Context, status models.HarvestStatus) error
	GetStatus(ctx context.Context, sessionID string) (models.HarvestStatus, bool, error)
}

// DedupeStore claims keys so a result is harvested once per TTL window.
type DedupeStore interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// DefaultStatusPrefix namespaces status keys shared by the api and the harvester.
const DefaultStatusPrefix = "harvest:status:"

// ItemKey is the dedupe key for a harvested result.
func ItemKey(nodeType models.NodeType, itemID string) string {
	return "visited:" + string(nodeType) + ":" + itemID
}
