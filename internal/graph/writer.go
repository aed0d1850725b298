package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"

	"github.com/t-fbd/loc-api/internal/models"
)

// Writer merges harvest records and edges into Neo4j.
type Writer struct {
	driver DriverSessioner
}

func NewWriter(driver DriverSessioner) *Writer {
	return &Writer{driver: driver}
}

// WriteRecord merges the record's node. Records without an id are ignored.
func (w *Writer) WriteRecord(ctx context.Context, record models.HarvestRecord) error {
	if record.ItemID == "" {
		return nil
	}
	query, params := BuildRecordQuery(record)
	return w.runWrite(ctx, query, params)
}

// WriteEdge merges both endpoints and the relationship between them.
func (w *Writer) WriteEdge(ctx context.Context, edge models.Edge) error {
	if edge.From == "" || edge.To == "" {
		return nil
	}
	query, params := BuildEdgeQuery(edge)
	return w.runWrite(ctx, query, params)
}

func (w *Writer) runWrite(ctx context.Context, query string, params map[string]any) error {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() {
		if err := session.Close(ctx); err != nil {
			log.Error().Err(err).Msg("neo4j session close")
		}
	}()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	return err
}

// BuildRecordQuery merges an Item or Collection node keyed by item_id.
// Empty fields never overwrite stored values.
func BuildRecordQuery(record models.HarvestRecord) (string, map[string]any) {
	label, prop := nodeLabel(record.NodeType)
	query := fmt.Sprintf("MERGE (n:%s {%s: $key}) ", label, prop) +
		"SET n.session_id = $session_id, " +
		"n.url = coalesce($url, n.url), " +
		"n.title = coalesce($title, n.title), " +
		"n.date = coalesce($date, n.date), " +
		"n.description = coalesce($description, n.description), " +
		"n.online_format = coalesce($online_format, n.online_format)"
	params := map[string]any{
		"key":           record.ItemID,
		"session_id":    record.SessionID,
		"url":           nullable(record.URL),
		"title":         nullable(record.Title),
		"date":          nullable(record.Date),
		"description":   nullable(record.Description),
		"online_format": nullableList(record.OnlineFormat),
	}
	return query, params
}

// BuildEdgeQuery merges the edge endpoints by their node types and links them.
func BuildEdgeQuery(edge models.Edge) (string, map[string]any) {
	fromLabel, fromProp := nodeLabel(edge.FromType)
	toLabel, toProp := nodeLabel(edge.ToType)
	rel := relationType(edge.Relation)

	query := fmt.Sprintf(
		"MERGE (from:%s {%s: $fromKey}) "+
			"MERGE (to:%s {%s: $toKey}) "+
			"MERGE (from)-[r:%s {session_id: $session_id}]->(to)",
		fromLabel, fromProp,
		toLabel, toProp,
		rel,
	)

	params := map[string]any{
		"fromKey":    edge.From,
		"toKey":      edge.To,
		"session_id": edge.SessionID,
	}
	return query, params
}

func nodeLabel(t models.NodeType) (label string, property string) {
	switch t {
	case models.NodeTypeItem, "":
		return "Item", "item_id"
	case models.NodeTypeCollection:
		return "Collection", "item_id"
	case models.NodeTypeSubject:
		return "Subject", "name"
	case models.NodeTypeContributor:
		return "Contributor", "name"
	case models.NodeTypePartOf:
		return "PartOf", "name"
	default:
		return "External", "key"
	}
}

// relationType upper-cases a relation into a Cypher relationship type,
// dropping anything outside [A-Z0-9_] so labels cannot inject Cypher.
func relationType(input string) string {
	input = strings.ToUpper(strings.ReplaceAll(input, "-", "_"))
	var b strings.Builder
	for _, r := range input {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "RELATED"
	}
	return b.String()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableList(values []string) any {
	if len(values) == 0 {
		return nil
	}
	return values
}
