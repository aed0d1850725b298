package models

import "strings"

// NodeType labels a graph node.
type NodeType string

const (
	NodeTypeItem        NodeType = "item"
	NodeTypeCollection  NodeType = "collection"
	NodeTypeSubject     NodeType = "subject"
	NodeTypeContributor NodeType = "contributor"
	NodeTypePartOf      NodeType = "partof"
)

const (
	RelationSubject     = "item_subject"
	RelationContributor = "item_contributor"
	RelationPartOf      = "item_partof"
)

// Edge represents a relationship between two nodes.
type Edge struct {
	SessionID string   `json:"session_id"`
	From      string   `json:"from"`
	FromType  NodeType `json:"from_type"`
	To        string   `json:"to"`
	ToType    NodeType `json:"to_type"`
	Relation  string   `json:"relation"`
}

// EdgesFor lists the edges from a record to its subjects, contributors and
// parent sets. Blank and repeated targets are skipped.
func EdgesFor(record HarvestRecord) []Edge {
	var edges []Edge
	add := func(targets []string, toType NodeType, relation string) {
		seen := make(map[string]struct{}, len(targets))
		for _, to := range targets {
			to = strings.TrimSpace(to)
			if to == "" {
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			edges = append(edges, Edge{
				SessionID: record.SessionID,
				From:      record.ItemID,
				FromType:  record.NodeType,
				To:        to,
				ToType:    toType,
				Relation:  relation,
			})
		}
	}
	add(record.Subjects, NodeTypeSubject, RelationSubject)
	add(record.Contributors, NodeTypeContributor, RelationContributor)
	add(record.PartOf, NodeTypePartOf, RelationPartOf)
	return edges
}
