package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemIDFromURL(t *testing.T) {
	cases := map[string]string{
		"http://www.loc.gov/item/2014717546/":           "2014717546",
		"https://www.loc.gov/resource/g3701e.ct000001/": "g3701e.ct000001",
		"https://www.loc.gov/item/99/?fo=json":          "99",
		"sn83030214":                                    "sn83030214",
		"":                                              "",
		"   ":                                           "",
	}
	for in, want := range cases {
		require.Equal(t, want, ItemIDFromURL(in), in)
	}
}

func TestNewHarvestRecordAndEdges(t *testing.T) {
	job := HarvestJob{SessionID: "s1", Kind: HarvestSearch}
	result := ResultItem{
		ID:          ptr(One("http://www.loc.gov/item/2014717546/")),
		URL:         ptr(One("https://www.loc.gov/item/2014717546/")),
		Title:       ptr(One("Map of the seat of war")),
		Subject:     ptr(Many("maps", "civil war", "maps", " ")),
		Contributor: ptr(One("Smith, John")),
		PartOf:      ptr(Many("civil war maps")),
	}
	record, ok := NewHarvestRecord(job, "https://www.loc.gov/search/?fo=json&&q=maps&sp=1", result)
	require.True(t, ok)
	require.Equal(t, "2014717546", record.ItemID)
	require.Equal(t, NodeTypeItem, record.NodeType)
	require.Equal(t, "Map of the seat of war", record.Title)
	require.Equal(t, "s1", record.SessionID)

	edges := EdgesFor(record)
	require.Len(t, edges, 4)
	require.Equal(t, Edge{SessionID: "s1", From: "2014717546", FromType: NodeTypeItem, To: "maps", ToType: NodeTypeSubject, Relation: RelationSubject}, edges[0])
	require.Equal(t, "civil war", edges[1].To)
	require.Equal(t, RelationContributor, edges[2].Relation)
	require.Equal(t, RelationPartOf, edges[3].Relation)
}

func TestNewHarvestRecordWithoutID(t *testing.T) {
	_, ok := NewHarvestRecord(HarvestJob{}, "", ResultItem{Title: ptr(One("untitled"))})
	require.False(t, ok)
}

func TestNewCollectionRecord(t *testing.T) {
	record, ok := NewCollectionRecord(HarvestJob{SessionID: "s2"}, "p", CollectionItem{
		URL:     ptr(One("https://www.loc.gov/collections/civil-war-maps/")),
		Title:   ptr(One("Civil War Maps")),
		Subject: ptr(One("maps")),
	})
	require.True(t, ok)
	require.Equal(t, "civil-war-maps", record.ItemID)
	require.Equal(t, NodeTypeCollection, record.NodeType)
	require.Len(t, EdgesFor(record), 1)
}
