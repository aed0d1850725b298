package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchResponseKeepsUnknownKeys(t *testing.T) {
	payload := []byte(`{
		"facets": {"type": "subject", "filters": [{"count": "12", "term": "maps", "on": "https://www.loc.gov/search/?fa=subject:maps"}]},
		"pagination": {"current": 2, "perpage": "25", "next": "https://www.loc.gov/search/?sp=3", "page_list": [{"number": 1, "url": "u1"}]},
		"results": [{"id": "x", "number": ["1", "2"], "type": "item", "brand_new": {"k": 1}}],
		"search": {"query": "maps"},
		"timestamp": 1700000000
	}`)
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(payload, &resp))

	require.False(t, resp.Facets.IsMany())
	facet := FirstOf(resp.Facets)
	require.Equal(t, "subject", FirstOf(facet.Type))
	count, err := FirstOf(facet.Filters).Count.Int()
	require.NoError(t, err)
	require.EqualValues(t, 12, count)

	next, ok := resp.Pagination.NextURL()
	require.True(t, ok)
	require.Equal(t, "https://www.loc.gov/search/?sp=3", next)
	require.Len(t, ValuesOf(resp.Pagination.PageList), 1)

	require.Len(t, resp.Results, 1)
	result := resp.Results[0]
	require.Equal(t, []string{"1", "2"}, ValuesOf(result.Number))
	require.Equal(t, "item", FirstOf(result.Type))
	require.JSONEq(t, `{"k": 1}`, string(result.Extra["brand_new"]))

	require.Len(t, resp.Extra, 2)
	require.JSONEq(t, `{"query": "maps"}`, string(resp.Extra["search"]))
	require.NotContains(t, resp.Extra, "results")
}

func TestSearchResponseRoundTripPreservesExtra(t *testing.T) {
	payload := []byte(`{"results": [{"id": "x", "custom": true}], "search": {"query": "maps"}}`)
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(payload, &resp))

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	require.JSONEq(t, string(payload), string(out))
}

func TestKnownKeysMatchCaseInsensitively(t *testing.T) {
	var resp SearchResponse
	require.NoError(t, json.Unmarshal([]byte(`{"Pagination": {"current": 1}}`), &resp))
	require.NotNil(t, resp.Pagination)
	require.Empty(t, resp.Extra)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	require.JSONEq(t, `{"pagination": {"current": 1}}`, string(out))
}

func TestFacetsAsList(t *testing.T) {
	var resp FormatResponse
	require.NoError(t, json.Unmarshal([]byte(`{"facets": [{"type": "a"}, {"type": "b"}]}`), &resp))
	require.True(t, resp.Facets.IsMany())
	require.Equal(t, 2, resp.Facets.Len())
}

func TestPaginationNextURLAbsent(t *testing.T) {
	var p *Pagination
	_, ok := p.NextURL()
	require.False(t, ok)

	var resp CollectionResponse
	require.NoError(t, json.Unmarshal([]byte(`{"pagination": {"next": null, "current": 4}}`), &resp))
	_, ok = resp.Pagination.NextURL()
	require.False(t, ok)
}

func TestItemResponseDecode(t *testing.T) {
	payload := []byte(`{
		"item": {
			"title": "Map of the seat of war",
			"contributor_names": ["Smith, John", "Doe, Jane"],
			"subject_headings": "Maps",
			"digitized": true,
			"access_restricted": "false",
			"index": "3",
			"unlisted": 1
		},
		"resources": [{"files": [{"url": "a.jpg", "height": 640}], "size": ["1", 2]}],
		"cite_this": {"apa": "Smith, J."},
		"related_items": [{"title": "other"}]
	}`)
	var resp ItemResponse
	require.NoError(t, json.Unmarshal(payload, &resp))

	detail := FirstOf(resp.Item)
	require.Equal(t, "Map of the seat of war", FirstOf(detail.Title))
	require.Equal(t, []string{"Smith, John", "Doe, Jane"}, ValuesOf(detail.ContributorNames))
	digitized, ok := detail.Digitized.Bool()
	require.True(t, ok)
	require.True(t, digitized)
	restricted, ok := detail.AccessRestricted.Bool()
	require.True(t, ok)
	require.False(t, restricted)
	require.Contains(t, detail.Extra, "unlisted")

	resource := FirstOf(resp.Resources)
	files := FirstOf(resource.Files)
	require.Equal(t, "a.jpg", FirstOf(FirstOf(&files).URL))
	sizes := ValuesOf(resource.Size)
	require.Len(t, sizes, 2)
	require.False(t, sizes[0].IsNumber())
	require.True(t, sizes[1].IsNumber())

	require.Equal(t, "Smith, J.", FirstOf(FirstOf(resp.CiteThis).APA))
	require.Len(t, ValuesOf(resp.RelatedItems), 1)
}

func TestCollectionsResponseDecode(t *testing.T) {
	var resp CollectionsResponse
	require.NoError(t, json.Unmarshal([]byte(`{"results": [{"title": "Civil War Maps", "url": "https://www.loc.gov/collections/civil-war-maps/", "subject": ["maps", "war"]}]}`), &resp))
	require.Len(t, resp.Results, 1)
	require.Equal(t, "Civil War Maps", FirstOf(resp.Results[0].Title))
	require.Equal(t, 2, resp.Results[0].Subject.Len())
}
