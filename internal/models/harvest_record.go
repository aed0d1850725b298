package models

import (
	"strings"
	"time"
)

// HarvestRecord is the payload written to the records topic: one catalog
// result flattened to the fields the graph writer stores.
type HarvestRecord struct {
	SessionID    string    `json:"session_id"`
	ItemID       string    `json:"item_id"`
	URL          string    `json:"url"`
	NodeType     NodeType  `json:"node_type"`
	Title        string    `json:"title,omitempty"`
	Date         string    `json:"date,omitempty"`
	Description  string    `json:"description,omitempty"`
	OnlineFormat []string  `json:"online_format,omitempty"`
	Subjects     []string  `json:"subjects,omitempty"`
	Contributors []string  `json:"contributors,omitempty"`
	PartOf       []string  `json:"partof,omitempty"`
	PageURL      string    `json:"page_url"`
	HarvestedAt  time.Time `json:"harvested_at"`
}

// NewHarvestRecord flattens a listing result. ok is false when the result
// carries no id to key it by.
func NewHarvestRecord(job HarvestJob, pageURL string, r ResultItem) (HarvestRecord, bool) {
	rawID := FirstOf(r.ID)
	if rawID == "" {
		rawID = FirstOf(r.URL)
	}
	itemID := ItemIDFromURL(rawID)
	if itemID == "" {
		return HarvestRecord{}, false
	}
	url := FirstOf(r.URL)
	if url == "" {
		url = rawID
	}
	return HarvestRecord{
		SessionID:    job.SessionID,
		ItemID:       itemID,
		URL:          url,
		NodeType:     NodeTypeItem,
		Title:        FirstOf(r.Title),
		Date:         FirstOf(r.Date),
		Description:  FirstOf(r.Description),
		OnlineFormat: ValuesOf(r.OnlineFormat),
		Subjects:     ValuesOf(r.Subject),
		Contributors: ValuesOf(r.Contributor),
		PartOf:       ValuesOf(r.PartOf),
		PageURL:      pageURL,
		HarvestedAt:  time.Now().UTC(),
	}, true
}

// NewCollectionRecord flattens one entry of the collections listing.
func NewCollectionRecord(job HarvestJob, pageURL string, c CollectionItem) (HarvestRecord, bool) {
	url := FirstOf(c.URL)
	if url == "" {
		url = FirstOf(c.ID)
	}
	itemID := ItemIDFromURL(url)
	if itemID == "" {
		return HarvestRecord{}, false
	}
	return HarvestRecord{
		SessionID:   job.SessionID,
		ItemID:      itemID,
		URL:         url,
		NodeType:    NodeTypeCollection,
		Title:       FirstOf(c.Title),
		Description: FirstOf(c.Description),
		Subjects:    ValuesOf(c.Subject),
		PageURL:     pageURL,
		HarvestedAt: time.Now().UTC(),
	}, true
}

// ItemIDFromURL returns the last path segment of a catalog URL
// ("https://www.loc.gov/item/2014717546/" -> "2014717546"). Bare ids pass through.
func ItemIDFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimRight(raw, "/")
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		raw = raw[i+1:]
	}
	return raw
}
