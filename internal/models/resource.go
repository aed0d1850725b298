package models

import "encoding/json"

// ResourceResponse is the /resource/{id}/ payload. It mirrors ItemResponse
// except that resource carries the typed ResourceDetail block.
type ResourceResponse struct {
	Views                      *OneOrMany[json.RawMessage] `json:"views,omitempty"`
	Timestamp                  *NumberOrText               `json:"timestamp,omitempty"`
	Locations                  *TextOrList                 `json:"locations,omitempty"`
	FulltextService            *TextOrList                 `json:"fulltext_service,omitempty"`
	NextIssue                  *TextOrList                 `json:"next_issue,omitempty"`
	NewspaperHoldingsURL       *TextOrList                 `json:"newspaper_holdings_url,omitempty"`
	TitleURL                   *TextOrList                 `json:"title_url,omitempty"`
	Page                       *OneOrMany[Page]            `json:"page,omitempty"`
	Pagination                 *OneOrMany[Pagination]      `json:"pagination,omitempty"`
	Resource                   *OneOrMany[ResourceDetail]  `json:"resource,omitempty"`
	CiteThis                   *OneOrMany[CiteThis]        `json:"cite_this,omitempty"`
	CalendarURL                *TextOrList                 `json:"calendar_url,omitempty"`
	PreviousIssue              *TextOrList                 `json:"previous_issue,omitempty"`
	Segments                   *OneOrMany[Segment]         `json:"segments,omitempty"`
	RelatedItems               *OneOrMany[RelatedItem]     `json:"related_items,omitempty"`
	WordCoordinatesQuery       *OneOrMany[json.RawMessage] `json:"word_coordinates_query,omitempty"`
	MoreLikeThis               *OneOrMany[MoreLikeThis]    `json:"more_like_this,omitempty"`
	ArticlesAndEssays          *TextOrList                 `json:"articles_and_essays,omitempty"`
	TraditionalKnowledgeLabels *TextOrList                 `json:"traditional_knowledge_labels,omitempty"`
	Item                       *OneOrMany[ItemDetail]      `json:"item,omitempty"`
	WordCoordinatesPages       *OneOrMany[json.RawMessage] `json:"word_coordinates_pages,omitempty"`
	Type                       *TextOrList                 `json:"type,omitempty"`
	Options                    *OneOrMany[json.RawMessage] `json:"options,omitempty"`
	Resources                  *OneOrMany[ResourceObject]  `json:"resources,omitempty"`
	Extra                      Extra                       `json:"-"`
}

func (r *ResourceResponse) UnmarshalJSON(data []byte) error {
	type plain ResourceResponse
	extra, err := decodeWithExtra(data, (*plain)(r))
	r.Extra = extra
	return err
}

func (r ResourceResponse) MarshalJSON() ([]byte, error) {
	type plain ResourceResponse
	return encodeWithExtra(plain(r), r.Extra)
}

// ResourceDetail describes a single resource and its files.
type ResourceDetail struct {
	Caption             *TextOrList        `json:"caption,omitempty"`
	Files               *OneOrMany[[]File] `json:"files,omitempty"`
	Audio               *TextOrList        `json:"audio,omitempty"`
	Background          *TextOrList        `json:"background,omitempty"`
	Begin               *TextOrList        `json:"begin,omitempty"`
	CaptureRange        *TextOrList        `json:"capture_range,omitempty"`
	DjvuTextFile        *TextOrList        `json:"djvu_text_file,omitempty"`
	DownloadRestricted  *BoolOrText        `json:"download_restricted,omitempty"`
	Duration            *NumberOrText      `json:"duration,omitempty"`
	End                 *TextOrList        `json:"end,omitempty"`
	FulltextDerivative  *TextOrList        `json:"fulltext_derivative,omitempty"`
	FulltextFile        *TextOrList        `json:"fulltext_file,omitempty"`
	Height              *NumberOrText      `json:"height,omitempty"`
	ID                  *TextOrList        `json:"id,omitempty"`
	Info                *TextOrList        `json:"info,omitempty"`
	Image               *TextOrList        `json:"image,omitempty"`
	PaprikaResourcePath *TextOrList        `json:"paprika_resource_path,omitempty"`
	PDF                 *TextOrList        `json:"pdf,omitempty"`
	RepresentativeIndex *NumberOrText      `json:"representative_index,omitempty"`
	Type                *TextOrList        `json:"type,omitempty"`
	URL                 *TextOrList        `json:"url,omitempty"`
	UUID                *TextOrList        `json:"uuid,omitempty"`
	Version             *NumberOrText      `json:"version,omitempty"`
	VideoStream         *TextOrList        `json:"video_stream,omitempty"`
	Video               *TextOrList        `json:"video,omitempty"`
	Width               *NumberOrText      `json:"width,omitempty"`
	WordCoordinates     *TextOrList        `json:"word_coordinates,omitempty"`
	Extra               Extra              `json:"-"`
}

func (d *ResourceDetail) UnmarshalJSON(data []byte) error {
	type plain ResourceDetail
	extra, err := decodeWithExtra(data, (*plain)(d))
	d.Extra = extra
	return err
}

func (d ResourceDetail) MarshalJSON() ([]byte, error) {
	type plain ResourceDetail
	return encodeWithExtra(plain(d), d.Extra)
}
