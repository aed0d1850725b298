package models

import "encoding/json"

// ItemResponse is the /item/{id}/ payload.
type ItemResponse struct {
	Views                      *OneOrMany[json.RawMessage] `json:"views,omitempty"`
	Timestamp                  *NumberOrText               `json:"timestamp,omitempty"`
	Locations                  *TextOrList                 `json:"locations,omitempty"`
	FulltextService            *TextOrList                 `json:"fulltext_service,omitempty"`
	NextIssue                  *TextOrList                 `json:"next_issue,omitempty"`
	NewspaperHoldingsURL       *TextOrList                 `json:"newspaper_holdings_url,omitempty"`
	TitleURL                   *TextOrList                 `json:"title_url,omitempty"`
	Page                       *OneOrMany[Page]            `json:"page,omitempty"`
	Pagination                 *OneOrMany[Pagination]      `json:"pagination,omitempty"`
	Resource                   *OneOrMany[json.RawMessage] `json:"resource,omitempty"`
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

func (r *ItemResponse) UnmarshalJSON(data []byte) error {
	type plain ItemResponse
	extra, err := decodeWithExtra(data, (*plain)(r))
	r.Extra = extra
	return err
}

func (r ItemResponse) MarshalJSON() ([]byte, error) {
	type plain ItemResponse
	return encodeWithExtra(plain(r), r.Extra)
}

// CiteThis carries preformatted citations.
type CiteThis struct {
	Chicago *TextOrList `json:"chicago,omitempty"`
	MLA     *TextOrList `json:"mla,omitempty"`
	APA     *TextOrList `json:"apa,omitempty"`
}

// Segment, RelatedItem, MoreLikeThis and Page have no documented shape; they
// are kept as raw key/value bags.
type (
	Segment      map[string]json.RawMessage
	RelatedItem  map[string]json.RawMessage
	MoreLikeThis map[string]json.RawMessage
	Page         map[string]json.RawMessage
)

// ItemDetail is the full bibliographic block of an item.
type ItemDetail struct {
	PlaceOfPublication   *TextOrList   `json:"place_of_publication,omitempty"`
	SourceCollection     *TextOrList   `json:"source_collection,omitempty"`
	DisplayOffsite       *BoolOrText   `json:"display_offsite,omitempty"`
	Contributors         *TextOrList   `json:"contributors,omitempty"`
	LocationCounty       *TextOrList   `json:"location_county,omitempty"`
	AccessRestricted     *BoolOrText   `json:"access_restricted,omitempty"`
	Site                 *TextOrList   `json:"site,omitempty"`
	OriginalFormat       *TextOrList   `json:"original_format,omitempty"`
	PartOfTitle          *TextOrList   `json:"partof_title,omitempty"`
	Date                 *TextOrList   `json:"date,omitempty"`
	ItemType             *TextOrList   `json:"item_type,omitempty"`
	URL                  *TextOrList   `json:"url,omitempty"`
	SubjectHeadings      *TextOrList   `json:"subject_headings,omitempty"`
	NewspaperTitle       *TextOrList   `json:"newspaper_title,omitempty"`
	CreatedPublished     *TextOrList   `json:"created_published,omitempty"`
	ExtractURLs          *TextOrList   `json:"extract_urls,omitempty"`
	PartOfDivision       *TextOrList   `json:"partof_division,omitempty"`
	Contents             *TextOrList   `json:"contents,omitempty"`
	Subject              *TextOrList   `json:"subject,omitempty"`
	Index                *NumberOrText `json:"index,omitempty"`
	DigitalID            *TextOrList   `json:"digital_id,omitempty"`
	CallNumber           *TextOrList   `json:"call_number,omitempty"`
	Group                *TextOrList   `json:"group,omitempty"`
	Score                *NumberOrText `json:"score,omitempty"`
	LocationCountry      *TextOrList   `json:"location_country,omitempty"`
	Title                *TextOrList   `json:"title,omitempty"`
	Description          *TextOrList   `json:"description,omitempty"`
	RelatedItems         *TextOrList   `json:"related_items,omitempty"`
	ID                   *TextOrList   `json:"id,omitempty"`
	OnlineFormat         *TextOrList   `json:"online_format,omitempty"`
	Subjects             *TextOrList   `json:"subjects,omitempty"`
	Language             *TextOrList   `json:"language,omitempty"`
	Rights               *TextOrList   `json:"rights,omitempty"`
	Locations            *TextOrList   `json:"locations,omitempty"`
	Notes                *TextOrList   `json:"notes,omitempty"`
	ShelfID              *TextOrList   `json:"shelf_id,omitempty"`
	Batch                *TextOrList   `json:"batch,omitempty"`
	Summary              *TextOrList   `json:"summary,omitempty"`
	Digitized            *BoolOrText   `json:"digitized,omitempty"`
	PublicationFrequency *TextOrList   `json:"publication_frequency,omitempty"`
	Resources            *TextOrList   `json:"resources,omitempty"`
	Aka                  *TextOrList   `json:"aka,omitempty"`
	ContributorNames     *TextOrList   `json:"contributor_names,omitempty"`
	ImageURL             *TextOrList   `json:"image_url,omitempty"`
	AccessAdvisory       *TextOrList   `json:"access_advisory,omitempty"`
	Extra                Extra         `json:"-"`
}

func (d *ItemDetail) UnmarshalJSON(data []byte) error {
	type plain ItemDetail
	extra, err := decodeWithExtra(data, (*plain)(d))
	d.Extra = extra
	return err
}

func (d ItemDetail) MarshalJSON() ([]byte, error) {
	type plain ItemDetail
	return encodeWithExtra(plain(d), d.Extra)
}

// ResourceObject describes one digitized resource attached to an item.
type ResourceObject struct {
	Files    *OneOrMany[OneOrMany[File]] `json:"files,omitempty"`
	Caption  *TextOrList                 `json:"caption,omitempty"`
	URL      *TextOrList                 `json:"url,omitempty"`
	Image    *TextOrList                 `json:"image,omitempty"`
	Type     *TextOrList                 `json:"type,omitempty"`
	Height   *OneOrMany[NumberOrText]    `json:"height,omitempty"`
	Width    *OneOrMany[NumberOrText]    `json:"width,omitempty"`
	Duration *OneOrMany[NumberOrText]    `json:"duration,omitempty"`
	MimeType *TextOrList                 `json:"mimetype,omitempty"`
	Size     *OneOrMany[NumberOrText]    `json:"size,omitempty"`
	ID       *TextOrList                 `json:"id,omitempty"`
	Title    *TextOrList                 `json:"title,omitempty"`
	Extra    Extra                       `json:"-"`
}

func (r *ResourceObject) UnmarshalJSON(data []byte) error {
	type plain ResourceObject
	extra, err := decodeWithExtra(data, (*plain)(r))
	r.Extra = extra
	return err
}

func (r ResourceObject) MarshalJSON() ([]byte, error) {
	type plain ResourceObject
	return encodeWithExtra(plain(r), r.Extra)
}

// File is one file variant of a resource (image tile, audio stream, PDF...).
type File struct {
	Caption   *TextOrList                 `json:"caption,omitempty"`
	Duration  *NumberOrText               `json:"duration,omitempty"`
	Format    *OneOrMany[json.RawMessage] `json:"format,omitempty"`
	Height    *NumberOrText               `json:"height,omitempty"`
	Info      *TextOrList                 `json:"info,omitempty"`
	Levels    *NumberOrText               `json:"levels,omitempty"`
	MimeType  *TextOrList                 `json:"mimetype,omitempty"`
	OtherName *TextOrList                 `json:"other_name,omitempty"`
	Profile   *TextOrList                 `json:"profile,omitempty"`
	Protocol  *TextOrList                 `json:"protocol,omitempty"`
	Size      *NumberOrText               `json:"size,omitempty"`
	Streams   *TextOrList                 `json:"streams,omitempty"`
	Tiles     *TextOrList                 `json:"tiles,omitempty"`
	Type      *TextOrList                 `json:"type,omitempty"`
	URL       *TextOrList                 `json:"url,omitempty"`
	Use       *TextOrList                 `json:"use,omitempty"`
	Width     *NumberOrText               `json:"width,omitempty"`
	Extra     Extra                       `json:"-"`
}

func (f *File) UnmarshalJSON(data []byte) error {
	type plain File
	extra, err := decodeWithExtra(data, (*plain)(f))
	f.Extra = extra
	return err
}

func (f File) MarshalJSON() ([]byte, error) {
	type plain File
	return encodeWithExtra(plain(f), f.Extra)
}
