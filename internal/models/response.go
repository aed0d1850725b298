package models

// SearchResponse is the /search/ payload.
type SearchResponse struct {
	Facets     *OneOrMany[Facet] `json:"facets,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
	Results    []ResultItem      `json:"results,omitempty"`
	Extra      Extra             `json:"-"`
}

func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	type plain SearchResponse
	extra, err := decodeWithExtra(data, (*plain)(r))
	r.Extra = extra
	return err
}

func (r SearchResponse) MarshalJSON() ([]byte, error) {
	type plain SearchResponse
	return encodeWithExtra(plain(r), r.Extra)
}

// FormatResponse is the /{media-type}/ payload.
type FormatResponse struct {
	Facets     *OneOrMany[Facet] `json:"facets,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
	Results    []ResultItem      `json:"results,omitempty"`
	Extra      Extra             `json:"-"`
}

func (r *FormatResponse) UnmarshalJSON(data []byte) error {
	type plain FormatResponse
	extra, err := decodeWithExtra(data, (*plain)(r))
	r.Extra = extra
	return err
}

func (r FormatResponse) MarshalJSON() ([]byte, error) {
	type plain FormatResponse
	return encodeWithExtra(plain(r), r.Extra)
}

// CollectionsResponse is the /collections/ payload: one result per collection.
type CollectionsResponse struct {
	Facets     *OneOrMany[Facet] `json:"facets,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
	Results    []CollectionItem  `json:"results,omitempty"`
	Extra      Extra             `json:"-"`
}

func (r *CollectionsResponse) UnmarshalJSON(data []byte) error {
	type plain CollectionsResponse
	extra, err := decodeWithExtra(data, (*plain)(r))
	r.Extra = extra
	return err
}

func (r CollectionsResponse) MarshalJSON() ([]byte, error) {
	type plain CollectionsResponse
	return encodeWithExtra(plain(r), r.Extra)
}

// CollectionResponse is the /collections/{name}/ payload: the items of one collection.
type CollectionResponse struct {
	Facets     *OneOrMany[Facet] `json:"facets,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
	Results    []ResultItem      `json:"results,omitempty"`
	Extra      Extra             `json:"-"`
}

func (r *CollectionResponse) UnmarshalJSON(data []byte) error {
	type plain CollectionResponse
	extra, err := decodeWithExtra(data, (*plain)(r))
	r.Extra = extra
	return err
}

func (r CollectionResponse) MarshalJSON() ([]byte, error) {
	type plain CollectionResponse
	return encodeWithExtra(plain(r), r.Extra)
}

// Facet is one facet block. The catalog sends facets as an object or a list of them.
type Facet struct {
	Filters *OneOrMany[FacetFilterItem] `json:"filters,omitempty"`
	Type    *TextOrList                 `json:"type,omitempty"`
	Extra   Extra                       `json:"-"`
}

func (f *Facet) UnmarshalJSON(data []byte) error {
	type plain Facet
	extra, err := decodeWithExtra(data, (*plain)(f))
	f.Extra = extra
	return err
}

func (f Facet) MarshalJSON() ([]byte, error) {
	type plain Facet
	return encodeWithExtra(plain(f), f.Extra)
}

// FacetFilterItem is one selectable value inside a facet.
type FacetFilterItem struct {
	Count *NumberOrText `json:"count,omitempty"`
	Not   *TextOrList   `json:"not,omitempty"`
	Off   *TextOrList   `json:"off,omitempty"`
	On    *TextOrList   `json:"on,omitempty"`
	Term  *TextOrList   `json:"term,omitempty"`
	Title *TextOrList   `json:"title,omitempty"`
	Extra Extra         `json:"-"`
}

func (f *FacetFilterItem) UnmarshalJSON(data []byte) error {
	type plain FacetFilterItem
	extra, err := decodeWithExtra(data, (*plain)(f))
	f.Extra = extra
	return err
}

func (f FacetFilterItem) MarshalJSON() ([]byte, error) {
	type plain FacetFilterItem
	return encodeWithExtra(plain(f), f.Extra)
}

// Pagination describes the page a listing response covers.
type Pagination struct {
	From           *NumberOrText            `json:"from,omitempty"`
	Results        *TextOrList              `json:"results,omitempty"`
	Last           *TextOrList              `json:"last,omitempty"`
	Total          *NumberOrText            `json:"total,omitempty"`
	Previous       *TextOrList              `json:"previous,omitempty"`
	PerPage        *NumberOrText            `json:"perpage,omitempty"`
	PerPageOptions *OneOrMany[NumberOrText] `json:"perpage_options,omitempty"`
	Of             *NumberOrText            `json:"of,omitempty"`
	Next           *TextOrList              `json:"next,omitempty"`
	Current        *NumberOrText            `json:"current,omitempty"`
	To             *NumberOrText            `json:"to,omitempty"`
	PageList       *OneOrMany[PageListItem] `json:"page_list,omitempty"`
	First          *TextOrList              `json:"first,omitempty"`
}

// NextURL returns the first non-empty next-page link, if any.
func (p *Pagination) NextURL() (string, bool) {
	if p == nil || p.Next == nil {
		return "", false
	}
	for _, next := range p.Next.Values() {
		if next != "" {
			return next, true
		}
	}
	return "", false
}

type PageListItem struct {
	URL    *TextOrList   `json:"url,omitempty"`
	Number *NumberOrText `json:"number,omitempty"`
}

// ResultItem is one hit in a search, format or collection listing.
type ResultItem struct {
	AccessRestricted     *BoolOrText             `json:"access_restricted,omitempty"`
	Aka                  *TextOrList             `json:"aka,omitempty"`
	Campaigns            *TextOrList             `json:"campaigns,omitempty"`
	Contributor          *TextOrList             `json:"contributor,omitempty"`
	Date                 *TextOrList             `json:"date,omitempty"`
	Dates                *TextOrList             `json:"dates,omitempty"`
	Description          *TextOrList             `json:"description,omitempty"`
	Digitized            *BoolOrText             `json:"digitized,omitempty"`
	ExtractTimestamp     *TextOrList             `json:"extract_timestamp,omitempty"`
	Group                *TextOrList             `json:"group,omitempty"`
	HasSegments          *BoolOrText             `json:"hassegments,omitempty"`
	ID                   *TextOrList             `json:"id,omitempty"`
	ImageURL             *TextOrList             `json:"image_url,omitempty"`
	Index                *NumberOrText           `json:"index,omitempty"`
	Item                 *OneOrMany[ItemSummary] `json:"item,omitempty"`
	Language             *TextOrList             `json:"language,omitempty"`
	Location             *TextOrList             `json:"location,omitempty"`
	MimeType             *TextOrList             `json:"mime_type,omitempty"`
	Number               *TextOrList             `json:"number,omitempty"`
	OnlineFormat         *TextOrList             `json:"online_format,omitempty"`
	OriginalFormat       *TextOrList             `json:"original_format,omitempty"`
	OtherTitle           *TextOrList             `json:"other_title,omitempty"`
	PartOf               *TextOrList             `json:"partof,omitempty"`
	PublicationFrequency *TextOrList             `json:"publication_frequency,omitempty"`
	ShelfID              *TextOrList             `json:"shelf_id,omitempty"`
	Site                 *TextOrList             `json:"site,omitempty"`
	Subject              *TextOrList             `json:"subject,omitempty"`
	Title                *TextOrList             `json:"title,omitempty"`
	Type                 *TextOrList             `json:"type,omitempty"`
	URL                  *TextOrList             `json:"url,omitempty"`
	Extra                Extra                   `json:"-"`
}

func (r *ResultItem) UnmarshalJSON(data []byte) error {
	type plain ResultItem
	extra, err := decodeWithExtra(data, (*plain)(r))
	r.Extra = extra
	return err
}

func (r ResultItem) MarshalJSON() ([]byte, error) {
	type plain ResultItem
	return encodeWithExtra(plain(r), r.Extra)
}

// ItemSummary is the abbreviated item block embedded in listing results.
type ItemSummary struct {
	CallNumber           *TextOrList   `json:"call_number,omitempty"`
	ContributorNames     *TextOrList   `json:"contributor_names,omitempty"`
	CreatedPublished     *TextOrList   `json:"created_published,omitempty"`
	DateIssued           *TextOrList   `json:"date_issued,omitempty"`
	DigitizedLabel       *TextOrList   `json:"digitized_label,omitempty"`
	Genre                *TextOrList   `json:"genre,omitempty"`
	Language             *TextOrList   `json:"language,omitempty"`
	Location             *TextOrList   `json:"location,omitempty"`
	Medium               *TextOrList   `json:"medium,omitempty"`
	OtherTitle           *TextOrList   `json:"other_title,omitempty"`
	PublicationFrequency *TextOrList   `json:"publication_frequency,omitempty"`
	Score                *NumberOrText `json:"score,omitempty"`
	SubjectHeadings      *TextOrList   `json:"subject_headings,omitempty"`
	Subjects             *TextOrList   `json:"subjects,omitempty"`
	Summary              *TextOrList   `json:"summary,omitempty"`
	Title                *TextOrList   `json:"title,omitempty"`
	Extra                Extra         `json:"-"`
}

func (s *ItemSummary) UnmarshalJSON(data []byte) error {
	type plain ItemSummary
	extra, err := decodeWithExtra(data, (*plain)(s))
	s.Extra = extra
	return err
}

func (s ItemSummary) MarshalJSON() ([]byte, error) {
	type plain ItemSummary
	return encodeWithExtra(plain(s), s.Extra)
}

// CollectionItem is one collection in the /collections/ listing.
type CollectionItem struct {
	ID             *TextOrList `json:"id,omitempty"`
	Title          *TextOrList `json:"title,omitempty"`
	Description    *TextOrList `json:"description,omitempty"`
	PrivateNote    *TextOrList `json:"private_note,omitempty"`
	CollectionSlug *TextOrList `json:"collection_slug,omitempty"`
	Organization   *TextOrList `json:"organization,omitempty"`
	URL            *TextOrList `json:"url,omitempty"`
	SiteMap        *TextOrList `json:"site_map,omitempty"`
	Type           *TextOrList `json:"type,omitempty"`
	NormalizedSlug *TextOrList `json:"normalized_slug,omitempty"`
	CreatedAt      *TextOrList `json:"created_at,omitempty"`
	UpdatedAt      *TextOrList `json:"updated_at,omitempty"`
	Subject        *TextOrList `json:"subject,omitempty"`
	Extra          Extra       `json:"-"`
}

func (c *CollectionItem) UnmarshalJSON(data []byte) error {
	type plain CollectionItem
	extra, err := decodeWithExtra(data, (*plain)(c))
	c.Extra = extra
	return err
}

func (c CollectionItem) MarshalJSON() ([]byte, error) {
	type plain CollectionItem
	return encodeWithExtra(plain(c), c.Extra)
}
