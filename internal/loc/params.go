package loc

import (
	"strconv"
	"strings"
)

// Format selects the response serialization (fo=).
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Slug returns the fo= value, defaulting to json when unset.
func (f Format) Slug() string {
	if f == "" {
		return string(FormatJSON)
	}
	return string(f)
}

// MediaType is one of the /{format}/ routes.
type MediaType string

const (
	MediaAudio         MediaType = "audio"
	MediaBooks         MediaType = "books"
	MediaFilmAndVideos MediaType = "film-and-videos"
	MediaLegislation   MediaType = "legislation"
	MediaManuscripts   MediaType = "manuscripts"
	MediaMaps          MediaType = "maps"
	MediaNewspapers    MediaType = "newspapers"
	MediaPhotos        MediaType = "photos"
	MediaNotatedMusic  MediaType = "notated-music"
	MediaWebArchives   MediaType = "web-archives"
)

// MediaTypes lists every media route in documentation order.
var MediaTypes = []MediaType{
	MediaAudio, MediaBooks, MediaFilmAndVideos, MediaLegislation, MediaManuscripts,
	MediaMaps, MediaNewspapers, MediaPhotos, MediaNotatedMusic, MediaWebArchives,
}

// Slug returns the path segment for the media route.
func (m MediaType) Slug() string {
	return string(m)
}

// ParseMediaType accepts a slug such as "film-and-videos".
func ParseMediaType(s string) (MediaType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range MediaTypes {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// SortField orders listing results (sb=).
type SortField string

const (
	SortDate        SortField = "date"
	SortDateDesc    SortField = "date_desc"
	SortTitle       SortField = "title_s"
	SortTitleDesc   SortField = "title_s_desc"
	SortShelfID     SortField = "shelf_id"
	SortShelfIDDesc SortField = "shelf_id_desc"
)

var sortFields = []SortField{SortDate, SortDateDesc, SortTitle, SortTitleDesc, SortShelfID, SortShelfIDDesc}

// Slug returns the sb= value.
func (s SortField) Slug() string {
	return string(s)
}

// ParseSortField accepts a slug such as "title_s_desc".
func ParseSortField(s string) (SortField, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range sortFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// AttributeSelection picks response sections to include (at=) or exclude (at!=).
type AttributeSelection struct {
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// QueryParam renders "at=a,b&at!=c". Either clause is omitted when its list is empty.
func (a AttributeSelection) QueryParam() string {
	var parts []string
	if len(a.Include) > 0 {
		parts = append(parts, "at="+strings.Join(a.Include, ","))
	}
	if len(a.Exclude) > 0 {
		parts = append(parts, "at!="+strings.Join(a.Exclude, ","))
	}
	return strings.Join(parts, "&")
}

func (a *AttributeSelection) empty() bool {
	return a == nil || (len(a.Include) == 0 && len(a.Exclude) == 0)
}

// FacetFilter narrows results with field:value pairs (fa=).
type FacetFilter struct {
	Filters []string `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// QueryParam joins the filters with "|".
func (f FacetFilter) QueryParam() string {
	return strings.Join(f.Filters, "|")
}

func (f *FacetFilter) empty() bool {
	return f == nil || len(f.Filters) == 0
}

// CommonParams are the listing parameters shared by search, format and
// collection routes. Zero values mean unset; defaults are applied when the
// query string is built, never stored here.
type CommonParams struct {
	Format     Format
	Attributes *AttributeSelection
	Query      string
	Filter     *FacetFilter
	PerPage    int
	Page       int
	Sort       SortField
}

// empty reports whether no parameter would contribute a clause of its own.
// Format and the page default do not count.
func (p CommonParams) empty() bool {
	return p.Attributes.empty() && p.Query == "" && p.Filter.empty() &&
		p.PerPage <= 0 && p.Page <= 0 && p.Sort == ""
}

// QueryString renders the listing query string in its fixed clause order:
// ?fo=, attributes, &q=, &fa=, &c=, &sp=, &sb=. The attribute slot follows
// "?fo=<format>&" directly and may be empty.
func (p CommonParams) QueryString() string {
	var b strings.Builder
	b.WriteString("?fo=")
	b.WriteString(p.Format.Slug())
	b.WriteByte('&')
	if p.Attributes != nil {
		b.WriteString(p.Attributes.QueryParam())
	}
	if p.Query != "" {
		b.WriteString("&q=")
		b.WriteString(escapeValue(p.Query))
	}
	if !p.Filter.empty() {
		b.WriteString("&fa=")
		b.WriteString(escapeValue(p.Filter.QueryParam()))
	}
	if p.PerPage > 0 {
		b.WriteString("&c=")
		b.WriteString(strconv.Itoa(p.PerPage))
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	b.WriteString("&sp=")
	b.WriteString(strconv.Itoa(page))
	if p.Sort != "" {
		b.WriteString("&sb=")
		b.WriteString(p.Sort.Slug())
	}
	return b.String()
}

// SearchParams are the /search/ parameters.
type SearchParams struct {
	Common CommonParams
	// IncludeCollections is accepted for parity with the upstream search form
	// and does not contribute to the query string.
	IncludeCollections bool
}

// ItemAttributes are the optional sections of an item response.
type ItemAttributes struct {
	CiteThis  bool `json:"cite_this,omitempty" yaml:"cite_this,omitempty"`
	Item      bool `json:"item,omitempty" yaml:"item,omitempty"`
	Resources bool `json:"resources,omitempty" yaml:"resources,omitempty"`
}

func (a ItemAttributes) clauses() []string {
	var parts []string
	if a.Item {
		parts = append(parts, "at=item")
	}
	if a.Resources {
		parts = append(parts, "at=resources")
	}
	if a.CiteThis {
		parts = append(parts, "at=cite_this")
	}
	return parts
}

// ItemParams are the /item/{id}/ parameters.
type ItemParams struct {
	Format     Format
	Attributes ItemAttributes
}

// QueryString renders "?fo=<format>&" followed by one at=<flag> clause per set flag.
func (p ItemParams) QueryString() string {
	return flagQuery(p.Format, p.Attributes.clauses())
}

// ResourceAttributes are the optional sections of a resource response.
type ResourceAttributes struct {
	CiteThis  bool `json:"cite_this,omitempty" yaml:"cite_this,omitempty"`
	Item      bool `json:"item,omitempty" yaml:"item,omitempty"`
	Page      bool `json:"page,omitempty" yaml:"page,omitempty"`
	Resource  bool `json:"resource,omitempty" yaml:"resource,omitempty"`
	Resources bool `json:"resources,omitempty" yaml:"resources,omitempty"`
	Segments  bool `json:"segments,omitempty" yaml:"segments,omitempty"`
}

func (a ResourceAttributes) clauses() []string {
	var parts []string
	if a.Resource {
		parts = append(parts, "at=resource")
	}
	if a.Page {
		parts = append(parts, "at=page")
	}
	if a.Segments {
		parts = append(parts, "at=segments")
	}
	if a.CiteThis {
		parts = append(parts, "at=cite_this")
	}
	if a.Resources {
		parts = append(parts, "at=resources")
	}
	return parts
}

// ResourceParams are the /resource/{id}/ parameters.
type ResourceParams struct {
	Format     Format
	Attributes ResourceAttributes
}

// QueryString renders "?fo=<format>&" followed by one at=<flag> clause per set flag.
func (p ResourceParams) QueryString() string {
	return flagQuery(p.Format, p.Attributes.clauses())
}

func flagQuery(format Format, clauses []string) string {
	return "?fo=" + format.Slug() + "&" + strings.Join(clauses, "&")
}

// valueEscaper keeps caller text from splitting the query grammar or forming a
// stray escape. The separators the catalog itself uses (: , | +) pass through.
var valueEscaper = strings.NewReplacer("%", "%25", "&", "%26", "#", "%23")

func escapeValue(s string) string {
	return valueEscaper.Replace(s)
}
