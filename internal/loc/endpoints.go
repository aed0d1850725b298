package loc

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the authority every Endpoint renders against.
const DefaultBaseURL = "https://www.loc.gov"

// Endpoint is one catalog route with its parameters. The set of variants is closed.
type Endpoint interface {
	// URL renders the absolute request URL under DefaultBaseURL.
	URL() (string, error)
	endpoint()
}

// SearchEndpoint targets /search/.
type SearchEndpoint struct {
	Params SearchParams
}

// CollectionsEndpoint targets /collections/.
type CollectionsEndpoint struct {
	Params CommonParams
}

// CollectionEndpoint targets /collections/{name}/.
type CollectionEndpoint struct {
	Name   string
	Params CommonParams
}

// FormatEndpoint targets /{media-type}/.
type FormatEndpoint struct {
	Media  MediaType
	Params CommonParams
}

// ItemEndpoint targets /item/{id}/.
type ItemEndpoint struct {
	ID     string
	Params ItemParams
}

// ResourceEndpoint targets /resource/{id}/.
type ResourceEndpoint struct {
	ID     string
	Params ResourceParams
}

func (SearchEndpoint) endpoint()      {}
func (CollectionsEndpoint) endpoint() {}
func (CollectionEndpoint) endpoint()  {}
func (FormatEndpoint) endpoint()      {}
func (ItemEndpoint) endpoint()        {}
func (ResourceEndpoint) endpoint()    {}

// URL fails with a BuildError when no search parameter is set.
func (e SearchEndpoint) URL() (string, error) {
	if e.Params.Common.empty() {
		return "", &BuildError{Endpoint: "search", Reason: "no search parameters set"}
	}
	return DefaultBaseURL + "/search/" + e.Params.Common.QueryString(), nil
}

func (e CollectionsEndpoint) URL() (string, error) {
	return DefaultBaseURL + "/collections/" + hyphenate(e.Params.QueryString()), nil
}

func (e CollectionEndpoint) URL() (string, error) {
	return DefaultBaseURL + "/collections/" + url.PathEscape(e.Name) + "/" + hyphenate(e.Params.QueryString()), nil
}

func (e FormatEndpoint) URL() (string, error) {
	return DefaultBaseURL + "/" + e.Media.Slug() + "/" + e.Params.QueryString(), nil
}

func (e ItemEndpoint) URL() (string, error) {
	return DefaultBaseURL + "/item/" + url.PathEscape(e.ID) + "/" + e.Params.QueryString(), nil
}

func (e ResourceEndpoint) URL() (string, error) {
	return DefaultBaseURL + "/resource/" + url.PathEscape(e.ID) + "/" + e.Params.QueryString(), nil
}

func hyphenate(query string) string {
	return strings.ReplaceAll(query, " ", "-")
}
