package loc

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/t-fbd/loc-api/internal/models"
)

// Config wires a Client. Zero values fall back to DefaultBaseURL, an
// HTTPFetcher over http.DefaultClient and a disabled logger.
type Config struct {
	BaseURL string
	Fetcher Fetcher
	Logger  *zerolog.Logger
}

// Client is the catalog facade. It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL string
	fetcher Fetcher
	log     zerolog.Logger
}

// ListOptions are the optional listing parameters of Search, GetFormat,
// GetCollection and GetCollections. Zero values are unset.
type ListOptions struct {
	Attributes *AttributeSelection
	Filter     *FacetFilter
	PerPage    int
	Page       int
	Sort       SortField
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(nil)
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Client{baseURL: base, fetcher: fetcher, log: logger}
}

// BaseURL returns the authority requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search queries /search/. Spaces in query become "+".
func (c *Client) Search(ctx context.Context, query string, includeCollections bool, opts ListOptions) (*models.SearchResponse, string, error) {
	ep := SearchEndpoint{Params: SearchParams{
		Common:             opts.common(query),
		IncludeCollections: includeCollections,
	}}
	return get[models.SearchResponse](ctx, c, ep)
}

// GetItem fetches /item/{id}/.
func (c *Client) GetItem(ctx context.Context, id string, attrs ItemAttributes) (*models.ItemResponse, string, error) {
	ep := ItemEndpoint{ID: id, Params: ItemParams{Format: FormatJSON, Attributes: attrs}}
	return get[models.ItemResponse](ctx, c, ep)
}

// GetResource fetches /resource/{id}/.
func (c *Client) GetResource(ctx context.Context, id string, attrs ResourceAttributes) (*models.ResourceResponse, string, error) {
	ep := ResourceEndpoint{ID: id, Params: ResourceParams{Format: FormatJSON, Attributes: attrs}}
	return get[models.ResourceResponse](ctx, c, ep)
}

// GetFormat lists one media type, e.g. /maps/.
func (c *Client) GetFormat(ctx context.Context, media MediaType, query string, opts ListOptions) (*models.FormatResponse, string, error) {
	ep := FormatEndpoint{Media: media, Params: opts.common(query)}
	return get[models.FormatResponse](ctx, c, ep)
}

// GetCollection lists the items of one collection. The name is normalized so
// spaces and underscores become hyphens ("civil war maps" -> "civil-war-maps").
func (c *Client) GetCollection(ctx context.Context, name, query string, opts ListOptions) (*models.CollectionResponse, string, error) {
	ep := CollectionEndpoint{Name: CollectionSlug(name), Params: opts.common(query)}
	return get[models.CollectionResponse](ctx, c, ep)
}

// GetCollections lists the collections themselves.
func (c *Client) GetCollections(ctx context.Context, query string, opts ListOptions) (*models.CollectionsResponse, string, error) {
	ep := CollectionsEndpoint{Params: opts.common(query)}
	return get[models.CollectionsResponse](ctx, c, ep)
}

// ResolveURL builds ep and rebases it onto the client's base URL without fetching.
func (c *Client) ResolveURL(ep Endpoint) (string, error) {
	raw, err := ep.URL()
	if err != nil {
		return "", err
	}
	return c.rebase(raw)
}

func (c *Client) rebase(raw string) (string, error) {
	if !strings.HasPrefix(raw, DefaultBaseURL) {
		return "", &ConfigInvariantError{URL: raw}
	}
	return c.baseURL + raw[len(DefaultBaseURL):], nil
}

// get resolves ep, performs one fetch and decodes the body into T.
func get[T any](ctx context.Context, c *Client, ep Endpoint) (*T, string, error) {
	finalURL, err := c.ResolveURL(ep)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	body, err := c.fetcher.Fetch(ctx, finalURL)
	if err != nil {
		c.log.Debug().Err(err).Str("url", finalURL).Msg("catalog fetch failed")
		return nil, finalURL, err
	}
	c.log.Debug().
		Str("url", finalURL).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("catalog fetch")

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, finalURL, &DecodeError{URL: finalURL, Err: err}
	}
	return &out, finalURL, nil
}

// CollectionSlug normalizes a collection name for the /collections/{name}/ route.
func CollectionSlug(name string) string {
	return strings.NewReplacer(" ", "-", "_", "-").Replace(name)
}

// PlusQuery converts the spaces of a free-text query to "+".
func PlusQuery(query string) string {
	return strings.ReplaceAll(query, " ", "+")
}

func (o ListOptions) common(query string) CommonParams {
	return CommonParams{
		Format:     FormatJSON,
		Attributes: o.Attributes,
		Query:      PlusQuery(query),
		Filter:     o.Filter,
		PerPage:    o.PerPage,
		Page:       o.Page,
		Sort:       o.Sort,
	}
}

// Listing builds the listing endpoint for a media type, collection or search.
// It is the shared entry point for callers that choose the route at runtime.
func Listing(kind, target, query string, opts ListOptions) (Endpoint, error) {
	params := opts.common(query)
	switch kind {
	case "search":
		return SearchEndpoint{Params: SearchParams{Common: params}}, nil
	case "collections":
		return CollectionsEndpoint{Params: params}, nil
	case "collection":
		if target == "" {
			return nil, &BuildError{Endpoint: "collection", Reason: "collection name is required"}
		}
		return CollectionEndpoint{Name: CollectionSlug(target), Params: params}, nil
	case "format":
		media, ok := ParseMediaType(target)
		if !ok {
			return nil, &BuildError{Endpoint: "format", Reason: "unknown media type " + target}
		}
		return FormatEndpoint{Media: media, Params: params}, nil
	default:
		return nil, &BuildError{Endpoint: kind, Reason: "unknown listing kind"}
	}
}
