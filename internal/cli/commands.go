package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/t-fbd/loc-api/internal/loc"
)

// listFlags are the listing options shared by search, format, collection and collections.
type listFlags struct {
	query   string
	include []string
	exclude []string
	filters []string
	perPage int
	page    int
	sort    string
}

func addListFlags(cmd *cobra.Command) *listFlags {
	lf := &listFlags{}
	flags := cmd.Flags()
	flags.StringVarP(&lf.query, "query", "q", "", "Free-text query")
	flags.StringSliceVar(&lf.include, "include", nil, "Response sections to include (at=)")
	flags.StringSliceVar(&lf.exclude, "exclude", nil, "Response sections to exclude (at!=)")
	flags.StringArrayVar(&lf.filters, "filter", nil, "Facet filter field:value (repeatable)")
	flags.IntVar(&lf.perPage, "per-page", 0, "Results per page (c=)")
	flags.IntVar(&lf.page, "page", 0, "Page number (sp=, default 1)")
	flags.StringVar(&lf.sort, "sort", "", "Sort field (date, date_desc, title_s, title_s_desc, shelf_id, shelf_id_desc)")
	return lf
}

func (lf *listFlags) options() (loc.ListOptions, error) {
	var opts loc.ListOptions
	if len(lf.include) > 0 || len(lf.exclude) > 0 {
		opts.Attributes = &loc.AttributeSelection{Include: lf.include, Exclude: lf.exclude}
	}
	if len(lf.filters) > 0 {
		opts.Filter = &loc.FacetFilter{Filters: lf.filters}
	}
	opts.PerPage = lf.perPage
	opts.Page = lf.page
	if lf.sort != "" {
		sort, ok := loc.ParseSortField(lf.sort)
		if !ok {
			return opts, newUsageError(fmt.Sprintf("unknown sort %q", lf.sort))
		}
		opts.Sort = sort
	}
	return opts, nil
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	var includeCollections bool
	cmd := &cobra.Command{
		Use:     "search [query...]",
		Short:   "Search the whole catalog (/search/)",
		Example: `  loc search civil war --filter subject:maps --per-page 25`,
	}
	lf := addListFlags(cmd)
	cmd.Flags().BoolVar(&includeCollections, "include-collections", false, "Include collections in results")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := lf.options()
		if err != nil {
			return err
		}
		query := strings.TrimSpace(lf.query + " " + joinArgs(args))
		ep, err := loc.Listing("search", "", query, opts)
		if err != nil {
			return err
		}
		return root.run(cmd, ep, func(ctx context.Context, c *loc.Client) (any, error) {
			resp, _, err := c.Search(ctx, query, includeCollections, opts)
			return resp, err
		})
	}
	return cmd
}

func newFormatCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "format <media-type>",
		Short:   "List one media type (/maps/, /audio/, ...)",
		Long:    "List one media type. Known media types: " + mediaTypeList() + ".",
		Example: `  loc format maps -q "ohio river" --page 2`,
		Args:    cobra.ExactArgs(1),
	}
	lf := addListFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		media, ok := loc.ParseMediaType(args[0])
		if !ok {
			return newUsageError(fmt.Sprintf("unknown media type %q (want one of %s)", args[0], mediaTypeList()))
		}
		opts, err := lf.options()
		if err != nil {
			return err
		}
		ep, err := loc.Listing("format", media.Slug(), lf.query, opts)
		if err != nil {
			return err
		}
		return root.run(cmd, ep, func(ctx context.Context, c *loc.Client) (any, error) {
			resp, _, err := c.GetFormat(ctx, media, lf.query, opts)
			return resp, err
		})
	}
	return cmd
}

func newCollectionCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection <name...>",
		Short:   "List the items of one collection (/collections/{name}/)",
		Example: `  loc collection civil war maps --filter subject:geography`,
		Args:    cobra.MinimumNArgs(1),
	}
	lf := addListFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := lf.options()
		if err != nil {
			return err
		}
		name := joinArgs(args)
		ep, err := loc.Listing("collection", name, lf.query, opts)
		if err != nil {
			return err
		}
		return root.run(cmd, ep, func(ctx context.Context, c *loc.Client) (any, error) {
			resp, _, err := c.GetCollection(ctx, name, lf.query, opts)
			return resp, err
		})
	}
	return cmd
}

func newCollectionsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List the catalog's collections (/collections/)",
		Args:  cobra.NoArgs,
	}
	lf := addListFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := lf.options()
		if err != nil {
			return err
		}
		ep, err := loc.Listing("collections", "", lf.query, opts)
		if err != nil {
			return err
		}
		return root.run(cmd, ep, func(ctx context.Context, c *loc.Client) (any, error) {
			resp, _, err := c.GetCollections(ctx, lf.query, opts)
			return resp, err
		})
	}
	return cmd
}

func newItemCmd(root *rootOptions) *cobra.Command {
	var attrs loc.ItemAttributes
	cmd := &cobra.Command{
		Use:     "item <id>",
		Short:   "Fetch one item (/item/{id}/)",
		Example: `  loc item 2014717546 --cite-this`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			ep := loc.ItemEndpoint{ID: id, Params: loc.ItemParams{Format: loc.FormatJSON, Attributes: attrs}}
			return root.run(cmd, ep, func(ctx context.Context, c *loc.Client) (any, error) {
				resp, _, err := c.GetItem(ctx, id, attrs)
				return resp, err
			})
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&attrs.Item, "item", false, "Only the item section")
	flags.BoolVar(&attrs.Resources, "resources", false, "Only the resources section")
	flags.BoolVar(&attrs.CiteThis, "cite-this", false, "Only the citation section")
	return cmd
}

func newResourceCmd(root *rootOptions) *cobra.Command {
	var attrs loc.ResourceAttributes
	cmd := &cobra.Command{
		Use:     "resource <id>",
		Short:   "Fetch one resource (/resource/{id}/)",
		Example: `  loc resource g3701e.ct000001 --segments`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			ep := loc.ResourceEndpoint{ID: id, Params: loc.ResourceParams{Format: loc.FormatJSON, Attributes: attrs}}
			return root.run(cmd, ep, func(ctx context.Context, c *loc.Client) (any, error) {
				resp, _, err := c.GetResource(ctx, id, attrs)
				return resp, err
			})
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&attrs.Resource, "resource", false, "Only the resource section")
	flags.BoolVar(&attrs.Page, "page", false, "Only the page section")
	flags.BoolVar(&attrs.Segments, "segments", false, "Only the segments section")
	flags.BoolVar(&attrs.CiteThis, "cite-this", false, "Only the citation section")
	flags.BoolVar(&attrs.Resources, "resources", false, "Only the resources section")
	flags.BoolVar(&attrs.Item, "item", false, "Only the item section")
	return cmd
}

func mediaTypeList() string {
	names := make([]string, 0, len(loc.MediaTypes))
	for _, m := range loc.MediaTypes {
		names = append(names, m.Slug())
	}
	return strings.Join(names, ", ")
}
