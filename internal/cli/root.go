package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/t-fbd/loc-api/internal/loc"
)

// newFetcher builds the transport for every command. Tests replace it.
var newFetcher = func(timeout time.Duration) loc.Fetcher {
	return loc.NewHTTPFetcher(&http.Client{Timeout: timeout})
}

type rootOptions struct {
	baseURL string
	urlOnly bool
	output  string
	timeout time.Duration
	verbose bool
}

// Execute runs the loc CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "loc",
		Short:         "Query the Library of Congress catalog",
		Long:          "loc builds Library of Congress catalog requests, fetches them and prints the decoded response as JSON or YAML.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case "json", "yaml":
				return nil
			}
			return newUsageError(fmt.Sprintf("unknown output %q (want json or yaml)\n\n%s", opts.output, cmd.UsageString()))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	baseDefault := os.Getenv("LOC_API_BASE_URL")
	if baseDefault == "" {
		baseDefault = loc.DefaultBaseURL
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", baseDefault, "Catalog base URL (env LOC_API_BASE_URL)")
	flags.BoolVar(&opts.urlOnly, "url-only", false, "Print the request URL without fetching it")
	flags.StringVarP(&opts.output, "output", "o", "json", "Output format (json|yaml)")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "HTTP timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests to stderr")

	for _, sub := range []*cobra.Command{
		newSearchCmd(opts),
		newItemCmd(opts),
		newResourceCmd(opts),
		newFormatCmd(opts),
		newCollectionCmd(opts),
		newCollectionsCmd(opts),
	} {
		cmd.AddCommand(sub)
	}
	setUsageErrors(cmd)
	return cmd
}

// setUsageErrors turns cobra flag and argument errors into usage errors that
// carry the command's help text.
func setUsageErrors(cmd *cobra.Command) {
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	})
	for _, sub := range cmd.Commands() {
		setUsageErrors(sub)
		if sub.Args == nil {
			continue
		}
		validate := sub.Args
		sub.Args = func(c *cobra.Command, args []string) error {
			if err := validate(c, args); err != nil {
				return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
			}
			return nil
		}
	}
}

func (o *rootOptions) client(cmd *cobra.Command) *loc.Client {
	logger := zerolog.Nop()
	if o.verbose {
		logger = zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger()
	}
	return loc.NewClient(loc.Config{
		BaseURL: o.baseURL,
		Fetcher: newFetcher(o.timeout),
		Logger:  &logger,
	})
}

// run prints the URL of ep, or performs fetch and prints its response.
func (o *rootOptions) run(cmd *cobra.Command, ep loc.Endpoint, fetch func(ctx context.Context, c *loc.Client) (any, error)) error {
	client := o.client(cmd)
	if o.urlOnly {
		u, err := client.ResolveURL(ep)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), u)
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := fetch(ctx, client)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), o.output, resp)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
