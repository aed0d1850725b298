package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/t-fbd/loc-api/internal/loc"
)

// fakeCatalog serves body for every request and records the URLs it saw.
func fakeCatalog(t *testing.T, body string) *[]string {
	t.Helper()
	var seen []string
	prev := newFetcher
	newFetcher = func(time.Duration) loc.Fetcher {
		return loc.FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
			seen = append(seen, url)
			return []byte(body), nil
		})
	}
	t.Cleanup(func() { newFetcher = prev })
	return &seen
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestUnknownFlag_ShowsHelpAndUsageError(t *testing.T) {
	_, err := execute(t, "search", "--unknown-flag")
	if err == nil {
		t.Fatalf("expected error for unknown flag")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "unknown flag") || !strings.Contains(err.Error(), "Usage:") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestMissingArgumentIsUsageError(t *testing.T) {
	_, err := execute(t, "item")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestBadOutputIsUsageError(t *testing.T) {
	_, err := execute(t, "-o", "xml", "collections", "--url-only")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestBadSortIsUsageError(t *testing.T) {
	_, err := execute(t, "search", "maps", "--sort", "newest")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestUnknownMediaIsUsageError(t *testing.T) {
	_, err := execute(t, "format", "vinyl", "--url-only")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestURLOnly(t *testing.T) {
	seen := fakeCatalog(t, "{}")
	cases := []struct {
		args []string
		want string
	}{
		{
			args: []string{"search", "civil", "war", "--per-page", "25"},
			want: "https://www.loc.gov/search/?fo=json&&q=civil+war&c=25&sp=1",
		},
		{
			args: []string{"format", "maps", "-q", "ohio", "--page", "2"},
			want: "https://www.loc.gov/maps/?fo=json&&q=ohio&sp=2",
		},
		{
			args: []string{"collection", "civil_war", "maps", "--filter", "subject:geography"},
			want: "https://www.loc.gov/collections/civil-war-maps/?fo=json&&fa=subject:geography&sp=1",
		},
		{
			args: []string{"item", "2014717546", "--cite-this"},
			want: "https://www.loc.gov/item/2014717546/?fo=json&at=cite_this",
		},
	}
	for _, tc := range cases {
		out, err := execute(t, append([]string{"--url-only", "--base-url", loc.DefaultBaseURL}, tc.args...)...)
		if err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if strings.TrimSpace(out) != tc.want {
			t.Fatalf("%v:\n got %s\nwant %s", tc.args, strings.TrimSpace(out), tc.want)
		}
	}
	if len(*seen) != 0 {
		t.Fatalf("url-only must not fetch, saw %v", *seen)
	}
}

func TestSearchPrintsJSON(t *testing.T) {
	seen := fakeCatalog(t, `{"results":[{"id":"http://www.loc.gov/item/1/","title":"Map of Ohio"}]}`)
	out, err := execute(t, "--base-url", loc.DefaultBaseURL, "search", "ohio")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(*seen) != 1 || (*seen)[0] != "https://www.loc.gov/search/?fo=json&&q=ohio&sp=1" {
		t.Fatalf("unexpected requests: %v", *seen)
	}
	if !strings.Contains(out, `"title": "Map of Ohio"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestSearchPrintsYAML(t *testing.T) {
	fakeCatalog(t, `{"results":[{"id":"http://www.loc.gov/item/1/","title":"Map of Ohio"}]}`)
	out, err := execute(t, "--base-url", loc.DefaultBaseURL, "-o", "yaml", "search", "ohio")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "title: Map of Ohio") || strings.Contains(out, "{") {
		t.Fatalf("expected block yaml, got: %s", out)
	}
}

func TestFetchErrorIsReturned(t *testing.T) {
	prev := newFetcher
	newFetcher = func(time.Duration) loc.Fetcher {
		return loc.FetcherFunc(func(context.Context, string) ([]byte, error) {
			return nil, &loc.TransportError{URL: "u", StatusCode: 503}
		})
	}
	t.Cleanup(func() { newFetcher = prev })

	_, err := execute(t, "collections")
	var te *loc.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if errors.Is(err, ErrUsage) {
		t.Fatal("transport failure must not be a usage error")
	}
}

func TestWriteOutputQuotesAmbiguousStrings(t *testing.T) {
	var buf bytes.Buffer
	if err := writeOutput(&buf, "yaml", map[string]any{"date": "1862", "flag": "true"}); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `date: "1862"`) || !strings.Contains(out, `flag: "true"`) {
		t.Fatalf("expected quoted scalars, got: %s", out)
	}
}
