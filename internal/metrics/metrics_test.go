package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/t-fbd/loc-api/internal/loc"
)

func TestRouteOf(t *testing.T) {
	cases := map[string]string{
		"https://www.loc.gov/search/?fo=json&&q=x&sp=1": "search",
		"https://www.loc.gov/item/1/?fo=json&":          "item",
		"https://www.loc.gov/maps/?fo=json&&sp=1":       "format",
		"https://www.loc.gov/collections/":              "collections",
		"https://www.loc.gov/robots.txt":                "robots",
		"https://www.loc.gov":                           "root",
	}
	for in, want := range cases {
		require.Equal(t, want, RouteOf(in), in)
	}
}

func TestInstrumentFetcherCountsOutcomes(t *testing.T) {
	okBefore := testutil.ToFloat64(FetchTotal.WithLabelValues("item", "ok"))
	limitedBefore := testutil.ToFloat64(FetchTotal.WithLabelValues("search", "http_429"))
	hitsBefore := testutil.ToFloat64(RateLimitHits)

	fetcher := InstrumentFetcher(loc.FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
		if RouteOf(url) == "search" {
			return nil, &loc.TransportError{URL: url, StatusCode: http.StatusTooManyRequests}
		}
		return []byte(`{}`), nil
	}))

	_, err := fetcher.Fetch(context.Background(), "https://www.loc.gov/item/1/?fo=json&")
	require.NoError(t, err)
	_, err = fetcher.Fetch(context.Background(), "https://www.loc.gov/search/?fo=json&&q=x&sp=1")
	require.Error(t, err)

	require.Equal(t, okBefore+1, testutil.ToFloat64(FetchTotal.WithLabelValues("item", "ok")))
	require.Equal(t, limitedBefore+1, testutil.ToFloat64(FetchTotal.WithLabelValues("search", "http_429")))
	require.Equal(t, hitsBefore+1, testutil.ToFloat64(RateLimitHits))
}

func TestHandlerExposesCollectors(t *testing.T) {
	HarvestJobs.WithLabelValues("received").Inc()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "locapi_harvest_jobs_total")
}
