package main

import (
	"fmt"
	"hash/fnv"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/t-fbd/loc-api/common"
)

// Catalog HTTP timeouts so a hung request releases its worker slot.
const (
	catalogConnectTimeout  = 10 * time.Second
	catalogResponseTimeout = 25 * time.Second
	catalogAttemptTimeout  = 30 * time.Second
)

// selectProxyFromPool picks one URL from a comma-separated pool by hashing
// hostname, so each replica keeps a stable egress. An empty pool yields "".
func selectProxyFromPool(pool, hostname string) string {
	valid := common.SplitList(pool, ",")
	if len(valid) == 0 {
		return ""
	}
	if hostname == "" {
		hostname = "0"
	}
	h := fnv.New32a()
	h.Write([]byte(hostname))
	idx := int(h.Sum32() % uint32(len(valid)))
	return valid[idx]
}

// buildHTTPClient returns the catalog client: a retrying client over a
// transport with connect and header timeouts. PROXY_URL wins over PROXY_POOL.
// RETRY_MAX, RETRY_BASE_DELAY and RETRY_MAX_DELAY tune the retry policy; the
// final response is passed through so status codes reach the fetcher.
func buildHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: catalogConnectTimeout}).DialContext,
		ResponseHeaderTimeout: catalogResponseTimeout,
	}
	proxyURL := common.GetEnv("PROXY_URL", "")
	pool := common.GetEnv("PROXY_POOL", "")
	if proxyURL == "" && pool != "" {
		hostname := os.Getenv("HOSTNAME")
		proxyURL = selectProxyFromPool(pool, hostname)
		if proxyURL != "" {
			log.Info().Str("hostname", hostname).Str("proxy", proxyURL).Msg("proxy from pool")
		}
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			log.Error().Err(err).Msg("invalid PROXY_URL/PROXY_POOL")
		} else {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{Transport: transport, Timeout: catalogAttemptTimeout}
	client.RetryMax = common.ParseInt(common.GetEnv("RETRY_MAX", "3"), 3)
	client.RetryWaitMin = common.ParseDuration(common.GetEnv("RETRY_BASE_DELAY", "200ms"), 200*time.Millisecond)
	client.RetryWaitMax = common.ParseDuration(common.GetEnv("RETRY_MAX_DELAY", "2s"), 2*time.Second)
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = retryLogger{log.With().Str("component", "retryablehttp").Logger()}
	return client.StandardClient()
}

// retryLogger adapts zerolog to retryablehttp.LeveledLogger.
type retryLogger struct {
	log zerolog.Logger
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.event(l.log.Error(), msg, kv) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.event(l.log.Warn(), msg, kv) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.event(l.log.Debug(), msg, kv) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.event(l.log.Debug(), msg, kv) }

func (l retryLogger) event(e *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Str(key, fmt.Sprint(kv[i+1]))
	}
	e.Msg(strings.TrimSpace(msg))
}
