package loc

import (
	"bufio"
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// RobotsRules holds the Disallow prefixes that apply to one user-agent.
// Disallow: /search forbids /search/, /search/?q=x and so on.
type RobotsRules struct {
	disallowPrefixes []string
}

// Allowed reports whether path may be requested. Nil or empty rules allow everything.
func (r *RobotsRules) Allowed(path string) bool {
	if r == nil || len(r.disallowPrefixes) == 0 {
		return true
	}
	path = normalizePath(path)
	for _, prefix := range r.disallowPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// AllowedURL is Allowed applied to the path of rawURL.
func (r *RobotsRules) AllowedURL(rawURL string) bool {
	return r.Allowed(PathFromURL(rawURL))
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

// FetchRobots loads <baseURL>/robots.txt through fetcher.
func FetchRobots(ctx context.Context, fetcher Fetcher, baseURL string) ([]byte, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	u.Path = "/robots.txt"
	u.RawQuery = ""
	body, err := fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, errors.Wrap(err, "fetch robots.txt")
	}
	return body, nil
}

// ParseRobots returns the rules of the first User-agent block matching
// userAgent exactly (case-insensitive) or through "*".
func ParseRobots(body []byte, userAgent string) *RobotsRules {
	r := &RobotsRules{}
	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	var inMatchingBlock, matched bool
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "user-agent:") {
			agent := strings.TrimSpace(line[len("user-agent:"):])
			inMatchingBlock = !matched && (agent == "*" || strings.EqualFold(agent, userAgent))
			if inMatchingBlock {
				matched = true
			}
			continue
		}
		if inMatchingBlock && strings.HasPrefix(lower, "disallow:") {
			path := strings.TrimSpace(line[len("disallow:"):])
			if path != "" {
				r.disallowPrefixes = append(r.disallowPrefixes, normalizePath(path))
			}
		}
	}
	return r
}

// PathFromURL returns the path component of rawURL, or "/" when it has none.
func PathFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "/"
	}
	return normalizePath(u.Path)
}
