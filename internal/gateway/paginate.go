package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPError is a non-2xx response from the API.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// parseNextLink extracts the rel="next" URL from a Link pagination header.
// Header shape: <https://api.github.com/...?page=2>; rel="next", <...>; rel="last"
func parseNextLink(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	for _, link := range strings.Split(linkHeader, ",") {
		parts := strings.Split(strings.TrimSpace(link), ";")
		if len(parts) < 2 {
			continue
		}
		url := strings.Trim(strings.TrimSpace(parts[0]), "<>")
		for _, attr := range parts[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				return url
			}
		}
	}
	return ""
}

// page is the outcome of a single GET against the API.
type page struct {
	items  []json.RawMessage
	isList bool
	next   string
}

// getPage waits out the rate limit, issues one GET and records the response
// quota headers. Params are attached only when non-nil; follow-up pages pass
// the server-provided next URL verbatim with nil params.
func (g *GitHubGateway) getPage(ctx context.Context, url string, params map[string]string) (*page, error) {
	g.limiter.Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	if len(params) > 0 {
		q := req.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	g.limiter.Record(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: strings.TrimSpace(string(body))}
	}

	p := &page{next: parseNextLink(resp.Header.Get("Link"))}
	if err := json.Unmarshal(body, &p.items); err == nil {
		p.isList = true
		return p, nil
	}
	// Single-resource endpoints return an object; treat the whole body as a
	// one-element result so they can reuse the same fetch path.
	p.items = []json.RawMessage{json.RawMessage(body)}
	return p, nil
}

// fetchAll returns every item of a paginated listing, consulting the cache
// first and following rel="next" links until the last page. A non-list
// response short-circuits pagination with a single-element result.
func (g *GitHubGateway) fetchAll(ctx context.Context, url string, params map[string]string) ([]json.RawMessage, error) {
	if cached, ok := g.cache.Get(url, params); ok {
		g.logger.WithField("url", url).Debug("Cache hit")
		var items []json.RawMessage
		if err := json.Unmarshal(cached, &items); err == nil {
			return items, nil
		}
		// Fall through and refetch if the cached payload is unusable.
	}
	g.logger.WithField("url", url).Debug("Cache miss")

	var all []json.RawMessage
	current, currentParams := url, params
	for pageNum := 1; current != ""; pageNum++ {
		g.logger.WithFields(map[string]interface{}{"url": current, "page": pageNum}).Debug("Fetching page")
		p, err := g.getPage(ctx, current, currentParams)
		if err != nil {
			return nil, err
		}
		all = append(all, p.items...)
		if !p.isList {
			break
		}
		current, currentParams = p.next, nil
	}

	if encoded, err := json.Marshal(all); err == nil {
		g.cache.Set(url, params, encoded)
	}
	return all, nil
}

// decodeItems unmarshals a slice of raw API items into out (a pointer to a
// slice), tolerating no individual-item failures.
func decodeItems(items []json.RawMessage, out interface{}) error {
	merged, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, out)
}
