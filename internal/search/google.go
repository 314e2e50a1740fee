// Package search finds candidate news pages via the Google Custom Search
// JSON API.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"newsbrief/internal/digest"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// pageSize is the API's maximum results per request.
const pageSize = 10

// maxRetries bounds retry on rate-limited responses.
const maxRetries = 3

// retryBaseDelay is the base duration for backoff on HTTP 429. Tests
// override this to avoid real sleeps.
var retryBaseDelay = 2 * time.Second

// Config configures the search client.
type Config struct {
	APIKey   string
	EngineID string
	Endpoint string
	Timeout  time.Duration
}

// Client queries the Custom Search API for candidate sources.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type searchResponse struct {
	Items []struct {
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Pagemap struct {
			Metatags []map[string]string `json:"metatags"`
		} `json:"pagemap"`
	} `json:"items"`
}

// Search returns up to count candidate sources for query, restricted to
// the given recency window (e.g. "d1" for one day). An empty result set is
// not an error.
func (c *Client) Search(ctx context.Context, query string, count int, recency string) ([]digest.CandidateSource, error) {
	if c.cfg.APIKey == "" || c.cfg.EngineID == "" {
		return nil, fmt.Errorf("search client misconfigured")
	}
	if count <= 0 {
		return nil, nil
	}

	var candidates []digest.CandidateSource
	for start := 1; len(candidates) < count; start += pageSize {
		page, err := c.fetchPage(ctx, query, recency, start)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		candidates = append(candidates, page...)
	}

	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates, nil
}

func (c *Client) fetchPage(ctx context.Context, query, recency string, start int) ([]digest.CandidateSource, error) {
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("cx", c.cfg.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(pageSize))
	params.Set("start", strconv.Itoa(start))
	if recency != "" {
		params.Set("dateRestrict", recency)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search error %s: %s", resp.Status, snippet)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	candidates := make([]digest.CandidateSource, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		candidates = append(candidates, digest.CandidateSource{
			URL:           item.Link,
			Title:         item.Title,
			Snippet:       item.Snippet,
			PublishedHint: publishedHint(item.Pagemap.Metatags),
		})
	}
	return candidates, nil
}

// doWithRetry retries rate-limited requests with doubling backoff. Other
// responses, including errors, return immediately for the caller to judge.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		delay := retryBaseDelay * time.Duration(1<<attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func publishedHint(metatags []map[string]string) string {
	for _, tags := range metatags {
		for _, key := range []string{"article:published_time", "og:updated_time", "date"} {
			if v := tags[key]; v != "" {
				return v
			}
		}
	}
	return ""
}
