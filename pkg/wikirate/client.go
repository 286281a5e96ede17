// Package wikirate provides a client for the Wikirate open company-metrics
// registry, used to check sustainability claims against reported data.
package wikirate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotFound marks a company with no registry record; callers report it
// as "manual verification required" rather than a tool failure.
var ErrNotFound = errors.New("wikirate: company not found")

// Answer is one reported metric value for a company.
type Answer struct {
	Metric string `json:"metric"`
	Year   int    `json:"year"`
	Value  string `json:"value"`
}

// Company is the registry record for one company.
type Company struct {
	Name    string   `json:"name"`
	Answers []Answer `json:"answers"`
}

// Client defines the registry lookups used for claim validation.
type Client interface {
	// CompanyMetrics returns the reported metrics for the named company,
	// or ErrNotFound when the registry has no record.
	CompanyMetrics(ctx context.Context, name string) (*Company, error)
}

// Option configures the Wikirate client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Wikirate client. The API key may be empty for
// anonymous read access at reduced rate limits.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://wikirate.org",
		http: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// companyPayload mirrors the card JSON the registry serves.
type companyPayload struct {
	Name  string `json:"name"`
	Items []struct {
		Metric string          `json:"metric"`
		Year   json.Number     `json:"year"`
		Value  json.RawMessage `json:"value"`
	} `json:"items"`
}

func (c *httpClient) CompanyMetrics(ctx context.Context, name string) (*Company, error) {
	slug := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	reqURL := c.baseURL + "/" + url.PathEscape(slug) + "+Answer.json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "wikirate: create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "wikirate: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "wikirate: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("wikirate: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload companyPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "wikirate: unmarshal response")
	}

	company := &Company{Name: payload.Name}
	if company.Name == "" {
		company.Name = name
	}
	for _, item := range payload.Items {
		year, _ := item.Year.Int64()
		company.Answers = append(company.Answers, Answer{
			Metric: item.Metric,
			Year:   int(year),
			Value:  strings.Trim(string(item.Value), `"`),
		})
	}
	return company, nil
}
