// Package newsfeed provides a client for retrieving recent news coverage
// about a company: a search against a news index plus article text
// extraction from the result pages.
package newsfeed

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// Article is one retrieved news item with its extracted body text.
type Article struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

// Client defines the news retrieval operations.
type Client interface {
	// Search returns up to limit articles mentioning the subject.
	Search(ctx context.Context, subject string, limit int) ([]Article, error)
}

// Option configures the newsfeed client.
type Option func(*httpClient)

// WithBaseURL sets a custom search base URL (for testing).
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

// maxArticleBytes caps how much of an article page is read; body text past
// this point is ads and related-story chrome.
const maxArticleBytes = 512 * 1024

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a news client against the given search endpoint.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   "https://www.bing.com/news/search",
		userAgent: "greenwash-cli/1.0",
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

func (c *httpClient) Search(ctx context.Context, subject string, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 5
	}
	query := subject + " greenwashing OR sustainability OR environmental claims"
	reqURL := c.baseURL + "?q=" + url.QueryEscape(query)

	doc, err := c.fetch(ctx, reqURL)
	if err != nil {
		return nil, eris.Wrap(err, "newsfeed: search")
	}

	links := resultLinks(doc, limit)
	articles := make([]Article, 0, len(links))
	for _, link := range links {
		page, err := c.fetch(ctx, link.href)
		if err != nil {
			// A dead result link costs one article, not the search.
			continue
		}
		text := extractText(page)
		if text == "" {
			continue
		}
		articles = append(articles, Article{Title: link.title, URL: link.href, Text: text})
	}
	return articles, nil
}

func (c *httpClient) fetch(ctx context.Context, rawURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxArticleBytes))
	if err != nil {
		return nil, eris.Wrap(err, "parse html")
	}
	return doc, nil
}

type resultLink struct {
	title string
	href  string
}

// resultLinks walks the search result page for external article anchors.
// Anchors with short text are navigation, not results.
func resultLinks(doc *html.Node, limit int) []resultLink {
	var links []resultLink
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(links) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			title := strings.TrimSpace(nodeText(n))
			if strings.HasPrefix(href, "http") && len(title) >= 20 && !seen[href] {
				seen[href] = true
				links = append(links, resultLink{title: title, href: href})
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return links
}

// extractText concatenates paragraph text from an article page.
func extractText(doc *html.Node) string {
	var parts []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "aside":
				return
			case "p":
				if t := strings.TrimSpace(nodeText(n)); len(t) > 40 {
					parts = append(parts, t)
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	text := strings.Join(parts, "\n")
	if len(text) > 4000 {
		text = text[:4000]
	}
	return text
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
