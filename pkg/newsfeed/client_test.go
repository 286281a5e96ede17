package newsfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchExtractsArticles(t *testing.T) {
	var articleSrv *httptest.Server
	articleSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<nav><p>Home News Sport Weather and more navigation text here</p></nav>
			<p>Acme Corp faces scrutiny over its carbon neutral marketing claims after regulators opened an inquiry.</p>
			<p>The company said its own internal assessments support the claims made in the campaign.</p>
			<script>tracker()</script>
		</body></html>`)
	}))
	defer articleSrv.Close()

	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("q"), "Acme Corp")
		fmt.Fprintf(w, `<html><body>
			<a href="%s/story-1">Acme Corp accused of greenwashing in new campaign</a>
			<a href="/internal">nav</a>
			<a href="%s/story-1">Acme Corp accused of greenwashing in new campaign</a>
		</body></html>`, articleSrv.URL, articleSrv.URL)
	}))
	defer searchSrv.Close()

	c := NewClient(WithBaseURL(searchSrv.URL))
	articles, err := c.Search(context.Background(), "Acme Corp", 5)
	require.NoError(t, err)

	// Duplicate links collapse to one article.
	require.Len(t, articles, 1)
	assert.Equal(t, "Acme Corp accused of greenwashing in new campaign", articles[0].Title)
	assert.Contains(t, articles[0].Text, "regulators opened an inquiry")
	assert.NotContains(t, articles[0].Text, "tracker()")
	assert.NotContains(t, articles[0].Text, "navigation text")
}

func TestSearchSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "Acme Corp", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSearchToleratesDeadResultLinks(t *testing.T) {
	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="http://127.0.0.1:1/gone">Acme Corp sustainability report draws criticism</a>
		</body></html>`)
	}))
	defer searchSrv.Close()

	c := NewClient(WithBaseURL(searchSrv.URL))
	articles, err := c.Search(context.Background(), "Acme Corp", 5)
	require.NoError(t, err)
	assert.Empty(t, articles)
}
