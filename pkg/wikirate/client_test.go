package wikirate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Acme_Corp+Answer.json", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		fmt.Fprint(w, `{
			"name": "Acme Corp",
			"items": [
				{"metric": "Scope 1 Emissions", "year": 2024, "value": 120000},
				{"metric": "Renewable Energy Share", "year": "2024", "value": "31%"}
			]
		}`)
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL))
	company, err := c.CompanyMetrics(context.Background(), "Acme Corp")
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", company.Name)
	require.Len(t, company.Answers, 2)
	assert.Equal(t, "Scope 1 Emissions", company.Answers[0].Metric)
	assert.Equal(t, 2024, company.Answers[0].Year)
	assert.Equal(t, "120000", company.Answers[0].Value)
	assert.Equal(t, "31%", company.Answers[1].Value)
}

func TestCompanyMetricsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	_, err := c.CompanyMetrics(context.Background(), "Ghost Inc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompanyMetricsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	_, err := c.CompanyMetrics(context.Background(), "Acme Corp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
