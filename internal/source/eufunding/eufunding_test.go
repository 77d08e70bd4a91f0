package eufunding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantfinder-engine/internal/config"
	"grantfinder-engine/internal/domain"
	"grantfinder-engine/internal/relevance"
)

const portalResponse = `{
  "results": [
    {
      "reference": "HORIZON-CL5-2024-01",
      "title": "Funding call for clean energy demonstrations",
      "summary": "Grant supporting large-scale renewable deployments across member states.",
      "url": "https://ec.europa.eu/call/1",
      "metadata": {
        "startDate": ["2024-05-01"],
        "deadlineDate": ["2024-09-01"]
      }
    },
    {
      "reference": "TENDER-99",
      "title": "Tender for office furniture",
      "summary": "Procurement of desks.",
      "url": "https://ec.europa.eu/tender/99",
      "metadata": {}
    }
  ]
}`

func newTestScraper(baseURL string) *Scraper {
	return New(Config{
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		PageSize:   50,
		MaxResults: 10,
		BaseScore:  4,
	}, relevance.New(config.Default().Policy))
}

func TestSearchParsesCalls(t *testing.T) {
	var lastText atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		lastText.Store(req.Text)
		assert.Equal(t, 50, req.PageSize)
		_, _ = w.Write([]byte(portalResponse))
	}))
	defer srv.Close()

	s := newTestScraper(srv.URL)
	out, err := s.Search(context.Background(), domain.Query{Sector: "Energy", Location: domain.LocationEU}.Normalized())
	require.NoError(t, err)
	assert.Equal(t, "grant Energy", lastText.Load())

	// the tender has no relevance vocabulary and is dropped; the grant call
	// passes the gate but misses the Spanish Energy keywords
	require.Len(t, out, 0)

	out, err = s.Search(context.Background(), domain.Query{Location: domain.LocationEU}.Normalized())
	require.NoError(t, err)
	require.Len(t, out, 1)

	g := out[0]
	assert.Equal(t, "Funding call for clean energy demonstrations", g.Title)
	assert.Equal(t, "HORIZON-CL5-2024-01", g.Identifier)
	assert.Equal(t, domain.LocationEU, g.Location)
	assert.Equal(t, domain.All, g.Region)
	assert.Equal(t, sourceName, g.Source)
	assert.Equal(t, 4, g.RelevanceScore)
	assert.Equal(t, "2024-09-01", g.Deadline.String())
	assert.Equal(t, "2024-05-01", g.PublicationDate.String())
}

func TestSearchSkipsNonEULocations(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_, _ = w.Write([]byte(portalResponse))
	}))
	defer srv.Close()

	s := newTestScraper(srv.URL)
	out, err := s.Search(context.Background(), domain.Query{Location: domain.LocationSpain}.Normalized())
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests), "Spain searches must not hit the portal")

	out, err = s.Search(context.Background(), domain.Query{Location: "Madrid"}.Normalized())
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}

func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestScraper(srv.URL).Search(context.Background(), domain.Query{}.Normalized())
	assert.Error(t, err)
}
