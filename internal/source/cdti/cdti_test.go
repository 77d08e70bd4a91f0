package cdti

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantfinder-engine/internal/config"
	"grantfinder-engine/internal/domain"
	"grantfinder-engine/internal/relevance"
)

const sectionHTML = `<html><body>
<div class="contenido">
  <p><a href="/programa/neotec">Programa Neotec de ayudas a la innovación</a></p>
  <p><a href="/aviso-legal">Aviso legal del sitio</a></p>
  <p><a href="/x">corta</a></p>
</div>
</body></html>`

const detailHTML = `<html><body>
<p>Inicio</p>
<p>El programa Neotec financia la creación de startups de base tecnológica
mediante subvenciones de hasta 325.000 euros por beneficiario, cubriendo los
gastos del plan de empresa.</p>
</body></html>`

func newTestScraper(t *testing.T, baseURL string) *Scraper {
	t.Helper()
	s := New(Config{
		BaseURL:         baseURL,
		Timeout:         5 * time.Second,
		SectionDelay:    time.Millisecond,
		LinkDelay:       time.Millisecond,
		Sections:        []config.Section{{Name: "ayudas", URL: baseURL + "/seccion"}},
		PerSectionLimit: 15,
		MaxResults:      8,
		BaseScore:       6,
		MinScore:        4,
	}, relevance.New(config.Default().Policy))
	s.now = func() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) }
	return s
}

func testServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/seccion", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sectionHTML))
	})
	mux.HandleFunc("/programa/neotec", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailHTML))
	})
	return httptest.NewServer(mux)
}

func TestSearchScrapesProgramPages(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	s := newTestScraper(t, srv.URL)
	out, err := s.Search(context.Background(), domain.Query{}.Normalized())
	require.NoError(t, err)

	// boilerplate and short anchors never become candidates
	require.Len(t, out, 1)
	g := out[0]

	assert.Equal(t, "Programa Neotec de ayudas a la innovación", g.Title)
	assert.Equal(t, sourceName, g.Source)
	assert.Equal(t, srv.URL+"/programa/neotec", g.Link)
	assert.Contains(t, g.Description, "financia la creación de startups")
	assert.Equal(t, "Hasta 325.000€", g.Amount)
	assert.Equal(t, "Technology", g.Sector)
	assert.Equal(t, domain.LocationSpain, g.Location)
	assert.Equal(t, "Startup", g.CompanyType)
	// innovation and medium-value vocabulary pile up, clamped at the top
	assert.Equal(t, 10, g.RelevanceScore)
	assert.True(t, strings.HasPrefix(g.Identifier, "CDTI_"))
	// scraped pages publish no dates: today plus the estimated window
	assert.Equal(t, "2024-06-10", g.PublicationDate.String())
	assert.Equal(t, "2024-09-08", g.Deadline.String())
}

func TestSearchSectorMismatch(t *testing.T) {
	srv := testServer()
	defer srv.Close()

	s := newTestScraper(t, srv.URL)
	out, err := s.Search(context.Background(), domain.Query{Sector: "Agriculture"}.Normalized())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSearchDetailFetchFailureStillYieldsRecord(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/seccion", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sectionHTML))
	})
	mux.HandleFunc("/programa/neotec", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newTestScraper(t, srv.URL)
	out, err := s.Search(context.Background(), domain.Query{}.Normalized())
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, fallbackDescription, out[0].Description)
	assert.Equal(t, domain.AmountUnknown, out[0].Amount)
}

func TestSearchBrokenSectionSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := newTestScraper(t, srv.URL)
	out, err := s.Search(context.Background(), domain.Query{}.Normalized())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRankOrdersAndCaps(t *testing.T) {
	s := newTestScraper(t, "http://unused")
	s.cfg.MaxResults = 2

	in := []domain.Grant{
		{Title: "bajo", RelevanceScore: 4},
		{Title: "alto", RelevanceScore: 9},
		{Title: "medio", RelevanceScore: 6},
		{Title: "ALTO!!", RelevanceScore: 9}, // same title after normalization
	}
	out := s.rank(in)
	require.Len(t, out, 2)
	assert.Equal(t, "alto", out[0].Title)
	assert.Equal(t, "medio", out[1].Title)
}
