// Package eufunding queries the EU funding portal's search API for open
// calls for proposals. Everything the portal publishes is EU-targeted, so
// Spain- or region-scoped searches skip this source entirely.
package eufunding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"grantfinder-engine/internal/domain"
	"grantfinder-engine/internal/relevance"
	"grantfinder-engine/internal/source/sourceutil"
	"grantfinder-engine/internal/textmine"
)

const sourceName = "EU Funding & Tenders Portal"

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	PageSize   int
	MaxResults int
	BaseScore  int
}

type Scraper struct {
	cfg    Config
	filter *relevance.Filter
	hc     *http.Client
}

func New(cfg Config, filter *relevance.Filter) *Scraper {
	return &Scraper{
		cfg:    cfg,
		filter: filter,
		hc:     sourceutil.NewHTTPClient(cfg.Timeout),
	}
}

func (s *Scraper) Name() string { return "eu_funding" }

type searchRequest struct {
	Text       string `json:"text"`
	PageSize   int    `json:"pageSize"`
	PageNumber int    `json:"pageNumber"`
}

type searchResponse struct {
	Results []call `json:"results"`
}

type call struct {
	Reference string `json:"reference"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
	Metadata  struct {
		StartDate    []string `json:"startDate"`
		DeadlineDate []string `json:"deadlineDate"`
	} `json:"metadata"`
}

func (s *Scraper) Search(ctx context.Context, q domain.Query) ([]domain.Grant, error) {
	// the portal only carries EU-wide calls
	if q.Location != domain.All && q.Location != domain.LocationEU {
		return nil, nil
	}

	body, err := json.Marshal(searchRequest{
		Text:     searchText(q.Sector),
		PageSize: s.cfg.PageSize,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	sourceutil.SetHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eu_funding search: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("eu_funding status %d", res.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("eu_funding decode: %w", err)
	}

	profile := relevance.Profile{Base: s.cfg.BaseScore}

	var out []domain.Grant
	for _, c := range sr.Results {
		title := sourceutil.CleanText(c.Title)
		if title == "" || !s.filter.GateOK(title) {
			continue
		}
		content := title + " " + c.Summary
		if !s.filter.SectorOK(content, q.Sector) {
			continue
		}

		out = append(out, domain.Grant{
			Title:           sourceutil.TruncateTitle(title, domain.MaxTitleLen),
			Description:     sourceutil.CleanText(c.Summary),
			Sector:          s.filter.InferSector(content, q.Sector),
			Location:        domain.LocationEU,
			Region:          domain.All,
			CompanyType:     q.CompanyType,
			Amount:          textmine.Amount(c.Summary),
			Deadline:        first(c.Metadata.DeadlineDate),
			PublicationDate: first(c.Metadata.StartDate),
			Source:          sourceName,
			Link:            c.URL,
			RelevanceScore:  s.filter.Score(content, profile),
			Identifier:      c.Reference,
		})
		if len(out) >= s.cfg.MaxResults {
			break
		}
	}
	return out, nil
}

// searchText builds the portal query; the portal speaks English, the policy
// gate speaks Spanish, so the query stays generic.
func searchText(sector string) string {
	if sector == domain.All {
		return "grant"
	}
	return "grant " + sector
}

func first(dates []string) domain.Date {
	if len(dates) == 0 {
		return domain.Date{}
	}
	return domain.ParseDate(dates[0])
}
