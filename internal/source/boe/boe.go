// Package boe reads the state gazette's open-data summary API and mines
// grant announcements out of the daily item titles.
package boe

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"context"

	"grantfinder-engine/internal/domain"
	"grantfinder-engine/internal/relevance"
	"grantfinder-engine/internal/source/sourceutil"
	"grantfinder-engine/internal/textmine"
)

const sourceName = "BOE - Boletín Oficial del Estado"

// estimated closing window when an announcement has no explicit deadline
const estimatedDeadlineDays = 45

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Delay      time.Duration
	WindowDays int
	MaxResults int
	BaseScore  int
}

type Scraper struct {
	cfg     Config
	filter  *relevance.Filter
	hc      *http.Client
	limiter *sourceutil.HostLimiter
	now     func() time.Time
}

func New(cfg Config, filter *relevance.Filter) *Scraper {
	return &Scraper{
		cfg:     cfg,
		filter:  filter,
		hc:      sourceutil.NewHTTPClient(cfg.Timeout),
		limiter: sourceutil.NewHostLimiter(cfg.Delay),
		now:     time.Now,
	}
}

func (s *Scraper) Name() string { return "boe" }

func (s *Scraper) profile() relevance.Profile {
	return relevance.Profile{Base: s.cfg.BaseScore}
}

// summary mirrors the gazette API shape: a daily summary holds sections,
// sections hold subsections, subsections hold items.
type summary struct {
	Sumario struct {
		Metadatos struct {
			FechaPublicacion string `json:"fecha_publicacion"` // yyyymmdd
		} `json:"metadatos"`
		Secciones []struct {
			Secciones []struct {
				Items []item `json:"items"`
			} `json:"secciones"`
		} `json:"secciones"`
	} `json:"sumario"`
}

type item struct {
	Titulo string `json:"titulo"`
	URL    string `json:"url"`
}

// Search walks the trailing publication window one day at a time. A failed
// day is logged and skipped; whatever accumulated is returned.
func (s *Scraper) Search(ctx context.Context, q domain.Query) ([]domain.Grant, error) {
	var out []domain.Grant
	end := s.now()

	for i := 0; i < s.cfg.WindowDays; i++ {
		day := end.AddDate(0, 0, -i)
		grants, err := s.fetchDay(ctx, day, q)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("[boe] day=%s err=%v", day.Format("20060102"), err)
			continue
		}
		out = append(out, grants...)
		if len(out) >= s.cfg.MaxResults {
			break
		}
	}

	if len(out) > s.cfg.MaxResults {
		out = out[:s.cfg.MaxResults]
	}
	return out, nil
}

func (s *Scraper) fetchDay(ctx context.Context, day time.Time, q domain.Query) ([]domain.Grant, error) {
	compact := day.Format("20060102")
	dayURL := fmt.Sprintf("%s/%s", s.cfg.BaseURL, compact)

	if err := s.limiter.WaitURL(ctx, dayURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dayURL, nil)
	if err != nil {
		return nil, err
	}
	sourceutil.SetHeaders(req)

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boe get summary: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		// weekends and holidays have no gazette; not worth a retry
		return nil, fmt.Errorf("boe summary status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var sum summary
	if err := json.Unmarshal(body, &sum); err != nil {
		return nil, fmt.Errorf("boe decode summary: %w", err)
	}

	// prefer the gazette's own publication date; fall back to the walked day
	published := textmine.CompactDate(sum.Sumario.Metadatos.FechaPublicacion)
	if !published.Valid {
		published = domain.NewDate(day)
	}

	var out []domain.Grant
	for _, sec := range sum.Sumario.Secciones {
		for _, sub := range sec.Secciones {
			for _, it := range sub.Items {
				if g, ok := s.grantFromItem(it, q, published, compact); ok {
					out = append(out, g)
				}
			}
		}
	}
	return out, nil
}

func (s *Scraper) grantFromItem(it item, q domain.Query, published domain.Date, compact string) (domain.Grant, bool) {
	title := sourceutil.CleanText(it.Titulo)
	if title == "" || !s.filter.GateOK(title) {
		return domain.Grant{}, false
	}
	if !s.filter.SectorOK(title, q.Sector) {
		return domain.Grant{}, false
	}
	if !s.filter.LocationOK(title, q.Location, q.Region) {
		return domain.Grant{}, false
	}

	link := it.URL
	if link == "" {
		link = fmt.Sprintf("https://www.boe.es/boe/dias/%s/", compact)
	}

	return domain.Grant{
		Title:           sourceutil.TruncateTitle(title, domain.MaxTitleLen),
		Description:     "Convocatoria oficial publicada en BOE.",
		Sector:          q.Sector,
		Location:        s.filter.InferLocation(title, q.Location),
		Region:          s.filter.InferRegion(title, q.Region),
		CompanyType:     q.CompanyType,
		Amount:          textmine.Amount(title),
		Deadline:        textmine.EstimatedDeadline(s.now(), estimatedDeadlineDays),
		PublicationDate: published,
		Source:          sourceName,
		Link:            link,
		RelevanceScore:  s.filter.Score(title, s.profile()),
	}, true
}
