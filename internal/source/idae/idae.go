// Package idae scrapes the energy agency's aid-and-financing listing. It is
// the energy-focused source: records default to the Energy sector and the
// admission floor is stricter than the general scraped path.
package idae

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"grantfinder-engine/internal/domain"
	"grantfinder-engine/internal/relevance"
	"grantfinder-engine/internal/source/sourceutil"
	"grantfinder-engine/internal/textmine"
)

const (
	sourceName            = "IDAE - Instituto para la Diversificación y Ahorro de la Energía"
	fallbackDescription   = "Programa de ayudas del IDAE. Consulta la convocatoria oficial."
	estimatedDeadlineDays = 60
	maxDescriptionLen     = 600
)

type Config struct {
	ListingURL   string
	Timeout      time.Duration
	ListingDelay time.Duration
	LinkDelay    time.Duration
	PerPageLimit int
	MaxResults   int
	BaseScore    int
	MinScore     int
}

type Scraper struct {
	cfg     Config
	filter  *relevance.Filter
	hc      *http.Client
	listing *sourceutil.HostLimiter
	links   *sourceutil.HostLimiter
	now     func() time.Time
}

func New(cfg Config, filter *relevance.Filter) *Scraper {
	return &Scraper{
		cfg:     cfg,
		filter:  filter,
		hc:      sourceutil.NewHTTPClient(cfg.Timeout),
		listing: sourceutil.NewHostLimiter(cfg.ListingDelay),
		links:   sourceutil.NewHostLimiter(cfg.LinkDelay),
		now:     time.Now,
	}
}

func (s *Scraper) Name() string { return "idae" }

func (s *Scraper) profile() relevance.Profile {
	return relevance.Profile{Base: s.cfg.BaseScore, Min: s.cfg.MinScore, PerKeyword: true}
}

func (s *Scraper) Search(ctx context.Context, q domain.Query) ([]domain.Grant, error) {
	if err := s.listing.WaitURL(ctx, s.cfg.ListingURL); err != nil {
		return nil, err
	}

	doc, err := s.fetchDocument(ctx, s.cfg.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("idae get listing: %w", err)
	}

	links := s.aidLinks(doc)
	if len(links) > s.cfg.PerPageLimit {
		links = links[:s.cfg.PerPageLimit]
	}

	var out []domain.Grant
	for _, l := range links {
		g, err := s.grantFromLink(ctx, l, q)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("[idae] link=%s err=%v", l.url, err)
			continue
		}
		if g != nil {
			out = append(out, *g)
		}
		if len(out) >= s.cfg.MaxResults {
			break
		}
	}
	return out, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	sourceutil.SetHeaders(req)

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d", res.StatusCode)
	}
	return goquery.NewDocumentFromReader(res.Body)
}

type link struct {
	url   string
	title string
}

func (s *Scraper) aidLinks(doc *goquery.Document) []link {
	seen := map[string]bool{}
	var out []link

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		title := sourceutil.CleanText(a.Text())
		if href == "" || len(title) < 10 {
			return
		}
		if !s.filter.LinkOK(title) {
			return
		}
		abs := s.resolve(href)
		if seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, link{url: abs, title: title})
	})
	return out
}

func (s *Scraper) resolve(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(s.cfg.ListingURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func (s *Scraper) grantFromLink(ctx context.Context, l link, q domain.Query) (*domain.Grant, error) {
	description := ""
	amount := domain.AmountUnknown

	if err := s.links.WaitURL(ctx, l.url); err != nil {
		return nil, err
	}
	if doc, err := s.fetchDocument(ctx, l.url); err == nil {
		var paragraphs []string
		doc.Find("p").Each(func(_ int, p *goquery.Selection) {
			paragraphs = append(paragraphs, p.Text())
		})
		description = textmine.Description(paragraphs, l.title, maxDescriptionLen)
		amount = textmine.PageAmount(doc.Text())
	}
	if description == "" {
		description = fallbackDescription
	}

	content := l.title + " " + description
	score := s.filter.Score(content, s.profile())
	if !s.filter.Admit(score, s.profile()) {
		return nil, nil
	}
	if !s.filter.SectorOK(content, q.Sector) {
		return nil, nil
	}
	if !s.filter.LocationOK(content, q.Location, q.Region) {
		return nil, nil
	}

	return &domain.Grant{
		Title:           sourceutil.TruncateTitle(l.title, domain.MaxTitleLen),
		Description:     description,
		Sector:          s.filter.InferSector(content, "Energy"),
		Location:        domain.LocationSpain,
		Region:          s.filter.InferRegion(content, domain.All),
		CompanyType:     s.filter.InferCompanyType(content),
		Amount:          amount,
		Deadline:        textmine.EstimatedDeadline(s.now(), estimatedDeadlineDays),
		PublicationDate: domain.NewDate(s.now()),
		Source:          sourceName,
		Link:            l.url,
		RelevanceScore:  score,
		Identifier:      sourceutil.Identifier("IDAE", l.title),
	}, nil
}
