// Package cdti scrapes the industrial-technology agency's public site:
// section listings first, then one detail page per discovered program link.
package cdti

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"grantfinder-engine/internal/config"
	"grantfinder-engine/internal/domain"
	"grantfinder-engine/internal/relevance"
	"grantfinder-engine/internal/source/sourceutil"
	"grantfinder-engine/internal/textmine"
)

const (
	sourceName            = "CDTI - Centro para el Desarrollo Tecnológico Industrial"
	fallbackDescription   = "Programa del CDTI. Consulta la documentación oficial para más detalles."
	estimatedDeadlineDays = 90
	maxDescriptionLen     = 600
)

// anchors worth probing on CDTI listing pages
var linkSelectors = []string{
	`a[href*="MP=4"]`,
	`a[href*="programa"]`,
	`a[href*="convocatoria"]`,
	`a[href*="ayuda"]`,
	`td a`,
	`.contenido a`,
	`div[class*="texto"] a`,
	`p a`,
}

var descriptionSelectors = []string{
	"div.contenido p",
	"td p",
	`div[class*="texto"] p`,
	".descripcion",
	".resumen",
	"p",
}

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	SectionDelay    time.Duration
	LinkDelay       time.Duration
	Sections        []config.Section
	PerSectionLimit int
	MaxResults      int
	BaseScore       int
	MinScore        int
}

type Scraper struct {
	cfg    Config
	filter *relevance.Filter
	hc     *http.Client
	// separate pacers so section fetches and link fetches keep their own
	// politeness intervals; the adapter itself runs single-threaded, so
	// requests to the host never interleave
	sections *sourceutil.HostLimiter
	links    *sourceutil.HostLimiter
	now      func() time.Time
}

func New(cfg Config, filter *relevance.Filter) *Scraper {
	return &Scraper{
		cfg:      cfg,
		filter:   filter,
		hc:       sourceutil.NewHTTPClient(cfg.Timeout),
		sections: sourceutil.NewHostLimiter(cfg.SectionDelay),
		links:    sourceutil.NewHostLimiter(cfg.LinkDelay),
		now:      time.Now,
	}
}

func (s *Scraper) Name() string { return "cdti" }

func (s *Scraper) profile() relevance.Profile {
	return relevance.Profile{Base: s.cfg.BaseScore, Min: s.cfg.MinScore, PerKeyword: true}
}

type link struct {
	url   string
	title string
}

// Search scrapes every configured section, ranks the union by relevance and
// caps it. A failed section is logged and skipped.
func (s *Scraper) Search(ctx context.Context, q domain.Query) ([]domain.Grant, error) {
	var all []domain.Grant
	for _, sec := range s.cfg.Sections {
		grants, err := s.scrapeSection(ctx, sec, q)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("[cdti] section=%s err=%v", sec.Name, err)
			continue
		}
		if len(grants) > 0 {
			log.Printf("[cdti] section=%s kept=%d", sec.Name, len(grants))
		}
		all = append(all, grants...)
	}
	return s.rank(all), nil
}

func (s *Scraper) scrapeSection(ctx context.Context, sec config.Section, q domain.Query) ([]domain.Grant, error) {
	if err := s.sections.WaitURL(ctx, sec.URL); err != nil {
		return nil, err
	}

	doc, err := s.fetchDocument(ctx, sec.URL)
	if err != nil {
		return nil, fmt.Errorf("cdti get section: %w", err)
	}

	links := s.programLinks(doc)
	if len(links) > s.cfg.PerSectionLimit {
		links = links[:s.cfg.PerSectionLimit]
	}

	var out []domain.Grant
	for _, l := range links {
		g, err := s.grantFromLink(ctx, l, q)
		if err != nil {
			if ctx.Err() != nil {
				return out, nil
			}
			log.Printf("[cdti] link=%s err=%v", l.url, err)
			continue
		}
		if g != nil {
			out = append(out, *g)
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
	req.Header.Set("Cache-Control", "no-cache")

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

// programLinks collects candidate anchors across the selector list, resolves
// relative targets and keeps the first occurrence of each URL.
func (s *Scraper) programLinks(doc *goquery.Document) []link {
	seen := map[string]bool{}
	var out []link

	for _, sel := range linkSelectors {
		doc.Find(sel).Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			href = strings.TrimSpace(href)
			title := sourceutil.CleanText(a.Text())
			if href == "" || len(title) < 10 {
				return
			}

			abs := s.resolve(href)
			if seen[abs] {
				return
			}
			if !s.filter.LinkOK(title) {
				return
			}
			seen[abs] = true

			title = sourceutil.CutRunes(title, 200)
			out = append(out, link{url: abs, title: title})
		})
	}
	return out
}

func (s *Scraper) resolve(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// grantFromLink hydrates one program page. A failed detail fetch still
// yields a record from the anchor title alone. A nil grant means the
// candidate did not pass the relevance policy.
func (s *Scraper) grantFromLink(ctx context.Context, l link, q domain.Query) (*domain.Grant, error) {
	description := ""
	amount := domain.AmountUnknown

	if err := s.links.WaitURL(ctx, l.url); err != nil {
		return nil, err
	}
	if doc, err := s.fetchDocument(ctx, l.url); err == nil {
		description = s.description(doc, l.title)
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

	return &domain.Grant{
		Title:           sourceutil.TruncateTitle(l.title, domain.MaxTitleLen),
		Description:     description,
		Sector:          s.filter.InferSector(content, "Technology"),
		Location:        domain.LocationSpain,
		Region:          domain.All,
		CompanyType:     s.filter.InferCompanyType(content),
		Amount:          amount,
		Deadline:        textmine.EstimatedDeadline(s.now(), estimatedDeadlineDays),
		PublicationDate: domain.NewDate(s.now()),
		Source:          sourceName,
		Link:            l.url,
		RelevanceScore:  score,
		Identifier:      sourceutil.Identifier("CDTI", l.title),
	}, nil
}

func (s *Scraper) description(doc *goquery.Document, title string) string {
	for _, sel := range descriptionSelectors {
		var paragraphs []string
		doc.Find(sel).Each(func(_ int, p *goquery.Selection) {
			paragraphs = append(paragraphs, p.Text())
		})
		if d := textmine.Description(paragraphs, title, maxDescriptionLen); d != "" {
			return d
		}
	}
	return ""
}

// rank collapses near-duplicate titles within the source, orders by
// relevance and truncates. Cross-source dedup happens later in the
// aggregator; this pass only keeps one entry per program.
func (s *Scraper) rank(grants []domain.Grant) []domain.Grant {
	seen := map[string]bool{}
	var unique []domain.Grant
	for _, g := range grants {
		key := titleKey(g.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, g)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].RelevanceScore > unique[j].RelevanceScore
	})

	if len(unique) > s.cfg.MaxResults {
		unique = unique[:s.cfg.MaxResults]
	}
	return unique
}

func titleKey(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if r == ' ' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
		if b.Len() >= 50 {
			break
		}
	}
	return b.String()
}
