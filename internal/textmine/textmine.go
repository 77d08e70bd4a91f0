// Package textmine pulls funding amounts, dates and descriptions out of
// free-form announcement text. The heuristics are source-specific by nature;
// adapters consume this package as a collaborator.
package textmine

import (
	"regexp"
	"strings"
	"time"

	"grantfinder-engine/internal/domain"
)

var titleAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?)\s*(?:€|euros?)`),
	regexp.MustCompile(`(?i)(?:hasta|máximo|importe)\s*:?\s*(\d{1,3}(?:[.,]\d{3})*)`),
}

// Amount mines a funding amount from a short text such as a title.
func Amount(text string) string {
	for _, re := range titleAmountPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return "Hasta " + m[1] + "€"
		}
	}
	return domain.AmountUnknown
}

var pageAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`hasta\s+(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?)\s*(?:€|euros?|millones?)`),
	regexp.MustCompile(`importe.*?(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?)\s*(?:€|euros?)`),
	regexp.MustCompile(`dotación.*?(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?)\s*(?:€|euros?|millones?)`),
	regexp.MustCompile(`presupuesto.*?(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?)\s*(?:€|euros?|millones?)`),
	regexp.MustCompile(`(\d{1,3}(?:[.,]\d{3})*)\s*(?:€|euros?)\s*(?:máximo|hasta)`),
}

var pagePercentPattern = regexp.MustCompile(`subvención.*?(\d{1,2})\s*%`)

var fundingMentions = []string{"financiación", "subvención", "ayuda", "préstamo", "incentivo"}

// PageAmount mines an amount from a whole scraped page; it recognizes
// percentage-of-project grants and million-euro budgets.
func PageAmount(pageText string) string {
	lower := strings.ToLower(pageText)

	if m := pagePercentPattern.FindStringSubmatch(lower); m != nil {
		return "Hasta " + m[1] + "% del proyecto"
	}
	for _, re := range pageAmountPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			if strings.Contains(lower, "millones") || strings.Contains(lower, "millón") {
				return "Hasta " + m[1] + "M€"
			}
			return "Hasta " + m[1] + "€"
		}
	}
	for _, kw := range fundingMentions {
		if strings.Contains(lower, kw) {
			return "Ver convocatoria"
		}
	}
	return domain.AmountUnknown
}

// CompactDate parses yyyymmdd gazette dates; bad input is the unknown state.
func CompactDate(s string) domain.Date {
	t, err := time.Parse("20060102", strings.TrimSpace(s))
	if err != nil {
		return domain.Date{}
	}
	return domain.NewDate(t)
}

// EstimatedDeadline returns a deadline the given number of days out, used
// when the source publishes no machine-readable closing date.
func EstimatedDeadline(now time.Time, days int) domain.Date {
	return domain.NewDate(now.AddDate(0, 0, days))
}

var spaceRun = regexp.MustCompile(`\s+`)

// Description picks the first paragraph-sized text that is not just the
// title restated, bounded to max bytes.
func Description(paragraphs []string, title string, max int) string {
	lowTitle := strings.ToLower(title)
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if len(p) <= 100 {
			continue
		}
		if strings.Contains(lowTitle, strings.ToLower(p)) {
			continue
		}
		p = spaceRun.ReplaceAllString(p, " ")
		if len(p) > max {
			p = p[:max]
		}
		return p
	}
	return ""
}
