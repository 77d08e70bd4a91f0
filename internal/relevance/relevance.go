// Package relevance decides which raw candidates qualify as grant records
// and how confident the source is in them. Everything here is pure: the same
// text and facets always produce the same answer, which keeps per-adapter
// tests independent of network conditions.
package relevance

import (
	"strings"

	"grantfinder-engine/internal/config"
	"grantfinder-engine/internal/domain"
)

// Profile is one adapter's scoring identity. Base scores and floors differ
// per source on purpose; keep them as configured constants.
type Profile struct {
	Base int
	Min  int // 0 = keyword gate only, no floor
	// PerKeyword selects the scraped-source path: innovation/medium hits
	// accumulate per matched term instead of once per class.
	PerKeyword bool
}

type Filter struct {
	pol config.Policy
}

func New(pol config.Policy) *Filter {
	return &Filter{pol: pol}
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func countMatches(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if t != "" && strings.Contains(text, t) {
			n++
		}
	}
	return n
}

// GateOK runs the relevance-vocabulary gate. It fires before any other
// filtering; a title with no vocabulary hit is not a grant announcement.
func (f *Filter) GateOK(title string) bool {
	return containsAny(strings.ToLower(title), f.pol.RelevanceAny)
}

// SectorOK tests the candidate text against the requested sector's keyword
// set. An unknown sector falls back to matching its own lowercased name.
func (f *Filter) SectorOK(text, sector string) bool {
	if sector == domain.All {
		return true
	}
	lower := strings.ToLower(text)
	keywords, ok := f.pol.SectorKeywords[sector]
	if !ok {
		keywords = []string{strings.ToLower(sector)}
	}
	return containsAny(lower, keywords)
}

// LocationOK applies the location/region admission rules:
// All passes everything; Spain passes anything not EU-targeted and, when a
// region is also requested, requires a regional keyword; EU requires an EU
// keyword; a specific region requires its keyword set.
func (f *Filter) LocationOK(text, location, region string) bool {
	lower := strings.ToLower(text)
	switch {
	case location == domain.All:
		return true
	case location == domain.LocationSpain:
		if containsAny(lower, f.pol.EUExcludeAny) {
			return false
		}
		if region != domain.All {
			if keywords, ok := f.pol.RegionKeywords[region]; ok {
				return containsAny(lower, keywords)
			}
		}
		return true
	case location == domain.LocationEU:
		return containsAny(lower, f.pol.EUAny)
	default:
		if keywords, ok := f.pol.RegionKeywords[location]; ok {
			return containsAny(lower, keywords)
		}
		return true
	}
}

// Score computes the relevance score for text under p and clamps it to
// [1,10].
func (f *Filter) Score(text string, p Profile) int {
	lower := strings.ToLower(text)
	score := p.Base

	if p.PerKeyword {
		score += f.pol.InnovationBonus * countMatches(lower, f.pol.InnovationAny)
		score += f.pol.MediumValueBonus * countMatches(lower, f.pol.MediumValueAny)
		score -= f.pol.LowValuePenalty * countMatches(lower, f.pol.LowValueAny)
	} else {
		if containsAny(lower, f.pol.HighValueAny) {
			score += f.pol.HighValueBonus
		}
		if containsAny(lower, f.pol.LowValueAny) {
			score -= f.pol.LowValuePenalty
		}
	}

	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score
}

// Admit enforces the per-source floor. A zero floor means gate-only.
func (f *Filter) Admit(score int, p Profile) bool {
	return p.Min == 0 || score >= p.Min
}

// InferLocation names the announcement's location from its text: a regional
// keyword hit wins, then an EU keyword hit, then the fallback.
func (f *Filter) InferLocation(text, fallback string) string {
	lower := strings.ToLower(text)
	for _, region := range domain.Regions {
		if containsAny(lower, f.pol.RegionKeywords[region]) {
			return region
		}
	}
	if containsAny(lower, f.pol.EUAny) {
		return domain.LocationEU
	}
	return fallback
}

// InferRegion is InferLocation without the EU step.
func (f *Filter) InferRegion(text, fallback string) string {
	lower := strings.ToLower(text)
	for _, region := range domain.Regions {
		if containsAny(lower, f.pol.RegionKeywords[region]) {
			return region
		}
	}
	return fallback
}

// InferSector names the announcement's sector from its text, walking the
// catalog in fixed order so the answer is deterministic.
func (f *Filter) InferSector(text, fallback string) string {
	lower := strings.ToLower(text)
	for _, sector := range domain.Sectors {
		if containsAny(lower, f.pol.SectorKeywords[sector]) {
			return sector
		}
	}
	return fallback
}

// InferCompanyType guesses the target company type on scraped pages.
func (f *Filter) InferCompanyType(text string) string {
	lower := strings.ToLower(text)
	for _, ct := range domain.CompanyTypes {
		if containsAny(lower, f.pol.CompanyTypeKeywords[ct]) {
			return ct
		}
	}
	return domain.All
}

// LinkOK filters scraped anchors: the title must carry relevance vocabulary
// and must not look like site boilerplate.
func (f *Filter) LinkOK(title string) bool {
	lower := strings.ToLower(title)
	if !containsAny(lower, f.pol.RelevanceAny) && !containsAny(lower, f.pol.InnovationAny) {
		return false
	}
	return !containsAny(lower, f.pol.ExcludeAny)
}
