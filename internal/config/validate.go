package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims keyword lists and checks the knobs the engine
// depends on. It returns a normalized copy plus errors/warnings.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Policy.RelevanceAny = trimList(out.Policy.RelevanceAny)
	out.Policy.HighValueAny = trimList(out.Policy.HighValueAny)
	out.Policy.InnovationAny = trimList(out.Policy.InnovationAny)
	out.Policy.MediumValueAny = trimList(out.Policy.MediumValueAny)
	out.Policy.LowValueAny = trimList(out.Policy.LowValueAny)
	out.Policy.ExcludeAny = trimList(out.Policy.ExcludeAny)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Cache.TTLSeconds <= 0 {
		res.addErr("cache.ttl_seconds must be > 0")
	} else if out.Cache.TTLSeconds < 60 {
		res.addWarn("cache.ttl_seconds is very low (%d); sources will be hit often.", out.Cache.TTLSeconds)
	}

	if len(out.Policy.RelevanceAny) == 0 {
		res.addErr("policy.relevance_any must have at least 1 term")
	}

	checkSource := func(name string, s SourceSettings) {
		if !s.Enabled {
			return
		}
		if strings.TrimSpace(s.BaseURL) == "" {
			res.addErr("sources.%s.base_url is required when enabled", name)
		}
		if s.TimeoutSeconds <= 0 {
			res.addErr("sources.%s.timeout_seconds must be > 0", name)
		}
		if s.BaseScore < 1 || s.BaseScore > 10 {
			res.addErr("sources.%s.base_score must be 1..10", name)
		}
		if s.MinScore < 0 || s.MinScore > 10 {
			res.addErr("sources.%s.min_score must be 0..10", name)
		}
	}
	checkSource("boe", out.Sources.BOE.SourceSettings)
	checkSource("eu_funding", out.Sources.EUFunding.SourceSettings)
	checkSource("cdti", out.Sources.CDTI.SourceSettings)
	checkSource("idae", out.Sources.IDAE.SourceSettings)

	// scraped sources must pace their requests
	if out.Sources.CDTI.Enabled && out.Sources.CDTI.DelaySeconds < 1 {
		res.addErr("sources.cdti.delay_seconds must be >= 1 (politeness toward third-party site)")
	}
	if out.Sources.IDAE.Enabled && out.Sources.IDAE.DelaySeconds < 1 {
		res.addErr("sources.idae.delay_seconds must be >= 1 (politeness toward third-party site)")
	}

	if out.Sources.BOE.Enabled && out.Sources.BOE.WindowDays <= 0 {
		res.addErr("sources.boe.window_days must be > 0")
	}

	if !out.Sources.BOE.Enabled && !out.Sources.EUFunding.Enabled &&
		!out.Sources.CDTI.Enabled && !out.Sources.IDAE.Enabled {
		res.addWarn("all sources disabled; every search will return empty results.")
	}

	return out, res
}
