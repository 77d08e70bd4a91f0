package aggregate

import (
	"strings"
	"unicode"

	"grantfinder-engine/internal/domain"
)

// dedupe drops later records whose key was already seen. The candidate list
// arrives in adapter priority order, so first-wins encodes source
// precedence — a later duplicate is dropped even with a higher relevance
// score. Keep this rule exact; callers depend on which copy survives.
func dedupe(grants []domain.Grant) []domain.Grant {
	seen := make(map[string]bool, len(grants))
	out := grants[:0:0]
	for _, g := range grants {
		key := Key(g.Source, g.Identifier, g.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, g)
	}
	return out
}

// Key derives the dedup key: source plus the native identifier when it is
// meaningful (longer than 3 characters), otherwise source plus the
// normalized title.
func Key(source, identifier, title string) string {
	if len(identifier) > 3 {
		return source + "_" + identifier
	}
	return source + "_" + normalizeTitle(title)
}

// normalizeTitle lower-cases and strips everything that is not a letter,
// digit or underscore, so cosmetic punctuation differences collapse.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
