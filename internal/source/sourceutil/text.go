package sourceutil

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"
)

// CleanText collapses whitespace and strips non-breaking spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// TruncateTitle bounds a title to max bytes without cutting mid-word when a
// nearby space exists.
func TruncateTitle(s string, max int) string {
	s = CleanText(s)
	if len(s) <= max {
		return s
	}
	cut := CutRunes(s, max)
	if i := strings.LastIndexByte(cut, ' '); i > max*8/10 {
		cut = cut[:i]
	}
	return cut
}

// CutRunes truncates s to at most max bytes on a rune boundary.
func CutRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// Identifier derives a stable source-native id from a title.
func Identifier(prefix, title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
		if b.Len() >= 30 {
			break
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(title))
	return fmt.Sprintf("%s_%s_%04d", prefix, b.String(), h.Sum32()%10000)
}
