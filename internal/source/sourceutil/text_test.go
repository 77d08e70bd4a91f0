package sourceutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Ayudas a pymes", CleanText("  Ayudas \n\t a pymes  "))
	assert.Equal(t, "", CleanText("   "))
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "corto", TruncateTitle("corto", 150))

	long := strings.Repeat("palabra ", 30)
	got := TruncateTitle(long, 150)
	assert.LessOrEqual(t, len(got), 150)
	// cuts at a word boundary, never mid-word
	assert.False(t, strings.HasSuffix(got, "palabr"))
}

func TestTruncateTitleKeepsRunesWhole(t *testing.T) {
	// no space near the cut point, every second byte mid-rune
	long := strings.Repeat("ó", 100)
	got := TruncateTitle(long, 151)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 151)
	assert.Equal(t, 150, len(got))
}

func TestCutRunes(t *testing.T) {
	assert.Equal(t, "día", CutRunes("día", 10))

	got := CutRunes(strings.Repeat("ñ", 20), 7)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 6, len(got))
}

func TestIdentifierStable(t *testing.T) {
	a := Identifier("cdti", "Programa Neotec 2024")
	b := Identifier("cdti", "Programa Neotec 2024")
	c := Identifier("cdti", "Programa Misiones 2024")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "cdti_programaneotec2024_"))
	assert.Greater(t, len(a), 3)
}
