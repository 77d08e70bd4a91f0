package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantfinder-engine/internal/domain"
)

func sample() []domain.Grant {
	return []domain.Grant{{
		Title:           "Ayudas Neotec 2024",
		Description:     "Financiación para startups tecnológicas.",
		Sector:          "Technology",
		Location:        "Spain",
		Region:          "All",
		CompanyType:     "Startup",
		Amount:          "Hasta 325.000€",
		Deadline:        domain.ParseDate("2024-09-30"),
		PublicationDate: domain.ParseDate("2024-05-15"),
		Source:          "CDTI",
		Link:            "https://www.cdti.es/neotec",
		RelevanceScore:  8,
		DaysRemaining:   45,
	}}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Equal(t, "subvenciones.json", FormatJSON.Filename())
	assert.Equal(t, "subvenciones.csv", FormatCSV.Filename())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON.Write(&buf, sample()))

	var payload struct {
		Grants []domain.Grant `json:"grants"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	require.Len(t, payload.Grants, 1)
	assert.Equal(t, "Ayudas Neotec 2024", payload.Grants[0].Title)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatCSV.Write(&buf, sample()))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "Ayudas Neotec 2024", rows[1][0])
	assert.Equal(t, "2024-09-30", rows[1][7])
	assert.Equal(t, "45", rows[1][9])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatCSV.Write(&buf, nil))
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}
