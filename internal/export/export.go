// Package export encodes search results for download.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"grantfinder-engine/internal/domain"
)

// Format names a supported export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned for any format outside the catalog.
var ErrUnsupportedFormat = fmt.Errorf("unsupported export format")

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType is the MIME type for the download response.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Filename is the attachment name for the download response.
func (f Format) Filename() string {
	return "subvenciones." + string(f)
}

// Write encodes grants in the selected format.
func (f Format) Write(w io.Writer, grants []domain.Grant) error {
	if f == FormatCSV {
		return writeCSV(w, grants)
	}
	return writeJSON(w, grants)
}

func writeJSON(w io.Writer, grants []domain.Grant) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"grants": grants})
}

var csvHeader = []string{
	"Título", "Descripción", "Sector", "Ubicación", "Región", "Tipo Empresa",
	"Importe", "Fecha Límite", "Fecha Publicación", "Días Restantes",
	"Fuente", "Enlace",
}

func writeCSV(w io.Writer, grants []domain.Grant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, g := range grants {
		row := []string{
			g.Title, g.Description, g.Sector, g.Location, g.Region,
			g.CompanyType, g.Amount, g.Deadline.String(),
			g.PublicationDate.String(), strconv.Itoa(g.DaysRemaining),
			g.Source, g.Link,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
