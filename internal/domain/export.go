package domain

import "time"

// ExportRecord summarizes one successfully exported report. It is the
// payload announced to downstream consumers after the counter advances.
type ExportRecord struct {
	ReportID       int            `json:"id"`
	ControlNumber  string         `json:"control_number"`
	Date           string         `json:"data"`
	Municipality   string         `json:"municipio"`
	Engineer       string         `json:"engenheiro"`
	Address        string         `json:"endereco,omitempty"`
	Latitude       string         `json:"latitude,omitempty"`
	Longitude      string         `json:"longitude,omitempty"`
	Typology       Typology       `json:"tipologia"`
	Classification Classification `json:"classificacao"`
	Severity
	Categories []string  `json:"danos"`
	Photos     int       `json:"fotos"`
	PDFBytes   int       `json:"pdf_bytes"`
	ExportedAt time.Time `json:"exported_at"`
}

// NewExportRecord builds the export summary for r.
func NewExportRecord(r Report, controlNumber string, pdfBytes int, exportedAt time.Time) ExportRecord {
	categories := make([]string, 0, len(r.Damages))
	photos := 0
	for _, d := range r.Damages {
		categories = append(categories, d.Category)
		photos += len(d.Photos)
	}
	return ExportRecord{
		ReportID:       r.ID,
		ControlNumber:  controlNumber,
		Date:           r.Date,
		Municipality:   r.Municipality,
		Engineer:       r.Engineer,
		Address:        r.Address,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Typology:       r.Typology,
		Classification: r.Classification,
		Severity:       r.Severity,
		Categories:     categories,
		Photos:         photos,
		PDFBytes:       pdfBytes,
		ExportedAt:     exportedAt.UTC(),
	}
}
