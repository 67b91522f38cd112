package export

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	landscapeWidth = 277.0
	coreFamily     = "Arial"
)

// ErrUnicodeFontRequired is returned when text cannot be drawn with the built-in
// cp1252 core font and no UTF-8 font was configured.
var ErrUnicodeFontRequired = errors.New("pdf text needs a unicode font")

// PDFOption customises a PDFExporter.
type PDFOption func(*PDFExporter)

// WithUTF8Font draws every cell with the given TrueType font instead of the core font.
// The same face is used for bold headers.
func WithUTF8Font(family string, ttf []byte) PDFOption {
	return func(e *PDFExporter) {
		if family == "" || len(ttf) == 0 {
			return
		}
		e.family = family
		e.ttf = ttf
	}
}

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct {
	now      func() time.Time
	family   string
	ttf      []byte
	compress bool
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter(opts ...PDFOption) *PDFExporter {
	e := &PDFExporter{now: time.Now, family: coreFamily, compress: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render creates a PDF document with a title line, a generation stamp and the table body.
// Column widths follow Column.Width weights; a zero weight counts as 1.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("pdf requires at least one column")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)

	tr := func(s string) string { return s }
	if e.ttf != nil {
		pdf.AddUTF8FontFromBytes(e.family, "", e.ttf)
		pdf.AddUTF8FontFromBytes(e.family, "B", e.ttf)
	} else {
		if err := checkCoreEncodable(data, title); err != nil {
			return nil, err
		}
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	widths := columnWidths(data.Columns)
	header := func() {
		pdf.SetFont(e.family, "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, label := range data.Labels() {
			pdf.CellFormat(widths[i], 7, tr(label), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.AddPage()
	if title != "" {
		pdf.SetFont(e.family, "B", 14)
		pdf.CellFormat(0, 9, tr(title), "", 1, "L", false, 0, "")
	}
	pdf.SetFont(e.family, "", 8)
	stamp := fmt.Sprintf("Generated %s - %d rows", e.now().UTC().Format(time.RFC3339), len(data.Rows))
	pdf.CellFormat(0, 6, stamp, "", 1, "L", false, 0, "")
	pdf.Ln(2)
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+6 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		pdf.SetFont(e.family, "", 8)
		for i, value := range data.record(row) {
			pdf.CellFormat(widths[i], 6, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// checkCoreEncodable rejects text the core font would print as placeholders.
func checkCoreEncodable(data Dataset, title string) error {
	enc := charmap.Windows1252.NewEncoder()
	check := func(s string) error {
		if _, err := enc.String(s); err != nil {
			return fmt.Errorf("%w: %q", ErrUnicodeFontRequired, s)
		}
		return nil
	}
	if err := check(title); err != nil {
		return err
	}
	for _, label := range data.Labels() {
		if err := check(label); err != nil {
			return err
		}
	}
	for _, row := range data.Rows {
		for _, value := range data.record(row) {
			if err := check(value); err != nil {
				return err
			}
		}
	}
	return nil
}

func columnWidths(columns []Column) []float64 {
	weights := make([]float64, len(columns))
	total := 0.0
	for i, col := range columns {
		weights[i] = col.Width
		if weights[i] <= 0 {
			weights[i] = 1
		}
		total += weights[i]
	}
	for i := range weights {
		weights[i] = landscapeWidth * weights[i] / total
	}
	return weights
}
