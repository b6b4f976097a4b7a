package sources

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/ocr"
)

// ReadPDF extracts the text layer of a PDF file as LINE blocks, one per
// text row, pages in order. Scanned PDFs without a text layer yield an
// empty document.
func ReadPDF(path string) (doc *ocr.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	return ocr.FromLines(pdfLines(r)), nil
}

func pdfLines(r *pdf.Reader) []string {
	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.Join(strings.Fields(strings.Join(parts, " ")), " "); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}
