package parser

import (
	"fmt"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/ocr"
)

// buildDocument creates a document with the given lines followed by one
// table per grid. Row and column indexes start at 1.
func buildDocument(lines []string, grids ...[][]string) *ocr.Document {
	var blocks []ocr.Block
	for i, line := range lines {
		blocks = append(blocks, ocr.Block{ID: fmt.Sprintf("line-%d", i), Kind: ocr.KindLine, Text: line})
	}

	for t, grid := range grids {
		table := ocr.Block{ID: fmt.Sprintf("table-%d", t), Kind: ocr.KindTable}
		for r, row := range grid {
			for c, text := range row {
				cellID := fmt.Sprintf("t%d-r%d-c%d", t, r, c)
				wordID := cellID + "-w"
				table.Children = append(table.Children, cellID)
				blocks = append(blocks,
					ocr.Block{ID: cellID, Kind: ocr.KindCell, RowIndex: r + 1, ColumnIndex: c + 1, Children: []string{wordID}},
					ocr.Block{ID: wordID, Kind: ocr.KindWord, Text: text},
				)
			}
		}
		blocks = append(blocks, table)
	}

	return ocr.NewDocument(blocks)
}

func testOptions() Options {
	return Options{ProcessingYear: 2024}
}

func testMeta(tag expense.SourceTag) Meta {
	return Meta{SubjectID: "subject-1", DocumentID: "doc-1", Tag: tag}
}

func descriptions(records []expense.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Description
	}
	return out
}
