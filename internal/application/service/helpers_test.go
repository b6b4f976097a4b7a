package service

import (
	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/ocr"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/parser"
)

func testRegistry() *parser.Registry {
	return parser.NewDefaultRegistry(parser.Options{ProcessingYear: 2024})
}

func statementRequest(subject string) DocumentRequest {
	return DocumentRequest{
		Tag:        expense.SourceCardStatement,
		SubjectID:  subject,
		DocumentID: "statement-1",
		Document: ocr.FromLines([]string{
			"07/02 BLUE BOTTLE COFFEE 12.50",
			"07/05 HILTON HOTELS 200.00",
		}),
	}
}

func receiptRequest(subject string) DocumentRequest {
	return DocumentRequest{
		Tag:        expense.SourceReceipt,
		SubjectID:  subject,
		DocumentID: "receipt-1",
		Document: ocr.FromLines([]string{
			"Blue Bottle Coffee $12.50",
		}),
	}
}
