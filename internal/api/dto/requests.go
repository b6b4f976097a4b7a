package dto

import (
	"encoding/json"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
)

// DocumentRequest submits one OCR block document for extraction.
// Document holds the block JSON ({"blocks": [...]} or {"lines": [...]}).
type DocumentRequest struct {
	Tag        string          `json:"tag" binding:"required"`
	SubjectID  string          `json:"subject_id"`
	DocumentID string          `json:"document_id"`
	Vendor     string          `json:"vendor"`
	Document   json.RawMessage `json:"document" binding:"required"`
}

// ReconcileRequest starts a reconciliation run. Give either a subject whose
// stored records are used, or explicit ledger and receipt lists.
type ReconcileRequest struct {
	SubjectID string           `json:"subject_id"`
	Ledger    []expense.Record `json:"ledger"`
	Receipts  []expense.Record `json:"receipts"`
	Floor     float64          `json:"floor"`
}
