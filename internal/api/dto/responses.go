package dto

import (
	"time"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/parser"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/report"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response stamped with the current time.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// IngestResponse is returned after a document has been parsed.
type IngestResponse struct {
	DocumentID string           `json:"document_id"`
	Tag        string           `json:"tag"`
	Records    []expense.Record `json:"records"`
	Count      int              `json:"count"`
	Saved      int              `json:"saved"`
	Failed     int              `json:"failed"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// ExpenseListResponse is returned when listing expenses.
type ExpenseListResponse struct {
	Expenses []expense.Record `json:"expenses"`
	Count    int              `json:"count"`
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID          string             `json:"id"`
	SubjectID   string             `json:"subject_id,omitempty"`
	StartedAt   string             `json:"started_at"`
	CompletedAt string             `json:"completed_at"`
	Floor       float64            `json:"floor"`
	Status      string             `json:"status"`
	Summary     report.Summary     `json:"summary"`
	Matches     []storage.RunMatch `json:"matches,omitempty"`
}

// ReconcileResponse is returned by a reconciliation run.
type ReconcileResponse struct {
	Run    RunResponse    `json:"run"`
	Report *report.Report `json:"report"`
}

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// FormatListResponse lists the supported document types.
type FormatListResponse struct {
	Formats []parser.Format `json:"formats"`
	Count   int             `json:"count"`
}

// NewRunResponse converts a stored run to its API form.
func NewRunResponse(run storage.Run) RunResponse {
	return RunResponse{
		ID:          run.ID,
		SubjectID:   run.SubjectID,
		StartedAt:   run.StartedAt.UTC().Format(time.RFC3339),
		CompletedAt: run.CompletedAt.UTC().Format(time.RFC3339),
		Floor:       run.Floor,
		Status:      run.Status,
		Summary:     run.Summary,
		Matches:     run.Matches,
	}
}
