package storage

import (
	"errors"
	"time"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/report"
)

// ErrNotFound is returned when a lookup by id finds nothing
var ErrNotFound = errors.New("not found")

// Run status values
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run represents one reconciliation pass
type Run struct {
	ID          string          `json:"id"`
	SubjectID   string          `json:"subject_id,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	Floor       float64         `json:"floor"`
	Status      string          `json:"status"`
	Summary     report.Summary  `json:"summary"`
	Matches     []RunMatch      `json:"matches,omitempty"`
	Result      *matcher.Result `json:"result,omitempty"`
}

// RunMatch is one accepted pair within a run
type RunMatch struct {
	LedgerID  string   `json:"ledger_id"`
	ReceiptID string   `json:"receipt_id"`
	Score     float64  `json:"score"`
	Signals   []string `json:"signals,omitempty"`
}

// MatchesFromResult flattens a result into run matches
func MatchesFromResult(result *matcher.Result) []RunMatch {
	if result == nil {
		return nil
	}
	out := make([]RunMatch, 0, len(result.Matches))
	for _, m := range result.Matches {
		out = append(out, RunMatch{
			LedgerID:  m.Ledger.ID,
			ReceiptID: m.Receipt.ID,
			Score:     m.Score,
			Signals:   m.Details.Signals(),
		})
	}
	return out
}
