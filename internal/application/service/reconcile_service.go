package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/report"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/export"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

// ReconcileRequest holds parameters for a reconciliation run. Either give
// the ledger and receipts explicitly or name a subject whose stored records
// are loaded and partitioned by source tag.
type ReconcileRequest struct {
	SubjectID string
	Ledger    []expense.Record
	Receipts  []expense.Record
	Floor     float64 // 0 uses the service default
}

// ReconcileOutcome is the stored run plus its presentation
type ReconcileOutcome struct {
	Run    *storage.Run
	Report *report.Report
}

// ReconcileService runs the matcher and records each run.
type ReconcileService struct {
	repo   storage.Repository
	config matcher.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewReconcileService creates a new reconcile service
func NewReconcileService(repo storage.Repository, config matcher.Config, logger *slog.Logger) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		repo:   repo,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Reconcile matches ledger against receipts, stores the run and, for
// records loaded from the store, writes the match annotations back.
func (s *ReconcileService) Reconcile(ctx context.Context, req ReconcileRequest) (*ReconcileOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ledger, receipts := req.Ledger, req.Receipts
	fromStore := len(ledger) == 0 && len(receipts) == 0
	if fromStore {
		if req.SubjectID == "" {
			return nil, fmt.Errorf("%w: subject_id or ledger/receipts required", ErrInvalidRequest)
		}
		var err error
		if ledger, err = s.repo.ListExpenses(storage.ExpenseFilters{
			SubjectID:  req.SubjectID,
			SourceTags: expense.LedgerTags(),
		}); err != nil {
			return nil, fmt.Errorf("load ledger: %w", err)
		}
		if receipts, err = s.repo.ListExpenses(storage.ExpenseFilters{
			SubjectID:  req.SubjectID,
			SourceTags: expense.ReceiptTags(),
		}); err != nil {
			return nil, fmt.Errorf("load receipts: %w", err)
		}
	}

	cfg := s.config
	if req.Floor > 0 {
		cfg.Floor = req.Floor
	}
	m := matcher.NewMatcher(cfg, s.logger)

	started := s.now()
	result := m.Reconcile(ledger, receipts)
	rep := report.Build(result)

	run := &storage.Run{
		ID:          uuid.NewString(),
		SubjectID:   req.SubjectID,
		StartedAt:   started,
		CompletedAt: s.now(),
		Floor:       m.Floor(),
		Status:      storage.RunStatusCompleted,
		Summary:     rep.Summary,
		Matches:     storage.MatchesFromResult(result),
		Result:      result,
	}

	if err := s.repo.SaveRun(run); err != nil {
		s.logger.Error("Failed to save reconciliation run", "run_id", run.ID, "error", err)
		return nil, fmt.Errorf("save run: %w", err)
	}

	if fromStore {
		s.writeBack(result)
	}

	s.logger.Info("Reconciliation run complete",
		"run_id", run.ID,
		"subject_id", req.SubjectID,
		"ledger", rep.Summary.LedgerCount,
		"receipts", rep.Summary.ReceiptCount,
		"matched", rep.Summary.MatchedCount,
		"match_rate", rep.Summary.MatchRate)

	return &ReconcileOutcome{Run: run, Report: rep}, nil
}

// writeBack stores the annotations of every matched pair
func (s *ReconcileService) writeBack(result *matcher.Result) {
	for _, match := range result.Matches {
		for _, rec := range []expense.Record{match.Ledger, match.Receipt} {
			err := s.repo.UpdateMatch(rec.ID, rec.MatchedID, rec.MatchConfidence, rec.MatchDetails)
			if err != nil {
				s.logger.Error("Failed to store match annotation", "expense_id", rec.ID, "error", err)
			}
		}
	}
}

// GetRun returns a stored run
func (s *ReconcileService) GetRun(_ context.Context, id string) (*storage.Run, error) {
	return s.repo.GetRun(id)
}

// ListRuns returns recent runs
func (s *ReconcileService) ListRuns(_ context.Context, limit int) ([]storage.Run, error) {
	return s.repo.ListRuns(limit)
}

// Report rebuilds the report of a stored run
func (s *ReconcileService) Report(ctx context.Context, id string) (*report.Report, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Result == nil {
		return nil, fmt.Errorf("run %s has no stored result: %w", id, storage.ErrNotFound)
	}
	return report.Build(run.Result), nil
}

// ExportRun renders a stored run as XLSX bytes
func (s *ReconcileService) ExportRun(ctx context.Context, id string) ([]byte, error) {
	rep, err := s.Report(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := export.Workbook(rep)
	if err != nil {
		return nil, fmt.Errorf("export run %s: %w", id, err)
	}
	return data, nil
}

// IsNotFound reports whether err means a missing run or expense
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
