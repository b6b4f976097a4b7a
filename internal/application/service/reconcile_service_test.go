package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/export"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

func seed(t *testing.T, repo storage.Repository) {
	t.Helper()
	ingest := NewIngestService(testRegistry(), repo, nil)
	for _, req := range []DocumentRequest{statementRequest("acme"), receiptRequest("acme")} {
		_, err := ingest.ParseDocument(context.Background(), req)
		require.NoError(t, err)
	}
}

func TestReconcileService_FromStore(t *testing.T) {
	repo := storage.NewMockRepository()
	seed(t, repo)

	svc := NewReconcileService(repo, matcher.DefaultConfig(), nil)
	outcome, err := svc.Reconcile(context.Background(), ReconcileRequest{SubjectID: "acme"})
	require.NoError(t, err)

	s := outcome.Report.Summary
	assert.Equal(t, 2, s.LedgerCount)
	assert.Equal(t, 1, s.ReceiptCount)
	assert.Equal(t, 1, s.MatchedCount)
	assert.InDelta(t, 0.5, s.MatchRate, 1e-9)

	require.True(t, repo.SaveRunCalled)
	assert.Equal(t, outcome.Run.ID, repo.LastSavedRun.ID)
	assert.Len(t, repo.LastSavedRun.Matches, 1)
	assert.Equal(t, 40.0, outcome.Run.Floor)

	// Annotations are written back to the stored records
	match := outcome.Run.Result.Matches[0]
	stored, err := repo.GetExpense(match.Ledger.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.StatusMatched, stored.Status)
	assert.Equal(t, match.Receipt.ID, stored.MatchedID)
	assert.NotEmpty(t, stored.MatchDetails)

	unmatched, err := repo.ListExpenses(storage.ExpenseFilters{Status: expense.StatusPending})
	require.NoError(t, err)
	require.Len(t, unmatched, 1)
	assert.Equal(t, "HILTON HOTELS", unmatched[0].Description)
}

func TestReconcileService_ExplicitRecords(t *testing.T) {
	repo := storage.NewMockRepository()
	svc := NewReconcileService(repo, matcher.DefaultConfig(), nil)

	ledger := expense.Record{ID: "l1", Date: "2024-07-02", Vendor: "Blue Bottle Coffee", Amount: decimal.RequireFromString("50.00")}
	receipt := expense.Record{ID: "r1", Date: "2024-07-02", Vendor: "Blue Bottle Coffee", Amount: decimal.RequireFromString("53.00")}

	outcome, err := svc.Reconcile(context.Background(), ReconcileRequest{
		Ledger:   []expense.Record{ledger},
		Receipts: []expense.Record{receipt},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Report.Summary.MatchedCount)
	assert.Zero(t, repo.ExpenseCount())

	// A stricter floor rejects the same pair
	outcome, err = svc.Reconcile(context.Background(), ReconcileRequest{
		Ledger:   []expense.Record{ledger},
		Receipts: []expense.Record{receipt},
		Floor:    60,
	})
	require.NoError(t, err)
	assert.Zero(t, outcome.Report.Summary.MatchedCount)
	assert.Equal(t, 60.0, outcome.Run.Floor)
}

func TestReconcileService_InvalidRequest(t *testing.T) {
	svc := NewReconcileService(storage.NewMockRepository(), matcher.DefaultConfig(), nil)

	_, err := svc.Reconcile(context.Background(), ReconcileRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestReconcileService_SaveRunError(t *testing.T) {
	repo := storage.NewMockRepository()
	repo.SaveRunErr = errors.New("locked")
	seed(t, repo)

	svc := NewReconcileService(repo, matcher.DefaultConfig(), nil)
	_, err := svc.Reconcile(context.Background(), ReconcileRequest{SubjectID: "acme"})
	assert.Error(t, err)

	// Nothing is annotated when the run could not be recorded
	pending, err := repo.ListExpenses(storage.ExpenseFilters{Status: expense.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestReconcileService_RunsAndExport(t *testing.T) {
	repo := storage.NewMockRepository()
	seed(t, repo)

	svc := NewReconcileService(repo, matcher.DefaultConfig(), nil)
	svc.now = func() time.Time { return time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC) }

	outcome, err := svc.Reconcile(context.Background(), ReconcileRequest{SubjectID: "acme"})
	require.NoError(t, err)

	runs, err := svc.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, outcome.Run.ID, runs[0].ID)

	rep, err := svc.Report(context.Background(), outcome.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, outcome.Report.Summary.MatchedCount, rep.Summary.MatchedCount)

	data, err := svc.ExportRun(context.Background(), outcome.Run.ID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetUnmatchedLedger)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = svc.ExportRun(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
}
