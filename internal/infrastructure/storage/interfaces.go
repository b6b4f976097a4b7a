package storage

import "github.com/eshaffer321/receipt-reconciler/internal/domain/expense"

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, in-memory, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	ExpenseRepository
	RunRepository
	Close() error
}

// ExpenseRepository persists extracted expense records
type ExpenseRepository interface {
	// SaveExpense inserts or replaces a record by id
	SaveExpense(record *expense.Record) error

	// GetExpense retrieves a record by id. Returns ErrNotFound if absent.
	GetExpense(id string) (*expense.Record, error)

	// ListExpenses returns records matching the given filters
	ListExpenses(filters ExpenseFilters) ([]expense.Record, error)

	// UpdateMatch writes match annotations onto a stored record
	UpdateMatch(id, matchedID string, confidence float64, details []string) error
}

// ExpenseFilters defines filters for listing expenses
type ExpenseFilters struct {
	SubjectID  string              // Filter by subject (empty = all)
	SourceTags []expense.SourceTag // Filter by source tag (empty = all)
	Status     string              // Filter by status (empty = all)
	Limit      int                 // Max results (0 = no limit)
}

// RunRepository handles reconciliation run tracking
type RunRepository interface {
	// SaveRun inserts or replaces a run together with its matches
	SaveRun(run *Run) error

	// GetRun retrieves a run by ID, including its result. Returns ErrNotFound if absent.
	GetRun(id string) (*Run, error)

	// ListRuns returns recent runs, newest first, without their results
	ListRuns(limit int) ([]Run, error)
}
