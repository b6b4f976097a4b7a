package storage

import (
	"sort"
	"sync"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	mu       sync.Mutex
	expenses map[string]expense.Record
	runs     map[string]Run

	// Hooks for test assertions
	SaveExpenseCalls int
	SaveRunCalled    bool
	LastSavedRun     *Run

	// Error injection for testing error paths
	SaveExpenseErr   error
	SaveExpenseErrOn map[string]error // per record id
	GetExpenseErr    error
	ListExpensesErr  error
	SaveRunErr       error
	GetRunErr        error
	ListRunsErr      error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		expenses:         make(map[string]expense.Record),
		runs:             make(map[string]Run),
		SaveExpenseErrOn: make(map[string]error),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// SaveExpense stores a copy of the record, keeping the match annotations
// of an existing record with the same id
func (m *MockRepository) SaveExpense(record *expense.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveExpenseCalls++
	if err := m.SaveExpenseErrOn[record.ID]; err != nil {
		return err
	}
	if m.SaveExpenseErr != nil {
		return m.SaveExpenseErr
	}
	stored := cloneRecord(*record)
	if existing, ok := m.expenses[record.ID]; ok {
		stored.Status = existing.Status
		stored.MatchedID = existing.MatchedID
		stored.MatchConfidence = existing.MatchConfidence
		stored.MatchDetails = existing.MatchDetails
	}
	m.expenses[record.ID] = stored
	return nil
}

// GetExpense returns a stored record
func (m *MockRepository) GetExpense(id string) (*expense.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetExpenseErr != nil {
		return nil, m.GetExpenseErr
	}
	record, ok := m.expenses[id]
	if !ok {
		return nil, ErrNotFound
	}
	record = cloneRecord(record)
	return &record, nil
}

// ListExpenses applies the same filters and ordering as Storage
func (m *MockRepository) ListExpenses(filters ExpenseFilters) ([]expense.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListExpensesErr != nil {
		return nil, m.ListExpensesErr
	}

	tags := make(map[expense.SourceTag]bool, len(filters.SourceTags))
	for _, tag := range filters.SourceTags {
		tags[tag] = true
	}

	out := []expense.Record{}
	for _, record := range m.expenses {
		if filters.SubjectID != "" && record.SubjectID != filters.SubjectID {
			continue
		}
		if len(tags) > 0 && !tags[record.SourceTag] {
			continue
		}
		if filters.Status != "" && record.Status != filters.Status {
			continue
		}
		out = append(out, cloneRecord(record))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})

	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

// UpdateMatch annotates a stored record
func (m *MockRepository) UpdateMatch(id, matchedID string, confidence float64, details []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.expenses[id]
	if !ok {
		return ErrNotFound
	}
	record.MatchedID = matchedID
	record.MatchConfidence = confidence
	record.MatchDetails = append([]string(nil), details...)
	record.Status = expense.StatusPending
	if matchedID != "" {
		record.Status = expense.StatusMatched
	}
	m.expenses[id] = record
	return nil
}

// SaveRun stores a run
func (m *MockRepository) SaveRun(run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveRunCalled = true
	if m.SaveRunErr != nil {
		return m.SaveRunErr
	}

	stored := *run
	if len(stored.Matches) == 0 {
		stored.Matches = MatchesFromResult(run.Result)
	}
	m.runs[run.ID] = stored
	m.LastSavedRun = &stored
	return nil
}

// GetRun returns a stored run
func (m *MockRepository) GetRun(id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	run, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &run, nil
}

// ListRuns returns runs newest first, without results
func (m *MockRepository) ListRuns(limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListRunsErr != nil {
		return nil, m.ListRunsErr
	}
	if limit <= 0 {
		limit = 50
	}

	out := make([]Run, 0, len(m.runs))
	for _, run := range m.runs {
		run.Result = nil
		run.Matches = nil
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op
func (m *MockRepository) Close() error {
	return nil
}

// ExpenseCount returns the number of stored expenses
func (m *MockRepository) ExpenseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.expenses)
}

func cloneRecord(r expense.Record) expense.Record {
	if r.MatchDetails != nil {
		r.MatchDetails = append([]string(nil), r.MatchDetails...)
	}
	return r
}
