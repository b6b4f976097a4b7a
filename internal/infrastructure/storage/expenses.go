package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
)

const expenseColumns = `id, subject_id, source_document_id, date, description, vendor,
	amount, category, source_tag, status, confidence, reference_number,
	order_number, matched_id, match_confidence, match_details_json`

// SaveExpense inserts a record, or updates the parsed fields of an existing
// one with the same id. Match annotations and status of an existing record
// are kept; only UpdateMatch changes them.
func (s *Storage) SaveExpense(record *expense.Record) error {
	detailsJSON, err := json.Marshal(nonNil(record.MatchDetails))
	if err != nil {
		return err
	}

	query := `
	INSERT INTO expenses (` + expenseColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		subject_id = excluded.subject_id,
		source_document_id = excluded.source_document_id,
		date = excluded.date,
		description = excluded.description,
		vendor = excluded.vendor,
		amount = excluded.amount,
		category = excluded.category,
		source_tag = excluded.source_tag,
		confidence = excluded.confidence,
		reference_number = excluded.reference_number,
		order_number = excluded.order_number
	`

	_, err = s.db.Exec(query,
		record.ID,
		record.SubjectID,
		record.SourceDocumentID,
		record.Date,
		record.Description,
		record.Vendor,
		record.Amount.String(),
		string(record.Category),
		string(record.SourceTag),
		record.Status,
		record.Confidence,
		record.ReferenceNumber,
		record.OrderNumber,
		record.MatchedID,
		record.MatchConfidence,
		string(detailsJSON),
	)
	return err
}

// GetExpense retrieves a record by id
func (s *Storage) GetExpense(id string) (*expense.Record, error) {
	row := s.db.QueryRow(`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)

	record, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListExpenses returns records matching the given filters, ordered by date
// then id
func (s *Storage) ListExpenses(filters ExpenseFilters) ([]expense.Record, error) {
	var (
		where []string
		args  []any
	)

	if filters.SubjectID != "" {
		where = append(where, "subject_id = ?")
		args = append(args, filters.SubjectID)
	}
	if len(filters.SourceTags) > 0 {
		placeholders := make([]string, len(filters.SourceTags))
		for i, tag := range filters.SourceTags {
			placeholders[i] = "?"
			args = append(args, string(tag))
		}
		where = append(where, "source_tag IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filters.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filters.Status)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, id ASC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	records := []expense.Record{}
	for rows.Next() {
		record, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

// UpdateMatch writes match annotations onto a stored record
func (s *Storage) UpdateMatch(id, matchedID string, confidence float64, details []string) error {
	detailsJSON, err := json.Marshal(nonNil(details))
	if err != nil {
		return err
	}

	status := expense.StatusPending
	if matchedID != "" {
		status = expense.StatusMatched
	}

	result, err := s.db.Exec(`
		UPDATE expenses
		SET matched_id = ?, match_confidence = ?, match_details_json = ?, status = ?
		WHERE id = ?
	`, matchedID, confidence, string(detailsJSON), status, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*expense.Record, error) {
	var (
		record      expense.Record
		category    string
		sourceTag   string
		detailsJSON string
	)

	err := row.Scan(
		&record.ID,
		&record.SubjectID,
		&record.SourceDocumentID,
		&record.Date,
		&record.Description,
		&record.Vendor,
		&record.Amount,
		&category,
		&sourceTag,
		&record.Status,
		&record.Confidence,
		&record.ReferenceNumber,
		&record.OrderNumber,
		&record.MatchedID,
		&record.MatchConfidence,
		&detailsJSON,
	)
	if err != nil {
		return nil, err
	}

	record.Category = expense.Category(category)
	record.SourceTag = expense.SourceTag(sourceTag)

	// Match details are optional enrichment; a bad blob leaves them empty
	if detailsJSON != "" {
		_ = json.Unmarshal([]byte(detailsJSON), &record.MatchDetails)
	}
	if len(record.MatchDetails) == 0 {
		record.MatchDetails = nil
	}

	return &record, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
