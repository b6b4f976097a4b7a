package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
)

// SaveRun inserts or replaces a run and its matches in one transaction.
// When run.Matches is empty they are derived from run.Result.
func (s *Storage) SaveRun(run *Run) error {
	matches := run.Matches
	if len(matches) == 0 {
		matches = MatchesFromResult(run.Result)
	}

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	resultJSON := []byte{}
	if run.Result != nil {
		if resultJSON, err = json.Marshal(run.Result); err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO reconciliation_runs
		(id, subject_id, started_at, completed_at, floor, status,
		 ledger_count, receipt_count, matched_count, match_rate,
		 summary_json, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.SubjectID,
		run.StartedAt.UTC(),
		run.CompletedAt.UTC(),
		run.Floor,
		run.Status,
		run.Summary.LedgerCount,
		run.Summary.ReceiptCount,
		run.Summary.MatchedCount,
		run.Summary.MatchRate,
		string(summaryJSON),
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	// Replace this run's matches
	if _, err := tx.Exec(`DELETE FROM run_matches WHERE run_id = ?`, run.ID); err != nil {
		return err
	}

	for _, m := range matches {
		signalsJSON, err := json.Marshal(nonNil(m.Signals))
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO run_matches (run_id, ledger_id, receipt_id, score, signals_json)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, m.LedgerID, m.ReceiptID, m.Score, string(signalsJSON))
		if err != nil {
			return fmt.Errorf("save run match %s/%s: %w", m.LedgerID, m.ReceiptID, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run with its matches and result
func (s *Storage) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, subject_id, started_at, completed_at, floor, status, summary_json, result_json
		FROM reconciliation_runs WHERE id = ?
	`, id)

	var resultJSON string
	run, err := scanRun(row, &resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if resultJSON != "" {
		var result matcher.Result
		if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
			return nil, fmt.Errorf("decode result for run %s: %w", id, err)
		}
		run.Result = &result
	}

	rows, err := s.db.Query(`
		SELECT ledger_id, receipt_id, score, signals_json
		FROM run_matches WHERE run_id = ? ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			m           RunMatch
			signalsJSON string
		)
		if err := rows.Scan(&m.LedgerID, &m.ReceiptID, &m.Score, &signalsJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(signalsJSON), &m.Signals)
		run.Matches = append(run.Matches, m)
	}

	return run, rows.Err()
}

// ListRuns returns recent runs, newest first. Results are not loaded.
func (s *Storage) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, subject_id, started_at, completed_at, floor, status, summary_json, ''
		FROM reconciliation_runs
		ORDER BY started_at DESC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	runs := []Run{}
	for rows.Next() {
		var unused string
		run, err := scanRun(rows, &unused)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

func scanRun(row rowScanner, resultJSON *string) (*Run, error) {
	var (
		run         Run
		summaryJSON string
	)

	err := row.Scan(
		&run.ID,
		&run.SubjectID,
		&run.StartedAt,
		&run.CompletedAt,
		&run.Floor,
		&run.Status,
		&summaryJSON,
		resultJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return nil, fmt.Errorf("decode summary for run %s: %w", run.ID, err)
	}
	return &run, nil
}
