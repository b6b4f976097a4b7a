package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/ocr"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/parser"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/validator"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

// DefaultParseWorkers bounds concurrent parsing in ParseBatch
const DefaultParseWorkers = 4

// ErrInvalidRequest is returned for requests missing required fields
var ErrInvalidRequest = errors.New("invalid request")

// DocumentRequest holds one document to extract.
type DocumentRequest struct {
	Tag        expense.SourceTag
	SubjectID  string
	DocumentID string // generated when empty
	Vendor     string // optional vendor override for every record
	Document   *ocr.Document
}

// IngestResult reports what happened to one document.
type IngestResult struct {
	DocumentID string           `json:"document_id"`
	Tag        string           `json:"tag"`
	Records    []expense.Record `json:"records"`
	Saved      int              `json:"saved"`
	Failed     int              `json:"failed"`
	Warnings   []string         `json:"warnings,omitempty"`
	Err        error            `json:"-"`
}

// IngestService extracts records from documents and hands them to the
// repository one at a time.
type IngestService struct {
	registry *parser.Registry
	repo     storage.ExpenseRepository
	logger   *slog.Logger
	workers  int
}

// NewIngestService creates a new ingest service. repo may be nil, in
// which case records are extracted but not persisted.
func NewIngestService(registry *parser.Registry, repo storage.ExpenseRepository, logger *slog.Logger) *IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestService{
		registry: registry,
		repo:     repo,
		logger:   logger,
		workers:  DefaultParseWorkers,
	}
}

// WithWorkers sets the ParseBatch concurrency
func (s *IngestService) WithWorkers(n int) *IngestService {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Formats lists the registered document formats
func (s *IngestService) Formats() []parser.Format {
	return s.registry.Formats()
}

// ParseDocument extracts and persists the records of one document.
// An unsupported tag fails with parser.ErrUnsupportedFormat before any
// work is done; a document that yields nothing is not an error.
func (s *IngestService) ParseDocument(ctx context.Context, req DocumentRequest) (*IngestResult, error) {
	result, err := s.parse(ctx, req)
	if err != nil {
		return nil, err
	}
	s.persist(result)
	return result, nil
}

// ParseBatch parses independent documents concurrently, then persists
// their records sequentially in request order. Per-document failures are
// reported on each result's Err.
func (s *IngestService) ParseBatch(ctx context.Context, reqs []DocumentRequest) ([]*IngestResult, error) {
	results := make([]*IngestResult, len(reqs))

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req DocumentRequest) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = &IngestResult{DocumentID: req.DocumentID, Tag: string(req.Tag), Err: ctx.Err()}
				return
			}

			result, err := s.parse(ctx, req)
			if err != nil {
				result = &IngestResult{DocumentID: req.DocumentID, Tag: string(req.Tag), Err: err}
			}
			results[i] = result
		}(i, req)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}

	for _, result := range results {
		if result.Err == nil {
			s.persist(result)
		}
	}

	return results, nil
}

func (s *IngestService) parse(ctx context.Context, req DocumentRequest) (*IngestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Document == nil {
		return nil, fmt.Errorf("%w: document is required", ErrInvalidRequest)
	}

	p, err := s.registry.Lookup(req.Tag)
	if err != nil {
		return nil, err
	}

	if req.DocumentID == "" {
		req.DocumentID = uuid.NewString()
	}

	records := p.Parse(req.Document, parser.Meta{
		SubjectID:  req.SubjectID,
		DocumentID: req.DocumentID,
		Tag:        req.Tag,
		Vendor:     req.Vendor,
	})
	if records == nil {
		records = []expense.Record{}
	}

	s.logger.Info("Parsed document",
		"document_id", req.DocumentID,
		"tag", req.Tag,
		"parser", p.Name(),
		"records", len(records))

	result := &IngestResult{
		DocumentID: req.DocumentID,
		Tag:        string(req.Tag),
		Records:    records,
	}

	// Receipts print a subtotal that the extracted items should add up to
	if !req.Tag.IsLedger() && len(records) > 0 {
		if check := validator.CheckSubtotal(req.Document.Lines(), records); check.Checked && !check.Valid {
			result.Warnings = append(result.Warnings, check.Reason)
			s.logger.Warn("Receipt items do not match printed subtotal",
				"document_id", req.DocumentID,
				"items_sum", check.ItemsSum.StringFixed(2),
				"printed", check.Printed.StringFixed(2))
		}
	}

	return result, nil
}

// persist hands records to the repository one at a time. A failed save is
// logged and counted; the rest of the batch continues.
func (s *IngestService) persist(result *IngestResult) {
	if s.repo == nil {
		return
	}
	for i := range result.Records {
		record := &result.Records[i]
		if err := s.repo.SaveExpense(record); err != nil {
			result.Failed++
			s.logger.Error("Failed to save expense",
				"document_id", result.DocumentID,
				"expense_id", record.ID,
				"error", err)
			continue
		}
		result.Saved++
	}
}
