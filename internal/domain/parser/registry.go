package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/expense"
)

// ErrUnsupportedFormat is returned by Lookup for a tag with no parser
var ErrUnsupportedFormat = errors.New("unsupported document format")

// UnsupportedFormatError carries the tag that failed lookup
type UnsupportedFormatError struct {
	Tag expense.SourceTag
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedFormat, e.Tag)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// Format describes a registered tag
type Format struct {
	Tag         expense.SourceTag `json:"tag"`
	Parser      string            `json:"parser"`
	Description string            `json:"description"`
	Ledger      bool              `json:"ledger"`
}

// Registry maps source tags to parsers
type Registry struct {
	parsers map[expense.SourceTag]Parser
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		parsers: make(map[expense.SourceTag]Parser),
		logger:  logger,
	}
}

// NewDefaultRegistry returns a registry with every built-in format
func NewDefaultRegistry(opts Options) *Registry {
	r := NewRegistry(opts.Logger)

	receipts := NewReceiptParser(opts)
	// Registration into an empty registry with distinct tags cannot fail
	_ = r.Register(expense.SourceCardStatement, NewStatementParser(opts))
	_ = r.Register(expense.SourceItemizedStatement, NewReferenceStatementParser(opts))
	_ = r.Register(expense.SourceReceipt, receipts)
	_ = r.Register(expense.SourceOrderReceipt, receipts)

	return r
}

// Register binds a parser to a tag
func (r *Registry) Register(tag expense.SourceTag, p Parser) error {
	if tag == "" {
		return errors.New("parser tag is required")
	}
	if p == nil {
		return fmt.Errorf("parser for %s is nil", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[tag]; exists {
		return fmt.Errorf("parser for %s already registered", tag)
	}

	r.parsers[tag] = p
	r.logger.Debug("registered parser",
		slog.String("tag", string(tag)),
		slog.String("parser", p.Name()),
	)

	return nil
}

// Lookup returns the parser for tag, or an *UnsupportedFormatError
func (r *Registry) Lookup(tag expense.SourceTag) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.parsers[tag]
	if !exists {
		return nil, &UnsupportedFormatError{Tag: tag}
	}

	return p, nil
}

// Tags returns all registered tags, sorted
func (r *Registry) Tags() []expense.SourceTag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]expense.SourceTag, 0, len(r.parsers))
	for tag := range r.parsers {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Formats describes all registered tags, sorted by tag
func (r *Registry) Formats() []Format {
	tags := r.Tags()

	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]Format, 0, len(tags))
	for _, tag := range tags {
		p, ok := r.parsers[tag]
		if !ok {
			continue
		}
		formats = append(formats, Format{
			Tag:         tag,
			Parser:      p.Name(),
			Description: p.Description(),
			Ledger:      tag.IsLedger(),
		})
	}
	return formats
}
