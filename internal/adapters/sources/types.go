// Package sources turns raw input files into OCR block documents.
//
// Three sources are supported: block JSON produced by an external OCR
// engine, the embedded text layer of a PDF, and images sent to Azure
// Computer Vision.
package sources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/ocr"
)

var (
	// ErrInvalidDocument is returned when block JSON fails validation
	ErrInvalidDocument = errors.New("invalid block document")
	// ErrUnsupportedInput is returned for file types no source can read
	ErrUnsupportedInput = errors.New("unsupported input file")
	// ErrOCRNotConfigured is returned when an image arrives without an OCR engine
	ErrOCRNotConfigured = errors.New("ocr engine not configured")
)

// Recognizer extracts a block document from an image file
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (*ocr.Document, error)
}

// Loader reads documents from disk, choosing the source by file extension
type Loader struct {
	recognizer Recognizer
}

// NewLoader creates a loader. recognizer may be nil, in which case image
// inputs fail with ErrOCRNotConfigured.
func NewLoader(recognizer Recognizer) *Loader {
	return &Loader{recognizer: recognizer}
}

// Load reads path into a document
func (l *Loader) Load(ctx context.Context, path string) (*ocr.Document, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return DecodeBlockJSON(data)
	case ".pdf":
		return ReadPDF(path)
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".gif":
		if l.recognizer == nil {
			return nil, ErrOCRNotConfigured
		}
		return l.recognizer.Recognize(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInput, ext)
	}
}
