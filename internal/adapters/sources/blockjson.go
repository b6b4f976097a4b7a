package sources

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/ocr"
)

//go:embed blocks.schema.json
var blockSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// blockFile is the wire form of a block document. A plain list of lines is
// accepted in place of blocks.
type blockFile struct {
	Blocks []ocr.Block `json:"blocks"`
	Lines  []string    `json:"lines"`
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("blocks.schema.json", bytes.NewReader(blockSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("blocks.schema.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// ValidateBlockJSON checks data against the block document schema
func ValidateBlockJSON(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// DecodeBlockJSON validates and decodes a block document
func DecodeBlockJSON(data []byte) (*ocr.Document, error) {
	if err := ValidateBlockJSON(data); err != nil {
		return nil, err
	}

	var f blockFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	if len(f.Blocks) == 0 {
		return ocr.FromLines(f.Lines), nil
	}
	return ocr.NewDocument(f.Blocks), nil
}
