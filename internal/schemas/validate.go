// Package schemas checks service payloads against the JSON Schemas embedded in the binary.
package schemas

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var files embed.FS

// Payload names a schema-checked service response.
type Payload string

// Checked payloads.
const (
	PayloadStart  Payload = "start_interview"
	PayloadStatus Payload = "interview_status"
	PayloadReport Payload = "interview_report"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Payload Payload
	Errors  []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s payload failed validation:", ve.Payload))
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %s: %s", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Payload Payload
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema for %s: %v", e.Payload, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

var (
	compiledMu sync.Mutex
	compiled   = map[Payload]*gojsonschema.Schema{}
)

func schemaFor(p Payload) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[p]; ok {
		return s, nil
	}

	data, err := files.ReadFile(string(p) + ".schema.json")
	if err != nil {
		return nil, &SchemaLoadError{Payload: p, Cause: err}
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Payload: p, Cause: err}
	}
	compiled[p] = s
	return s, nil
}

// Validate checks a raw JSON document against the schema of payload p.
func Validate(p Payload, document []byte) error {
	schema, err := schemaFor(p)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &ValidationError{
			Payload: p,
			Errors:  []FieldError{{Field: "(root)", Message: err.Error()}},
		}
	}
	if result.Valid() {
		return nil
	}
	return newValidationError(p, result)
}

func newValidationError(p Payload, result *gojsonschema.Result) *ValidationError {
	validationErr := &ValidationError{
		Payload: p,
		Errors:  make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
