// Package schema validates application documents against the embedded
// JSON schema before they are decoded into the domain model.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed application.schema.json
var applicationSchema []byte

// ErrInvalidDocument is wrapped by every *DocumentError.
var ErrInvalidDocument = errors.New("invalid application document")

// DocumentError lists every schema violation found in a document.
type DocumentError struct {
	Violations []string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(e.Violations, "; "))
}

func (e *DocumentError) Unwrap() error { return ErrInvalidDocument }

// Validator checks documents against a compiled schema. It is safe for
// concurrent use.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewApplicationValidator compiles the application schema.
func NewApplicationValidator() (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(applicationSchema))
	if err != nil {
		return nil, fmt.Errorf("compile application schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate checks a Go value, typically a map decoded from YAML or JSON or
// a model.ApplicationData.
func (v *Validator) Validate(doc any) error {
	return v.validate(gojsonschema.NewGoLoader(doc))
}

// ValidateJSON checks a raw JSON document.
func (v *Validator) ValidateJSON(raw []byte) error {
	return v.validate(gojsonschema.NewBytesLoader(raw))
}

func (v *Validator) validate(loader gojsonschema.JSONLoader) error {
	result, err := v.schema.Validate(loader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return &DocumentError{Violations: errs}
}
