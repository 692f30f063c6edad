package storage

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	//go:embed schemas/session.schema.json
	sessionSchemaJSON string
	//go:embed schemas/candidates.schema.json
	candidatesSchemaJSON string
)

type compiledSchema struct {
	source string
	once   sync.Once
	schema *gojsonschema.Schema
	err    error
}

func (c *compiledSchema) load() (*gojsonschema.Schema, error) {
	c.once.Do(func() {
		c.schema, c.err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(c.source))
	})
	return c.schema, c.err
}

var (
	sessionSchema    = &compiledSchema{source: sessionSchemaJSON}
	candidatesSchema = &compiledSchema{source: candidatesSchemaJSON}
)

// FieldError is one schema violation.
type FieldError struct {
	Field   string
	Message string
}

// SchemaError lists every violation found in a document.
type SchemaError struct {
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

func validateDocument(c *compiledSchema, document []byte) error {
	schema, err := c.load()
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("validating document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Errors = append(schemaErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return schemaErr
}
