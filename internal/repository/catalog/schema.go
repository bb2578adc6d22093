package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaName identifies the embedded schema in validation errors.
const schemaName = "catalog.schema.json"

var (
	//go:embed catalog.schema.json
	schemaJSON []byte

	// compileSchema compiles the embedded schema once.
	//nolint:gochecknoglobals // The schema is immutable and shared by all repositories.
	compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaName, bytes.NewReader(schemaJSON)); err != nil {
			return nil, fmt.Errorf("loading schema %q: %w", schemaName, err)
		}

		return compiler.Compile(schemaName)
	})
)

// validateDocument checks raw JSON against the catalog schema.
func validateDocument(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	var document any
	if err = json.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	if err = schema.Validate(document); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	return nil
}
