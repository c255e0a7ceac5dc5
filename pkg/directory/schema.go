package directory

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// recordSchema constrains dataset records: every service needs a name and a
// description; remaining fields must be scalar.
const recordSchema = `{
	"type": "object",
	"required": ["name", "description"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string", "minLength": 1}
	},
	"additionalProperties": {"type": ["string", "number", "boolean", "null"]}
}`

var (
	schemaOnce sync.Once
	schemaInst *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaInst, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(recordSchema))
	})
	return schemaInst, schemaErr
}

// ValidateRecord checks one raw dataset record against the service schema.
func ValidateRecord(raw json.RawMessage) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile record schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("failed to validate record: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("invalid record: %s", strings.Join(problems, "; "))
	}
	return nil
}
