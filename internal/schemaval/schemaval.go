// Package schemaval checks grammar.json and node-types.json documents
// against embedded structural JSON schemas before they are loaded.
package schemaval

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed grammar.schema.json node-types.schema.json
var schemaFS embed.FS

// Result is the outcome of one document check.
type Result struct {
	Valid    bool
	Problems []string
}

// ValidateGrammar checks a grammar.json document.
func ValidateGrammar(document []byte) (*Result, error) {
	return validate("grammar.schema.json", document)
}

// ValidateNodeTypes checks a node-types.json document.
func ValidateNodeTypes(document []byte) (*Result, error) {
	return validate("node-types.schema.json", document)
}

func validate(schemaName string, document []byte) (*Result, error) {
	schema, err := schemaFS.ReadFile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("read embedded schema %s: %w", schemaName, err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(document)

	outcome, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate against %s: %w", schemaName, err)
	}

	result := &Result{Valid: outcome.Valid()}

	for _, problem := range outcome.Errors() {
		result.Problems = append(result.Problems, fmt.Sprintf("%s: %s", problem.Field(), problem.Description()))
	}

	return result, nil
}
