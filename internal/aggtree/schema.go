package aggtree

import (
	_ "embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

// ValidationIssue is one schema violation found in a host input document.
type ValidationIssue struct {
	Field       string
	Description string
}

// ValidateJSON checks a raw host input document against the embedded input
// schema. It returns the list of violations; an empty list means the
// document is valid. The error return covers schema machinery failures only.
func ValidateJSON(document []byte) ([]ValidationIssue, error) {
	schemaLoader := gojsonschema.NewBytesLoader(schemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate input schema: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	issues := make([]ValidationIssue, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		issues = append(issues, ValidationIssue{
			Field:       verr.Field(),
			Description: verr.Description(),
		})
	}

	return issues, nil
}
