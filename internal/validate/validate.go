// Package validate runs jsonschema checks against the documents crossing
// the recipe-loader and configuration boundaries.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"

	schema_pkg "github.com/open-edge-platform/repodb/schema"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateAgainstSchema compiles the given schema bytes and runs it against
// the JSON in data. The `name` is only used to identify the schema in errors.
func ValidateAgainstSchema(name string, schemaBytes, data []byte) error {
	comp := jsonschema.NewCompiler()
	if err := comp.AddResource(name, bytes.NewReader(schemaBytes)); err != nil {
		return fmt.Errorf("loading schema %q: %w", name, err)
	}
	sch, err := comp.Compile(name)
	if err != nil {
		return fmt.Errorf("compiling schema %q: %w", name, err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON for %q: %w", name, err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation against %q failed: %w", name, err)
	}
	return nil
}

// ValidateRecipeJSON runs the recipe schema against a normalized recipe record.
func ValidateRecipeJSON(data []byte) error {
	return ValidateAgainstSchema("recipe.schema.json", schema_pkg.RecipeSchema, data)
}

// ValidateConfigJSON runs the repo-config schema against data.
func ValidateConfigJSON(data []byte) error {
	return ValidateAgainstSchema("repo-config.schema.json", schema_pkg.ConfigSchema, data)
}
