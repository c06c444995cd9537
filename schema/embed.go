package schema

import _ "embed"

//go:embed recipe.schema.json
var RecipeSchema []byte

//go:embed config.schema.json
var ConfigSchema []byte
