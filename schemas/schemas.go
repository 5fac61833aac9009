// Package schemas embeds the JSON Schema documents shipped with the binary.
package schemas

import _ "embed"

// DatasetSchemaJSON is the schema for dataset definition files.
//
//go:embed dataset.schema.json
var DatasetSchemaJSON string
