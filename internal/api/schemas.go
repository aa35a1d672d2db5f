// internal/api/schemas.go
package api

import "github.com/xeipuuv/gojsonschema"

// Request bodies are validated against JSON schemas before anything touches
// the orchestrator, so malformed input never reaches the pipeline.

const askRequestSchema = `{
	"type": "object",
	"properties": {
		"user_id": {"type": "string", "minLength": 1},
		"prompt":  {"type": "string", "minLength": 1}
	},
	"required": ["user_id", "prompt"],
	"additionalProperties": false
}`

const continueRequestSchema = `{
	"type": "object",
	"properties": {
		"prompt": {"type": "string", "minLength": 1}
	},
	"required": ["prompt"],
	"additionalProperties": false
}`

var (
	askSchema      = gojsonschema.NewStringLoader(askRequestSchema)
	continueSchema = gojsonschema.NewStringLoader(continueRequestSchema)
)

// validateBody validates raw JSON against a schema and returns the first
// violation, or "".
func validateBody(schema gojsonschema.JSONLoader, body []byte) string {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return "invalid JSON body"
	}
	if !result.Valid() {
		for _, desc := range result.Errors() {
			return desc.String()
		}
	}
	return ""
}
