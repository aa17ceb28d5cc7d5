package forms

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const definitionSchema = `{
  "type": "object",
  "required": ["forms"],
  "properties": {
    "forms": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "endpoint"],
        "additionalProperties": false,
        "properties": {
          "name":        {"type": "string", "pattern": "^[a-z0-9-]+$"},
          "endpoint":    {"type": "string", "pattern": "^/"},
          "collections": {"type": "array", "items": {"type": "string"}},
          "item_key":    {"type": "string", "minLength": 1},
          "fields":      {"type": "array", "items": {"type": "string"}},
          "required":    {"type": "array", "items": {"type": "string"}},
          "any_of":      {"type": "array", "items": {"type": "array", "minItems": 1, "items": {"type": "string"}}},
          "name_field":  {"type": "string"},
          "email_field": {"type": "string"},
          "phone_field": {"type": "string"},
          "text_fields": {"type": "array", "items": {"type": "string"}},
          "static":      {"type": "object", "additionalProperties": {"type": "string"}},
          "auto_close":  {"type": "string", "pattern": "^[0-9]+(ms|s|m)$"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(definitionSchema)

func validateDocument(doc map[string]any) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate forms: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid forms file: %s", strings.Join(msgs, "; "))
}
