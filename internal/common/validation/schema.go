package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// WebhookSchema describes the parts of an NLU fulfillment request the intake
// agent relies on.
const WebhookSchema = `{
  "type": "object",
  "required": ["session", "queryResult"],
  "properties": {
    "responseId": {"type": "string"},
    "session": {"type": "string", "minLength": 1},
    "queryResult": {
      "type": "object",
      "required": ["intent"],
      "properties": {
        "queryText": {"type": "string"},
        "parameters": {"type": "object"},
        "intent": {
          "type": "object",
          "required": ["displayName"],
          "properties": {
            "displayName": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins the errors into one line for logs.
func (r *ValidationResult) Summary() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Validator checks raw JSON documents against a compiled schema.
type Validator struct {
	schema *gojsonschema.Schema
}

func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// NewWebhookValidator compiles WebhookSchema.
func NewWebhookValidator() *Validator {
	v, err := NewValidator(WebhookSchema)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateJSON validates a raw JSON document. Undecodable input is reported
// as a single error on the document root.
func (v *Validator) ValidateJSON(doc []byte) *ValidationResult {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_JSON",
			}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}
