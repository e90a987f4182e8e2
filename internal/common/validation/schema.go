// internal/common/validation/schema.go
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is a compiled JSON schema.
type Schema struct {
	schema *gojsonschema.Schema
}

// CompileSchema parses a JSON schema document.
func CompileSchema(schemaJSON []byte) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// Validate checks a decoded document (maps, slices and scalars) against the schema.
func (s *Schema) Validate(document interface{}) (*ValidationResult, error) {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

// Validator returns the shared go-playground validator.
func Validator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New()
	})
	return structValidator
}

// ValidateStruct runs `validate` struct tags and reports each failing field.
func ValidateStruct(v interface{}) *ValidationResult {
	err := Validator().Struct(v)
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "", Message: err.Error(), Code: "INVALID"}},
		}
	}

	out := &ValidationResult{Valid: false}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Message: describe(fe),
			Code:    strings.ToUpper(fe.Tag()),
		})
	}
	return out
}

// fieldPath drops the struct name prefix from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field missing"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Details flattens the errors into a field -> message map.
func (vr *ValidationResult) Details() map[string]interface{} {
	details := make(map[string]interface{}, len(vr.Errors))
	for _, err := range vr.Errors {
		details[err.Field] = err.Message
	}
	return details
}
