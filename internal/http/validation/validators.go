// Package validation holds local form-schema checks and their field-level
// error shape. It is free of HTTP concerns so handlers and services can both
// use it.
package validation

import (
	"fmt"
	"strings"
)

// MaxJobScriptSize is the largest accepted batch script, in bytes.
const MaxJobScriptSize = 100 * 1024

// FieldError describes one failed check on one submitted field.
type FieldError struct {
	Location string `json:"location"`
	Name     string `json:"name"`
	Value    string `json:"value"`
	Message  string `json:"message"`
}

// Error is a local validation failure carrying field-level detail.
type Error struct {
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if e.Message != "" {
		return "validation: " + e.Message
	}
	return "validation failed"
}

// JobScript validates a job submission's batch file: it must be a .sh file
// of at most MaxJobScriptSize bytes. Returns nil when valid.
func JobScript(fileName string, size int64) *Error {
	var fields []FieldError

	if fileName == "" || !strings.HasSuffix(strings.ToLower(fileName), ".sh") {
		fields = append(fields, FieldError{
			Location: "form",
			Name:     "file",
			Value:    fileName,
			Message:  "a .sh batch script is required",
		})
	}
	if size > MaxJobScriptSize {
		fields = append(fields, FieldError{
			Location: "form",
			Name:     "file",
			Value:    fileName,
			Message:  fmt.Sprintf("batch script exceeds the %d byte limit", MaxJobScriptSize),
		})
	}

	if len(fields) == 0 {
		return nil
	}
	return &Error{Message: "invalid job submission", Fields: fields}
}

// Required validates that a form value is present.
func Required(location, name, value string) *FieldError {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	return &FieldError{
		Location: location,
		Name:     name,
		Value:    value,
		Message:  "this field is required",
	}
}
