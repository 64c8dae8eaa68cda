package application

import (
	"fmt"
	"strings"

	"canvastree/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "courseID" -> "course ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"courseID":    "course ID",
		"key":         "node key",
		"kind":        "node kind",
		"contentType": "content type",
		"dir":         "download directory",
		"query":       "search query",
		"token":       "access token",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateCourseID checks that a course id is a positive LMS id
func ValidateCourseID(fieldName string, id int64) error {
	if id <= 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("expected a positive %s, got: %d", formatFieldName(fieldName), id),
		}
	}
	return nil
}

// ValidateKind parses a node kind name. Unknown names are a ValidationError.
func ValidateKind(fieldName, name string) (domain.Kind, error) {
	k := domain.ParseKind(name)
	if k == domain.KindUnknown {
		return k, &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("unknown %s: %s", formatFieldName(fieldName), name),
		}
	}
	return k, nil
}

// ValidateContentTypes parses every value as a content type
func ValidateContentTypes(fieldName string, values []string) ([]domain.ContentType, error) {
	out := make([]domain.ContentType, 0, len(values))
	for _, v := range values {
		ct, err := domain.ParseContentType(v)
		if err != nil {
			return nil, &ValidationError{Field: fieldName, Message: err.Error()}
		}
		out = append(out, ct)
	}
	return out, nil
}
