// internal/core/validation.go
package core

import (
	"regexp"
)

// Table and column names are interpolated into generated SQL, so they are
// restricted to alphanumerics and underscore.
var nameValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Postfixes are date tags like NOV29 and never carry underscores.
var postfixValidationRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// MaxPostfixLength bounds the table name suffix.
const MaxPostfixLength = 16

// IsValidIdentifier checks if a string is a valid identifier (e.g., table_name, column_name)
// Applies basic format and length checks.
func IsValidIdentifier(name string) bool {
	return nameValidationRegex.MatchString(name) && len(name) > 0 && len(name) <= 64
}

// IsValidPostfix reports whether s can be appended to a catalog label.
func IsValidPostfix(s string) bool {
	return postfixValidationRegex.MatchString(s) && len(s) <= MaxPostfixLength
}

// IsValidOptionalIdentifier accepts the empty string, meaning "use the derived name".
func IsValidOptionalIdentifier(name string) bool {
	return name == "" || IsValidIdentifier(name)
}
