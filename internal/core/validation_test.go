// internal/core/validation_test.go
package core

import (
	"strings"
	"testing"
)

func TestIsValidIdentifier(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    bool
		comment string
	}{
		{"valid simple", "my_table", true, ""},
		{"valid with numbers", "table_123", true, ""},
		{"valid uppercase", "ACTIVE_CUSTOMERS_NOV29", true, ""},
		{"valid underscore start", "_table", true, ""},
		{"valid number start", "123table", true, ""},
		{"valid short", "a", true, ""},
		{"valid long (64 chars)", strings.Repeat("a", 64), true, ""},
		{"invalid empty", "", false, "empty string"},
		{"invalid space", "ACTIVE CUSTOMERS", false, "contains space"},
		{"invalid hyphen", "my-table", false, "contains hyphen"},
		{"invalid statement", "t; DROP TABLE x", false, "contains semicolon"},
		{"invalid quote", "t'", false, "contains quote"},
		{"invalid too long", strings.Repeat("a", 65), false, "exceeds 64 chars"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsValidIdentifier(tc.input)
			if got != tc.want {
				t.Errorf("IsValidIdentifier(%q) = %v; want %v. %s", tc.input, got, tc.want, tc.comment)
			}
		})
	}
}

func TestIsValidOptionalIdentifier(t *testing.T) {
	if !IsValidOptionalIdentifier("") {
		t.Error("empty name should be accepted")
	}
	if IsValidOptionalIdentifier("bad name") {
		t.Error("name with a space should be rejected")
	}
}

func TestIsValidPostfix(t *testing.T) {
	testCases := []struct {
		input string
		want  bool
	}{
		{"NOV29", true},
		{"dec01", true},
		{"2024", true},
		{"", false},
		{"NOV_29", false},
		{"NOV 29", false},
		{strings.Repeat("A", MaxPostfixLength), true},
		{strings.Repeat("A", MaxPostfixLength+1), false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := IsValidPostfix(tc.input); got != tc.want {
				t.Errorf("IsValidPostfix(%q) = %v; want %v", tc.input, got, tc.want)
			}
		})
	}
}
