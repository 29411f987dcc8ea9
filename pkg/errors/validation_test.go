package errors

import (
	"strings"
	"testing"
)

func TestValidateIndividualID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "A", false},
		{"uuid", "0b7e2f4c-8d43-4c1e-9a55-6b0f3f5c9e21", false},
		{"with slash", "colony/42", false},
		{"unicode", "Zoë", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxIDLength+1), true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
		{"leading space", " a", true},
		{"trailing space", "a ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIndividualID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIndividualID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("expected INVALID_ID, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateOwner(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "breeder-1", false},
		{"email-like", "someone@example.org", false},

		{"empty", "", true},
		{"traversal", "..", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"control", "a\tb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOwner(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOwner(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	supported := map[string]bool{"svg": true, "dot": true}
	if err := ValidateFormat("svg", supported); err != nil {
		t.Errorf("svg should be valid: %v", err)
	}
	err := ValidateFormat("SVG", supported)
	if err == nil {
		t.Fatal("format check should be case-sensitive")
	}
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
	}
}
