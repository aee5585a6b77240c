package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write rules: %v", err)
	}
	return path
}

func hasMessage(result ValidationResult, substr string) bool {
	for _, msg := range result.Errors {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestValidateRules_Valid(t *testing.T) {
	path := writeRules(t, `{
		"name": "test",
		"description": "Test rules",
		"ship_lengths": [4, 3, 2],
		"clamp_to_board": true,
		"max_attempts": 1000,
		"board": {"rows": 8, "columns": 8, "ships": 3}
	}`)

	result := validateRules(path)
	if !result.Valid {
		t.Fatalf("Expected valid rules, but got errors: %v", result.Errors)
	}
	if result.File != "rules.json" {
		t.Errorf("Expected file name rules.json, got %s", result.File)
	}
	if !hasMessage(result, "25/25 seeded trials succeeded") {
		t.Errorf("Expected placement summary, got %v", result.Errors)
	}
}

func TestValidateRules_NoBoard(t *testing.T) {
	path := writeRules(t, `{"name": "loose", "ship_lengths": [2]}`)

	result := validateRules(path)
	if !result.Valid {
		t.Fatalf("Expected valid rules, got %v", result.Errors)
	}
	if !hasMessage(result, "max_attempts not set") {
		t.Errorf("Expected max_attempts default note, got %v", result.Errors)
	}
	if !hasMessage(result, "No reference board declared") {
		t.Errorf("Expected board note, got %v", result.Errors)
	}
}

func TestValidateRules_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "invalid JSON",
			content:  `{"name": "test", invalid json}`,
			expected: "Invalid JSON",
		},
		{
			name:     "missing name",
			content:  `{"ship_lengths": [2], "max_attempts": 10}`,
			expected: "name is required",
		},
		{
			name:     "empty lengths",
			content:  `{"name": "x", "ship_lengths": [], "max_attempts": 10}`,
			expected: "ship_lengths must not be empty",
		},
		{
			name:     "non-positive length",
			content:  `{"name": "x", "ship_lengths": [3, 0], "max_attempts": 10}`,
			expected: "ship_lengths[1]",
		},
		{
			name:     "negative attempts",
			content:  `{"name": "x", "ship_lengths": [2], "max_attempts": -1}`,
			expected: "max_attempts must be between",
		},
		{
			name:     "illegal board",
			content:  `{"name": "x", "ship_lengths": [2], "max_attempts": 10, "board": {"rows": 0, "columns": 5, "ships": 1}}`,
			expected: "board",
		},
		{
			name:     "fleet too large",
			content:  `{"name": "x", "ship_lengths": [3], "max_attempts": 10, "board": {"rows": 3, "columns": 3, "ships": 4}}`,
			expected: "Fleet needs 12 cells, board has 9",
		},
		{
			name:     "ship longer than board",
			content:  `{"name": "x", "ship_lengths": [6], "clamp_to_board": false, "max_attempts": 10, "board": {"rows": 4, "columns": 5, "ships": 1}}`,
			expected: "longer than any side",
		},
		{
			name:     "attempt budget too small",
			content:  `{"name": "x", "ship_lengths": [10], "max_attempts": 1, "board": {"rows": 10, "columns": 10, "ships": 3}}`,
			expected: "Placement failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateRules(writeRules(t, tt.content))
			if result.Valid {
				t.Fatal("Expected invalid rules")
			}
			if !hasMessage(result, tt.expected) {
				t.Errorf("Expected error containing %q, got %v", tt.expected, result.Errors)
			}
		})
	}
}

func TestValidateRules_MissingFile(t *testing.T) {
	result := validateRules(filepath.Join(t.TempDir(), "nope.json"))
	if result.Valid || !hasMessage(result, "Failed to read file") {
		t.Errorf("Expected read failure, got %+v", result)
	}
}

func TestValidateRules_ShippedPresets(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "configs", "*.json"))
	if err != nil {
		t.Fatalf("Failed to glob presets: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no presets found")
	}

	for _, file := range files {
		result := validateRules(file)
		if !result.Valid {
			t.Errorf("%s: %v", filepath.Base(file), result.Errors)
		}
	}
}
