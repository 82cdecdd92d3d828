package validation

import (
	"strings"
	"testing"
)

func TestValidateInput(t *testing.T) {
	v := NewInputValidator()

	valid := []string{
		"white homogeneous cream",
		"Tablet (coated), 50% w/w",
		"sample-42 in distilled water",
		"Oral Strips",
	}
	for _, input := range valid {
		if err := v.ValidateInput(input); err != nil {
			t.Errorf("ValidateInput(%q) failed: %v", input, err)
		}
	}

	invalid := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"too long", strings.Repeat("a ", 300)},
		{"script tag", "<script>alert(1)</script>"},
		{"sql comment", "cream -- drop"},
		{"union select", "a union select b"},
		{"command injection", "cream; rm"},
		{"path traversal", "../etc/passwd"},
		{"shell expansion", "$(whoami)"},
		{"repetition", "aaaaaaaaaaaaaaaaaaaaaa"},
		{"angle brackets", "cream <em>"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			if err := v.ValidateInput(tc.input); err == nil {
				t.Errorf("ValidateInput(%q) succeeded, expected error", tc.input)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	v := NewInputValidator()

	valid := []string{
		"user@example.com",
		"first.last@lab.example.co.in",
		"user+tag@example.com",
	}
	for _, input := range valid {
		if err := v.ValidateEmail(input); err != nil {
			t.Errorf("ValidateEmail(%q) failed: %v", input, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		"not-an-email",
		"user@",
		"@example.com",
		"user@localhost",
		"Name <user@example.com>",
		strings.Repeat("a", 250) + "@example.com",
	}
	for _, input := range invalid {
		if err := v.ValidateEmail(input); err == nil {
			t.Errorf("ValidateEmail(%q) succeeded, expected error", input)
		}
	}
}

func TestValidateGuidelineCode(t *testing.T) {
	v := NewInputValidator()

	valid := []string{
		"OECD 405",
		"OECD 452",
		"ISO 10993-10",
		"ISO 10993-5",
	}
	for _, input := range valid {
		if err := v.ValidateGuidelineCode(input); err != nil {
			t.Errorf("ValidateGuidelineCode(%q) failed: %v", input, err)
		}
	}

	invalid := []string{
		"",
		" OECD 405",
		"OECD 405 ",
		"405",
		"OECD",
		"OECD 405; drop",
		"<b>405</b>",
		strings.Repeat("O", 40),
	}
	for _, input := range invalid {
		if err := v.ValidateGuidelineCode(input); err == nil {
			t.Errorf("ValidateGuidelineCode(%q) succeeded, expected error", input)
		}
	}
}
