// Package validation provides request input validation for the quotation API.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/biocule/quotation-api/interfaces"
)

// Pre-compiled regex patterns for performance optimization
// Compiled once at package initialization and reused for all validations
var (
	// Input validation: alphanumeric + safe punctuation for free-text fields
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'%(),/]+$`)

	// Guideline codes look like "OECD 405" or "ISO 10993-10"
	guidelineCodeRegex = regexp.MustCompile(`^[A-Za-z]{2,10}[\s-][0-9]{1,5}(-[0-9]{1,3})?$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// LDAP injection patterns
		"*)(", "*|(", "*)%",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
	}
)

// InputValidatorImpl implements the interfaces.InputValidator interface
type InputValidatorImpl struct{}

// NewInputValidator creates a new input validator
func NewInputValidator() interfaces.InputValidator {
	return &InputValidatorImpl{}
}

// ValidateInput validates free-text user input strings
func (v *InputValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > 500 {
		return fmt.Errorf("input too long: maximum 500 characters")
	}

	// Check for potentially dangerous patterns using string matching (faster than regex)
	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces and common punctuation are allowed")
	}

	// Additional checks for repeated characters (potential DoS)
	if hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateEmail validates an email address
func (v *InputValidatorImpl) ValidateEmail(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(trimmed) > 254 {
		return fmt.Errorf("email too long: maximum 254 characters")
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return fmt.Errorf("invalid email address")
	}

	// Reject display-name forms like "Name <user@host>"
	if addr.Address != trimmed {
		return fmt.Errorf("invalid email address")
	}

	if !strings.Contains(strings.SplitN(trimmed, "@", 2)[1], ".") {
		return fmt.Errorf("email domain must contain a dot")
	}

	return nil
}

// ValidateGuidelineCode validates a guideline code path parameter
func (v *InputValidatorImpl) ValidateGuidelineCode(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("guideline code cannot be empty")
	}

	// Reject if original input contained surrounding whitespace
	if len(input) != len(trimmed) {
		return fmt.Errorf("guideline code contains invalid characters")
	}

	if len(trimmed) > 30 {
		return fmt.Errorf("guideline code too long: maximum 30 characters")
	}

	if !guidelineCodeRegex.MatchString(trimmed) {
		return fmt.Errorf("guideline code must look like 'OECD 405' or 'ISO 10993-10'")
	}

	return nil
}

// hasExcessiveRepetition checks for potential DoS patterns with excessive character repetition
func hasExcessiveRepetition(input string) bool {
	// Check for the same character repeated more than 10 times consecutively
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
