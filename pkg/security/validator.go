package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxSearchQueryLength defines the maximum allowed length for search queries
	MaxSearchQueryLength = 100

	// MobileNumberLength is the number of digits in a subscriber number
	MobileNumberLength = 10
)

// dangerousPatterns contains regex patterns that could indicate SQL injection attempts
var dangerousPatterns = []*regexp.Regexp{
	// SQL injection patterns
	regexp.MustCompile(`(?i)\b(union|select|insert|update|delete|drop|create|alter|exec|execute)\b`),
	regexp.MustCompile(`(?i)(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(?i)(or|and)\s+['"].*['"]\s*=\s*['"].*['"]`),
	regexp.MustCompile(`(?i)(--|/\*|\*/)`),
	regexp.MustCompile(`(?i)\b(waitfor|benchmark|sleep)\b`),

	// XSS patterns (plan names and benefits are rendered by the web client)
	regexp.MustCompile(`(?i)(<script|</script|javascript:|vbscript:|onload=|onerror=)`),
}

// ValidateSearchQuery validates and sanitizes a search query to prevent SQL injection
func ValidateSearchQuery(query string) (string, error) {
	if query == "" {
		return "", nil
	}

	// Check length
	if len([]rune(query)) > MaxSearchQueryLength {
		return "", errors.New("search query too long")
	}

	// Trim whitespace
	query = strings.TrimSpace(query)

	// Check for dangerous patterns
	lowerQuery := strings.ToLower(query)
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(lowerQuery) {
			return "", errors.New("search query contains invalid characters")
		}
	}

	// Additional character validation - allow only safe characters
	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", errors.New("search query contains invalid characters")
		}
	}

	return query, nil
}

// isValidSearchChar checks if a character is safe for search queries
func isValidSearchChar(char rune) bool {
	// Allow letters, numbers, spaces, and the punctuation found in plan data ("2GB/day", "Disney+")
	return unicode.IsLetter(char) || unicode.IsNumber(char) ||
		char == ' ' || char == '-' || char == '_' || char == '.' ||
		char == '@' || char == '+' || char == '/' || char == ','
}

// SanitizeSearchString prepares a query string for LIKE operations
func SanitizeSearchString(query string) string {
	if query == "" {
		return ""
	}

	// Escape the escape character first, then wildcards
	query = strings.ReplaceAll(query, "\\", "\\\\")
	query = strings.ReplaceAll(query, "%", "\\%")
	query = strings.ReplaceAll(query, "_", "\\_")

	return query
}

// IsMobileNumber reports whether s is a 10-digit subscriber number.
func IsMobileNumber(s string) bool {
	if len(s) != MobileNumberLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeCardNumber strips spaces and dashes from a card number.
func NormalizeCardNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)
}

// CardLast4 returns the last four digits of a card number, or "" when the
// number is too short to mask.
func CardLast4(number string) string {
	n := NormalizeCardNumber(number)
	if len(n) < 4 {
		return ""
	}
	return n[len(n)-4:]
}
