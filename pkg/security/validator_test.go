package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSearchQuery(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		expectError bool
		errorMsg    string
		expected    string
	}{
		{
			name:     "valid empty query",
			query:    "",
			expected: "",
		},
		{
			name:     "valid simple query",
			query:    "unlimited",
			expected: "unlimited",
		},
		{
			name:     "valid plan data query",
			query:    "2GB/day",
			expected: "2GB/day",
		},
		{
			name:     "valid benefits query",
			query:    "Disney+ Hotstar, JioTV",
			expected: "Disney+ Hotstar, JioTV",
		},
		{
			name:     "trims whitespace",
			query:    "  smart recharge  ",
			expected: "smart recharge",
		},
		{
			name:        "query too long",
			query:       strings.Repeat("a", MaxSearchQueryLength+1),
			expectError: true,
			errorMsg:    "search query too long",
		},
		{
			name:        "SQL injection attempt - UNION",
			query:       "plan UNION SELECT * FROM users",
			expectError: true,
			errorMsg:    "search query contains invalid characters",
		},
		{
			name:        "SQL injection attempt - OR condition",
			query:       "plan OR 1=1",
			expectError: true,
			errorMsg:    "search query contains invalid characters",
		},
		{
			name:        "SQL injection attempt - comment",
			query:       "plan --",
			expectError: true,
			errorMsg:    "search query contains invalid characters",
		},
		{
			name:        "SQL injection attempt - DROP",
			query:       "plan; DROP TABLE plans",
			expectError: true,
			errorMsg:    "search query contains invalid characters",
		},
		{
			name:        "XSS attempt - script",
			query:       "<script>alert('xss')</script>",
			expectError: true,
			errorMsg:    "search query contains invalid characters",
		},
		{
			name:        "invalid characters",
			query:       "jio&airtel",
			expectError: true,
			errorMsg:    "search query contains invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateSearchQuery(tt.query)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Empty(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestSanitizeSearchString(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{name: "empty string", query: "", expected: ""},
		{name: "normal string", query: "jio", expected: "jio"},
		{name: "percent wildcard", query: "50%", expected: "50\\%"},
		{name: "underscore wildcard", query: "long_term", expected: "long\\_term"},
		{name: "multiple wildcards", query: "%jio_%", expected: "\\%jio\\_\\%"},
		{name: "backslash", query: `a\b`, expected: `a\\b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeSearchString(tt.query))
		})
	}
}

func TestIsMobileNumber(t *testing.T) {
	assert.True(t, IsMobileNumber("9876543210"))
	assert.False(t, IsMobileNumber("987654321"))
	assert.False(t, IsMobileNumber("98765432101"))
	assert.False(t, IsMobileNumber("98765x3210"))
	assert.False(t, IsMobileNumber(""))
}

func TestCardLast4(t *testing.T) {
	assert.Equal(t, "3456", CardLast4("1234 5678 9012 3456"))
	assert.Equal(t, "3456", CardLast4("1234-5678-9012-3456"))
	assert.Equal(t, "", CardLast4("12"))
	assert.Equal(t, "1234567890123456", NormalizeCardNumber("1234 5678 9012 3456"))
}

func BenchmarkValidateSearchQuery(b *testing.B) {
	query := "unlimited 2GB/day plan"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ValidateSearchQuery(query)
	}
}
