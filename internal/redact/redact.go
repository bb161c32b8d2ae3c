// Package redact masks credentials and personal data in strings before they
// are logged. Error messages from the database driver, the LLM providers and
// the auth backend can carry connection strings, API keys, tokens and email
// addresses; none of those may reach the logs in clear text.
package redact

import "regexp"

// Placeholders substituted for redacted values.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// Rules run in order. Later rules see the output of earlier ones.
var rules = []rule{
	{regexp.MustCompile(`(?s)(?:panic:|goroutine \d+ \[).*`), RedactedStackPlaceholder},
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|mysql|rediss?)://[^@\s/]+@`), "${1}://" + RedactedCredentialPlaceholder + "@"},
	// OpenRouter and OpenAI style keys.
	{regexp.MustCompile(`\bsk-(?:or-v1-)?[A-Za-z0-9_-]{16,}`), RedactedKeyPlaceholder},
	// Google API keys.
	{regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{35}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`\beyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), RedactedJWTPlaceholder},
	{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/-]{8,}=*`), "Bearer " + RedactedTokenPlaceholder},
	{
		regexp.MustCompile(`(?i)\b(password|passwd|pwd|api[_-]?key|secret|token)(\s*[=:]\s*)['"]?[^'"&\s,]{3,}['"]?`),
		"${1}${2}" + RedactedCredentialPlaceholder,
	},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
	{regexp.MustCompile(`(?i)\b(?:SELECT|INSERT\s+INTO|UPDATE|DELETE\s+FROM)\b[^;\n]*`), RedactedSQLPlaceholder},
	{regexp.MustCompile(`(?:/[\w.-]+){3,}`), RedactedPathPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	for _, r := range rules {
		input = r.re.ReplaceAllString(input, r.replacement)
	}
	return input
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
