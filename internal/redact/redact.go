// Package redact removes credentials and other sensitive fragments from
// strings before they are logged. Bearer credentials, encoded tokens, master
// keys and database connection strings all travel through this service, and
// none of them may reach a log line intact.
package redact

import (
	"regexp"
)

// Placeholders substituted for redacted fragments.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedHashPlaceholder       = "[REDACTED_HASH]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules run in order; later rules never see what earlier ones replaced
// because placeholders start with a character none of them accept.
var rules = []rule{
	{
		// Three base64url segments: every encoded client token has this shape.
		pattern:     regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		replacement: RedactedJWTPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`\$2[aby]?\$\d{2}\$[./A-Za-z0-9]{53}`),
		replacement: RedactedHashPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(postgres|postgresql|mysql|db|database)://[^@\s]+@`),
		replacement: RedactedCredentialPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(bearer\s+)[^\s,;\[]+`),
		replacement: "${1}" + RedactedCredentialPlaceholder,
	},
	{
		pattern: regexp.MustCompile(
			`(?i)(api[_-]?key|master[_-]?key|token|secret|password)(['"\s:=]+)[A-Za-z0-9_\-.~+/$]{8,}`,
		),
		replacement: "${1}${2}" + RedactedKeyPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(SELECT|INSERT\s+INTO|UPDATE|DELETE\s+FROM)\b.*`),
		replacement: RedactedSQLPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		replacement: RedactedStackPlaceholder,
	},
}

// String redacts sensitive information from input.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from err's message.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
