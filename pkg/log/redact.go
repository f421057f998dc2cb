package log

import "strings"

// RedactedValue replaces the value of any sensitive key before it reaches a sink.
const RedactedValue = "[REDACTED]"

var sensitiveKeys = []string{
	"privatekey",
	"private_key",
	"mnemonic",
	"passphrase",
	"seed",
	"apikey",
	"api_key",
}

// IsSensitiveKey reports whether values logged under key must never be written out.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// Redact returns a copy of keysAndValues with sensitive values masked.
// The input slice is never modified.
func Redact(keysAndValues []any) []any {
	out := make([]any, len(keysAndValues))
	copy(out, keysAndValues)
	for i := 0; i+1 < len(out); i += 2 {
		if key, ok := out[i].(string); ok && IsSensitiveKey(key) {
			out[i+1] = RedactedValue
		}
	}
	return out
}
