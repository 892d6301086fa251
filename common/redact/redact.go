// Package redact strips personally identifiable information from log
// output before it leaves the process boundary.
//
// # Threat model
//
// Citizen PII (phone numbers, land-record identifiers) must never appear
// in:
//   - Log lines emitted by the bot
//   - Health/status payloads
//
// Redaction is best-effort: it operates on string representations and is
// NOT a substitute for keeping PII out of log call-sites in the first
// place.
package redact

import (
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// phonePattern matches Indian mobile numbers as they appear in chat: an
// optional +91 prefix followed by ten digits, possibly broken up by spaces
// or dashes.
var phonePattern = regexp.MustCompile(`(\+91[\s-]*)?(?:\d[\s-]*){9}\d`)

// PII masks phone numbers in s, keeping the last two digits so adjacent
// log lines about the same citizen remain correlatable.
func PII(s string) string {
	return phonePattern.ReplaceAllStringFunc(s, func(m string) string {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, m)
		if len(digits) < 2 {
			return placeholder
		}
		return "********" + digits[len(digits)-2:]
	})
}

// sensitiveFields are the collected form fields whose values identify a
// citizen or their land records.
var sensitiveFields = map[string]struct{}{
	"contact_number": {},
	"khatiyan_no":    {},
	"plot_no":        {},
}

// Map returns a shallow copy of collected form data with sensitive field
// values replaced by [REDACTED]. Use it before logging application data.
func Map(data map[string]string) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		if _, ok := sensitiveFields[k]; ok && v != "" {
			out[k] = placeholder
			continue
		}
		out[k] = v
	}
	return out
}
