// Package redact masks contact data and credentials before lead records
// reach the logs.
package redact

import (
	"regexp"
	"strings"
)

const (
	emailMask = "[EMAIL_REDACTED]"
	phoneMask = "[PHONE_REDACTED]"
	cardMask  = "[CC_REDACTED]"
	valueMask  = "[REDACTED]"
	secretMask = "[SECRET_REDACTED]"
)

var (
	// Email pattern - RFC 5322 simplified
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Card numbers, optionally grouped by spaces or dashes; confirmed with Luhn
	cardPattern = regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`)

	// Phone numbers in US and international formats; confirmed by digit count
	phonePattern = regexp.MustCompile(`\+?\(?\d[\d\s().\-]{6,}\d`)

	// Vendor API keys, AWS access keys and JWTs pasted into CRM notes
	secretPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bsk-(?:ant-)?[A-Za-z0-9_\-]{20,}`),
		regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{35}\b`),
		regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]+\.eyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+`),
	}

	// keys whose values are contact data no matter what they look like
	sensitiveKeys = []string{"email", "phone", "mobile", "whatsapp", "cellphone", "telefono", "correo", "password", "secret", "api_key", "apikey"}
)

const minPhoneDigits = 9

// String masks secrets, emails, card numbers and phone numbers in s
func String(s string) string {
	for _, p := range secretPatterns {
		s = p.ReplaceAllString(s, secretMask)
	}
	s = emailPattern.ReplaceAllString(s, emailMask)
	s = cardPattern.ReplaceAllStringFunc(s, func(m string) string {
		if luhnCheck(m) {
			return cardMask
		}
		return m
	})
	s = phonePattern.ReplaceAllStringFunc(s, func(m string) string {
		if countDigits(m) >= minPhoneDigits {
			return phoneMask
		}
		return m
	})
	return s
}

// Map returns a redacted deep copy of m. The input is not modified.
func Map(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if isSensitiveKey(k) {
			if v == nil {
				out[k] = nil
			} else {
				out[k] = valueMask
			}
			continue
		}
		out[k] = Value(v)
	}
	return out
}

// Value redacts any JSON-shaped value
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case map[string]any:
		return Map(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Value(item)
		}
		return out
	default:
		return v
	}
}

// isSensitiveKey reports whether a field name holds contact data
func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// luhnCheck validates a card number using the Luhn algorithm
func luhnCheck(number string) bool {
	number = strings.ReplaceAll(number, " ", "")
	number = strings.ReplaceAll(number, "-", "")

	if len(number) < 13 || len(number) > 19 {
		return false
	}

	sum := 0
	isSecond := false
	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')
		if isSecond {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		isSecond = !isSecond
	}
	return sum%10 == 0
}
