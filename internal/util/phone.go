package util

import "strings"

// NormalizeE164 turns a WhatsApp wa_id ("15551234567") or a formatted number
// ("+1 (555) 123-4567") into "+15551234567". Empty input stays empty.
func NormalizeE164(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "+" + b.String()
}

// WaID strips the leading plus so the number can be used as a Graph API recipient.
func WaID(phone string) string {
	return strings.TrimPrefix(NormalizeE164(phone), "+")
}

// MaskPhone keeps the last four digits for logging.
func MaskPhone(phone string) string {
	digits := WaID(phone)
	if len(digits) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}
