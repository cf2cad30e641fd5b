package services

import (
	"regexp"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d[\d\s\-]{8,}\d)`)
)

const contactPlaceholder = "[hidden until booking confirmed]"

// MaskContacts redacts email addresses and phone numbers from a message so
// parties cannot take contact off-platform before a confirmed booking. The
// second return reports whether anything was redacted.
func MaskContacts(content string) (string, bool) {
	masked := emailPattern.ReplaceAllString(content, contactPlaceholder)
	masked = phonePattern.ReplaceAllString(masked, contactPlaceholder)
	return masked, masked != content
}
