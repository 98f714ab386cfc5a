// Package notify builds out-of-band contact deep links. The portal never
// sends messages itself; it hands the studio a prefilled link and the
// studio's own device does the sending.
package notify

import (
	"fmt"
	"net/url"
	"strings"
)

// CleanPhone strips everything but digits. "+39 333 123-4567" becomes
// "393331234567". An empty result means no usable number was stored.
func CleanPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// percentEscape encodes a query value with %20 for spaces. QueryEscape's
// form encoding would produce "+", which mail clients show literally in
// mailto bodies (RFC 6068 takes only percent escapes).
func percentEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// WhatsAppLink returns a wa.me link with the message prefilled, or ""
// when the stored phone has no digits.
func WhatsAppLink(phone, message string) string {
	digits := CleanPhone(phone)
	if digits == "" {
		return ""
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, percentEscape(message))
}

// MailtoLink returns a mailto link with subject and body prefilled, or ""
// when the stored address does not look like an email at all.
func MailtoLink(email, subject, body string) string {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return ""
	}
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", email, percentEscape(subject), percentEscape(body))
}
