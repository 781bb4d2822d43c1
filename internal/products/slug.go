package products

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// slugify lowercases the parts, keeps letters and digits, and joins words with
// hyphens. Empty input falls back to a uuid fragment so the unique index on
// variant slugs always has something to hold on to.
func slugify(parts ...string) string {
	var b strings.Builder
	lastHyphen := true
	for _, part := range parts {
		for _, r := range strings.ToLower(part) {
			switch {
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				b.WriteRune(r)
				lastHyphen = false
			default:
				if !lastHyphen {
					b.WriteByte('-')
					lastHyphen = true
				}
			}
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return uuid.NewString()[:8]
	}
	return slug
}

// newBarcode derives a stable digit string from a fresh uuid, usable as a
// Code128 payload on printed labels.
func newBarcode() string {
	raw := uuid.New()
	var b strings.Builder
	for _, octet := range raw[:6] {
		b.WriteString(twoDigits(octet))
	}
	return b.String()
}

func twoDigits(octet byte) string {
	value := int(octet) % 100
	return string([]byte{'0' + byte(value/10), '0' + byte(value%10)})
}
