package customer

import (
	"errors"
	"strings"
)

var ErrInvalidTaxID = errors.New("tax id must contain exactly 11 digits")

// NormalizeTaxID strips the usual punctuation (123.456.789-01) and validates
// that exactly 11 digits remain. Anything else is rejected; letters are not
// silently dropped.
func NormalizeTaxID(s string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '/' || r == ' ':
			// punctuation, dropped
		default:
			return "", ErrInvalidTaxID
		}
	}
	normalized := b.String()
	if len(normalized) != 11 {
		return "", ErrInvalidTaxID
	}
	return normalized, nil
}

// NormalizeTaxIDPrefix is the search variant: it keeps whatever digits are
// present without enforcing the full length, so partial matches work.
func NormalizeTaxIDPrefix(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
