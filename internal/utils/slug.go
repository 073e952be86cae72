package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Slugify lowercases, strips accents-ish punctuation and collapses everything
// that is not a letter or digit into single hyphens.
func Slugify(s string) string {
	var b strings.Builder

	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
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

	out := strings.TrimSuffix(b.String(), "-")

	if out == "" {
		out = "untitled"
	}

	if len(out) > 120 {
		// cut on a rune boundary; a byte-offset cut can split a multibyte
		// rune and produce invalid UTF-8
		cut := 120
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = strings.TrimSuffix(out[:cut], "-")
	}

	return out
}

// SlugWithSuffix appends a short random suffix, used to retry after a
// uniqueness collision.
func SlugWithSuffix(slug string) string {
	buf := make([]byte, 3)

	if _, err := rand.Read(buf); err != nil {
		// rand.Read on a healthy system does not fail; keep the slug usable anyway
		return slug + "-x"
	}

	return slug + "-" + hex.EncodeToString(buf)
}
