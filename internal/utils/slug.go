package utils

import "strings"

// Slugify lowercases s and reduces it to hyphen-separated runs of
// letters and digits, producing a URL-safe slug. Anything that
// reduces to an empty string is returned as-is for the caller to
// reject.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ValidSlug reports whether s is non-empty and already in slug form.
func ValidSlug(s string) bool {
	return s != "" && s == Slugify(s)
}
