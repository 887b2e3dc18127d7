// Package naming derives local filenames for generated artifacts from the
// request prompt and the invocation instant.
package naming

import (
	"strings"
	"time"
	"unicode"
)

// maxStemLen caps how much of the sanitized prompt survives in the filename.
const maxStemLen = 30

// timestampLayout is second-resolution, filesystem-safe.
const timestampLayout = "20060102_150405"

// Filename builds a filename from a seed text, an extension (without dot) and
// an instant. The seed is reduced to alphanumerics, spaces, hyphens and
// underscores; spaces become underscores; the stem is truncated to 30
// characters. The timestamp suffix keeps concurrent prompts from colliding.
// A seed that sanitizes to nothing still yields a well-formed, timestamp-only
// name.
func Filename(seed, ext string, now time.Time) string {
	var b strings.Builder
	for _, r := range seed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	stem := strings.TrimRight(b.String(), " ")
	stem = strings.ReplaceAll(stem, " ", "_")
	if runes := []rune(stem); len(runes) > maxStemLen {
		stem = string(runes[:maxStemLen])
	}

	return stem + "_" + now.Format(timestampLayout) + "." + ext
}

// FilenameNow is Filename evaluated at the current instant.
func FilenameNow(seed, ext string) string {
	return Filename(seed, ext, time.Now())
}
