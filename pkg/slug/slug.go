// Package slug derives URL-safe machine identifiers from display names
package slug

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest slug a field can carry
const MaxLength = 255

// Fallback is used when a name has no slug-able characters
const Fallback = "field"

// ExistsFunc reports whether a slug is already taken
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Make lowercases text, folds accented letters to ASCII and collapses every
// run of other characters into a single "-"
func Make(text string) string {
	folder := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	s := b.String()
	if s == "" {
		return Fallback
	}
	return truncate(s, MaxLength)
}

// Unique returns Make(text), or the first "<slug>-N" (N = 1, 2, ...) that
// exists reports as free. A long base is cut so the suffixed result fills
// exactly MaxLength.
func Unique(ctx context.Context, text string, exists ExistsFunc) (string, error) {
	base := Make(text)
	taken, err := exists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		suffix := "-" + strconv.Itoa(n)
		candidate := truncate(base, MaxLength-len(suffix)) + suffix
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// truncate cuts s to exactly n bytes when it is longer. A cut landing on a
// separator drops that separator and keeps the next character instead, so
// the result never ends in "-". Slugs are ASCII so bytes and characters
// coincide, and Make never emits two separators in a row.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if s[n-1] == '-' {
		return s[:n-1] + s[n:n+1]
	}
	return s[:n]
}
