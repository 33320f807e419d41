package utils

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// PosterExt is the fixed extension for cached poster files.
const PosterExt = ".jpg"

// PosterFilename derives the cache filename for a title: transliterated to
// ASCII, lower-cased, non-alphanumerics stripped, spaces collapsed to
// single hyphens, no leading or trailing hyphen.
//
//	"The Matrix: Reloaded!" -> "the-matrix-reloaded.jpg"
func PosterFilename(title string) string {
	s := strings.ToLower(unidecode.Unidecode(title))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	return slug + PosterExt
}
