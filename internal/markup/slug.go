package markup

import (
	"strconv"
	"strings"
)

// diacritics maps accented letters to the closest unaccented lower-case
// ASCII letter. Anything not listed and not ASCII alphanumeric is dropped.
var diacritics = map[rune]string{
	'ä': "a", 'Ä': "a", 'à': "a", 'À': "a", 'á': "a", 'Á': "a", 'â': "a", 'Â': "a",
	'ã': "a", 'Ã': "a", 'å': "a", 'Å': "a", 'ā': "a", 'Ā': "a",
	'ç': "c", 'Ç': "c", 'č': "c", 'Č': "c",
	'è': "e", 'È': "e", 'é': "e", 'É': "e", 'ê': "e", 'Ê': "e", 'ë': "e", 'Ë': "e",
	'ì': "i", 'Ì': "i", 'í': "i", 'Í': "i", 'î': "i", 'Î': "i", 'ï': "i", 'Ï': "i",
	'ñ': "n", 'Ñ': "n",
	'ö': "o", 'Ö': "o", 'ò': "o", 'Ò': "o", 'ó': "o", 'Ó': "o", 'ô': "o", 'Ô': "o",
	'õ': "o", 'Õ': "o", 'ø': "o", 'Ø': "o",
	'ü': "u", 'Ü': "u", 'ù': "u", 'Ù': "u", 'ú': "u", 'Ú': "u", 'û': "u", 'Û': "u",
	'ý': "y", 'Ý': "y", 'ÿ': "y",
	'š': "s", 'Š': "s", 'ß': "s",
	'ž': "z", 'Ž': "z",
}

// Slugify turns text into a lower-case, hyphen-separated ASCII identifier.
// Spaces and hyphens separate words; every other character outside
// [A-Za-z0-9] is removed after diacritic substitution. The result has no
// leading, trailing or repeated hyphens, so Slugify(Slugify(s)) == Slugify(s).
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSep := false
	write := func(s string) {
		if pendingSep && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingSep = false
		b.WriteString(s)
	}

	for _, r := range text {
		if sub, ok := diacritics[r]; ok {
			write(sub)
			continue
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			write(string(r))
		case r >= 'A' && r <= 'Z':
			write(string(r + ('a' - 'A')))
		case r == ' ', r == '-':
			pendingSep = true
		}
	}
	return b.String()
}

// Anchor derives the in-document link target of a game section from its
// 1-based ordinal, its platform glyphs and its display name. Callers keep
// ordinals unique; the ordinal is always the first token of the slug, so
// equal names never collide.
func Anchor(ordinal int, tags []string, name string) string {
	parts := make([]string, 0, len(tags)+2)
	parts = append(parts, strconv.Itoa(ordinal))
	parts = append(parts, tags...)
	parts = append(parts, name)
	return Slugify(strings.Join(parts, " "))
}
