package markup

import "strings"

// Escape makes arbitrary upstream text safe to embed in the document.
//
// Emphasis, heading and strikethrough markers (_ * # ~) are prefixed with a
// backslash and angle brackets become &lt; and &gt;. A marker that already
// follows a backslash is left alone, so escaping twice is the same as
// escaping once.
func Escape(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text) + len(text)/8)

	escaped := false
	for _, r := range text {
		switch r {
		case '_', '*', '#', '~':
			if !escaped {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(r)
		}
		escaped = r == '\\'
	}
	return b.String()
}
