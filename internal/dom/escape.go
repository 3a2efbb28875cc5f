package dom

import "strings"

var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeMarkup escapes text for insertion into raw markup. It matches how a
// text node serializes: quotes are left alone.
func EscapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}
