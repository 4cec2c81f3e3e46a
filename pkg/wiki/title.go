package wiki

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeTitle converts a title to the form MediaWiki reports: surrounding
// whitespace trimmed, underscores replaced by spaces, runs of spaces
// collapsed and the first letter upper-cased.
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.Join(strings.Fields(title), " ")
	r, size := utf8.DecodeRuneInString(title)
	if r == utf8.RuneError {
		return title
	}
	return string(unicode.ToUpper(r)) + title[size:]
}

// namespaces are the canonical MediaWiki namespace names and aliases that
// prefix non-article titles, lower-cased. "<name> talk" is matched by suffix.
var namespaces = map[string]bool{
	"talk":              true,
	"user":              true,
	"wikipedia":         true,
	"wp":                true,
	"project":           true,
	"file":              true,
	"image":             true,
	"media":             true,
	"mediawiki":         true,
	"template":          true,
	"help":              true,
	"category":          true,
	"portal":            true,
	"draft":             true,
	"module":            true,
	"special":           true,
	"timedtext":         true,
	"book":              true,
	"gadget":            true,
	"gadget definition": true,
}

// HasNamespace reports whether title starts with a namespace prefix such
// as "Talk:" or "File:". A colon elsewhere, as in "Star Wars: Episode IV",
// does not make a title namespaced.
func HasNamespace(title string) bool {
	i := strings.IndexByte(title, ':')
	if i <= 0 {
		return false
	}
	ns := strings.ToLower(NormalizeTitle(title[:i]))
	return namespaces[ns] || strings.HasSuffix(ns, " talk")
}
