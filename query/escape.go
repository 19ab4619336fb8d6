package query

import (
	"slices"
	"strings"
)

var (
	generalReserved = []string{
		"+", "-", "&", "|", "!", "(", ")", "{", "}", "[", "]", "^", ":", `"`, "~", "*", "?", "/", " ",
	}
	searchReserved = []string{
		"+", "-", "&", "|", "!", "(", ")", "{", "}", "[", "]", "^", ":", "~", "/",
	}
)

var (
	generalEscaper     = newEscaper(generalReserved)
	searchEscaper      = newEscaper(searchReserved)
	searchQuoteEscaper = newEscaper(slices.Concat(searchReserved, []string{`"`}))
)

// Backslashes are doubled, and every reserved character is prefixed with a backslash.
func newEscaper(reserved []string) *strings.Replacer {
	replacements := []string{`\`, `\\`}
	for _, char := range reserved {
		replacements = append(replacements, char, `\`+char)
	}
	return strings.NewReplacer(replacements...)
}

// EscapeQueryString escapes text for use as a field name or value in a query-string predicate.
func EscapeQueryString(text string) string {
	return generalEscaper.Replace(text)
}

// EscapeSearchText escapes free text for the search operator, which leaves quotes, wildcards and
// spaces usable. Double quotes are escaped only when unbalanced.
func EscapeSearchText(text string) string {
	if strings.Count(text, `"`)%2 == 1 {
		return searchQuoteEscaper.Replace(text)
	}
	return searchEscaper.Replace(text)
}
