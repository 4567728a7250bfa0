package grading

import (
	"strings"
	"unicode"
)

// trim strips leading and trailing whitespace, including non-ASCII spaces.
func trim(s string) string {
	return strings.TrimFunc(s, unicode.IsSpace)
}

// normalize trims the string and, unless the question is case sensitive,
// folds it to lower case for comparison.
func normalize(s string, caseSensitive bool) string {
	out := trim(s)
	if !caseSensitive {
		out = strings.ToLower(out)
	}
	return out
}
