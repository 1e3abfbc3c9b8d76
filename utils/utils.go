package utils

import (
	"fmt"
	"unicode/utf8"
)

// Str renders loosely-typed JSON values, mapping nil to "".
func Str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// TruncateRunes cuts s to at most n characters. It reports whether a cut happened.
func TruncateRunes(s string, n int) (string, bool) {
	if n <= 0 {
		return "", s != ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}
