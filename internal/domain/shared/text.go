package shared

import "unicode/utf8"

// TruncateRunes shortens s to at most max characters without splitting a rune
func TruncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// RuneLen returns the number of characters in s, the unit varchar limits count in
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
