package utils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	invalidRe    = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// SlugifyRoomName normalizes a user-supplied room name: runs of
// whitespace become underscores, anything outside [a-zA-Z0-9_-] is
// stripped, and the result is lowercased.
func SlugifyRoomName(name string) string {
	name = strings.TrimSpace(name)
	name = whitespaceRe.ReplaceAllString(name, "_")
	name = invalidRe.ReplaceAllString(name, "")
	return strings.ToLower(name)
}
