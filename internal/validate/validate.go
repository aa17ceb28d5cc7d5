package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	reQ     = regexp.MustCompile(`^[\p{L}\p{N} _'’.,&/-]{1,80}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reSlug  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	reLabel = regexp.MustCompile(`^[\p{L}\p{N} &'’.+-]{1,60}$`)
	reField = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,40}$`)
)

// Q validates a search query: trims, clamps to 80 runes and enforces the
// allowed characters. Accented letters are accepted.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if utf8.RuneCountInString(s) > 80 {
		s = string([]rune(s)[:80])
	}
	return s, reQ.MatchString(s)
}

// ID validates a simple resource identifier (item and modal ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Slug validates collection and form names.
func Slug(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= 64 && reSlug.MatchString(s)
}

// Label validates a category or auxiliary filter value.
func Label(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reLabel.MatchString(s)
}

// FieldName validates a form field key sent by the client.
func FieldName(s string) bool { return reField.MatchString(s) }

// FieldValue bounds a free form field value.
func FieldValue(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s) <= 2000
}

// Coord parses a latitude or longitude within ±limit.
func Coord(s string, limit float64) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < -limit || f > limit {
		return 0, false
	}
	return f, true
}
