package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeWhitespace(s string) string {
	s = strings.Trim(s, " \n\t")
	return whitespaceRegex.ReplaceAllString(s, " ")
}

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	return whitespaceRegex.ReplaceAllString(name, "")
}

// matches a trailing parenthesized four digit year, e.g. "The Matrix (1999)"
var trailingYearRegex = regexp.MustCompile(`^(.*) \((\d{4})\)$`)

// CleanMovieName strips a trailing " (YYYY)" from a film title. Titles with
// unrelated parentheses, or without a trailing year, come back unchanged.
func CleanMovieName(name string) string {
	groups := trailingYearRegex.FindStringSubmatch(name)
	if len(groups) < 3 {
		return name
	}
	return groups[1]
}

// ExtractYear returns the trailing parenthesized year of a film title, or nil
// when the title does not end in one.
func ExtractYear(name string) *int {
	groups := trailingYearRegex.FindStringSubmatch(name)
	if len(groups) < 3 {
		return nil
	}
	year, err := strconv.Atoi(groups[2])
	if err != nil {
		return nil
	}
	return &year
}
