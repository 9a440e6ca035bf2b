// Package validation sanitizes and validates untrusted request input.
package validation

import (
	"errors"
	"regexp"
	"strings"

	"contribgraph/models"
)

// MaxIdentifierLength is the longest login GitHub accepts
const MaxIdentifierLength = 39

// InvalidIdentifierMessage is shown to users whose input fails validation
const InvalidIdentifierMessage = "Username must be 1-39 characters and contain only alphanumeric characters and hyphens"

// ErrInvalidIdentifier is returned when sanitized input is not a valid login
var ErrInvalidIdentifier = errors.New("invalid GitHub username format")

// Alphanumeric runs separated by single hyphens. Together with the length
// check this matches ^[A-Za-z0-9](?:[A-Za-z0-9]|-(?=[A-Za-z0-9])){0,38}$.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9]+(?:-[A-Za-z0-9]+)*$`)

// Identifier is a login that has passed Process. It is only ever built there.
type Identifier string

// String returns the identifier as a plain string
func (id Identifier) String() string {
	return string(id)
}

// Sanitize removes every character outside [A-Za-z0-9-]
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if isAlphanumeric(c) || c == '-' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Validate reports whether s is a well-formed GitHub login: 1-39 characters,
// starting with an alphanumeric, without consecutive or trailing hyphens.
func Validate(s string) bool {
	if len(s) < 1 || len(s) > MaxIdentifierLength {
		return false
	}
	return identifierPattern.MatchString(s)
}

// Process sanitizes raw input and then validates what is left. Disallowed
// characters are stripped rather than rejected, so "<script>" yields "script".
func Process(raw string) (Identifier, error) {
	sanitized := Sanitize(raw)
	if !Validate(sanitized) {
		return "", ErrInvalidIdentifier
	}
	return Identifier(sanitized), nil
}

// ValidateTheme maps the raw theme parameter to a Theme, defaulting to dark
func ValidateTheme(raw string) models.Theme {
	switch models.Theme(raw) {
	case models.ThemeLight, models.ThemeDark:
		return models.Theme(raw)
	default:
		return models.DefaultTheme
	}
}

// SafeErrorMessage returns text that can be shown to end users without
// exposing internal error details.
func SafeErrorMessage(err error) string {
	if err != nil {
		return "An error occurred while fetching data"
	}
	return "An unexpected error occurred"
}

func isAlphanumeric(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
