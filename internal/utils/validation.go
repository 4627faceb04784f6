package utils

import (
	"regexp"
	"time"

	"github.com/taskhub/task-manager-api/internal/constants"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidUsername reports whether a username is 3-32 characters of
// alphanumerics and underscores.
func ValidUsername(username string) bool {
	if len(username) < constants.MinUsernameLength || len(username) > constants.MaxUsernameLength {
		return false
	}
	return usernamePattern.MatchString(username)
}

// ValidEmail reports whether an email is present and within the column
// limit. Format beyond that is left to the mail client that uses it.
func ValidEmail(email string) bool {
	return email != "" && len(email) <= constants.MaxEmailLength
}

// ParseDate accepts plain dates and RFC3339 timestamps, truncated to the
// day in UTC so values compare exactly against the date column.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
