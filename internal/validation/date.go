package validation

import (
	"errors"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// ParseDate accepts the date formats the sign-up and profile forms submit.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("date is required")
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, errors.New("invalid date format")
}

func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// ValidateDateOfBirth rejects dates in the future and implausibly old ones.
func ValidateDateOfBirth(s string) (time.Time, error) {
	dob, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}

	now := time.Now().UTC()
	if dob.After(now) {
		return time.Time{}, errors.New("date of birth cannot be in the future")
	}
	if dob.Before(now.AddDate(-150, 0, 0)) {
		return time.Time{}, errors.New("date of birth is too far in the past")
	}

	return dob, nil
}
