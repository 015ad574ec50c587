package ageverify

import (
	"fmt"
	"time"
)

// AdultAge is the minimum age for purchasing restricted products.
const AdultAge = 18

// BirthDateLayout is the wire format accepted for birth dates.
const BirthDateLayout = "2006-01-02"

// Age returns the completed calendar years between birthDate and today.
// The birthday itself counts: someone born 2000-01-01 turns 18 on 2018-01-01,
// not the day after.
func Age(birthDate, today time.Time) int {
	birthDate = birthDate.UTC()
	today = today.UTC()

	years := today.Year() - birthDate.Year()
	anniversary := time.Date(today.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, time.UTC)
	if today.Before(anniversary) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// IsAdult reports whether the person is at least AdultAge years old today.
func IsAdult(birthDate, today time.Time) bool {
	return Age(birthDate, today) >= AdultAge
}

// ParseBirthDate parses a YYYY-MM-DD birth date and rejects future dates.
func ParseBirthDate(value string, today time.Time) (time.Time, error) {
	parsed, err := time.Parse(BirthDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birth date %q: %w", value, err)
	}
	if parsed.After(today) {
		return time.Time{}, fmt.Errorf("birth date %q is in the future", value)
	}
	return parsed, nil
}
