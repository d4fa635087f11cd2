// Package scalar converts raw DICOM attribute text into normalized values:
// ages in fractional years, ISO-8601 dates and times, and person name
// components.
package scalar

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidAge is returned for age strings that cannot be decoded.
	ErrInvalidAge = errors.New("invalid age string")

	// ErrInvalidDate is returned for malformed DA values and the date part of DT values.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTime is returned for malformed TM values and the time part of DT values.
	ErrInvalidTime = errors.New("invalid time")
)

const daysPerYear = 365.25

// AgeToYears converts an AS value such as "003D" or "010Y" into years.
// Only the first four bytes are considered; the last of those is the unit.
func AgeToYears(s string) (float64, error) {
	if len(s) > 4 {
		s = s[:4]
	}
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q is too short", ErrInvalidAge, s)
	}

	num, unit := s[:len(s)-1], s[len(s)-1]
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse numeric value %q", ErrInvalidAge, num)
	}

	switch unit {
	case 'D', 'd':
		return value / daysPerYear, nil
	case 'W', 'w':
		return value * 7 / daysPerYear, nil
	case 'M', 'm':
		return value / 12, nil
	case 'Y', 'y':
		return value, nil
	default:
		return 0, fmt.Errorf("%w: unit %q must be D, W, M or Y", ErrInvalidAge, unit)
	}
}
