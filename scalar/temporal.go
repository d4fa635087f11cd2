package scalar

import (
	"fmt"
	"strconv"
	"strings"
)

// Date is a DA value with optional month and day precision.
type Date struct {
	Year  int
	Month int // 0 when absent
	Day   int // 0 when absent
}

// Time is a TM value with optional minute, second and fraction precision.
type Time struct {
	Hour   int
	Minute int // -1 when absent
	Second int // -1 when absent
	// Fraction holds the digits after the decimal point as written, "" when
	// absent.
	Fraction string
}

// Zone is a UTC offset in minutes.
type Zone struct {
	Minutes int
}

// DateTime is a DT value. Time and Zone are nil when absent.
type DateTime struct {
	Date Date
	Time *Time
	Zone *Zone
}

// ParseDate parses YYYY, YYYYMM or YYYYMMDD.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	switch len(s) {
	case 4, 6, 8:
	default:
		return Date{}, fmt.Errorf("%w: %q has length %d", ErrInvalidDate, s, len(s))
	}

	var d Date
	var err error
	if d.Year, err = digits(s[0:4]); err != nil {
		return Date{}, fmt.Errorf("%w: year of %q", ErrInvalidDate, s)
	}
	if len(s) >= 6 {
		if d.Month, err = digits(s[4:6]); err != nil || d.Month < 1 || d.Month > 12 {
			return Date{}, fmt.Errorf("%w: month of %q", ErrInvalidDate, s)
		}
	}
	if len(s) == 8 {
		if d.Day, err = digits(s[6:8]); err != nil || d.Day < 1 || d.Day > daysIn(d.Year, d.Month) {
			return Date{}, fmt.Errorf("%w: day of %q", ErrInvalidDate, s)
		}
	}
	return d, nil
}

// ISO renders YYYY, YYYY-MM or YYYY-MM-DD.
func (d Date) ISO() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04d", d.Year)
	if d.Month > 0 {
		fmt.Fprintf(&sb, "-%02d", d.Month)
		if d.Day > 0 {
			fmt.Fprintf(&sb, "-%02d", d.Day)
		}
	}
	return sb.String()
}

// ParseTime parses HH, HHMM, HHMMSS and HHMMSS.F up to six fraction digits.
// The legacy HH:MM:SS form is accepted as well.
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		s = strings.ReplaceAll(s, ":", "")
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	t := Time{Minute: -1, Second: -1}
	var err error

	switch len(whole) {
	case 2, 4, 6:
	default:
		return Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if t.Hour, err = digits(whole[0:2]); err != nil || t.Hour > 23 {
		return Time{}, fmt.Errorf("%w: hour of %q", ErrInvalidTime, s)
	}
	if len(whole) >= 4 {
		if t.Minute, err = digits(whole[2:4]); err != nil || t.Minute > 59 {
			return Time{}, fmt.Errorf("%w: minute of %q", ErrInvalidTime, s)
		}
	}
	if len(whole) == 6 {
		// 60 allows for leap seconds.
		if t.Second, err = digits(whole[4:6]); err != nil || t.Second > 60 {
			return Time{}, fmt.Errorf("%w: second of %q", ErrInvalidTime, s)
		}
	}
	if hasFrac {
		if len(whole) != 6 || len(frac) == 0 || len(frac) > 6 {
			return Time{}, fmt.Errorf("%w: fraction of %q", ErrInvalidTime, s)
		}
		if _, err := digits(frac); err != nil {
			return Time{}, fmt.Errorf("%w: fraction of %q", ErrInvalidTime, s)
		}
		t.Fraction = frac
	}
	return t, nil
}

// ISO renders HH, HH:MM, HH:MM:SS or HH:MM:SS.FFFFFF. Fractions are padded
// to microsecond precision.
func (t Time) ISO() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%02d", t.Hour)
	if t.Minute >= 0 {
		fmt.Fprintf(&sb, ":%02d", t.Minute)
		if t.Second >= 0 {
			fmt.Fprintf(&sb, ":%02d", t.Second)
			if t.Fraction != "" {
				sb.WriteByte('.')
				sb.WriteString(t.Fraction)
				sb.WriteString(strings.Repeat("0", 6-len(t.Fraction)))
			}
		}
	}
	return sb.String()
}

// ParseDateTime parses YYYY[MM[DD[HH[MM[SS[.F]]]]]][&ZZXX].
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)

	var dt DateTime
	if i := strings.IndexAny(s, "+-"); i >= 0 {
		z, err := parseZone(s[i:])
		if err != nil {
			return DateTime{}, err
		}
		dt.Zone = &z
		s = s[:i]
	}

	datePart, timePart := s, ""
	if len(s) > 8 {
		datePart, timePart = s[:8], s[8:]
	}
	d, err := ParseDate(datePart)
	if err != nil {
		return DateTime{}, err
	}
	dt.Date = d

	if timePart != "" {
		t, err := ParseTime(timePart)
		if err != nil {
			return DateTime{}, err
		}
		dt.Time = &t
	}
	return dt, nil
}

// ISO renders the date, then T and the time when present, then the offset
// when present.
func (dt DateTime) ISO() string {
	s := dt.Date.ISO()
	if dt.Time != nil {
		s += "T" + dt.Time.ISO()
	}
	if dt.Zone != nil {
		s += dt.Zone.ISO()
	}
	return s
}

// ISO renders the offset as ±HH:MM.
func (z Zone) ISO() string {
	sign, m := '+', z.Minutes
	if m < 0 {
		sign, m = '-', -m
	}
	return fmt.Sprintf("%c%02d:%02d", sign, m/60, m%60)
}

func parseZone(s string) (Zone, error) {
	if len(s) != 5 {
		return Zone{}, fmt.Errorf("%w: offset %q", ErrInvalidTime, s)
	}
	hh, err := digits(s[1:3])
	if err != nil || hh > 14 {
		return Zone{}, fmt.Errorf("%w: offset %q", ErrInvalidTime, s)
	}
	mm, err := digits(s[3:5])
	if err != nil || mm > 59 {
		return Zone{}, fmt.Errorf("%w: offset %q", ErrInvalidTime, s)
	}
	minutes := hh*60 + mm
	if s[0] == '-' {
		minutes = -minutes
	}
	return Zone{Minutes: minutes}, nil
}

// digits parses an unsigned decimal made of ASCII digits only.
func digits(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("non-digit in %q", s)
		}
	}
	return strconv.Atoi(s)
}

func daysIn(year, month int) int {
	switch month {
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}
