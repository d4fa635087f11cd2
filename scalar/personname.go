package scalar

import "strings"

// PersonName holds the alphabetic component group of a PN value. Absent
// components are empty.
type PersonName struct {
	Family string
	Given  string
	Middle string
	Prefix string
	Suffix string
}

// ParsePersonName splits family^given^middle^prefix^suffix. Ideographic and
// phonetic groups after '=' are ignored.
func ParsePersonName(s string) PersonName {
	s = strings.TrimRight(strings.TrimSpace(s), "\x00")
	alphabetic, _, _ := strings.Cut(s, "=")

	var parts [5]string
	for i, p := range strings.SplitN(alphabetic, "^", 5) {
		parts[i] = strings.TrimSpace(p)
	}
	return PersonName{
		Family: parts[0],
		Given:  parts[1],
		Middle: parts[2],
		Prefix: parts[3],
		Suffix: parts[4],
	}
}

// IsZero reports whether no component is present.
func (p PersonName) IsZero() bool {
	return p == PersonName{}
}
