package family

import (
	"regexp"
	"strconv"
)

// UnknownYear is the sentinel returned for missing or unparseable dates.
// It is larger than any real year so unknown dates sort last.
const UnknownYear = 9999

var yearRe = regexp.MustCompile(`\d{3,4}`)

// ParseYear extracts a year from a free-form date string such as
// "1901-03-12", "12 MAR 1901" or "abt. 1850". The first run of three or
// four digits wins. Empty or unparseable input yields [UnknownYear].
func ParseYear(date string) int {
	m := yearRe.FindString(date)
	if m == "" {
		return UnknownYear
	}
	y, err := strconv.Atoi(m)
	if err != nil || y <= 0 {
		return UnknownYear
	}
	return y
}

// KnownYear reports whether y is a real year rather than [UnknownYear].
func KnownYear(y int) bool { return y != UnknownYear }
