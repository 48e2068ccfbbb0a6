package parser

import (
	"regexp"
	"time"
)

// TimeFormat identifies one of the calendar pattern families a grammar's
// timestamp field may use.
type TimeFormat int

const (
	// TimeSeconds is yyyy/MM/dd hh:mm:ss.
	TimeSeconds TimeFormat = iota
	// TimeMillis is yyyy/MM/dd hh:mm:ss.SSS.
	TimeMillis
	// TimeShortYear is yy/MM/dd hh:mm:ss, the short form used by cluster
	// and driver logs.
	TimeShortYear
)

// timeShapes pairs each family with a width check and a parse layout.
// time.Parse alone is lenient about leading zeros, so the regexp enforces
// exact field widths before parsing.
var timeShapes = map[TimeFormat]struct {
	re     *regexp.Regexp
	layout string
}{
	TimeSeconds: {
		re:     regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}$`),
		layout: "2006/01/02 15:04:05",
	},
	TimeMillis: {
		re:     regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\.\d{3}$`),
		layout: "2006/01/02 15:04:05.000",
	},
	TimeShortYear: {
		re:     regexp.MustCompile(`^\d{2}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}$`),
		layout: "06/01/02 15:04:05",
	},
}

// NormalizeTimestamp parses text against exactly one pattern family.
// Text that misses the family's field widths, or whose fields are out of
// calendar range (month 13, day 99), reports false. Failure never yields a
// substitute instant; callers must not fall back to "now" or epoch.
func NormalizeTimestamp(text string, format TimeFormat) (time.Time, bool) {
	shape, ok := timeShapes[format]
	if !ok {
		return time.Time{}, false
	}
	if !shape.re.MatchString(text) {
		return time.Time{}, false
	}
	t, err := time.Parse(shape.layout, text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
