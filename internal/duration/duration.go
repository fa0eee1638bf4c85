// Package duration parses the borrow-period strings accepted when lending an item.
//
// Three grammars are tried in order, first match wins:
//
//	2024-01-01 to 2024-01-10   explicit date range, due at the end date
//	P14D, PT48H, P48H          restricted ISO-8601 duration
//	10 days, 2 w, 36 hours     shorthand with day/week/hour units
package duration

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"libranet/internal/liberr"
)

const dateLayout = "2006-01-02"

var (
	rangeRx     = regexp.MustCompile(`(?i)(\d{4}-\d{2}-\d{2})\s+to\s+(\d{4}-\d{2}-\d{2})`)
	isoDaysRx   = regexp.MustCompile(`(?i)^P(\d+)D$`)
	isoHoursRx  = regexp.MustCompile(`(?i)^PT?(\d+)H$`)
	shorthandRx = regexp.MustCompile(`(?i)^\s*(\d+)\s*(days?|d|weeks?|w|hours?|h)\s*$`)
)

// maxHours keeps hour counts within time.Duration range.
const maxHours = math.MaxInt64 / int64(time.Hour)

// Duration is a parsed borrow period: either an absolute end date or a span
// relative to the borrow start.
type Duration struct {
	explicitEnd bool
	end         time.Time
	relative    time.Duration
}

// Parse parses input, reading date ranges in the local time zone.
func Parse(input string) (Duration, error) {
	return ParseIn(input, time.Local)
}

// ParseIn parses input, reading date ranges in loc.
func ParseIn(input string, loc *time.Location) (Duration, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Duration{}, liberr.InvalidInput("empty duration string")
	}

	if m := rangeRx.FindStringSubmatch(s); m != nil {
		return parseRange(m[1], m[2], loc)
	}

	if m := isoDaysRx.FindStringSubmatch(s); m != nil {
		return relativeHours(m[1], 24)
	}
	if m := isoHoursRx.FindStringSubmatch(s); m != nil {
		return relativeHours(m[1], 1)
	}

	if m := shorthandRx.FindStringSubmatch(s); m != nil {
		unit := strings.ToLower(m[2])
		switch {
		case strings.HasPrefix(unit, "w"):
			return relativeHours(m[1], 24*7)
		case strings.HasPrefix(unit, "d"):
			return relativeHours(m[1], 24)
		case strings.HasPrefix(unit, "h"):
			return relativeHours(m[1], 1)
		default:
			return Duration{}, liberr.InvalidInput("unsupported duration unit %q", m[2])
		}
	}

	return Duration{}, liberr.InvalidInput(
		"unsupported duration format %q; supported: '10 days', '2 weeks', 'P14D', 'PT48H', 'YYYY-MM-DD to YYYY-MM-DD'", s)
}

func parseRange(startText, endText string, loc *time.Location) (Duration, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation(dateLayout, startText, loc)
	if err != nil {
		return Duration{}, liberr.InvalidInput("invalid date format in range: %q", startText)
	}
	end, err := time.ParseInLocation(dateLayout, endText, loc)
	if err != nil {
		return Duration{}, liberr.InvalidInput("invalid date format in range: %q", endText)
	}
	if !end.After(start) {
		return Duration{}, liberr.InvalidInput("end date must be after start date")
	}
	return Duration{explicitEnd: true, end: end}, nil
}

func relativeHours(count string, hoursPerUnit int64) (Duration, error) {
	n, err := strconv.ParseInt(count, 10, 64)
	if err != nil || n > maxHours/hoursPerUnit {
		return Duration{}, liberr.InvalidInput("duration %s is out of range", count)
	}
	return Duration{relative: time.Duration(n*hoursPerUnit) * time.Hour}, nil
}

// DueAt returns the due timestamp for a borrow starting at start. A date range
// ignores start and returns its end date.
func (d Duration) DueAt(start time.Time) time.Time {
	if d.explicitEnd {
		return d.end
	}
	return start.Add(d.relative)
}

// IsRange reports whether d came from an explicit date range.
func (d Duration) IsRange() bool { return d.explicitEnd }

// Relative returns the relative span; zero for date ranges.
func (d Duration) Relative() time.Duration { return d.relative }
