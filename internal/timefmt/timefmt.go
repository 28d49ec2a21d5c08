// Package timefmt converts between ISO dates, day offsets and 12-hour clock
// strings. Every function that depends on the current moment takes it as a
// parameter; Clock is the only place that reads the wall clock.
package timefmt

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the timestamp format written for resolved expiration dates.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

const dateOnlyLayout = "2006-01-02"

const day = 24 * time.Hour

// DefaultTime is what FromMeridiem returns for input it cannot parse.
const DefaultTime = "10:00"

var meridiemPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(AM|PM)$`)

// Clock returns the current moment.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// FixedClock always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// Now calls c, falling back to the wall clock for a nil Clock.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// ParseISO accepts RFC3339 timestamps (with or without fractional seconds)
// and bare YYYY-MM-DD dates, which are read as midnight UTC.
func ParseISO(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("timefmt: empty date")
	}
	if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnlyLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("timefmt: parse %q: %w", value, err)
	}
	return t, nil
}

// DaysUntil counts whole UTC calendar days from now until the given date.
// Past dates are negative. Unparseable input counts as zero days.
func DaysUntil(isoDate string, now time.Time) int {
	target, err := ParseISO(isoDate)
	if err != nil {
		return 0
	}
	return daysBetween(now, target)
}

func daysBetween(from, to time.Time) int {
	a := utcMidnight(from)
	b := utcMidnight(to)
	return int(math.Ceil(float64(b.Sub(a)) / float64(day)))
}

func utcMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ExpiryLabel renders how far away an expiration date is.
func ExpiryLabel(isoDate string, now time.Time) string {
	return ExpiryLabelFromDays(DaysUntil(isoDate, now))
}

// ExpiryLabelFromDays renders an already relative day offset on the same
// Today / Tomorrow / N Days / N Weeks ladder as ExpiryLabel.
func ExpiryLabelFromDays(days int) string {
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days < 7:
		return fmt.Sprintf("%d Days", days)
	}
	weeks := int(math.Ceil(float64(days) / 7))
	if weeks == 1 {
		return "1 Week"
	}
	return fmt.Sprintf("%d Weeks", weeks)
}

// ExpiryParts splits an expiry label into the badge count and unit.
func ExpiryParts(label string) (count, unit string) {
	switch label {
	case "Today":
		return "0", "DAYS"
	case "Tomorrow":
		return "1", "DAY"
	}
	fields := strings.SplitN(strings.TrimSpace(label), " ", 2)
	if len(fields) != 2 {
		return "-", strings.ToUpper(label)
	}
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return "-", strings.ToUpper(label)
	}
	return fields[0], strings.ToUpper(strings.TrimSpace(fields[1]))
}

// RelativeLabelFromDays phrases a reminder offset for confirmation dialogs.
func RelativeLabelFromDays(days int) string {
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "1 day from now"
	}
	return fmt.Sprintf("%d days from now", days)
}

// ReminderStatus is the short status shown next to an inventory row.
func ReminderStatus(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// DaysPhrase renders "in N day(s)" style counts for the reminders list.
func DaysPhrase(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// ToMeridiem converts "HH:MM" to a 12-hour display string such as "9:05 AM".
// Input that is not two numeric fields is returned unchanged.
func ToMeridiem(time24 string) string {
	parts := strings.Split(time24, ":")
	if len(parts) != 2 {
		return time24
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time24
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time24
	}
	suffix := "AM"
	if hours >= 12 {
		suffix = "PM"
	}
	displayHour := ((hours+11)%12 + 12) % 12
	return fmt.Sprintf("%d:%02d %s", displayHour+1, minutes, suffix)
}

// FromMeridiem converts a "h:mm AM" display string back to "HH:MM".
// Anything else yields DefaultTime.
func FromMeridiem(value string) string {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	match := meridiemPattern.FindStringSubmatch(normalized)
	if match == nil {
		return DefaultTime
	}
	hour, _ := strconv.Atoi(match[1])
	minute, _ := strconv.Atoi(match[2])
	converted := hour % 12
	if match[3] == "PM" {
		converted += 12
	}
	return fmt.Sprintf("%02d:%02d", converted, minute)
}

// NormalizeTime returns a canonical "HH:MM" for valid 24-hour input and
// ok=false otherwise.
func NormalizeTime(time24 string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(time24), ":")
	if len(parts) != 2 {
		return "", false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return "", false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes), true
}

// AddDaysISO moves now forward by days calendar days, keeping the wall-clock
// time in now's location, and formats the result in UTC. Unlike DaysUntil
// there is no truncation to midnight.
func AddDaysISO(now time.Time, days int) string {
	return now.AddDate(0, 0, days).UTC().Format(ISOLayout)
}
