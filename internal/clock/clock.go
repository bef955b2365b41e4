// Package clock converts between "HH:MM" clock labels and minutes since midnight.
package clock

import (
	"errors"
	"fmt"
)

// MinutesPerDay is the length of a day in minutes.
const MinutesPerDay = 24 * 60

// ErrInvalidClock is returned for any label that is not a strict HH:MM time.
var ErrInvalidClock = errors.New("invalid clock time")

// Parse converts a strict "HH:MM" label (00:00-23:59) to minutes since midnight.
func Parse(text string) (int, error) {
	if len(text) != 5 || text[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, text)
	}
	hour, ok := twoDigits(text[0], text[1])
	if !ok || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, text)
	}
	minute, ok := twoDigits(text[3], text[4])
	if !ok || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, text)
	}
	return hour*60 + minute, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// Format renders minutes since midnight as "HH:MM". Values outside a day
// wrap around midnight.
func Format(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutes returns the label duration minutes after start.
func AddMinutes(start string, duration int) (string, error) {
	m, err := Parse(start)
	if err != nil {
		return "", err
	}
	return Format(m + duration), nil
}

// FormatDuration formats minutes as "45m", "1h" or "1h 30m".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
