// Package timeparse resolves user-entered clock-time and calendar-date text
// into structured values. Entities store these fields exactly as typed, so
// the parser has to tolerate every input format the app ever accepted.
package timeparse

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrBadTime marks clock-time text no configured format matched.
	ErrBadTime = errors.New("unrecognized time")
	// ErrBadDate marks calendar-date text no configured format matched.
	ErrBadDate = errors.New("unrecognized date")
)

// clockFormats covers short localized times: 12-hour with AM/PM and plain
// 24-hour HH:MM.
var clockFormats = []string{
	"3:04 PM",
	"3:04PM",
	"15:04",
}

// dateFormats are tried in order. Longer, unambiguous month-name forms come
// first because numeric and abbreviated forms can both match the same text;
// reordering this list changes which reading wins.
var dateFormats = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"1/2/2006",
	"2006-01-02",
}

// Clock parses a short clock-time string ("9:00 AM", "14:30") into an hour
// and minute.
func Clock(text string) (hour, minute int, err error) {
	trimmed := strings.ToUpper(strings.TrimSpace(text))
	for _, layout := range clockFormats {
		t, perr := time.Parse(layout, trimmed)
		if perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrBadTime, text)
}

// Date parses calendar-date text, trying long month name, abbreviated month,
// numeric M/D/Y, then ISO Y-M-D. The first matching format wins.
func Date(text string) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	for _, layout := range dateFormats {
		t, perr := time.Parse(layout, trimmed)
		if perr == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, text)
}

// MonthDay parses date text and returns only the annual recurrence fields.
func MonthDay(text string) (month time.Month, day int, err error) {
	t, err := Date(text)
	if err != nil {
		return 0, 0, err
	}
	return t.Month(), t.Day(), nil
}
