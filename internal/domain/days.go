package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DaySet is a weekday-selection set stored as a 7-bit mask, bit 0 = Sunday
// through bit 6 = Saturday. The fixed width makes the "all days" and
// "no days" states exhaustive instead of open-ended.
type DaySet uint8

const allDaysMask DaySet = 0x7f

// AllDays selects every weekday, Sunday through Saturday.
func AllDays() DaySet { return allDaysMask }

// NoDays selects nothing.
func NoDays() DaySet { return 0 }

// DaysOf builds a set from weekday numbers; values outside 0..6 are ignored.
func DaysOf(days ...int) DaySet {
	var s DaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

func (s DaySet) Has(day int) bool {
	if day < 0 || day > 6 {
		return false
	}
	return s&(1<<uint(day)) != 0
}

func (s DaySet) Add(day int) DaySet {
	if day < 0 || day > 6 {
		return s
	}
	return s | 1<<uint(day)
}

func (s DaySet) Remove(day int) DaySet {
	if day < 0 || day > 6 {
		return s
	}
	return s &^ (1 << uint(day))
}

// Days returns the selected weekdays in ascending order (Sunday first).
func (s DaySet) Days() []int {
	out := make([]int, 0, 7)
	for d := 0; d <= 6; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s DaySet) Count() int {
	n := 0
	for d := 0; d <= 6; d++ {
		if s.Has(d) {
			n++
		}
	}
	return n
}

func (s DaySet) IsEmpty() bool { return s&allDaysMask == 0 }

func (s DaySet) String() string {
	if s&allDaysMask == allDaysMask {
		return "every day"
	}
	if s.IsEmpty() {
		return "no days"
	}
	names := ""
	for d := 0; d <= 6; d++ {
		if !s.Has(d) {
			continue
		}
		if names != "" {
			names += ","
		}
		names += time.Weekday(d).String()[:3]
	}
	return names
}

// MarshalJSON encodes the set as a sorted array of weekday numbers, matching
// the persisted entity schema.
func (s DaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Days())
}

// UnmarshalJSON decodes an array of weekday numbers. Out-of-range values are
// rejected rather than dropped so corrupt blobs surface during load.
func (s *DaySet) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	var set DaySet
	for _, d := range days {
		if d < 0 || d > 6 {
			return fmt.Errorf("weekday %d out of range 0..6", d)
		}
		set = set.Add(d)
	}
	*s = set
	return nil
}
