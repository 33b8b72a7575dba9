package alerts

import (
	"time"

	"solace/internal/domain"
)

// platformWeekdayOffset converts the internal weekday encoding (0=Sunday..
// 6=Saturday) to the platform's 1-based encoding (1=Sunday..7=Saturday).
// This is the single mapping point; a substrate with a different weekday base
// adjusts only this constant.
const platformWeekdayOffset = 1

// ExpandWeekly produces one repeating trigger per selected weekday, in
// ascending weekday order (matching domain.DaySet.Days). An empty selection
// yields an empty list, which is a legal, silent state.
func ExpandWeekly(days domain.DaySet, hour, minute int) []TriggerSpec {
	selected := days.Days()
	specs := make([]TriggerSpec, 0, len(selected))
	for _, d := range selected {
		specs = append(specs, TriggerSpec{
			Weekday: d + platformWeekdayOffset,
			Hour:    hour,
			Minute:  minute,
			Repeats: true,
		})
	}
	return specs
}

// ExpandAnnual produces a single trigger firing once per year on the given
// month and day, regardless of weekday.
func ExpandAnnual(month time.Month, day, hour, minute int) TriggerSpec {
	return TriggerSpec{
		Month:   month,
		Day:     day,
		Hour:    hour,
		Minute:  minute,
		Repeats: true,
	}
}
