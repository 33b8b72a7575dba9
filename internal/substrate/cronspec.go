package substrate

import (
	"fmt"

	"solace/internal/alerts"
)

// cronSpec converts a trigger into a 5-field cron expression. Triggers carry
// the platform's 1-based weekday encoding (1=Sunday..7=Saturday), cron wants
// 0-based (0=Sunday..6=Saturday); this subtraction is the only place the two
// encodings meet.
func cronSpec(t alerts.TriggerSpec) (string, error) {
	if err := validateTrigger(t); err != nil {
		return "", err
	}
	if t.Annual() {
		return fmt.Sprintf("%d %d %d %d *", t.Minute, t.Hour, t.Day, int(t.Month)), nil
	}
	return fmt.Sprintf("%d %d * * %d", t.Minute, t.Hour, t.Weekday-1), nil
}

func validateTrigger(t alerts.TriggerSpec) error {
	if !t.Repeats {
		return fmt.Errorf("trigger must repeat")
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("invalid time %02d:%02d", t.Hour, t.Minute)
	}
	if t.Annual() {
		if t.Month < 1 || t.Month > 12 || t.Day < 1 || t.Day > 31 {
			return fmt.Errorf("invalid annual date %d/%d", int(t.Month), t.Day)
		}
		return nil
	}
	if t.Weekday < 1 || t.Weekday > 7 {
		return fmt.Errorf("invalid platform weekday %d", t.Weekday)
	}
	if t.Month != 0 || t.Day != 0 {
		return fmt.Errorf("weekly trigger carries annual fields")
	}
	return nil
}
