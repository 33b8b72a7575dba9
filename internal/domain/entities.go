package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// NewID returns a globally unique entity id.
func NewID() string { return uuid.NewString() }

// Reminder is a user-authored daily reminder. Time holds a short localized
// clock time ("9:00 AM"); SelectedDays picks the weekdays it fires on.
type Reminder struct {
	ID           string `json:"id"`
	Time         string `json:"time"`
	Message      string `json:"message"`
	Enabled      bool   `json:"enabled"`
	SelectedDays DaySet `json:"selected_days"`
}

// reminderJSON mirrors Reminder but keeps SelectedDays optional so blobs
// written before the weekday field existed still decode.
type reminderJSON struct {
	ID           string  `json:"id"`
	Time         string  `json:"time"`
	Message      string  `json:"message"`
	Enabled      bool    `json:"enabled"`
	SelectedDays *DaySet `json:"selected_days"`
}

// UnmarshalJSON applies the legacy-schema contract: a reminder persisted
// without a weekday selection fires every day. Older app versions had no
// per-day picker, so absence means "daily", not "never".
func (r *Reminder) UnmarshalJSON(data []byte) error {
	var raw reminderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = raw.ID
	r.Time = raw.Time
	r.Message = raw.Message
	r.Enabled = raw.Enabled
	if raw.SelectedDays == nil {
		r.SelectedDays = AllDays()
	} else {
		r.SelectedDays = *raw.SelectedDays
	}
	return nil
}

// LovedOne is a remembered person with optional birthday and memorial
// (passing-date) annual reminders. Dates are kept as the user typed them.
type LovedOne struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	BirthDate               string `json:"birth_date"`
	PassingDate             string `json:"passing_date"`
	BirthdayReminderEnabled bool   `json:"birthday_reminder_enabled"`
	MemorialReminderEnabled bool   `json:"memorial_reminder_enabled"`
}

// RitualKind distinguishes the recurrence shape of a saved ritual.
type RitualKind string

const (
	RitualConnection  RitualKind = "connection"
	RitualReflection  RitualKind = "reflection"
	RitualBirthday    RitualKind = "birthday"
	RitualAnniversary RitualKind = "anniversary"
)

// Weekly reports whether the kind recurs on selected weekdays (as opposed to
// annually on a date resolved from the associated loved one).
func (k RitualKind) Weekly() bool {
	return k == RitualConnection || k == RitualReflection
}

// SavedRitual is a recurring remembrance practice. Connection and reflection
// rituals fire weekly on SelectedDays at Time; birthday and anniversary
// rituals fire annually on a date resolved from the loved one named by
// LovedOneID at schedule time.
type SavedRitual struct {
	ID           string     `json:"id"`
	Kind         RitualKind `json:"kind"`
	PersonName   string     `json:"person_name"`
	LovedOneID   string     `json:"loved_one_id"`
	Time         string     `json:"time"`
	Enabled      bool       `json:"notification_enabled"`
	SelectedDays DaySet     `json:"selected_days"`
}

type savedRitualJSON struct {
	ID           string     `json:"id"`
	Kind         RitualKind `json:"kind"`
	PersonName   string     `json:"person_name"`
	LovedOneID   string     `json:"loved_one_id"`
	Time         string     `json:"time"`
	Enabled      bool       `json:"notification_enabled"`
	SelectedDays *DaySet    `json:"selected_days"`
}

// UnmarshalJSON applies the same absent-weekdays-means-daily contract as
// Reminder.
func (r *SavedRitual) UnmarshalJSON(data []byte) error {
	var raw savedRitualJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = raw.ID
	r.Kind = raw.Kind
	r.PersonName = raw.PersonName
	r.LovedOneID = raw.LovedOneID
	r.Time = raw.Time
	r.Enabled = raw.Enabled
	if raw.SelectedDays == nil {
		r.SelectedDays = AllDays()
	} else {
		r.SelectedDays = *raw.SelectedDays
	}
	return nil
}
