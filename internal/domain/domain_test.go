package domain

import (
	"encoding/json"
	"testing"
)

func TestDaySetBasics(t *testing.T) {
	t.Parallel()
	s := DaysOf(1, 3, 5)
	if s.Count() != 3 {
		t.Fatalf("Count = %d, want 3", s.Count())
	}
	if !s.Has(3) || s.Has(0) {
		t.Fatalf("membership wrong: %v", s.Days())
	}
	s = s.Remove(3).Add(0)
	want := []int{0, 1, 5}
	got := s.Days()
	if len(got) != len(want) {
		t.Fatalf("Days = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Days = %v, want %v", got, want)
		}
	}
}

func TestDaySetIgnoresOutOfRange(t *testing.T) {
	t.Parallel()
	s := NoDays().Add(-1).Add(7).Add(2)
	if s.Count() != 1 || !s.Has(2) {
		t.Fatalf("unexpected set %v", s.Days())
	}
}

func TestDaySetJSONRoundTrip(t *testing.T) {
	t.Parallel()
	s := DaysOf(0, 6)
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[0,6]" {
		t.Fatalf("marshal = %s, want [0,6]", b)
	}
	var back DaySet
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != s {
		t.Fatalf("round trip mismatch: %v != %v", back.Days(), s.Days())
	}
}

func TestDaySetRejectsOutOfRangeJSON(t *testing.T) {
	t.Parallel()
	var s DaySet
	if err := json.Unmarshal([]byte("[0,9]"), &s); err == nil {
		t.Fatal("expected error for weekday 9")
	}
}

func TestReminderLegacyDecodeDefaultsToAllDays(t *testing.T) {
	t.Parallel()
	// Blob written before the per-day picker existed: no selected_days field.
	raw := `{"id":"r1","time":"9:00 AM","message":"morning walk","enabled":true}`
	var r Reminder
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.SelectedDays != AllDays() {
		t.Fatalf("SelectedDays = %v, want all seven days", r.SelectedDays.Days())
	}
	if r.Message != "morning walk" || !r.Enabled {
		t.Fatalf("unexpected decode: %+v", r)
	}
}

func TestReminderExplicitDaysPreserved(t *testing.T) {
	t.Parallel()
	raw := `{"id":"r2","time":"2:30 PM","message":"x","enabled":true,"selected_days":[1,3]}`
	var r Reminder
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.SelectedDays != DaysOf(1, 3) {
		t.Fatalf("SelectedDays = %v, want [1 3]", r.SelectedDays.Days())
	}
}

func TestReminderEmptyDaysStaysEmpty(t *testing.T) {
	t.Parallel()
	// An explicit empty selection is a legal "no days" state, not legacy data.
	raw := `{"id":"r3","time":"9:00 AM","message":"x","enabled":true,"selected_days":[]}`
	var r Reminder
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !r.SelectedDays.IsEmpty() {
		t.Fatalf("SelectedDays = %v, want empty", r.SelectedDays.Days())
	}
}

func TestSavedRitualLegacyDecode(t *testing.T) {
	t.Parallel()
	raw := `{"id":"s1","kind":"connection","person_name":"Mom","time":"8:00 PM","notification_enabled":true}`
	var r SavedRitual
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.SelectedDays != AllDays() {
		t.Fatalf("SelectedDays = %v, want all seven days", r.SelectedDays.Days())
	}
	if !r.Kind.Weekly() {
		t.Fatal("connection kind should be weekly")
	}
}

func TestRitualKindWeekly(t *testing.T) {
	t.Parallel()
	if !RitualReflection.Weekly() || RitualBirthday.Weekly() || RitualAnniversary.Weekly() {
		t.Fatal("weekly classification wrong")
	}
}
