// Package ics exports memorial dates as an iCalendar file so users can
// overlay them on an external calendar.
package ics

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"solace/internal/domain"
	"solace/internal/timeparse"
)

const productID = "-//solace//memorial-dates//EN"

// Export writes one yearly-recurring all-day event per enabled birthday and
// memorial date. Dates that fail to parse are skipped, matching the
// scheduler's own policy.
func Export(w io.Writer, lovedOnes []domain.LovedOne, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	count := 0
	for _, lo := range lovedOnes {
		if lo.BirthdayReminderEnabled {
			if ev, ok := annualEvent(lo, lo.BirthDate, fmt.Sprintf("%s's Birthday", lo.Name), "birthday", log); ok {
				cal.Children = append(cal.Children, ev)
				count++
			}
		}
		if lo.MemorialReminderEnabled {
			if ev, ok := annualEvent(lo, lo.PassingDate, fmt.Sprintf("Remembering %s", lo.Name), "memorial", log); ok {
				cal.Children = append(cal.Children, ev)
				count++
			}
		}
	}
	if count == 0 {
		// The encoder rejects an empty VCALENDAR; no dates means no file.
		log.Debug("calendar export skipped, nothing to write")
		return nil
	}
	log.Debug("calendar export built", slog.Int("events", count))

	return ical.NewEncoder(w).Encode(cal)
}

func annualEvent(lo domain.LovedOne, dateText, summary, occasion string, log *slog.Logger) (*ical.Component, bool) {
	date, err := timeparse.Date(dateText)
	if err != nil {
		log.Warn("export skipped, date did not parse",
			slog.String("loved_one", lo.ID),
			slog.String("occasion", occasion),
			slog.String("date", dateText))
		return nil, false
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, occasion+"-"+lo.ID)
	ev.Props.SetText(ical.PropSummary, summary)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ev.Props.SetDate(ical.PropDateTimeStart, date)

	ev.Props.SetRecurrenceRule(&rrule.ROption{Freq: rrule.YEARLY})

	return ev.Component, true
}
