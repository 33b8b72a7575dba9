package alerts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"solace/internal/domain"
	"solace/internal/timeparse"
)

// defaultAnnualHour is when annual memorial and ritual alerts fire when no
// usable time-of-day exists on the entity.
const (
	defaultAnnualHour   = 9
	defaultAnnualMinute = 0
)

// Resolver looks up the loved one a birthday/anniversary ritual is tied to.
// It returns false when no such entity exists anymore.
type Resolver func(lovedOneID string) (domain.LovedOne, bool)

// Coordinator orchestrates scheduling and cancellation against the
// notification store. It is the subsystem's sole store writer. Multi-step
// operations sequence their store calls, so cancellation always completes
// before re-scheduling within one call.
type Coordinator struct {
	gate  Gate
	store Store
	log   *slog.Logger
}

// NewCoordinator builds a coordinator. log may be nil.
func NewCoordinator(gate Gate, store Store, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{gate: gate, store: store, log: log}
}

// AuthorizationStatus passes the gate's current state through.
func (c *Coordinator) AuthorizationStatus(ctx context.Context) AuthStatus {
	return c.gate.Status(ctx)
}

// RequestAuthorization passes an explicit authorization request through.
func (c *Coordinator) RequestAuthorization(ctx context.Context) (bool, error) {
	return c.gate.Request(ctx)
}

// authorized gates a scheduling attempt. A not-yet-determined state triggers
// one request; anything but a grant means the attempt is silently skipped.
func (c *Coordinator) authorized(ctx context.Context) bool {
	switch c.gate.Status(ctx) {
	case AuthAuthorized:
		return true
	case AuthNotDetermined:
		granted, err := c.gate.Request(ctx)
		if err != nil {
			c.log.Warn("authorization request failed", slog.Any("err", err))
			return false
		}
		return granted
	default:
		return false
	}
}

// ScheduleReminder adds one pending alert per selected weekday. Per-weekday
// add failures are independent; one failing add does not roll back siblings.
func (c *Coordinator) ScheduleReminder(ctx context.Context, r domain.Reminder) Result {
	if !r.Enabled {
		return Result{Outcome: OutcomeDisabled}
	}
	if !c.authorized(ctx) {
		c.log.Debug("reminder skipped, not authorized", slog.String("reminder", r.ID))
		return Result{Outcome: OutcomePermissionDenied}
	}
	hour, minute, err := timeparse.Clock(r.Time)
	if err != nil {
		c.log.Warn("reminder time did not parse", slog.String("reminder", r.ID), slog.String("time", r.Time))
		return Result{Outcome: OutcomeParseFailure}
	}

	content := Content{
		Title:    "Gentle Reminder",
		Body:     r.Message,
		Category: CategoryReminder,
		Payload:  map[string]string{"entity_id": r.ID, "kind": string(KindReminder)},
	}
	return c.addWeekly(ctx, KindReminder, r.ID, r.SelectedDays, hour, minute, content)
}

// CancelReminder removes every alert the reminder could own across all seven
// weekdays. Identifiers that were never scheduled are ignored by the store.
func (c *Coordinator) CancelReminder(ctx context.Context, r domain.Reminder) Result {
	return c.removeIdentifiers(ctx, allWeekdayIdentifiers(KindReminder, r.ID))
}

// RescheduleAllReminders cancels every reminder-kind alert, then schedules
// each enabled reminder in order. The bulk cancellation completes before the
// first add is issued, so no transient duplicates exist.
func (c *Coordinator) RescheduleAllReminders(ctx context.Context, reminders []domain.Reminder) Result {
	total := c.cancelByPrefix(ctx, KindReminder.Prefix())
	for _, r := range reminders {
		if !r.Enabled {
			continue
		}
		res := c.ScheduleReminder(ctx, r)
		total.Added += res.Added
		total.Failed += res.Failed
	}
	if total.Added > 0 {
		total.Outcome = OutcomeScheduled
	} else if total.Failed > 0 {
		total.Outcome = OutcomeStoreFailure
	} else {
		total.Outcome = OutcomeNothingToDo
	}
	c.log.Debug("reminder sweep finished",
		slog.Int("reminders", len(reminders)),
		slog.Int("added", total.Added),
		slog.Int("removed", total.Removed),
		slog.Int("failed", total.Failed))
	return total
}

// ScheduleMemorial adds the single annual alert for a loved one's birthday or
// memorial date. occasion must be KindBirthday or KindMemorial.
func (c *Coordinator) ScheduleMemorial(ctx context.Context, lo domain.LovedOne, occasion Kind) Result {
	var enabled bool
	var dateText string
	switch occasion {
	case KindBirthday:
		enabled, dateText = lo.BirthdayReminderEnabled, lo.BirthDate
	case KindMemorial:
		enabled, dateText = lo.MemorialReminderEnabled, lo.PassingDate
	default:
		c.log.Warn("not a memorial occasion", slog.String("kind", string(occasion)))
		return Result{Outcome: OutcomeNothingToDo}
	}
	if !enabled {
		return Result{Outcome: OutcomeDisabled}
	}
	if !c.authorized(ctx) {
		c.log.Debug("memorial skipped, not authorized", slog.String("loved_one", lo.ID))
		return Result{Outcome: OutcomePermissionDenied}
	}
	month, day, err := timeparse.MonthDay(dateText)
	if err != nil {
		c.log.Warn("memorial date did not parse",
			slog.String("loved_one", lo.ID),
			slog.String("occasion", string(occasion)),
			slog.String("date", dateText))
		return Result{Outcome: OutcomeParseFailure}
	}

	trigger := ExpandAnnual(month, day, defaultAnnualHour, defaultAnnualMinute)
	id := Identifier(occasion, lo.ID)
	if err := c.store.Add(ctx, id, trigger, memorialContent(lo, occasion)); err != nil {
		c.log.Warn("memorial add failed", slog.String("identifier", id), slog.Any("err", err))
		return Result{Outcome: OutcomeStoreFailure, Failed: 1}
	}
	return Result{Outcome: OutcomeScheduled, Added: 1}
}

// CancelMemorial removes the single alert for the (occasion, loved one) pair.
func (c *Coordinator) CancelMemorial(ctx context.Context, lo domain.LovedOne, occasion Kind) Result {
	return c.removeIdentifiers(ctx, []string{Identifier(occasion, lo.ID)})
}

// ScheduleRitual schedules a ritual's alerts. Connection and reflection
// rituals expand their weekday selection like reminders; birthday and
// anniversary rituals resolve their date from the associated loved one and
// silently fall back to zero alerts when the entity is gone or its date does
// not parse.
func (c *Coordinator) ScheduleRitual(ctx context.Context, ritual domain.SavedRitual, resolve Resolver) Result {
	if !ritual.Enabled {
		return Result{Outcome: OutcomeDisabled}
	}
	if !c.authorized(ctx) {
		c.log.Debug("ritual skipped, not authorized", slog.String("ritual", ritual.ID))
		return Result{Outcome: OutcomePermissionDenied}
	}

	if ritual.Kind.Weekly() {
		hour, minute, err := timeparse.Clock(ritual.Time)
		if err != nil {
			c.log.Warn("ritual time did not parse", slog.String("ritual", ritual.ID), slog.String("time", ritual.Time))
			return Result{Outcome: OutcomeParseFailure}
		}
		return c.addWeekly(ctx, KindRitual, ritual.ID, ritual.SelectedDays, hour, minute, ritualContent(ritual))
	}

	if resolve == nil {
		c.log.Debug("ritual has no loved-one resolver", slog.String("ritual", ritual.ID))
		return Result{Outcome: OutcomeNothingToDo}
	}
	lo, ok := resolve(ritual.LovedOneID)
	if !ok {
		c.log.Debug("ritual loved one not found", slog.String("ritual", ritual.ID), slog.String("loved_one", ritual.LovedOneID))
		return Result{Outcome: OutcomeNothingToDo}
	}
	dateText := lo.BirthDate
	if ritual.Kind == domain.RitualAnniversary {
		dateText = lo.PassingDate
	}
	month, day, err := timeparse.MonthDay(dateText)
	if err != nil {
		c.log.Warn("ritual date did not parse",
			slog.String("ritual", ritual.ID),
			slog.String("kind", string(ritual.Kind)),
			slog.String("date", dateText))
		return Result{Outcome: OutcomeParseFailure}
	}
	hour, minute := defaultAnnualHour, defaultAnnualMinute
	if h, m, terr := timeparse.Clock(ritual.Time); terr == nil {
		hour, minute = h, m
	}

	trigger := ExpandAnnual(month, day, hour, minute)
	id := Identifier(KindRitual, ritual.ID)
	if err := c.store.Add(ctx, id, trigger, ritualContent(ritual)); err != nil {
		c.log.Warn("ritual add failed", slog.String("identifier", id), slog.Any("err", err))
		return Result{Outcome: OutcomeStoreFailure, Failed: 1}
	}
	return Result{Outcome: OutcomeScheduled, Added: 1}
}

// CancelRitual removes everything the ritual could own: the annual
// identifier plus all seven weekday-suffixed ones.
func (c *Coordinator) CancelRitual(ctx context.Context, ritual domain.SavedRitual) Result {
	ids := append([]string{Identifier(KindRitual, ritual.ID)}, allWeekdayIdentifiers(KindRitual, ritual.ID)...)
	return c.removeIdentifiers(ctx, ids)
}

// UpdateRitual cancels then reschedules in one call, covering enable/disable
// toggles and weekday edits. From the caller's perspective it is atomic; the
// cancel completes before any add is issued.
func (c *Coordinator) UpdateRitual(ctx context.Context, ritual domain.SavedRitual, resolve Resolver) Result {
	canceled := c.CancelRitual(ctx, ritual)
	if !ritual.Enabled {
		return Result{Outcome: OutcomeCanceled, Removed: canceled.Removed}
	}
	res := c.ScheduleRitual(ctx, ritual, resolve)
	res.Removed += canceled.Removed
	return res
}

// addWeekly expands the weekday selection and issues one add per day,
// tolerating per-day failures.
func (c *Coordinator) addWeekly(ctx context.Context, kind Kind, entityID string, days domain.DaySet, hour, minute int, content Content) Result {
	selected := days.Days()
	triggers := ExpandWeekly(days, hour, minute)
	if len(triggers) == 0 {
		c.log.Debug("empty weekday selection", slog.String("kind", string(kind)), slog.String("entity", entityID))
		return Result{Outcome: OutcomeNothingToDo}
	}

	var res Result
	for i, trigger := range triggers {
		id := WeekdayIdentifier(kind, entityID, selected[i])
		if err := c.store.Add(ctx, id, trigger, content); err != nil {
			c.log.Warn("alert add failed", slog.String("identifier", id), slog.Any("err", err))
			res.Failed++
			continue
		}
		res.Added++
	}
	switch {
	case res.Added > 0:
		res.Outcome = OutcomeScheduled
	default:
		res.Outcome = OutcomeStoreFailure
	}
	return res
}

// removeIdentifiers is the shared cancellation path. It never consults the
// authorization gate. Removed counts the alerts that actually existed;
// cancellation covers every identifier the entity could occupy, most of which
// usually do not exist, and removing those stays a no-op.
func (c *Coordinator) removeIdentifiers(ctx context.Context, ids []string) Result {
	removed := 0
	if pending, err := c.store.Pending(ctx); err == nil {
		present := make(map[string]struct{}, len(pending))
		for _, p := range pending {
			present[p.Identifier] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := present[id]; ok {
				removed++
			}
		}
	}
	if err := c.store.Remove(ctx, ids); err != nil {
		c.log.Warn("alert remove failed", slog.Int("identifiers", len(ids)), slog.Any("err", err))
		return Result{Outcome: OutcomeStoreFailure}
	}
	return Result{Outcome: OutcomeCanceled, Removed: removed}
}

// cancelByPrefix enumerates the pending set and removes every alert whose
// identifier lives in the kind's namespace. The enumeration is a point-in-time
// snapshot; because the coordinator awaits it before issuing adds, a sweep
// never races its own re-scheduling.
func (c *Coordinator) cancelByPrefix(ctx context.Context, prefix string) Result {
	pending, err := c.store.Pending(ctx)
	if err != nil {
		c.log.Warn("pending enumeration failed", slog.String("prefix", prefix), slog.Any("err", err))
		return Result{Outcome: OutcomeStoreFailure}
	}
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		if strings.HasPrefix(p.Identifier, prefix) {
			ids = append(ids, p.Identifier)
		}
	}
	if len(ids) == 0 {
		return Result{Outcome: OutcomeNothingToDo}
	}
	return c.removeIdentifiers(ctx, ids)
}

func memorialContent(lo domain.LovedOne, occasion Kind) Content {
	content := Content{
		Category: CategoryMemorial,
		Payload:  map[string]string{"entity_id": lo.ID, "kind": string(occasion)},
	}
	if occasion == KindBirthday {
		content.Title = fmt.Sprintf("%s's Birthday", lo.Name)
		content.Body = fmt.Sprintf("Today is %s's birthday. Take a moment to celebrate their life.", lo.Name)
	} else {
		content.Title = fmt.Sprintf("Remembering %s", lo.Name)
		content.Body = fmt.Sprintf("Today marks %s's memorial. Be gentle with yourself.", lo.Name)
	}
	return content
}

func ritualContent(ritual domain.SavedRitual) Content {
	var title string
	switch ritual.Kind {
	case domain.RitualConnection:
		title = "Connection Ritual"
	case domain.RitualReflection:
		title = "Reflection Ritual"
	case domain.RitualBirthday:
		title = "Birthday Ritual"
	default:
		title = "Anniversary Ritual"
	}
	body := "Time for your ritual."
	if ritual.PersonName != "" {
		body = fmt.Sprintf("Time for your ritual for %s.", ritual.PersonName)
	}
	return Content{
		Title:    title,
		Body:     body,
		Category: CategoryRitual,
		Payload:  map[string]string{"entity_id": ritual.ID, "kind": string(KindRitual)},
	}
}
