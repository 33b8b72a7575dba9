package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"solace/internal/alerts"
	"solace/internal/domain"
	"solace/internal/ics"
	"solace/internal/storage"
)

// Blob keys for the persisted entity collections.
const (
	keyReminders = "reminders"
	keyLovedOnes = "loved_ones"
	keyRituals   = "rituals"
)

// library is the in-memory view of the persisted entity collections.
type library struct {
	Reminders []domain.Reminder
	LovedOnes []domain.LovedOne
	Rituals   []domain.SavedRitual
}

func (l library) resolver() alerts.Resolver {
	byID := make(map[string]domain.LovedOne, len(l.LovedOnes))
	for _, lo := range l.LovedOnes {
		byID[lo.ID] = lo
	}
	return func(id string) (domain.LovedOne, bool) {
		lo, ok := byID[id]
		return lo, ok
	}
}

// loadLibrary reads the entity collections from storage. Missing blobs mean
// empty collections; a malformed blob is an error so a sweep never cancels
// alerts based on a half-read library.
func loadLibrary(ctx context.Context, store storage.Store) (library, error) {
	var lib library
	if store == nil {
		return lib, nil
	}
	if err := loadBlob(ctx, store, keyReminders, &lib.Reminders); err != nil {
		return library{}, err
	}
	if err := loadBlob(ctx, store, keyLovedOnes, &lib.LovedOnes); err != nil {
		return library{}, err
	}
	if err := loadBlob(ctx, store, keyRituals, &lib.Rituals); err != nil {
		return library{}, err
	}
	return lib, nil
}

func loadBlob(ctx context.Context, store storage.Store, key string, dst any) error {
	data, ok, err := store.GetBlob(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	return nil
}

// reconcile rebuilds every alert from the persisted entities: reminders via a
// full cancel-then-add sweep, memorial dates and rituals individually. It is
// run at startup and after each config reload.
func (a *App) reconcile(ctx context.Context) {
	lib, err := loadLibrary(ctx, a.store)
	if err != nil {
		a.log.Error("reconcile skipped", slog.Any("err", err))
		return
	}

	res := a.coord.RescheduleAllReminders(ctx, lib.Reminders)
	added, failed := res.Added, res.Failed

	for _, lo := range lib.LovedOnes {
		for _, occasion := range []alerts.Kind{alerts.KindBirthday, alerts.KindMemorial} {
			r := a.coord.ScheduleMemorial(ctx, lo, occasion)
			if r.Outcome == alerts.OutcomeDisabled {
				r = a.coord.CancelMemorial(ctx, lo, occasion)
			}
			added += r.Added
			failed += r.Failed
		}
	}

	resolve := lib.resolver()
	for _, ritual := range lib.Rituals {
		r := a.coord.UpdateRitual(ctx, ritual, resolve)
		added += r.Added
		failed += r.Failed
	}

	a.log.Info("reconcile complete",
		slog.Int("reminders", len(lib.Reminders)),
		slog.Int("loved_ones", len(lib.LovedOnes)),
		slog.Int("rituals", len(lib.Rituals)),
		slog.Int("added", added),
		slog.Int("failed", failed))

	if a.exportCfg.Enabled {
		if err := a.exportCalendar(lib.LovedOnes); err != nil {
			a.log.Warn("calendar export failed", slog.Any("err", err))
		}
	}
}

func (a *App) exportCalendar(lovedOnes []domain.LovedOne) error {
	f, err := os.Create(a.exportCfg.Path)
	if err != nil {
		return err
	}
	if err := ics.Export(f, lovedOnes, a.log); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
