package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"solace/internal/alerts"
	"solace/internal/domain"
	"solace/internal/storage"
	logx "solace/pkg/logx"
)

func writeConfig(t *testing.T, dir string, cfg map[string]any) string {
	t.Helper()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func seedStore(t *testing.T, dir string, blobs map[string]any) {
	t.Helper()
	ctx := context.Background()
	st, err := storage.Open(storage.Config{Driver: "file", Path: dir}, logx.Nop())
	require.NoError(t, err)
	for key, v := range blobs {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, st.PutBlob(ctx, key, data))
	}
	require.NoError(t, st.Close())
}

func TestNewAppMissingConfig(t *testing.T) {
	t.Parallel()
	_, err := NewApp(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadLibrary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("nil store", func(t *testing.T) {
		t.Parallel()
		lib, err := loadLibrary(ctx, nil)
		require.NoError(t, err)
		require.Empty(t, lib.Reminders)
	})

	t.Run("missing blobs are empty collections", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		seedStore(t, dir, map[string]any{
			keyReminders: []domain.Reminder{{ID: "r1", Time: "9:00 AM", Enabled: true}},
		})
		st, err := storage.Open(storage.Config{Driver: "file", Path: dir}, logx.Nop())
		require.NoError(t, err)
		defer st.Close()

		lib, err := loadLibrary(ctx, st)
		require.NoError(t, err)
		require.Len(t, lib.Reminders, 1)
		require.Empty(t, lib.LovedOnes)
		require.Empty(t, lib.Rituals)
	})

	t.Run("malformed blob is an error", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		st, err := storage.Open(storage.Config{Driver: "file", Path: dir}, logx.Nop())
		require.NoError(t, err)
		defer st.Close()
		require.NoError(t, st.PutBlob(ctx, keyLovedOnes, []byte("{not json")))

		_, err = loadLibrary(ctx, st)
		require.Error(t, err)
	})
}

func TestReconcileSchedulesEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	exportPath := filepath.Join(dir, "memorials.ics")

	days := domain.DaysOf(1, 3)
	seedStore(t, dataDir, map[string]any{
		keyReminders: []domain.Reminder{
			{ID: "r1", Time: "9:00 AM", Message: "morning walk", Enabled: true, SelectedDays: days},
			{ID: "r2", Time: "8:00 PM", Message: "journal", Enabled: false, SelectedDays: domain.AllDays()},
		},
		keyLovedOnes: []domain.LovedOne{{
			ID:                      "lo1",
			Name:                    "Margaret",
			BirthDate:               "March 3, 1950",
			PassingDate:             "June 14, 2020",
			BirthdayReminderEnabled: true,
			MemorialReminderEnabled: true,
		}},
		keyRituals: []domain.SavedRitual{{
			ID:           "rt1",
			Kind:         domain.RitualConnection,
			PersonName:   "Margaret",
			LovedOneID:   "lo1",
			Time:         "7:30 PM",
			Enabled:      true,
			SelectedDays: domain.DaysOf(0),
		}},
	})

	cfgPath := writeConfig(t, dir, map[string]any{
		"storage":     map[string]any{"driver": "file", "path": dataDir},
		"permissions": map[string]any{"auto_grant": true},
		"logging":     map[string]any{"level": "error"},
		"export":      map[string]any{"enabled": true, "path": exportPath},
	})

	a, err := NewApp(cfgPath)
	require.NoError(t, err)
	a.reconcile(ctx)

	pending, err := a.sub.Pending(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.Identifier)
	}

	require.ElementsMatch(t, []string{
		alerts.WeekdayIdentifier(alerts.KindReminder, "r1", 1),
		alerts.WeekdayIdentifier(alerts.KindReminder, "r1", 3),
		alerts.Identifier(alerts.KindBirthday, "lo1"),
		alerts.Identifier(alerts.KindMemorial, "lo1"),
		alerts.WeekdayIdentifier(alerts.KindRitual, "rt1", 0),
	}, ids)

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "BEGIN:VCALENDAR"))
	require.True(t, strings.Contains(string(data), "Remembering Margaret"))

	require.NoError(t, a.Stop(ctx))
}

func TestReconcileCancelsDisabledMemorial(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")

	lo := domain.LovedOne{
		ID:                      "lo1",
		Name:                    "Thomas",
		BirthDate:               "1/5/1962",
		PassingDate:             "2021-09-30",
		BirthdayReminderEnabled: true,
		MemorialReminderEnabled: true,
	}
	seedStore(t, dataDir, map[string]any{keyLovedOnes: []domain.LovedOne{lo}})

	cfgPath := writeConfig(t, dir, map[string]any{
		"storage":     map[string]any{"driver": "file", "path": dataDir},
		"permissions": map[string]any{"auto_grant": true},
		"logging":     map[string]any{"level": "error"},
	})
	a, err := NewApp(cfgPath)
	require.NoError(t, err)
	a.reconcile(ctx)

	pending, err := a.sub.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// Flip the birthday flag off and sweep again.
	lo.BirthdayReminderEnabled = false
	st, err := storage.Open(storage.Config{Driver: "file", Path: dataDir}, logx.Nop())
	require.NoError(t, err)
	data, err := json.Marshal([]domain.LovedOne{lo})
	require.NoError(t, err)
	require.NoError(t, st.PutBlob(ctx, keyLovedOnes, data))
	require.NoError(t, st.Close())

	a.reconcile(ctx)
	pending, err = a.sub.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, alerts.Identifier(alerts.KindMemorial, "lo1"), pending[0].Identifier)

	require.NoError(t, a.Stop(ctx))
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, map[string]any{
		"storage": map[string]any{"driver": "none"},
		"logging": map[string]any{"level": "error"},
	})

	a, err := NewApp(cfgPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Start(ctx))
	cancel()
	require.NoError(t, a.Stop(context.Background()))
}
