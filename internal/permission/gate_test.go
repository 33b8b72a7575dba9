package permission

import (
	"context"
	"testing"

	"solace/internal/alerts"
	"solace/internal/storage"
	logx "solace/pkg/logx"
)

func openStore(t *testing.T, dir string) storage.Store {
	t.Helper()
	st, err := storage.Open(storage.Config{Driver: "file", Path: dir}, logx.Nop())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	return st
}

func TestGateStartsNotDetermined(t *testing.T) {
	t.Parallel()
	g := New(Config{}, nil, nil)
	if got := g.Status(context.Background()); got != alerts.AuthNotDetermined {
		t.Fatalf("Status = %v, want not determined", got)
	}
}

func TestRequestRecordsOnce(t *testing.T) {
	t.Parallel()
	g := New(Config{AutoGrant: true}, nil, nil)
	ctx := context.Background()

	granted, err := g.Request(ctx)
	if err != nil || !granted {
		t.Fatalf("Request = %v, %v", granted, err)
	}
	if got := g.Status(ctx); got != alerts.AuthAuthorized {
		t.Fatalf("Status = %v, want authorized", got)
	}
	// A second request must return the recorded decision, even if the
	// policy changed in the meantime.
	g.cfg.AutoGrant = false
	granted, err = g.Request(ctx)
	if err != nil || !granted {
		t.Fatalf("repeat Request = %v, %v", granted, err)
	}
}

func TestDenialSticks(t *testing.T) {
	t.Parallel()
	g := New(Config{AutoGrant: false}, nil, nil)
	ctx := context.Background()

	granted, err := g.Request(ctx)
	if err != nil || granted {
		t.Fatalf("Request = %v, %v", granted, err)
	}
	if got := g.Status(ctx); got != alerts.AuthDenied {
		t.Fatalf("Status = %v, want denied", got)
	}
}

func TestDecisionSurvivesRestart(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	ctx := context.Background()

	st := openStore(t, dir)
	g := New(Config{AutoGrant: true}, st, nil)
	if _, err := g.Request(ctx); err != nil {
		t.Fatalf("Request: %v", err)
	}
	_ = st.Close()

	st2 := openStore(t, dir)
	defer st2.Close()
	g2 := New(Config{AutoGrant: false}, st2, nil)
	if got := g2.Status(ctx); got != alerts.AuthAuthorized {
		t.Fatalf("Status after restart = %v, want authorized", got)
	}
}
