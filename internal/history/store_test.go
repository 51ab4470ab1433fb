package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	records := []struct{ container, action, detail string }{
		{"claude-app", "create", "/src/app"},
		{"claude-web", "create", "/src/web"},
		{"claude-app", "attach", ""},
		{"claude-app", "stop", ""},
	}
	for _, r := range records {
		if err := s.Record(ctx, r.container, r.action, r.detail); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	all, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("List() returned %d events, want 4", len(all))
	}
	if all[0].Action != "stop" || all[3].Action != "create" {
		t.Errorf("List() not newest first: %+v", all)
	}
	if !all[3].Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("Timestamp = %v", all[3].Timestamp)
	}

	app, err := s.List(ctx, "claude-app", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(app) != 2 || app[0].Action != "stop" || app[1].Action != "attach" {
		t.Errorf("List(claude-app, 2) = %+v", app)
	}

	n, err := s.Count(ctx)
	if err != nil || n != 4 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, "claude-app", "create", ""); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
}
