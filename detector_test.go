package sandbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/everydev1618/claude-sandbox/container"
)

func TestLatestConversation(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		entries []container.DirEntry
		want    string
		found   bool
	}{
		{"empty", nil, "", false},
		{"single", []container.DirEntry{{Name: "a", ModTime: base}}, "a", true},
		{
			"newest wins",
			[]container.DirEntry{
				{Name: "old", ModTime: base},
				{Name: "new", ModTime: base.Add(time.Minute)},
				{Name: "mid", ModTime: base.Add(time.Second)},
			},
			"new", true,
		},
		{
			"tie broken by name",
			[]container.DirEntry{
				{Name: "alpha", ModTime: base},
				{Name: "beta", ModTime: base},
			},
			"beta", true,
		},
		{"skips unnamed", []container.DirEntry{{Name: "", ModTime: base.Add(time.Hour)}, {Name: "x", ModTime: base}}, "x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LatestConversation(tt.entries)
			if got != tt.want || ok != tt.found {
				t.Errorf("LatestConversation() = %q, %v; want %q, %v", got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestDetectConversation(t *testing.T) {
	f := newFakeEngine()
	f.dirs = []container.DirEntry{{Name: "-home-claude-workspace-app", ModTime: time.Now()}}

	got, ok := DetectConversation(context.Background(), f, "claude-app")
	if !ok || got != "-home-claude-workspace-app" {
		t.Errorf("DetectConversation() = %q, %v", got, ok)
	}

	f.dirsErr = errors.New("exec failed")
	if got, ok := DetectConversation(context.Background(), f, "claude-app"); ok || got != "" {
		t.Errorf("DetectConversation() on error = %q, %v; want none", got, ok)
	}
}
