package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"level", Config{Level: "loud"}},
		{"format", Config{Format: "xml"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := New(c.cfg); err == nil {
				t.Fatalf("expected error for %+v", c.cfg)
			}
		})
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "soundtrack.log")
	l, err := New(Config{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.Debug("track started", zap.Int("track_id", 7))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"track_id":7`) {
		t.Fatalf("expected record in log file, got %q", data)
	}
}

func TestSetNil(t *testing.T) {
	Set(nil)
	if L() == nil {
		t.Fatalf("expected a no-op logger")
	}
}
