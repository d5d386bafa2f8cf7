package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed default.yaml tracks.yaml scripts/*.tengo
var defaultsFS embed.FS

// ReadFile returns name from dir on disk when it exists there and the
// embedded default otherwise.
func ReadFile(dir, name string) ([]byte, error) {
	clean := cleanPath(name)
	if dir != "" {
		if data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(clean))); err == nil {
			return data, nil
		}
	}
	data, err := defaultsFS.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", name, err)
	}
	return data, nil
}

// ReadScript is ReadFile for cue scripts, which live under scripts/ when
// embedded.
func ReadScript(dir, name string) ([]byte, error) {
	clean := cleanPath(name)
	if dir != "" {
		if data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(clean))); err == nil {
			return data, nil
		}
	}
	data, err := defaultsFS.ReadFile("scripts/" + strings.TrimPrefix(clean, "scripts/"))
	if err != nil {
		return nil, fmt.Errorf("config: read script %q: %w", name, err)
	}
	return data, nil
}

func cleanPath(path string) string {
	s := filepath.ToSlash(filepath.Clean(path))
	return strings.TrimPrefix(s, "./")
}
