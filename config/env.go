package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the yaml configuration.
const (
	EnvLogLevel   = "SOUNDTRACK_LOG_LEVEL"
	EnvLogFormat  = "SOUNDTRACK_LOG_FORMAT"
	EnvBackend    = "SOUNDTRACK_BACKEND"
	EnvSampleRate = "SOUNDTRACK_SAMPLE_RATE"
	EnvSaveStore  = "SOUNDTRACK_SAVE_STORE"
	EnvRedisAddr  = "SOUNDTRACK_REDIS_ADDR"
)

// LoadDotEnv loads .env style files into the process environment. Missing
// files are skipped and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("config: load env %q: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with the variables lookup reports as set.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvLogLevel, &cfg.Log.Level)
	str(EnvLogFormat, &cfg.Log.Format)
	str(EnvBackend, &cfg.Audio.Backend)
	str(EnvSaveStore, &cfg.Save.Store)
	str(EnvRedisAddr, &cfg.Save.Redis.Addr)

	if v, ok := lookup(EnvSampleRate); ok && v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSampleRate, err)
		}
		cfg.Audio.SampleRate = rate
	}
	return nil
}
