package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/soundtrack/logging"
	"github.com/milk9111/soundtrack/soundtrack"
)

const (
	BackendEbiten = "ebiten"
	BackendBeep   = "beep"

	StoreFile  = "file"
	StoreRedis = "redis"
)

type Config struct {
	Log      logging.Config `yaml:"log"`
	Audio    AudioConfig    `yaml:"audio"`
	Music    ChannelConfig  `yaml:"music"`
	Ambience ChannelConfig  `yaml:"ambience"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Cues     CueConfig      `yaml:"cues"`
	Save     SaveConfig     `yaml:"save"`

	// Dir is the directory relative paths resolve against: the directory of
	// the loaded file, or the working directory for the defaults.
	Dir string `yaml:"-"`
}

type AudioConfig struct {
	SampleRate int                `yaml:"sample_rate"`
	Backend    string             `yaml:"backend"`
	Buses      map[string]float64 `yaml:"buses"`
}

// ChannelConfig is the yaml form of soundtrack.ChannelConfig.
type ChannelConfig struct {
	LoadFadeTime    float64 `yaml:"load_fade_time"`
	CrossfadeOnLoad bool    `yaml:"crossfade_on_load"`
	RestartOnLoad   bool    `yaml:"restart_on_load"`
	PlayWhilePaused bool    `yaml:"play_while_paused"`
	EndOthers       bool    `yaml:"end_others"`
	Route           string  `yaml:"route"`
}

type CatalogConfig struct {
	Manifest string `yaml:"manifest"`
}

type CueConfig struct {
	Dir     string `yaml:"dir"`
	Startup string `yaml:"startup"`
}

type SaveConfig struct {
	Store string      `yaml:"store"`
	Dir   string      `yaml:"dir"`
	Slot  string      `yaml:"slot"`
	Redis RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Soundtrack converts the yaml section, resolving the route through routes.
func (c ChannelConfig) Soundtrack(routes func(name string) soundtrack.Route) soundtrack.ChannelConfig {
	var route soundtrack.Route
	if routes != nil && c.Route != "" {
		route = routes(c.Route)
	}
	return soundtrack.ChannelConfig{
		LoadFadeTime:    c.LoadFadeTime,
		CrossfadeOnLoad: c.CrossfadeOnLoad,
		RestartOnLoad:   c.RestartOnLoad,
		PlayWhilePaused: c.PlayWhilePaused,
		EndOthersOnPlay: c.EndOthers,
		DefaultRoute:    route,
	}
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	data, err := defaultsFS.ReadFile("default.yaml")
	if err != nil {
		return nil, fmt.Errorf("config: load default.yaml: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal default.yaml: %w", err)
	}
	cfg.Dir = "."
	return &cfg, nil
}

// Load overlays the yaml file at path (if any) on the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: load %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: unmarshal %q: %w", path, err)
		}
		cfg.Dir = filepath.Dir(path)
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("config: audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	switch c.Audio.Backend {
	case BackendEbiten, BackendBeep:
	default:
		return fmt.Errorf("config: unknown audio.backend %q", c.Audio.Backend)
	}
	switch c.Save.Store {
	case StoreFile, StoreRedis:
	default:
		return fmt.Errorf("config: unknown save.store %q", c.Save.Store)
	}
	for name, ch := range map[string]ChannelConfig{"music": c.Music, "ambience": c.Ambience} {
		if ch.LoadFadeTime < 0 {
			return fmt.Errorf("config: %s.load_fade_time must not be negative", name)
		}
		if ch.Route != "" {
			if _, ok := c.Audio.Buses[ch.Route]; !ok {
				return fmt.Errorf("config: %s.route %q is not a bus", name, ch.Route)
			}
		}
	}
	return nil
}

// Path resolves p against the config directory.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}
