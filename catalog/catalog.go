package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/soundtrack/assets"
	"github.com/milk9111/soundtrack/soundtrack"
)

var ErrDuplicateID = errors.New("catalog: duplicate track id")

// Manifest is the yaml track list of both soundtrack categories.
type Manifest struct {
	Music    []Entry `yaml:"music"`
	Ambience []Entry `yaml:"ambience"`
}

// Entry describes one track. Exactly one of File and Tone is expected; File
// wins when both are set.
type Entry struct {
	ID     int      `yaml:"id"`
	Name   string   `yaml:"name"`
	File   string   `yaml:"file"`
	Tone   *Tone    `yaml:"tone"`
	Volume *float64 `yaml:"volume"`
	Route  string   `yaml:"route"`
}

type Tone struct {
	Freq      float64 `yaml:"freq"`
	Seconds   float64 `yaml:"seconds"`
	Amplitude float64 `yaml:"amplitude"`
}

func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("catalog: unmarshal manifest: %w", err)
	}
	for name, entries := range map[string][]Entry{"music": m.Music, "ambience": m.Ambience} {
		seen := make(map[int]bool, len(entries))
		for _, e := range entries {
			if seen[e.ID] {
				return Manifest{}, fmt.Errorf("%w: %s %d", ErrDuplicateID, name, e.ID)
			}
			seen[e.ID] = true
		}
	}
	return m, nil
}

// Catalog is a soundtrack.Catalog whose contents can be swapped by a reload
// while channels keep resolving from it.
type Catalog struct {
	mu     sync.RWMutex
	tracks map[int]soundtrack.Track
	names  map[int]string
}

var _ soundtrack.Catalog = (*Catalog)(nil)

func New() *Catalog {
	return &Catalog{tracks: map[int]soundtrack.Track{}, names: map[int]string{}}
}

func (c *Catalog) Resolve(id int) (soundtrack.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tracks[id]
	return t, ok
}

// Name returns the manifest name of a track, or its id.
func (c *Catalog) Name(id int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n := c.names[id]; n != "" {
		return n
	}
	return fmt.Sprintf("#%d", id)
}

// IDs lists track ids in ascending order.
func (c *Catalog) IDs() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]int, 0, len(c.tracks))
	for id := range c.tracks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tracks)
}

func (c *Catalog) replace(tracks map[int]soundtrack.Track, names map[int]string) {
	c.mu.Lock()
	c.tracks = tracks
	c.names = names
	c.mu.Unlock()
}

// Set holds the music and ambience catalogs.
type Set struct {
	Music    *Catalog
	Ambience *Catalog
}

func NewSet() *Set {
	return &Set{Music: New(), Ambience: New()}
}

func (s *Set) For(kind soundtrack.Kind) *Catalog {
	if kind == soundtrack.KindAmbience {
		return s.Ambience
	}
	return s.Music
}

// Loader turns manifest entries into tracks.
type Loader struct {
	// Dir is the directory clip files are relative to.
	Dir        string
	SampleRate int
	// Routes resolves an entry route name; nil routes every track to the
	// channel default.
	Routes func(name string) soundtrack.Route
	// Open decodes a clip file. It defaults to assets.LoadClip.
	Open   func(path string, sampleRate int) (*assets.Clip, error)
	Logger *zap.Logger
}

// Load decodes every entry of m and swaps the results into set. Entries whose
// clip cannot be loaded are skipped with a warning.
func (l *Loader) Load(m Manifest, set *Set) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, part := range []struct {
		kind    soundtrack.Kind
		entries []Entry
	}{
		{soundtrack.KindMusic, m.Music},
		{soundtrack.KindAmbience, m.Ambience},
	} {
		tracks := make(map[int]soundtrack.Track, len(part.entries))
		names := make(map[int]string, len(part.entries))
		for _, e := range part.entries {
			clip, err := l.clip(e)
			if err != nil {
				logger.Warn("catalog: skipping track",
					zap.String("kind", part.kind.String()),
					zap.Int("track_id", e.ID),
					zap.Error(err),
				)
				continue
			}
			tracks[e.ID] = soundtrack.Track{
				ID:             e.ID,
				Clip:           clip,
				RelativeVolume: volume(e.Volume),
				Route:          l.route(e.Route),
			}
			names[e.ID] = e.Name
		}
		set.For(part.kind).replace(tracks, names)
	}
}

// LoadFile parses manifest data and loads it into set. The previous contents
// stay in place when the manifest does not parse.
func (l *Loader) LoadFile(data []byte, set *Set) error {
	m, err := ParseManifest(data)
	if err != nil {
		return err
	}
	l.Load(m, set)
	return nil
}

func (l *Loader) clip(e Entry) (*assets.Clip, error) {
	switch {
	case e.File != "":
		open := l.Open
		if open == nil {
			open = assets.LoadClip
		}
		path := e.File
		if !filepath.IsAbs(path) && l.Dir != "" {
			path = filepath.Join(l.Dir, path)
		}
		return open(path, l.SampleRate)
	case e.Tone != nil:
		if e.Tone.Freq <= 0 || e.Tone.Seconds <= 0 {
			return nil, fmt.Errorf("catalog: tone for track %d needs freq and seconds", e.ID)
		}
		amp := e.Tone.Amplitude
		if amp <= 0 {
			amp = 0.5
		}
		d := time.Duration(e.Tone.Seconds * float64(time.Second))
		return assets.Tone(e.Tone.Freq, d, l.SampleRate, amp), nil
	default:
		return nil, fmt.Errorf("catalog: track %d has no file or tone", e.ID)
	}
}

func (l *Loader) route(name string) soundtrack.Route {
	if name == "" || l.Routes == nil {
		return nil
	}
	return l.Routes(name)
}

func volume(v *float64) float64 {
	if v == nil {
		return 1
	}
	return min(max(*v, 0), 1)
}
