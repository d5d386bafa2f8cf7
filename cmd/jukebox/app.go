package main

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/catalog"
	"github.com/milk9111/soundtrack/config"
	"github.com/milk9111/soundtrack/cue"
	"github.com/milk9111/soundtrack/savedata"
	"github.com/milk9111/soundtrack/soundtrack"
	"github.com/milk9111/soundtrack/system"
	"github.com/milk9111/soundtrack/voice"
)

const watchDebounce = 200 * time.Millisecond

// app wires the catalog, channels, cue scripts and save store for one
// backend.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	out       *output
	buses     voice.Buses
	catalogs  *catalog.Set
	loader    *catalog.Loader
	sound     *system.SoundtrackSystem
	store     savedata.Store
	persist   *system.Persistence
	scheduler *system.Scheduler
	watcher   *config.Watcher
}

func newApp(cfg *config.Config, out *output, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		log:      logger,
		out:      out,
		buses:    voice.NewBuses(cfg.Audio.Buses),
		catalogs: catalog.NewSet(),
	}

	a.loader = &catalog.Loader{
		Dir:        filepath.Dir(cfg.Path(cfg.Catalog.Manifest)),
		SampleRate: cfg.Audio.SampleRate,
		Routes:     a.buses.Route,
		Logger:     logger,
	}
	manifest, err := config.ReadFile(cfg.Dir, cfg.Catalog.Manifest)
	if err != nil {
		return nil, err
	}
	if err := a.loader.LoadFile(manifest, a.catalogs); err != nil {
		return nil, err
	}
	logger.Info("jukebox: catalog loaded",
		zap.Int("music", a.catalogs.Music.Len()),
		zap.Int("ambience", a.catalogs.Ambience.Len()),
	)

	a.sound = system.NewSoundtrackSystem(system.SoundtrackOptions{
		Music:          a.catalogs.Music,
		Ambience:       a.catalogs.Ambience,
		Open:           out.open,
		MusicConfig:    cfg.Music.Soundtrack(a.buses.Route),
		AmbienceConfig: cfg.Ambience.Soundtrack(a.buses.Route),
		Sink:           soundtrack.LogSink{Logger: logger},
		Logger:         logger,
	})

	a.store, err = savedata.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.persist = system.NewPersistence(a.store, logger, a.sound.Music(), a.sound.Ambience())
	a.scheduler = system.NewScheduler(a.sound, a.persist)
	return a, nil
}

// startCue loads a script from the cue directory and starts it on the next
// tick.
func (a *app) startCue(name string) error {
	rt, err := cue.Load(a.cfg.Path(a.cfg.Cues.Dir), name, a.sound.Music(), a.sound.Ambience(), a.log)
	if err != nil {
		return err
	}
	a.sound.AddCue(rt)
	return nil
}

// watch enables hot reload of the manifest and running cue scripts for the
// directories that exist on disk.
func (a *app) watch() {
	var dirs []string
	for _, dir := range []string{a.loader.Dir, a.cfg.Path(a.cfg.Cues.Dir)} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() && !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return
	}
	w, err := config.NewWatcher(watchDebounce, dirs...)
	if err != nil {
		a.log.Warn("jukebox: hot reload disabled", zap.Error(err))
		return
	}
	a.watcher = w
	a.sound.Watch(w.Changes(), a.reload)
	go func() {
		for err := range w.Errors() {
			a.log.Warn("jukebox: watch error", zap.Error(err))
		}
	}()
}

func (a *app) reload(change config.Change) error {
	switch change.Kind {
	case config.FileManifest:
		if filepath.Base(change.Path) != filepath.Base(a.cfg.Catalog.Manifest) {
			return nil
		}
		data, err := os.ReadFile(change.Path)
		if err != nil {
			return err
		}
		old := a.clips()
		if err := a.loader.LoadFile(data, a.catalogs); err != nil {
			return err
		}
		for _, c := range old {
			a.out.forget(c)
		}
		return nil
	case config.FileScript:
		name := filepath.Base(change.Path)
		if !slices.Contains(a.sound.Cues(), name) {
			return nil
		}
		rt, err := cue.Load(filepath.Dir(change.Path), name, a.sound.Music(), a.sound.Ambience(), a.log)
		if err != nil {
			return err
		}
		a.sound.ReplaceCue(rt)
		return nil
	}
	return nil
}

func (a *app) clips() []soundtrack.Clip {
	var clips []soundtrack.Clip
	for _, c := range []*catalog.Catalog{a.catalogs.Music, a.catalogs.Ambience} {
		for _, id := range c.IDs() {
			if t, ok := c.Resolve(id); ok {
				clips = append(clips, t.Clip)
			}
		}
	}
	return clips
}

func (a *app) update(dt float64) {
	a.scheduler.Update(dt)
}

func (a *app) close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if err := a.sound.Close(); err != nil {
		a.log.Warn("jukebox: close channels", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("jukebox: close store", zap.Error(err))
	}
	a.out.close()
}
