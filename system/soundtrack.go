package system

import (
	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/config"
	"github.com/milk9111/soundtrack/cue"
	"github.com/milk9111/soundtrack/soundtrack"
)

// Reloader applies one watched file change.
type Reloader func(change config.Change) error

type SoundtrackOptions struct {
	Music          soundtrack.Catalog
	Ambience       soundtrack.Catalog
	Open           soundtrack.VoiceFactory
	MusicConfig    soundtrack.ChannelConfig
	AmbienceConfig soundtrack.ChannelConfig
	Sink           soundtrack.EventSink
	Logger         *zap.Logger
}

// SoundtrackSystem owns the music and ambience channels and everything the
// host does around them: pause and scene-load gating, stray voices played
// outside the channels, cue scripts and hot reload.
type SoundtrackSystem struct {
	music    *soundtrack.Engine
	ambience *soundtrack.Engine
	open     soundtrack.VoiceFactory
	log      *zap.Logger

	strays map[soundtrack.Kind][]soundtrack.Voice
	cues   []*cue.Runtime

	changes <-chan config.Change
	reload  Reloader

	paused  bool
	loading bool
}

func NewSoundtrackSystem(opts SoundtrackOptions) *SoundtrackSystem {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SoundtrackSystem{
		open:   opts.Open,
		log:    logger,
		strays: map[soundtrack.Kind][]soundtrack.Voice{},
	}
	chOpts := soundtrack.Options{Logger: logger, Sink: opts.Sink, EndOthers: s.endOthers}
	s.music = soundtrack.NewMusicChannel(opts.Music, opts.Open, opts.MusicConfig, chOpts)
	s.ambience = soundtrack.NewAmbienceChannel(opts.Ambience, opts.Open, opts.AmbienceConfig, chOpts)
	return s
}

func (s *SoundtrackSystem) Music() *soundtrack.Engine {
	return s.music
}

func (s *SoundtrackSystem) Ambience() *soundtrack.Engine {
	return s.ambience
}

func (s *SoundtrackSystem) Channel(kind soundtrack.Kind) *soundtrack.Engine {
	if kind == soundtrack.KindAmbience {
		return s.ambience
	}
	return s.music
}

func (s *SoundtrackSystem) Update(dt float64) {
	s.drainReloads()
	if s.loading {
		return
	}

	s.music.Update(dt)
	s.ambience.Update(dt)
	if s.paused {
		return
	}
	s.updateStrays(dt)
	s.updateCues(dt)
}

// SetPaused pauses every channel without play-while-paused along with the
// stray voices and cue clocks. Timers resume exactly where they stopped.
func (s *SoundtrackSystem) SetPaused(paused bool) {
	if s.paused == paused {
		return
	}
	s.paused = paused
	s.music.SetPaused(paused)
	s.ambience.SetPaused(paused)
	for _, voices := range s.strays {
		for _, v := range voices {
			v.SetPaused(paused)
		}
	}
}

func (s *SoundtrackSystem) Paused() bool {
	return s.paused
}

// BeginSceneLoad freezes all ticking until EndSceneLoad.
func (s *SoundtrackSystem) BeginSceneLoad() {
	s.loading = true
	s.music.SetLoading(true)
	s.ambience.SetLoading(true)
}

func (s *SoundtrackSystem) EndSceneLoad() {
	s.loading = false
	s.music.SetLoading(false)
	s.ambience.SetLoading(false)
}

func (s *SoundtrackSystem) Loading() bool {
	return s.loading
}

// PlayStray plays track on a voice outside the channels. The voice is
// stopped when a channel of the same kind with end-others set starts a
// track, and released when it finishes.
func (s *SoundtrackSystem) PlayStray(kind soundtrack.Kind, track soundtrack.Track, loop bool) soundtrack.Voice {
	if s.open == nil || track.Clip == nil || track.Clip.Len() <= 0 {
		s.log.Warn("soundtrack: cannot play stray voice", zap.Int("track_id", track.ID))
		return nil
	}
	v := s.open()
	if v == nil {
		return nil
	}
	v.SetClip(track.Clip)
	v.SetRoute(track.Route)
	if track.Route == nil {
		v.SetRoute(s.Channel(kind).Config().DefaultRoute)
	}
	v.SetRelativeVolume(track.RelativeVolume)
	v.SetLoop(loop)
	v.SetVolume(1)
	v.Play(0)
	s.RegisterStray(kind, v)
	return v
}

// RegisterStray hands an already playing voice to the registry.
func (s *SoundtrackSystem) RegisterStray(kind soundtrack.Kind, v soundtrack.Voice) {
	if v == nil {
		return
	}
	if s.paused {
		v.SetPaused(true)
	}
	s.strays[kind] = append(s.strays[kind], v)
}

func (s *SoundtrackSystem) Strays(kind soundtrack.Kind) int {
	return len(s.strays[kind])
}

func (s *SoundtrackSystem) endOthers(kind soundtrack.Kind) {
	voices := s.strays[kind]
	if len(voices) == 0 {
		return
	}
	s.log.Debug("soundtrack: ending stray voices", zap.String("kind", kind.String()), zap.Int("count", len(voices)))
	for _, v := range voices {
		v.Stop()
		_ = v.Close()
	}
	delete(s.strays, kind)
}

func (s *SoundtrackSystem) updateStrays(dt float64) {
	for kind, voices := range s.strays {
		live := voices[:0]
		for _, v := range voices {
			v.Update(dt)
			if v.IsPlaying() {
				live = append(live, v)
				continue
			}
			_ = v.Close()
		}
		clear(voices[len(live):])
		if len(live) == 0 {
			delete(s.strays, kind)
			continue
		}
		s.strays[kind] = live
	}
}

// AddCue registers a cue script. It starts on the next unpaused tick.
func (s *SoundtrackSystem) AddCue(rt *cue.Runtime) {
	if rt == nil {
		return
	}
	s.cues = append(s.cues, rt)
}

// ReplaceCue swaps the running cue with the same name for rt, or adds rt.
func (s *SoundtrackSystem) ReplaceCue(rt *cue.Runtime) {
	if rt == nil {
		return
	}
	for i, c := range s.cues {
		if c.Name() == rt.Name() {
			s.cues[i] = rt
			return
		}
	}
	s.cues = append(s.cues, rt)
}

func (s *SoundtrackSystem) Cues() []string {
	names := make([]string, 0, len(s.cues))
	for _, c := range s.cues {
		names = append(names, c.Name())
	}
	return names
}

// updateCues ticks every cue and drops the ones that fail.
func (s *SoundtrackSystem) updateCues(dt float64) {
	live := s.cues[:0]
	for _, c := range s.cues {
		if err := c.Tick(dt); err != nil {
			s.log.Warn("soundtrack: cue failed, removing", zap.String("cue", c.Name()), zap.Error(err))
			continue
		}
		live = append(live, c)
	}
	clear(s.cues[len(live):])
	s.cues = live
}

// Watch makes Update apply every change received on changes through r.
func (s *SoundtrackSystem) Watch(changes <-chan config.Change, r Reloader) {
	s.changes = changes
	s.reload = r
}

func (s *SoundtrackSystem) drainReloads() {
	if s.changes == nil || s.reload == nil {
		return
	}
	for {
		select {
		case change, ok := <-s.changes:
			if !ok {
				s.changes = nil
				return
			}
			if err := s.reload(change); err != nil {
				s.log.Warn("soundtrack: reload failed", zap.String("path", change.Path), zap.Error(err))
				continue
			}
			s.log.Info("soundtrack: reloaded", zap.String("path", change.Path))
		default:
			return
		}
	}
}

// Close stops all audio owned by the system.
func (s *SoundtrackSystem) Close() error {
	for kind := range s.strays {
		s.endOthers(kind)
	}
	err := s.music.Close()
	if aerr := s.ambience.Close(); err == nil {
		err = aerr
	}
	return err
}
