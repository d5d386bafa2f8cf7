package system

import (
	"math"

	"github.com/milk9111/soundtrack/soundtrack"
)

const testRate = 1000

type fakeClip struct {
	frames int
}

func (c fakeClip) Len() int        { return c.frames }
func (c fakeClip) SampleRate() int { return testRate }

type fakeVoice struct {
	clip    soundtrack.Clip
	route   soundtrack.Route
	rel     float64
	loop    bool
	playing bool
	paused  bool
	closed  bool
	pos     int
	volume  float64
	ramp    soundtrack.Ramp
}

func (v *fakeVoice) SetClip(c soundtrack.Clip)   { v.clip = c }
func (v *fakeVoice) Clip() soundtrack.Clip       { return v.clip }
func (v *fakeVoice) SetRoute(r soundtrack.Route) { v.route = r }
func (v *fakeVoice) Route() soundtrack.Route     { return v.route }
func (v *fakeVoice) SetRelativeVolume(r float64) { v.rel = r }
func (v *fakeVoice) RelativeVolume() float64     { return v.rel }
func (v *fakeVoice) SetLoop(loop bool)           { v.loop = loop }
func (v *fakeVoice) Loop() bool                  { return v.loop }
func (v *fakeVoice) SetPaused(p bool)            { v.paused = p }
func (v *fakeVoice) Volume() float64             { return v.volume }
func (v *fakeVoice) Position() int               { return v.pos }
func (v *fakeVoice) IsPlaying() bool             { return v.playing && !v.paused }
func (v *fakeVoice) FadeTo(vol, d float64)       { v.ramp.Start(v.volume, vol, d) }

func (v *fakeVoice) Play(offset int) {
	if v.clip == nil {
		return
	}
	v.pos = min(max(offset, 0), v.clip.Len())
	v.playing = true
}

func (v *fakeVoice) Stop() {
	v.playing = false
	v.pos = 0
	v.ramp.Cancel()
}

func (v *fakeVoice) SetVolume(vol float64) {
	v.ramp.Cancel()
	v.volume = vol
}

func (v *fakeVoice) Update(dt float64) {
	if !v.IsPlaying() {
		return
	}
	v.pos += int(math.Round(dt * testRate))
	if n := v.clip.Len(); v.pos >= n {
		if !v.loop {
			v.pos = 0
			v.playing = false
			return
		}
		v.pos -= n
	}
	if v.ramp.Active() {
		vol, done := v.ramp.Step(dt)
		v.volume = vol
		if done && vol <= 0 {
			v.playing = false
			v.pos = 0
		}
	}
}

func (v *fakeVoice) Close() error {
	v.closed = true
	v.playing = false
	return nil
}

type voicePool struct {
	voices []*fakeVoice
}

func (p *voicePool) open() soundtrack.Voice {
	v := &fakeVoice{}
	p.voices = append(p.voices, v)
	return v
}

func track(id int, secs float64) soundtrack.Track {
	return soundtrack.Track{ID: id, Clip: fakeClip{frames: int(secs * testRate)}, RelativeVolume: 1}
}

func newTestSystem(pool *voicePool) *SoundtrackSystem {
	music := soundtrack.NewMapCatalog(track(1, 10), track(2, 10))
	ambience := soundtrack.NewMapCatalog(track(1, 10))
	return NewSoundtrackSystem(SoundtrackOptions{
		Music:          music,
		Ambience:       ambience,
		Open:           pool.open,
		MusicConfig:    soundtrack.DefaultMusicConfig(),
		AmbienceConfig: soundtrack.DefaultAmbienceConfig(),
	})
}

func tick(s *SoundtrackSystem, n int) {
	for i := 0; i < n; i++ {
		s.Update(0.01)
	}
}
