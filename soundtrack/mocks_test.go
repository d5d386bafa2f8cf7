package soundtrack

import (
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testRate = 1000

type fakeClip struct {
	frames int
	rate   int
}

func (c fakeClip) Len() int        { return c.frames }
func (c fakeClip) SampleRate() int { return c.rate }

func seconds(s float64) fakeClip {
	return fakeClip{frames: int(s * testRate), rate: testRate}
}

type fakeRoute string

func (r fakeRoute) RouteName() string { return string(r) }

// fakeVoice advances its position by dt*rate frames per Update.
type fakeVoice struct {
	clip    Clip
	route   Route
	rel     float64
	loop    bool
	playing bool
	paused  bool
	closed  bool
	pos     int
	volume  float64
	ramp    Ramp
	plays   []int
	stops   int
}

func (v *fakeVoice) SetClip(c Clip)              { v.clip = c }
func (v *fakeVoice) Clip() Clip                  { return v.clip }
func (v *fakeVoice) SetRoute(r Route)            { v.route = r }
func (v *fakeVoice) Route() Route                { return v.route }
func (v *fakeVoice) SetRelativeVolume(r float64) { v.rel = r }
func (v *fakeVoice) RelativeVolume() float64     { return v.rel }
func (v *fakeVoice) SetLoop(loop bool)           { v.loop = loop }
func (v *fakeVoice) Loop() bool                  { return v.loop }
func (v *fakeVoice) SetPaused(p bool)            { v.paused = p }
func (v *fakeVoice) Volume() float64             { return v.volume }
func (v *fakeVoice) Position() int               { return v.pos }
func (v *fakeVoice) IsPlaying() bool             { return v.playing && !v.paused }

func (v *fakeVoice) Play(offset int) {
	if v.clip == nil {
		return
	}
	v.pos = min(max(offset, 0), v.clip.Len())
	v.playing = true
	v.plays = append(v.plays, v.pos)
}

func (v *fakeVoice) Stop() {
	v.playing = false
	v.pos = 0
	v.ramp.Cancel()
	v.stops++
}

func (v *fakeVoice) SetVolume(vol float64) {
	v.ramp.Cancel()
	v.volume = vol
}

func (v *fakeVoice) FadeTo(vol, d float64) {
	v.ramp.Start(v.volume, vol, d)
}

func (v *fakeVoice) Update(dt float64) {
	if !v.IsPlaying() {
		return
	}
	v.pos += int(math.Round(dt * float64(v.clip.SampleRate())))
	if n := v.clip.Len(); v.pos >= n {
		if v.loop {
			v.pos -= n
		} else {
			v.pos = 0
			v.playing = false
			return
		}
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

// voicePool hands out fake voices and remembers each one.
type voicePool struct {
	voices []*fakeVoice
}

func (p *voicePool) open() Voice {
	v := &fakeVoice{}
	p.voices = append(p.voices, v)
	return v
}

func (p *voicePool) main() *fakeVoice {
	return p.voices[0]
}

type playEvent struct {
	trackID     int
	music       bool
	loop        bool
	fade        float64
	startSample int
}

type recordingSink struct {
	plays []playEvent
	stops []float64
}

func (s *recordingSink) OnPlay(trackID int, isMusic, loop bool, fadeTime float64, startSample int) {
	s.plays = append(s.plays, playEvent{trackID, isMusic, loop, fadeTime, startSample})
}

func (s *recordingSink) OnStop(isMusic bool, fadeTime float64) {
	s.stops = append(s.stops, fadeTime)
}

func (s *recordingSink) reset() {
	s.plays = nil
	s.stops = nil
}

// mapData is an in-memory SaveData.
type mapData struct {
	ints    map[string]int
	strings map[string]string
}

func newMapData() *mapData {
	return &mapData{ints: map[string]int{}, strings: map[string]string{}}
}

func (d *mapData) SetInt(k string, v int) { d.ints[k] = v }
func (d *mapData) Int(k string) int       { return d.ints[k] }
func (d *mapData) SetString(k, v string)  { d.strings[k] = v }
func (d *mapData) String(k string) string { return d.strings[k] }

type harness struct {
	engine *Engine
	pool   *voicePool
	sink   *recordingSink
	logs   *observer.ObservedLogs
}

func newHarness(t *testing.T, cfg ChannelConfig, tracks ...Track) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	h := &harness{pool: &voicePool{}, sink: &recordingSink{}, logs: logs}
	h.engine = NewMusicChannel(NewMapCatalog(tracks...), h.pool.open, cfg, Options{
		Logger: zap.New(core),
		Sink:   h.sink,
	})
	return h
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.engine.Update(0.01)
	}
}

func track(id int, secs float64) Track {
	return Track{ID: id, Clip: seconds(secs), RelativeVolume: 1}
}

func assertFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %s %v, got %v", name, want, got)
	}
}
