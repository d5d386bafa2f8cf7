package savedata

import "github.com/milk9111/soundtrack/soundtrack"

type stubClip struct {
	frames int
	rate   int
}

func (c stubClip) Len() int        { return c.frames }
func (c stubClip) SampleRate() int { return c.rate }

// stubVoice is a soundtrack.Voice that never advances.
type stubVoice struct {
	clip    soundtrack.Clip
	route   soundtrack.Route
	rel     float64
	loop    bool
	playing bool
	pos     int
	volume  float64
}

func (v *stubVoice) SetClip(c soundtrack.Clip)   { v.clip = c }
func (v *stubVoice) Clip() soundtrack.Clip       { return v.clip }
func (v *stubVoice) SetRoute(r soundtrack.Route) { v.route = r }
func (v *stubVoice) Route() soundtrack.Route     { return v.route }
func (v *stubVoice) SetRelativeVolume(r float64) { v.rel = r }
func (v *stubVoice) RelativeVolume() float64     { return v.rel }
func (v *stubVoice) SetLoop(loop bool)           { v.loop = loop }
func (v *stubVoice) Loop() bool                  { return v.loop }
func (v *stubVoice) Play(offset int)             { v.pos, v.playing = offset, true }
func (v *stubVoice) Stop()                       { v.pos, v.playing = 0, false }
func (v *stubVoice) SetPaused(bool)              {}
func (v *stubVoice) SetVolume(vol float64)       { v.volume = vol }
func (v *stubVoice) Volume() float64             { return v.volume }
func (v *stubVoice) FadeTo(vol, _ float64)       { v.volume = vol }
func (v *stubVoice) IsPlaying() bool             { return v.playing }
func (v *stubVoice) Position() int               { return v.pos }
func (v *stubVoice) Update(float64)              {}
func (v *stubVoice) Close() error                { return nil }
