package soundtrack

// FadeVoice plays a copy of another voice's clip from that voice's current
// position and volume, and decays linearly to silence over a fixed time. It is
// the outgoing side of a crossfade and is never persisted.
type FadeVoice struct {
	voice       Voice
	trackID     int
	startVolume float64
	remaining   float64
	total       float64
}

// NewFadeVoice spawns a fade voice from src. It returns nil when src is not
// playing a non-empty clip, when fadeTime is not positive, or when open
// returns no voice.
func NewFadeVoice(src Voice, trackID int, fadeTime float64, open VoiceFactory) *FadeVoice {
	if src == nil || open == nil || fadeTime <= 0 || !src.IsPlaying() || !hasAudio(src.Clip()) {
		return nil
	}
	v := open()
	if v == nil {
		return nil
	}

	start := src.Volume()
	v.SetClip(src.Clip())
	v.SetRoute(src.Route())
	v.SetRelativeVolume(src.RelativeVolume())
	v.SetLoop(false)
	v.SetVolume(start)
	v.Play(src.Position())

	return &FadeVoice{
		voice:       v,
		trackID:     trackID,
		startVolume: start,
		remaining:   fadeTime,
		total:       fadeTime,
	}
}

// Update advances the decay. It returns false once the voice has finished and
// released its resources.
func (f *FadeVoice) Update(dt float64) bool {
	if f == nil || f.voice == nil {
		return false
	}
	f.remaining -= dt
	if f.remaining <= 0 || !f.voice.IsPlaying() {
		f.Destroy()
		return false
	}
	f.voice.SetVolume(f.startVolume * f.remaining / f.total)
	f.voice.Update(dt)
	return true
}

// Destroy stops and closes the voice immediately.
func (f *FadeVoice) Destroy() {
	if f == nil || f.voice == nil {
		return
	}
	f.voice.Stop()
	_ = f.voice.Close()
	f.voice = nil
	f.remaining = 0
}

func (f *FadeVoice) TrackID() int {
	return f.trackID
}

// Remaining is the time left before the voice reaches silence.
func (f *FadeVoice) Remaining() float64 {
	return f.remaining
}

func (f *FadeVoice) Voice() Voice {
	return f.voice
}
