package voice

import (
	"errors"
	"fmt"

	"github.com/milk9111/soundtrack/soundtrack"
)

// ErrClipFormat is returned for clips that do not expose raw PCM.
var ErrClipFormat = errors.New("voice: clip has no PCM data")

// PCM is a clip backed by interleaved 16-bit little-endian stereo samples.
// Implementations must be comparable; buffers are cached by clip.
type PCM interface {
	soundtrack.Clip
	PCM() []byte
}

func pcmOf(c soundtrack.Clip) (PCM, error) {
	if c == nil {
		return nil, nil
	}
	p, ok := c.(PCM)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrClipFormat, c)
	}
	return p, nil
}

// base holds the backend independent state of a voice: routing, relative
// volume, the fade level and its ramp.
type base struct {
	clip   soundtrack.Clip
	route  soundtrack.Route
	rel    float64
	loop   bool
	volume float64
	ramp   soundtrack.Ramp
}

func newBase() base {
	return base{rel: 1, volume: 1}
}

func (b *base) Clip() soundtrack.Clip           { return b.clip }
func (b *base) SetRoute(r soundtrack.Route)     { b.route = r }
func (b *base) Route() soundtrack.Route         { return b.route }
func (b *base) SetRelativeVolume(v float64)     { b.rel = clamp01(v) }
func (b *base) RelativeVolume() float64         { return b.rel }
func (b *base) Loop() bool                      { return b.loop }
func (b *base) Volume() float64                 { return b.volume }
func (b *base) FadeTo(volume, duration float64) { b.ramp.Start(b.volume, clamp01(volume), duration) }

func (b *base) setVolume(v float64) {
	b.ramp.Cancel()
	b.volume = clamp01(v)
}

// gain is the linear amplitude sent to the backend.
func (b *base) gain() float64 {
	g := b.volume * b.rel
	if bus, ok := b.route.(*Bus); ok {
		g *= bus.Volume()
	}
	return g
}

// step advances the fade ramp and reports whether it just ended at silence.
func (b *base) step(dt float64) bool {
	if !b.ramp.Active() {
		return false
	}
	v, done := b.ramp.Step(dt)
	b.volume = v
	return done && v <= 0
}
