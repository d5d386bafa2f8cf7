package voice

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/soundtrack"
)

// EbitenOutput opens voices on a shared ebiten audio context. Only one audio
// context may exist per process.
type EbitenOutput struct {
	ctx *audio.Context
	log *zap.Logger
}

func NewEbitenOutput(ctx *audio.Context, logger *zap.Logger) *EbitenOutput {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EbitenOutput{ctx: ctx, log: logger}
}

// Open is a soundtrack.VoiceFactory.
func (o *EbitenOutput) Open() soundtrack.Voice {
	return &EbitenVoice{base: newBase(), ctx: o.ctx, log: o.log}
}

func (o *EbitenOutput) SampleRate() int {
	return o.ctx.SampleRate()
}

// EbitenVoice plays one clip through an audio.Player. The player is rebuilt
// whenever the clip changes.
type EbitenVoice struct {
	base
	ctx     *audio.Context
	log     *zap.Logger
	player  *audio.Player
	playing bool
	paused  bool
}

var _ soundtrack.Voice = (*EbitenVoice)(nil)

func (v *EbitenVoice) SetClip(c soundtrack.Clip) {
	v.Stop()
	v.closePlayer()
	v.clip = c

	p, err := pcmOf(c)
	if err != nil {
		v.log.Warn("voice: unsupported clip", zap.Error(err))
		return
	}
	if p == nil {
		return
	}
	v.player = v.ctx.NewPlayerFromBytes(p.PCM())
}

func (v *EbitenVoice) SetLoop(loop bool) {
	v.loop = loop
}

func (v *EbitenVoice) Play(offset int) {
	if v.player == nil {
		return
	}
	if err := v.player.SetPosition(v.duration(offset)); err != nil {
		v.log.Warn("voice: seek failed", zap.Int("offset", offset), zap.Error(err))
	}
	v.player.SetVolume(v.gain())
	v.player.Play()
	v.playing = true
	v.paused = false
}

func (v *EbitenVoice) Stop() {
	v.ramp.Cancel()
	v.playing = false
	if v.player == nil {
		return
	}
	v.player.Pause()
	v.rewind()
}

func (v *EbitenVoice) SetPaused(paused bool) {
	v.paused = paused
	if v.player == nil || !v.playing {
		return
	}
	if paused {
		v.player.Pause()
	} else {
		v.player.Play()
	}
}

func (v *EbitenVoice) SetVolume(vol float64) {
	v.setVolume(vol)
	if v.player != nil {
		v.player.SetVolume(v.gain())
	}
}

func (v *EbitenVoice) IsPlaying() bool {
	return v.playing && !v.paused
}

func (v *EbitenVoice) Position() int {
	if v.player == nil {
		return 0
	}
	return int(v.player.Position().Seconds() * float64(v.rate()))
}

func (v *EbitenVoice) Update(dt float64) {
	if !v.IsPlaying() || v.player == nil {
		return
	}
	if v.step(dt) {
		v.Stop()
		return
	}
	v.player.SetVolume(v.gain())

	if v.player.IsPlaying() {
		return
	}
	// The player drained its buffer.
	if !v.loop {
		v.playing = false
		return
	}
	v.rewind()
	v.player.Play()
}

func (v *EbitenVoice) rewind() {
	if err := v.player.Rewind(); err != nil {
		v.log.Warn("voice: rewind failed", zap.Error(err))
	}
}

func (v *EbitenVoice) Close() error {
	v.Stop()
	return v.closePlayer()
}

func (v *EbitenVoice) closePlayer() error {
	if v.player == nil {
		return nil
	}
	err := v.player.Close()
	v.player = nil
	return err
}

func (v *EbitenVoice) rate() int {
	if v.clip != nil && v.clip.SampleRate() > 0 {
		return v.clip.SampleRate()
	}
	return v.ctx.SampleRate()
}

func (v *EbitenVoice) duration(frames int) time.Duration {
	return time.Duration(float64(max(frames, 0)) / float64(v.rate()) * float64(time.Second))
}
