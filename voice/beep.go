package voice

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/soundtrack"
)

// BeepOutput opens voices that stream into a shared beep.Mixer. Decoded
// buffers are cached per clip so fade voices do not decode again.
type BeepOutput struct {
	mixer *beep.Mixer
	lock  sync.Locker
	log   *zap.Logger

	mu      sync.Mutex
	buffers map[PCM]*beep.Buffer
}

// NewBeepOutput wires voices to mixer. lock guards every access the audio
// goroutine can observe; nil means the speaker lock.
func NewBeepOutput(mixer *beep.Mixer, lock sync.Locker, logger *zap.Logger) *BeepOutput {
	if lock == nil {
		lock = speakerLocker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BeepOutput{
		mixer:   mixer,
		lock:    lock,
		log:     logger,
		buffers: make(map[PCM]*beep.Buffer),
	}
}

// Open is a soundtrack.VoiceFactory.
func (o *BeepOutput) Open() soundtrack.Voice {
	return &BeepVoice{base: newBase(), out: o}
}

func (o *BeepOutput) Mixer() *beep.Mixer {
	return o.mixer
}

func (o *BeepOutput) buffer(p PCM) *beep.Buffer {
	o.mu.Lock()
	defer o.mu.Unlock()

	if buf, ok := o.buffers[p]; ok {
		return buf
	}
	buf := beep.NewBuffer(beep.Format{
		SampleRate:  beep.SampleRate(p.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	})
	buf.Append(&pcmStreamer{data: p.PCM()})
	o.buffers[p] = buf
	return buf
}

// Forget drops the cached buffer of a clip, used when a catalog reload
// replaces it.
func (o *BeepOutput) Forget(p PCM) {
	o.mu.Lock()
	delete(o.buffers, p)
	o.mu.Unlock()
}

type speakerLocker struct{}

func (speakerLocker) Lock()   { speaker.Lock() }
func (speakerLocker) Unlock() { speaker.Unlock() }

// BeepVoice is a single voice on a BeepOutput. Each Play adds a fresh
// streamer chain (loop -> ctrl -> volume) to the mixer; Stop drains it.
type BeepVoice struct {
	base
	out *BeepOutput

	buf    *beep.Buffer
	stream *loopStreamer
	ctrl   *beep.Ctrl
	vol    *effects.Volume

	playing bool
	paused  bool
}

var _ soundtrack.Voice = (*BeepVoice)(nil)

func (v *BeepVoice) SetClip(c soundtrack.Clip) {
	v.Stop()
	v.clip = c
	v.buf = nil

	p, err := pcmOf(c)
	if err != nil {
		v.out.log.Warn("voice: unsupported clip", zap.Error(err))
		return
	}
	if p != nil {
		v.buf = v.out.buffer(p)
	}
}

func (v *BeepVoice) SetLoop(loop bool) {
	v.loop = loop
	if v.stream == nil {
		return
	}
	v.out.lock.Lock()
	v.stream.loop = loop
	v.out.lock.Unlock()
}

func (v *BeepVoice) Play(offset int) {
	v.Stop()
	if v.buf == nil || v.buf.Len() == 0 {
		return
	}

	src := v.buf.Streamer(0, v.buf.Len())
	if err := src.Seek(min(max(offset, 0), v.buf.Len())); err != nil {
		v.out.log.Warn("voice: seek failed", zap.Int("offset", offset), zap.Error(err))
	}
	v.stream = &loopStreamer{src: src, loop: v.loop}
	v.ctrl = &beep.Ctrl{Streamer: v.stream}
	v.vol = &effects.Volume{Streamer: v.ctrl, Base: 2}
	setGain(v.vol, v.gain())

	v.out.lock.Lock()
	v.out.mixer.Add(v.vol)
	v.out.lock.Unlock()
	v.playing = true
	v.paused = false
}

func (v *BeepVoice) Stop() {
	v.ramp.Cancel()
	v.playing = false
	if v.ctrl == nil {
		return
	}
	v.out.lock.Lock()
	// A Ctrl without a streamer reports drained, and the mixer drops it.
	v.ctrl.Streamer = nil
	v.out.lock.Unlock()
	v.ctrl = nil
	v.vol = nil
	v.stream = nil
}

func (v *BeepVoice) SetPaused(paused bool) {
	v.paused = paused
	if v.ctrl == nil {
		return
	}
	v.out.lock.Lock()
	v.ctrl.Paused = paused
	v.out.lock.Unlock()
}

func (v *BeepVoice) SetVolume(vol float64) {
	v.setVolume(vol)
	v.applyGain()
}

func (v *BeepVoice) IsPlaying() bool {
	return v.playing && !v.paused
}

func (v *BeepVoice) Position() int {
	if v.stream == nil {
		return 0
	}
	v.out.lock.Lock()
	defer v.out.lock.Unlock()
	return v.stream.src.Position()
}

func (v *BeepVoice) Update(dt float64) {
	if !v.IsPlaying() {
		return
	}
	v.out.lock.Lock()
	done := v.stream == nil || v.stream.done
	v.out.lock.Unlock()
	if done {
		v.Stop()
		return
	}
	if v.step(dt) {
		v.Stop()
		return
	}
	v.applyGain()
}

func (v *BeepVoice) Close() error {
	v.Stop()
	v.buf = nil
	return nil
}

func (v *BeepVoice) applyGain() {
	if v.vol == nil {
		return
	}
	v.out.lock.Lock()
	setGain(v.vol, v.gain())
	v.out.lock.Unlock()
}

// setGain maps a linear gain onto a base-2 volume effect. log2(0) is -Inf,
// so silence is expressed with Silent instead.
func setGain(vol *effects.Volume, g float64) {
	if g <= 0 {
		vol.Volume = 0
		vol.Silent = true
		return
	}
	vol.Volume = math.Log2(g)
	vol.Silent = false
}

// loopStreamer plays a buffer region and optionally wraps to its start. The
// loop flag may change while it is streaming.
type loopStreamer struct {
	src  beep.StreamSeeker
	loop bool
	done bool
}

func (l *loopStreamer) Stream(samples [][2]float64) (int, bool) {
	if l.done {
		return 0, false
	}
	n := 0
	for n < len(samples) {
		m, ok := l.src.Stream(samples[n:])
		n += m
		if ok && m > 0 {
			continue
		}
		if !l.loop || l.src.Len() == 0 || l.src.Seek(0) != nil {
			l.done = true
			return n, n > 0
		}
	}
	return n, true
}

func (l *loopStreamer) Err() error {
	return l.src.Err()
}

// pcmStreamer decodes interleaved 16-bit little-endian stereo.
type pcmStreamer struct {
	data []byte
	pos  int
}

func (p *pcmStreamer) Stream(samples [][2]float64) (int, bool) {
	n := 0
	for n < len(samples) && p.pos+4 <= len(p.data) {
		l := int16(binary.LittleEndian.Uint16(p.data[p.pos:]))
		r := int16(binary.LittleEndian.Uint16(p.data[p.pos+2:]))
		samples[n][0] = float64(l) / 32768
		samples[n][1] = float64(r) / 32768
		p.pos += 4
		n++
	}
	return n, n > 0
}

func (p *pcmStreamer) Err() error { return nil }
