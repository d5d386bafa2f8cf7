package assets

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Tone synthesises a sine clip. The first and last few milliseconds are
// ramped so the clip loops and ends without clicks.
func Tone(freq float64, duration time.Duration, sampleRate int, amplitude float64) *Clip {
	frames := int(duration.Seconds() * float64(sampleRate))
	if frames < 0 || sampleRate <= 0 {
		frames = 0
	}
	amplitude = math.Max(0, math.Min(1, amplitude))
	edge := min(sampleRate/200, frames/2)

	pcm := make([]byte, frames*bytesPerFrame)
	phase := 0.0
	for i := 0; i < frames; i++ {
		env := 1.0
		switch {
		case i < edge:
			env = float64(i) / float64(edge)
		case i >= frames-edge:
			env = float64(frames-1-i) / float64(edge)
		}
		s := int16(math.Sin(2*math.Pi*phase) * amplitude * env * math.MaxInt16)
		binary.LittleEndian.PutUint16(pcm[i*bytesPerFrame:], uint16(s))
		binary.LittleEndian.PutUint16(pcm[i*bytesPerFrame+2:], uint16(s))

		phase += freq / float64(sampleRate)
		phase -= math.Floor(phase)
	}
	return NewClip(fmt.Sprintf("tone-%gHz", freq), pcm, sampleRate)
}
