package main

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/config"
	"github.com/milk9111/soundtrack/soundtrack"
	"github.com/milk9111/soundtrack/voice"
)

// output is an opened audio backend.
type output struct {
	open soundtrack.VoiceFactory
	// forget drops any per-clip cache the backend keeps.
	forget func(soundtrack.Clip)
	close  func()
}

func openOutput(backend string, sampleRate int, logger *zap.Logger) (*output, error) {
	switch backend {
	case config.BackendEbiten:
		ctx := audio.NewContext(sampleRate)
		out := voice.NewEbitenOutput(ctx, logger)
		return &output{open: out.Open, forget: func(soundtrack.Clip) {}, close: func() {}}, nil
	case config.BackendBeep:
		sr := beep.SampleRate(sampleRate)
		if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
			return nil, fmt.Errorf("jukebox: init speaker: %w", err)
		}
		mixer := &beep.Mixer{}
		speaker.Play(mixer)
		out := voice.NewBeepOutput(mixer, nil, logger)
		forget := func(c soundtrack.Clip) {
			if p, ok := c.(voice.PCM); ok {
				out.Forget(p)
			}
		}
		return &output{open: out.Open, forget: forget, close: speaker.Clear}, nil
	default:
		return nil, fmt.Errorf("jukebox: unknown backend %q", backend)
	}
}
