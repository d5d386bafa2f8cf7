package soundtrack

import "go.uber.org/zap"

// EventSink is notified when a channel starts or stops playback. OnPlay fires
// when a transition is decided, not when its fade completes.
type EventSink interface {
	OnPlay(trackID int, isMusic, loop bool, fadeTime float64, startSample int)
	OnStop(isMusic bool, fadeTime float64)
}

type nopSink struct{}

func (nopSink) OnPlay(int, bool, bool, float64, int) {}
func (nopSink) OnStop(bool, float64)                 {}

// LogSink writes every notification to a zap logger at debug level.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) OnPlay(trackID int, isMusic, loop bool, fadeTime float64, startSample int) {
	if s.Logger == nil {
		return
	}
	s.Logger.Debug("soundtrack: play",
		zap.Int("track_id", trackID),
		zap.Bool("music", isMusic),
		zap.Bool("loop", loop),
		zap.Float64("fade", fadeTime),
		zap.Int("start_sample", startSample),
	)
}

func (s LogSink) OnStop(isMusic bool, fadeTime float64) {
	if s.Logger == nil {
		return
	}
	s.Logger.Debug("soundtrack: stop", zap.Bool("music", isMusic), zap.Float64("fade", fadeTime))
}

// MultiSink fans notifications out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) OnPlay(trackID int, isMusic, loop bool, fadeTime float64, startSample int) {
	for _, s := range m {
		if s != nil {
			s.OnPlay(trackID, isMusic, loop, fadeTime, startSample)
		}
	}
}

func (m MultiSink) OnStop(isMusic bool, fadeTime float64) {
	for _, s := range m {
		if s != nil {
			s.OnStop(isMusic, fadeTime)
		}
	}
}
