package soundtrack

import "go.uber.org/zap"

// Kind separates the two soundtrack categories.
type Kind int

const (
	KindMusic Kind = iota
	KindAmbience
)

func (k Kind) String() string {
	switch k {
	case KindMusic:
		return "music"
	case KindAmbience:
		return "ambience"
	default:
		return "unknown"
	}
}

// ChannelConfig holds the per-category policy flags. It is read once at
// construction.
type ChannelConfig struct {
	// LoadFadeTime is the fade used when restoring a save with
	// CrossfadeOnLoad set.
	LoadFadeTime    float64
	CrossfadeOnLoad bool
	// RestartOnLoad starts the restored head track from sample 0 instead of
	// the saved position.
	RestartOnLoad   bool
	PlayWhilePaused bool
	// EndOthersOnPlay stops stray voices of the same category whenever the
	// channel starts a new track.
	EndOthersOnPlay bool
	DefaultRoute    Route
}

func DefaultMusicConfig() ChannelConfig {
	return ChannelConfig{
		LoadFadeTime:    1,
		CrossfadeOnLoad: true,
		PlayWhilePaused: true,
		EndOthersOnPlay: true,
	}
}

func DefaultAmbienceConfig() ChannelConfig {
	return ChannelConfig{
		LoadFadeTime:    0.5,
		CrossfadeOnLoad: true,
	}
}

// Options carries the optional collaborators of a channel.
type Options struct {
	Logger *zap.Logger
	Sink   EventSink
	// EndOthers is invoked with the channel kind when EndOthersOnPlay is set
	// and a new track starts.
	EndOthers func(Kind)
}

// NewMusicChannel binds an engine to the music catalog.
func NewMusicChannel(catalog Catalog, open VoiceFactory, cfg ChannelConfig, opts Options) *Engine {
	return newEngine(KindMusic, catalog, open, cfg, opts)
}

// NewAmbienceChannel binds an engine to the ambience catalog.
func NewAmbienceChannel(catalog Catalog, open VoiceFactory, cfg ChannelConfig, opts Options) *Engine {
	return newEngine(KindAmbience, catalog, open, cfg, opts)
}
