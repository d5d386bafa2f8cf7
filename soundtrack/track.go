package soundtrack

// Clip is a decoded audio buffer a Voice can play. Len is measured in sample
// frames at SampleRate.
type Clip interface {
	Len() int
	SampleRate() int
}

// Route is an output routing target (a mixer bus). A nil Route means the
// channel default.
type Route interface {
	RouteName() string
}

// Track is a catalog entry. The engine never mutates it.
type Track struct {
	ID             int
	Clip           Clip
	RelativeVolume float64
	Route          Route
}

// Catalog maps track IDs to playable tracks.
type Catalog interface {
	Resolve(id int) (Track, bool)
}

// MapCatalog is an in-memory Catalog keyed by track ID.
type MapCatalog map[int]Track

func NewMapCatalog(tracks ...Track) MapCatalog {
	c := make(MapCatalog, len(tracks))
	for _, t := range tracks {
		c[t.ID] = t
	}
	return c
}

func (c MapCatalog) Resolve(id int) (Track, bool) {
	t, ok := c[id]
	return t, ok
}

// clipSeconds returns the clip length in seconds, or 0 for an empty clip.
func clipSeconds(c Clip) float64 {
	if c == nil || c.SampleRate() <= 0 {
		return 0
	}
	return float64(c.Len()) / float64(c.SampleRate())
}

func hasAudio(c Clip) bool {
	return c != nil && c.Len() > 0
}
