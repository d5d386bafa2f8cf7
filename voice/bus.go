package voice

import (
	"slices"

	"github.com/milk9111/soundtrack/soundtrack"
)

// Bus is a named output route with its own gain. Voices routed to a bus
// multiply their fade level and relative volume by the bus volume.
type Bus struct {
	name   string
	volume float64
	muted  bool
}

var _ soundtrack.Route = (*Bus)(nil)

func NewBus(name string, volume float64) *Bus {
	return &Bus{name: name, volume: clamp01(volume)}
}

func (b *Bus) RouteName() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Volume is the effective gain, 0 while muted.
func (b *Bus) Volume() float64 {
	if b == nil {
		return 1
	}
	if b.muted {
		return 0
	}
	return b.volume
}

func (b *Bus) SetVolume(v float64) {
	b.volume = clamp01(v)
}

func (b *Bus) SetMuted(m bool) {
	b.muted = m
}

func (b *Bus) Muted() bool {
	return b.muted
}

// Buses is the set of routes known to an output, keyed by name.
type Buses map[string]*Bus

// NewBuses builds buses from a name to volume table.
func NewBuses(volumes map[string]float64) Buses {
	out := make(Buses, len(volumes))
	for name, v := range volumes {
		out[name] = NewBus(name, v)
	}
	return out
}

// Route returns the named bus, or nil so the channel default applies.
func (b Buses) Route(name string) soundtrack.Route {
	if bus, ok := b[name]; ok {
		return bus
	}
	return nil
}

// Names lists bus names in sorted order.
func (b Buses) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
