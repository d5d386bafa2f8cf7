package soundtrack

// Voice is a single-voice audio player: one clip, one play head, one volume.
//
// Volume is the fade level in [0,1]; backends multiply it by the relative
// volume and the route gain. FadeTo ramps the fade level linearly while
// Update is being called, and a fade that ends at 0 stops the voice.
// Positions are sample frames into the current clip.
type Voice interface {
	SetClip(c Clip)
	Clip() Clip
	SetRoute(r Route)
	Route() Route
	SetRelativeVolume(v float64)
	RelativeVolume() float64
	SetLoop(loop bool)
	Loop() bool

	Play(offset int)
	Stop()
	SetPaused(paused bool)

	SetVolume(v float64)
	Volume() float64
	FadeTo(volume, duration float64)

	IsPlaying() bool
	Position() int

	Update(dt float64)
	Close() error
}

// VoiceFactory opens a fresh voice on the same output as the channel's main
// voice. Fade voices are opened through it.
type VoiceFactory func() Voice

// Ramp is a linear interpolation between two values over a fixed duration.
type Ramp struct {
	from     float64
	to       float64
	duration float64
	elapsed  float64
	active   bool
}

// Start begins a ramp. A non-positive duration completes immediately on the
// next Step.
func (r *Ramp) Start(from, to, duration float64) {
	r.from = from
	r.to = to
	r.duration = duration
	r.elapsed = 0
	r.active = true
}

func (r *Ramp) Cancel() {
	r.active = false
}

func (r *Ramp) Active() bool {
	return r.active
}

func (r *Ramp) Target() float64 {
	return r.to
}

// Step advances the ramp by dt and returns the current value and whether the
// ramp finished on this step.
func (r *Ramp) Step(dt float64) (float64, bool) {
	if !r.active {
		return r.to, false
	}
	r.elapsed += dt
	if r.duration <= 0 || r.elapsed >= r.duration {
		r.active = false
		return r.to, true
	}
	t := r.elapsed / r.duration
	return r.from + (r.to-r.from)*t, false
}
