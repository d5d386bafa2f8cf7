package soundtrack

import (
	"go.uber.org/zap"
)

// minFadeTime is used instead of an instant start when nothing is audible, so
// the first tick does not pop at full volume.
const minFadeTime = 0.01

// Engine is one soundtrack channel: a FIFO of tracks played on a single main
// voice, with crossfades handled by short-lived fade voices.
//
// Engine is not safe for concurrent use. All calls, including Update, are
// expected from the host's tick goroutine.
type Engine struct {
	kind      Kind
	catalog   Catalog
	open      VoiceFactory
	cfg       ChannelConfig
	sink      EventSink
	log       *zap.Logger
	endOthers func(Kind)

	voice     Voice
	playingID int
	active    bool
	fades     []*FadeVoice

	queue        []QueueEntry
	resume       ResumePoints
	lastQueue    []QueueEntry
	lastPosition int

	// delay counts down the silent half of a sequential transition. The
	// queue head starts fading in when it reaches zero.
	delay float64

	stopping   bool
	wasPlaying bool
	loading    bool
	paused     bool
}

func newEngine(kind Kind, catalog Catalog, open VoiceFactory, cfg ChannelConfig, opts Options) *Engine {
	if open == nil {
		panic("soundtrack: nil voice factory")
	}
	v := open()
	if v == nil {
		panic("soundtrack: voice factory returned nil")
	}
	if catalog == nil {
		catalog = MapCatalog{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var sink EventSink = nopSink{}
	if opts.Sink != nil {
		sink = opts.Sink
	}

	return &Engine{
		kind:      kind,
		catalog:   catalog,
		open:      open,
		cfg:       cfg,
		sink:      sink,
		log:       logger.With(zap.String("channel", kind.String())),
		endOthers: opts.EndOthers,
		voice:     v,
		playingID: -1,
		resume:    ResumePoints{},
	}
}

// Play starts, replaces or queues a track. A transition away from something
// audible fades out first and then fades the new track in, so the returned
// estimate is twice the fade time in that case.
func (e *Engine) Play(req PlayRequest) float64 {
	return e.play(req, false)
}

// Crossfade is Play with overlapping transitions: the outgoing track fades out
// on a fade voice while the new one fades in on the main voice.
func (e *Engine) Crossfade(req PlayRequest) float64 {
	return e.play(req, true)
}

func (e *Engine) play(req PlayRequest, crossfade bool) float64 {
	track, ok := e.resolve(req.TrackID)
	if !ok {
		return 0
	}

	if req.Enqueue && len(e.queue) > 0 {
		e.queue = append(e.queue, newQueueEntry(req, crossfade))
		return 0
	}

	playing := e.voice.IsPlaying()
	if playing && e.isHead(req.TrackID) && (req.ResumeIfPlayedBefore || req.FadeTime <= 0) {
		e.queue[0].Loop = req.Loop
		e.voice.SetLoop(req.Loop)
		return 0
	}

	e.endOthersIfNeeded()
	if playing && !e.stopping {
		e.storeResumePoint()
	}

	entry := e.resolveStart(newQueueEntry(req, crossfade))
	e.queue = []QueueEntry{entry}
	e.stopping = false
	e.notifyPlay(entry)

	switch {
	case !playing:
		e.delay = 0
		e.startTrack(track, entry, max(entry.FadeTime, minFadeTime))
		return entry.FadeTime
	case entry.FadeTime > 0 && crossfade:
		e.delay = 0
		e.crossfadeTo(track, entry, entry.FadeTime)
		return entry.FadeTime
	case entry.FadeTime > 0:
		e.fadeOutThenIn(entry.FadeTime)
		return 2 * entry.FadeTime
	default:
		e.delay = 0
		e.startTrack(track, entry, 0)
		return 0
	}
}

// ResumeLastQueue restores the queue saved by the last StopAll and starts its
// head from sample 0 or from the position it was stopped at.
func (e *Engine) ResumeLastQueue(fadeTime float64, playFromStart bool) float64 {
	if len(e.lastQueue) == 0 {
		e.log.Warn("soundtrack: cannot resume last queue, nothing stored")
		return 0
	}
	if len(e.queue) > 0 || (e.voice.IsPlaying() && !e.stopping) {
		e.log.Warn("soundtrack: cannot resume last queue while a track is playing",
			zap.Int("track_id", e.CurrentTrackID()))
		return 0
	}

	queue := cloneQueue(e.lastQueue)
	track, ok := e.resolve(queue[0].TrackID)
	if !ok {
		return 0
	}
	if fadeTime < 0 {
		fadeTime = 0
	}
	queue[0].StartSample = e.lastPosition
	if playFromStart {
		queue[0].StartSample = 0
	}

	e.endOthersIfNeeded()
	e.queue = queue
	e.stopping = false
	e.delay = 0
	e.notifyPlay(QueueEntry{TrackID: queue[0].TrackID, Loop: queue[0].Loop, FadeTime: fadeTime, StartSample: queue[0].StartSample})
	e.startTrack(track, queue[0], max(fadeTime, minFadeTime))
	return fadeTime
}

// StopAll fades the channel to silence and remembers the queue for
// ResumeLastQueue. It is a no-op when nothing is playing, queued or fading.
func (e *Engine) StopAll(fadeTime float64, storeResumePoint bool) float64 {
	if fadeTime < 0 {
		fadeTime = 0
	}
	if len(e.queue) == 0 && (e.stopping || (!e.voice.IsPlaying() && len(e.fades) == 0)) {
		if e.stopping && fadeTime == 0 {
			e.cutAll()
		}
		return 0
	}

	playing := e.voice.IsPlaying() && !e.stopping
	pos := 0
	if playing {
		pos = e.voice.Position()
		if storeResumePoint {
			e.storeResumePoint()
		}
	}

	if len(e.queue) > 0 {
		e.lastQueue = cloneQueue(e.queue)
		e.lastPosition = e.headPosition(pos)
	}
	e.queue = nil
	e.delay = 0
	e.active = false

	if fadeTime == 0 {
		e.cutAll()
	} else {
		e.voice.FadeTo(0, fadeTime)
		e.stopping = true
	}
	e.sink.OnStop(e.kind == KindMusic, fadeTime)
	return fadeTime
}

// CurrentTrackID returns the queue head, or -1 when nothing is queued.
func (e *Engine) CurrentTrackID() int {
	if len(e.queue) == 0 {
		return -1
	}
	return e.queue[0].TrackID
}

// SyncTrackWithCurrent overwrites the resume point of trackID with the main
// voice position plus offset, so that trackID later resumes in step with what
// is audible now.
func (e *Engine) SyncTrackWithCurrent(trackID, offset int) {
	pos := 0
	if hasAudio(e.voice.Clip()) {
		pos = e.voice.Position()
	}
	e.resume[trackID] = max(pos+offset, 0)
}

// SetPaused freezes the channel while the host is paused, unless the channel
// may play while paused.
func (e *Engine) SetPaused(paused bool) {
	if e.cfg.PlayWhilePaused || e.paused == paused {
		return
	}
	e.paused = paused
	e.voice.SetPaused(paused)
	for _, f := range e.fades {
		if v := f.Voice(); v != nil {
			v.SetPaused(paused)
		}
	}
}

// SetLoading inhibits Update while the host is loading a scene.
func (e *Engine) SetLoading(loading bool) {
	e.loading = loading
}

func (e *Engine) Kind() Kind {
	return e.kind
}

func (e *Engine) Config() ChannelConfig {
	return e.cfg
}

// Queue returns a copy of the queue, head first.
func (e *Engine) Queue() []QueueEntry {
	return cloneQueue(e.queue)
}

func (e *Engine) LastQueue() []QueueEntry {
	return cloneQueue(e.lastQueue)
}

func (e *Engine) ResumePoints() ResumePoints {
	return e.resume.clone()
}

// ResumePoint returns the stored position of trackID.
func (e *Engine) ResumePoint(trackID int) (int, bool) {
	s, ok := e.resume[trackID]
	return s, ok
}

func (e *Engine) FadeVoices() int {
	return len(e.fades)
}

// Waiting reports whether a sequential transition is between its fade-out
// and fade-in.
func (e *Engine) Waiting() bool {
	return e.delay > 0
}

func (e *Engine) IsPlaying() bool {
	return e.voice.IsPlaying()
}

// Position is the main voice's current sample frame.
func (e *Engine) Position() int {
	return e.voice.Position()
}

// Close stops every voice owned by the channel and releases them.
func (e *Engine) Close() error {
	e.cutAll()
	return e.voice.Close()
}

func (e *Engine) resolve(id int) (Track, bool) {
	t, ok := e.catalog.Resolve(id)
	if !ok || !hasAudio(t.Clip) {
		e.log.Warn("soundtrack: track not found", zap.Int("track_id", id))
		return Track{}, false
	}
	return t, true
}

func (e *Engine) isHead(trackID int) bool {
	return len(e.queue) > 0 && e.queue[0].TrackID == trackID && e.playingID == trackID && e.delay <= 0
}

func (e *Engine) endOthersIfNeeded() {
	if e.cfg.EndOthersOnPlay && e.endOthers != nil {
		e.endOthers(e.kind)
	}
}

func (e *Engine) notifyPlay(entry QueueEntry) {
	e.sink.OnPlay(entry.TrackID, e.kind == KindMusic, entry.Loop, entry.FadeTime, entry.StartSample)
}

func (e *Engine) storeResumePoint() {
	if e.playingID < 0 || !e.voice.IsPlaying() {
		return
	}
	e.resume[e.playingID] = e.voice.Position()
}

func (e *Engine) takeResumePoint(trackID int) int {
	s := e.resume[trackID]
	delete(e.resume, trackID)
	return s
}

// resolveStart fixes where entry begins. A saved resume point is consumed
// the first time, after which the entry carries a plain start sample.
func (e *Engine) resolveStart(entry QueueEntry) QueueEntry {
	if entry.ResumeFromSaved {
		entry.StartSample = e.takeResumePoint(entry.TrackID)
		entry.ResumeFromSaved = false
	}
	return entry
}

// headPosition is the position to remember for the queue head: the live
// position when the main voice is playing it, its queued start otherwise.
func (e *Engine) headPosition(live int) int {
	if len(e.queue) == 0 {
		return 0
	}
	if e.delay <= 0 && e.playingID == e.queue[0].TrackID && e.voice.IsPlaying() {
		return live
	}
	return e.queue[0].StartSample
}

func (e *Engine) assign(t Track, loop bool) {
	e.voice.Stop()
	e.voice.SetClip(t.Clip)
	route := t.Route
	if route == nil {
		route = e.cfg.DefaultRoute
	}
	e.voice.SetRoute(route)
	e.voice.SetRelativeVolume(clamp01(t.RelativeVolume))
	e.voice.SetLoop(loop)
	e.playingID = t.ID
}

// startTrack loads t on the main voice and plays it from entry.StartSample,
// fading in over fade seconds, or at full volume when fade is 0.
func (e *Engine) startTrack(t Track, entry QueueEntry, fade float64) {
	e.assign(t, entry.Loop)
	if fade > 0 {
		e.voice.SetVolume(0)
		e.voice.Play(entry.StartSample)
		e.voice.FadeTo(1, fade)
	} else {
		e.voice.SetVolume(1)
		e.voice.Play(entry.StartSample)
	}
	if e.paused {
		e.voice.SetPaused(true)
	}
	e.active = true
}

func (e *Engine) crossfadeTo(t Track, entry QueueEntry, fade float64) {
	e.spawnFade(e.playingID, fade)
	e.startTrack(t, entry, fade)
}

func (e *Engine) fadeOutThenIn(fade float64) {
	e.voice.FadeTo(0, fade)
	e.delay = fade
	e.active = false
}

func (e *Engine) spawnFade(trackID int, fade float64) {
	fv := NewFadeVoice(e.voice, trackID, fade, e.open)
	if fv == nil {
		return
	}
	e.fades = append(e.fades, fv)
}

// cutAll silences the channel immediately: fade voices are destroyed and the
// main voice stopped.
func (e *Engine) cutAll() {
	for _, f := range e.fades {
		f.Destroy()
	}
	e.fades = nil
	e.voice.Stop()
	e.stopping = false
	e.wasPlaying = false
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
