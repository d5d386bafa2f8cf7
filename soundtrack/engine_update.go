package soundtrack

import (
	"math"

	"go.uber.org/zap"
)

// Update advances the channel by dt seconds. It does nothing while the scene
// is loading or while the channel is paused.
func (e *Engine) Update(dt float64) {
	if e.loading || e.paused || dt < 0 {
		return
	}

	e.updateFades(dt)
	e.updateDelay(dt)
	e.dequeueFinished()
	e.preemptNext()
	e.overlapLoop()

	e.voice.Update(dt)

	playing := e.voice.IsPlaying()
	if e.wasPlaying && !playing && e.delay <= 0 {
		e.sink.OnStop(e.kind == KindMusic, 0)
	}
	e.wasPlaying = playing
	if !playing && len(e.fades) == 0 {
		e.stopping = false
	}
}

func (e *Engine) updateFades(dt float64) {
	if len(e.fades) == 0 {
		return
	}
	live := e.fades[:0]
	for _, f := range e.fades {
		if f.Update(dt) {
			live = append(live, f)
		}
	}
	clear(e.fades[len(live):])
	e.fades = live
}

func (e *Engine) updateDelay(dt float64) {
	if e.delay <= 0 {
		return
	}
	e.delay -= dt
	if e.delay > 0 {
		return
	}
	if e.voice.IsPlaying() && e.voice.Volume() > 0 {
		// The fade-out finishes in this tick's voice update.
		e.delay = math.SmallestNonzeroFloat64
		return
	}
	e.delay = 0
	if len(e.queue) == 0 {
		return
	}

	head := e.queue[0]
	track, ok := e.resolve(head.TrackID)
	if !ok {
		e.queue = e.queue[1:]
		return
	}
	head = e.resolveStart(head)
	e.queue[0] = head
	e.startTrack(track, head, max(head.FadeTime, minFadeTime))
}

// dequeueFinished drops a head whose clip ended on its own and starts the
// entry queued behind it.
func (e *Engine) dequeueFinished() {
	if !e.active || e.delay > 0 || len(e.queue) == 0 || e.voice.IsPlaying() {
		return
	}

	done := e.queue[0]
	delete(e.resume, done.TrackID)
	e.active = false
	e.queue = e.queue[1:]
	if len(e.queue) == 0 {
		e.queue = nil
		return
	}

	for len(e.queue) > 0 {
		head := e.queue[0]
		track, ok := e.resolve(head.TrackID)
		if !ok {
			e.queue = e.queue[1:]
			continue
		}
		head = e.resolveStart(head)
		e.queue[0] = head
		e.notifyPlay(head)
		e.startTrack(track, head, head.FadeTime)
		return
	}
	e.queue = nil
}

// preemptNext begins the transition to the second queue entry early enough
// that its fade completes as the head's clip ends.
func (e *Engine) preemptNext() {
	if !e.active || e.delay > 0 || len(e.queue) < 2 || !e.voice.IsPlaying() {
		return
	}
	next := e.queue[1]
	if next.FadeTime <= 0 {
		return
	}
	threshold, ok := e.threshold(next.FadeTime)
	if !ok || e.voice.Position() <= threshold {
		return
	}

	track, found := e.resolve(next.TrackID)
	if !found {
		e.queue = append(e.queue[:1], e.queue[2:]...)
		return
	}

	e.log.Debug("soundtrack: advancing queue",
		zap.Int("from", e.queue[0].TrackID),
		zap.Int("to", next.TrackID),
		zap.Bool("crossfade", next.IsCrossfade),
	)
	delete(e.resume, e.queue[0].TrackID)
	e.queue = e.queue[1:]
	next = e.resolveStart(next)
	e.queue[0] = next
	e.notifyPlay(next)
	if next.IsCrossfade {
		e.crossfadeTo(track, next, next.FadeTime)
		return
	}
	e.fadeOutThenIn(next.FadeTime)
}

// overlapLoop restarts a sole looping head before its clip ends, leaving the
// old instance to decay on a fade voice.
func (e *Engine) overlapLoop() {
	if !e.active || e.delay > 0 || len(e.queue) != 1 || !e.voice.IsPlaying() {
		return
	}
	head := e.queue[0]
	if !head.Loop || head.LoopOverlapTime <= 0 {
		return
	}
	threshold, ok := e.threshold(head.LoopOverlapTime)
	if !ok || threshold <= 0 || e.voice.Position() <= threshold {
		return
	}

	e.spawnFade(head.TrackID, head.LoopOverlapTime)
	e.voice.Stop()
	e.voice.SetVolume(0)
	e.voice.Play(0)
	e.voice.FadeTo(1, head.LoopOverlapTime)
	if e.paused {
		e.voice.SetPaused(true)
	}
}

// threshold is the sample position after which a fade of fade seconds must
// begin to finish exactly at the end of the main voice's clip.
func (e *Engine) threshold(fade float64) (int, bool) {
	clip := e.voice.Clip()
	secs := clipSeconds(clip)
	if secs <= 0 {
		return 0, false
	}
	return int(float64(clip.Len()) * (secs - fade) / secs), true
}
