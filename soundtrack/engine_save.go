package soundtrack

import "go.uber.org/zap"

// Save writes the channel's queue, resume points, last-session queue and
// current position into data. Fade voices are not persisted.
func (e *Engine) Save(data SaveData) {
	if data == nil {
		return
	}
	pos := e.lastPosition
	if len(e.queue) > 0 {
		pos = e.headPosition(e.voice.Position())
	}
	data.SetInt(saveKey(e.kind, KeyPosition), pos)
	data.SetString(saveKey(e.kind, KeyQueue), FormatQueue(e.queue))
	data.SetString(saveKey(e.kind, KeyResume), FormatResumePoints(e.resume))
	data.SetString(saveKey(e.kind, KeyLastQueue), FormatQueue(e.lastQueue))
}

// Load replaces the channel state with what data holds and starts the restored
// head track, crossfading from whatever is audible when the channel is
// configured to.
func (e *Engine) Load(data SaveData) {
	if data == nil {
		return
	}

	queueStr := data.String(saveKey(e.kind, KeyQueue))
	queue := ParseQueue(queueStr)
	if len(queue) == 0 && queueStr != "" {
		e.log.Debug("soundtrack: saved queue has no entries", zap.String("queue", queueStr))
	}
	e.resume = ParseResumePoints(data.String(saveKey(e.kind, KeyResume)))
	e.lastQueue = ParseQueue(data.String(saveKey(e.kind, KeyLastQueue)))
	pos := max(data.Int(saveKey(e.kind, KeyPosition)), 0)
	e.lastPosition = pos
	e.delay = 0
	e.active = false

	// Leading entries that cannot play would block the queue forever.
	var track Track
	for len(queue) > 0 {
		var ok bool
		if track, ok = e.resolve(queue[0].TrackID); ok {
			break
		}
		queue = queue[1:]
		pos = 0
	}

	audible := e.voice.IsPlaying() && !e.stopping
	if len(queue) == 0 {
		e.queue = nil
		if audible {
			e.cutAll()
			e.sink.OnStop(e.kind == KindMusic, 0)
		}
		return
	}

	queue[0].StartSample = pos
	if e.cfg.RestartOnLoad {
		queue[0].StartSample = 0
	}
	e.queue = queue
	e.stopping = false

	head := queue[0]
	if e.cfg.CrossfadeOnLoad && e.cfg.LoadFadeTime > 0 {
		e.notifyPlay(QueueEntry{TrackID: head.TrackID, Loop: head.Loop, FadeTime: e.cfg.LoadFadeTime, StartSample: head.StartSample})
		if audible {
			e.spawnFade(e.playingID, e.cfg.LoadFadeTime)
		}
		e.startTrack(track, head, e.cfg.LoadFadeTime)
		return
	}

	for _, f := range e.fades {
		f.Destroy()
	}
	e.fades = nil
	e.notifyPlay(QueueEntry{TrackID: head.TrackID, Loop: head.Loop, StartSample: head.StartSample})
	e.startTrack(track, head, 0)
}
