package soundtrack

// PlayRequest describes one Play or Crossfade call.
//
// When Enqueue is set and something is already queued the request is appended
// behind it instead of replacing the head. ResumeIfPlayedBefore starts the
// track from its stored resume point, overriding StartSample.
type PlayRequest struct {
	TrackID              int
	Loop                 bool
	Enqueue              bool
	FadeTime             float64
	ResumeIfPlayedBefore bool
	StartSample          int
	LoopOverlapTime      float64
}

// QueueEntry is one pending or currently playing track.
type QueueEntry struct {
	TrackID         int
	Loop            bool
	FadeTime        float64
	IsCrossfade     bool
	ResumeFromSaved bool
	StartSample     int
	LoopOverlapTime float64
}

func newQueueEntry(req PlayRequest, crossfade bool) QueueEntry {
	return QueueEntry{
		TrackID:         req.TrackID,
		Loop:            req.Loop,
		FadeTime:        req.FadeTime,
		IsCrossfade:     crossfade,
		ResumeFromSaved: req.ResumeIfPlayedBefore,
		StartSample:     req.StartSample,
		LoopOverlapTime: req.LoopOverlapTime,
	}.normalized()
}

// normalized clamps negative values and clears IsCrossfade on zero-length
// fades.
func (q QueueEntry) normalized() QueueEntry {
	if q.FadeTime < 0 {
		q.FadeTime = 0
	}
	if q.FadeTime == 0 {
		q.IsCrossfade = false
	}
	if q.StartSample < 0 {
		q.StartSample = 0
	}
	if q.LoopOverlapTime < 0 {
		q.LoopOverlapTime = 0
	}
	return q
}

func cloneQueue(q []QueueEntry) []QueueEntry {
	if len(q) == 0 {
		return nil
	}
	return append([]QueueEntry(nil), q...)
}
