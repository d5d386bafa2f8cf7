package cue

import (
	"github.com/d5/tengo/v2"
	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/soundtrack"
)

// channelObject exposes ch to scripts as an immutable map of functions:
//
//	play(id, opts)            crossfade(id, opts)
//	stop(fade, store_resume)  resume_last(fade, from_start)
//	current()                 sync(id, offset)
//
// opts keys: loop, queue, fade, resume, offset, overlap.
func channelObject(ch Channel, log *zap.Logger) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["play"] = &tengo.UserFunction{Name: "play", Value: func(args ...tengo.Object) (tengo.Object, error) {
		req, err := playRequest(args)
		if err != nil {
			return nil, err
		}
		if ch == nil {
			return &tengo.Float{Value: 0}, nil
		}
		log.Debug("cue: play", zap.Int("track_id", req.TrackID), zap.Float64("fade", req.FadeTime))
		return &tengo.Float{Value: ch.Play(req)}, nil
	}}

	values["crossfade"] = &tengo.UserFunction{Name: "crossfade", Value: func(args ...tengo.Object) (tengo.Object, error) {
		req, err := playRequest(args)
		if err != nil {
			return nil, err
		}
		if ch == nil {
			return &tengo.Float{Value: 0}, nil
		}
		log.Debug("cue: crossfade", zap.Int("track_id", req.TrackID), zap.Float64("fade", req.FadeTime))
		return &tengo.Float{Value: ch.Crossfade(req)}, nil
	}}

	values["stop"] = &tengo.UserFunction{Name: "stop", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) > 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		fade := argFloat(args, 0)
		store := argBool(args, 1)
		if ch == nil {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: ch.StopAll(fade, store)}, nil
	}}

	values["resume_last"] = &tengo.UserFunction{Name: "resume_last", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) > 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		if ch == nil {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: ch.ResumeLastQueue(argFloat(args, 0), argBool(args, 1))}, nil
	}}

	values["current"] = &tengo.UserFunction{Name: "current", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ch == nil {
			return &tengo.Int{Value: -1}, nil
		}
		return &tengo.Int{Value: int64(ch.CurrentTrackID())}, nil
	}}

	values["sync"] = &tengo.UserFunction{Name: "sync", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		id, ok := tengo.ToInt(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "id", Expected: "int", Found: args[0].TypeName()}
		}
		if ch != nil {
			ch.SyncTrackWithCurrent(id, int(argFloat(args, 1)))
		}
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func playRequest(args []tengo.Object) (soundtrack.PlayRequest, error) {
	var req soundtrack.PlayRequest
	if len(args) < 1 || len(args) > 2 {
		return req, tengo.ErrWrongNumArguments
	}
	id, ok := tengo.ToInt(args[0])
	if !ok {
		return req, tengo.ErrInvalidArgumentType{Name: "id", Expected: "int", Found: args[0].TypeName()}
	}
	req.TrackID = id
	if len(args) < 2 {
		return req, nil
	}

	opts, ok := optionMap(args[1])
	if !ok {
		return req, tengo.ErrInvalidArgumentType{Name: "opts", Expected: "map", Found: args[1].TypeName()}
	}
	req.Loop = optBool(opts, "loop")
	req.Enqueue = optBool(opts, "queue")
	req.FadeTime = optFloat(opts, "fade")
	req.ResumeIfPlayedBefore = optBool(opts, "resume")
	req.StartSample = int(optFloat(opts, "offset"))
	req.LoopOverlapTime = optFloat(opts, "overlap")
	return req, nil
}

func optionMap(obj tengo.Object) (map[string]tengo.Object, bool) {
	switch v := obj.(type) {
	case *tengo.Map:
		return v.Value, true
	case *tengo.ImmutableMap:
		return v.Value, true
	case *tengo.Undefined:
		return nil, true
	default:
		return nil, false
	}
}

func optBool(opts map[string]tengo.Object, key string) bool {
	obj, ok := opts[key]
	if !ok {
		return false
	}
	return !obj.IsFalsy()
}

func optFloat(opts map[string]tengo.Object, key string) float64 {
	obj, ok := opts[key]
	if !ok {
		return 0
	}
	f, _ := tengo.ToFloat64(obj)
	return f
}

func argFloat(args []tengo.Object, i int) float64 {
	if i >= len(args) {
		return 0
	}
	f, _ := tengo.ToFloat64(args[i])
	return f
}

func argBool(args []tengo.Object, i int) bool {
	if i >= len(args) {
		return false
	}
	return !args[i].IsFalsy()
}
