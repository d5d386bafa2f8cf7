package system

import (
	"errors"
	"testing"

	"github.com/milk9111/soundtrack/config"
	"github.com/milk9111/soundtrack/cue"
	"github.com/milk9111/soundtrack/soundtrack"
)

func TestPauseGatesChannels(t *testing.T) {
	pool := &voicePool{}
	s := newTestSystem(pool)
	s.Music().Play(soundtrack.PlayRequest{TrackID: 1, Loop: true})
	s.Ambience().Play(soundtrack.PlayRequest{TrackID: 1, Loop: true})
	tick(s, 5)

	s.SetPaused(true)
	music, ambience := s.Music().Position(), s.Ambience().Position()
	tick(s, 10)
	if got := s.Music().Position(); got != music+100 {
		t.Fatalf("expected music to keep playing while paused, got %d from %d", got, music)
	}
	if got := s.Ambience().Position(); got != ambience {
		t.Fatalf("expected ambience frozen at %d, got %d", ambience, got)
	}

	s.SetPaused(false)
	tick(s, 1)
	if got := s.Ambience().Position(); got != ambience+10 {
		t.Fatalf("expected ambience to resume from %d, got %d", ambience, got)
	}
}

func TestSceneLoadFreezesEverything(t *testing.T) {
	pool := &voicePool{}
	s := newTestSystem(pool)
	s.Music().Play(soundtrack.PlayRequest{TrackID: 1})
	tick(s, 3)
	pos := s.Music().Position()

	s.BeginSceneLoad()
	tick(s, 50)
	if !s.Loading() || s.Music().Position() != pos {
		t.Fatalf("expected position %d while loading, got %d", pos, s.Music().Position())
	}
	s.EndSceneLoad()
	tick(s, 1)
	if got := s.Music().Position(); got != pos+10 {
		t.Fatalf("expected %d after loading, got %d", pos+10, got)
	}
}

func TestEndOthersStopsStrays(t *testing.T) {
	pool := &voicePool{}
	s := newTestSystem(pool)

	musicStray := s.PlayStray(soundtrack.KindMusic, track(9, 10), true)
	ambienceStray := s.PlayStray(soundtrack.KindAmbience, track(9, 10), true)
	if musicStray == nil || ambienceStray == nil {
		t.Fatalf("expected stray voices")
	}

	s.Music().Play(soundtrack.PlayRequest{TrackID: 1})
	if s.Strays(soundtrack.KindMusic) != 0 {
		t.Fatalf("expected music strays ended, got %d", s.Strays(soundtrack.KindMusic))
	}
	if musicStray.IsPlaying() {
		t.Fatalf("expected music stray stopped")
	}

	// Ambience does not end others by default.
	s.Ambience().Play(soundtrack.PlayRequest{TrackID: 1})
	if s.Strays(soundtrack.KindAmbience) != 1 || !ambienceStray.IsPlaying() {
		t.Fatalf("expected ambience stray to keep playing")
	}
}

func TestStrayReleasedWhenFinished(t *testing.T) {
	pool := &voicePool{}
	s := newTestSystem(pool)
	v := s.PlayStray(soundtrack.KindAmbience, track(5, 0.1), false)
	tick(s, 10)
	if s.Strays(soundtrack.KindAmbience) != 0 {
		t.Fatalf("expected finished stray released")
	}
	if !v.(*fakeVoice).closed {
		t.Fatalf("expected finished stray closed")
	}

	if s.PlayStray(soundtrack.KindMusic, soundtrack.Track{ID: 6}, false) != nil {
		t.Fatalf("expected no voice for a track without audio")
	}
}

func TestCuesDriveChannels(t *testing.T) {
	pool := &voicePool{}
	s := newTestSystem(pool)

	rt, err := cue.Compile("test", []byte(`
on_start = func(music, ambience, state) {
	music.play(1, {loop: true})
}
on_tick = func(music, ambience, state, t) {
	if t >= 0.05 && !state.switched {
		music.crossfade(2, {fade: 0.5})
		state.switched = true
	}
}`), s.Music(), s.Ambience(), nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	s.AddCue(rt)

	tick(s, 1)
	if got := s.Music().CurrentTrackID(); got != 1 {
		t.Fatalf("expected cue to start track 1, got %d", got)
	}
	tick(s, 5)
	if got := s.Music().CurrentTrackID(); got != 2 {
		t.Fatalf("expected cue to crossfade to 2, got %d", got)
	}

	s.SetPaused(true)
	before := rt.Elapsed()
	tick(s, 10)
	if rt.Elapsed() != before {
		t.Fatalf("expected cue clock frozen while paused")
	}
}

func TestFailingCueRemoved(t *testing.T) {
	pool := &voicePool{}
	s := newTestSystem(pool)
	rt, err := cue.Compile("bad", []byte(`on_start = func(m, a, s) { m.play("nope") }`), s.Music(), s.Ambience(), nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	s.AddCue(rt)
	tick(s, 1)
	if len(s.Cues()) != 0 {
		t.Fatalf("expected failing cue removed, got %v", s.Cues())
	}

	good, _ := cue.Compile("good", []byte(`x := 1`), nil, nil, nil)
	s.ReplaceCue(good)
	again, _ := cue.Compile("good", []byte(`x := 2`), nil, nil, nil)
	s.ReplaceCue(again)
	if len(s.Cues()) != 1 {
		t.Fatalf("expected replace to keep one cue, got %v", s.Cues())
	}
}

func TestWatchDrainsChanges(t *testing.T) {
	pool := &voicePool{}
	s := newTestSystem(pool)
	changes := make(chan config.Change, 4)
	var applied []string
	s.Watch(changes, func(c config.Change) error {
		applied = append(applied, c.Path)
		if c.Kind == config.FileScript {
			return errors.New("boom")
		}
		return nil
	})

	changes <- config.Change{Path: "tracks.yaml", Kind: config.FileManifest}
	changes <- config.Change{Path: "intro.tengo", Kind: config.FileScript}
	s.BeginSceneLoad()
	s.Update(0.01)
	if len(applied) != 2 {
		t.Fatalf("expected both changes applied even while loading, got %v", applied)
	}

	close(changes)
	s.Update(0.01)
	s.Update(0.01)
	if len(applied) != 2 {
		t.Fatalf("expected no more changes, got %v", applied)
	}
}
