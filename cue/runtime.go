package cue

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/soundtrack"
)

// Channel is the part of a soundtrack channel a cue script can drive.
type Channel interface {
	Play(req soundtrack.PlayRequest) float64
	Crossfade(req soundtrack.PlayRequest) float64
	StopAll(fadeTime float64, storeResumePoint bool) float64
	ResumeLastQueue(fadeTime float64, playFromStart bool) float64
	CurrentTrackID() int
	SyncTrackWithCurrent(trackID, offset int)
}

// Modules scripts may import.
var Modules = []string{"math", "text", "times", "rand", "fmt", "enum"}

// The script body runs on every phase; only assignments belong at the top
// level. on_start runs once, on_tick every Tick with the elapsed seconds.
const dispatchScript = `
if __phase == "start" {
	if is_callable(on_start) {
		on_start(__music, __ambience, __state)
	}
} else if __phase == "tick" {
	if is_callable(on_tick) {
		on_tick(__music, __ambience, __state, __t)
	}
}
`

// Runtime is one compiled cue script bound to the music and ambience
// channels.
type Runtime struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	music    *tengo.ImmutableMap
	ambience *tengo.ImmutableMap
	log      *zap.Logger

	elapsed float64
	started bool
	hasTick bool
}

// Compile builds a runtime for src. Either channel may be nil, in which case
// the script's calls on it are no-ops.
func Compile(name string, src []byte, music, ambience Channel, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + dispatchScript))
	_ = script.Add("__phase", "")
	_ = script.Add("__music", map[string]any{})
	_ = script.Add("__ambience", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__t", 0.0)
	_ = script.Add("on_start", nil)
	_ = script.Add("on_tick", nil)
	script.SetImports(stdlib.GetModuleMap(Modules...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("cue: compile %q: %w", name, err)
	}

	log := logger.With(zap.String("cue", name))
	rt := &Runtime{
		name:     name,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
		log:      log,
	}
	rt.music = channelObject(music, log.With(zap.String("channel", soundtrack.KindMusic.String())))
	rt.ambience = channelObject(ambience, log.With(zap.String("channel", soundtrack.KindAmbience.String())))

	if err := rt.run("define", 0); err != nil {
		return nil, err
	}
	rt.hasTick = !compiled.Get("on_tick").IsUndefined()
	return rt, nil
}

func (r *Runtime) Name() string {
	return r.name
}

// HasTick reports whether the script defines on_tick.
func (r *Runtime) HasTick() bool {
	return r.hasTick
}

func (r *Runtime) Elapsed() float64 {
	return r.elapsed
}

func (r *Runtime) Started() bool {
	return r.started
}

// Start runs on_start. Later calls do nothing.
func (r *Runtime) Start() error {
	if r.started {
		return nil
	}
	r.started = true
	return r.run("start", 0)
}

// Tick advances the script clock by dt and runs on_tick, starting the script
// first if needed.
func (r *Runtime) Tick(dt float64) error {
	if !r.started {
		if err := r.Start(); err != nil {
			return err
		}
	}
	if dt > 0 {
		r.elapsed += dt
	}
	if !r.hasTick {
		return nil
	}
	return r.run("tick", r.elapsed)
}

// State returns a copy of the script's persistent state map.
func (r *Runtime) State() map[string]any {
	out := make(map[string]any, len(r.state.Value))
	for k, v := range r.state.Value {
		out[k] = objectToAny(v)
	}
	return out
}

func (r *Runtime) run(phase string, t float64) error {
	if err := r.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := r.compiled.Set("__music", r.music); err != nil {
		return err
	}
	if err := r.compiled.Set("__ambience", r.ambience); err != nil {
		return err
	}
	if err := r.compiled.Set("__state", r.state); err != nil {
		return err
	}
	if err := r.compiled.Set("__t", t); err != nil {
		return err
	}
	if err := r.compiled.Run(); err != nil {
		return fmt.Errorf("cue: %s %q: %w", phase, r.name, err)
	}
	return nil
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
