package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
	"golang.design/x/clipboard"

	"github.com/milk9111/soundtrack/soundtrack"
	"github.com/milk9111/soundtrack/system"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	keyFade    = 1.0
	queueFade  = 2.0
	statusTick = 180
)

var trackKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

const helpText = `1-9       play music track (shift: crossfade)
Q         queue the next music track as a crossfade
A         toggle ambience
S         stop music, keeping its resume point
R         resume the last stopped music queue
L (hold)  simulate a scene load
F5 / F9   save / load slot
C / V     copy save to clipboard / load save from clipboard
Esc       pause
H         toggle this help`

type Game struct {
	app       *app
	ui        *ebitenui.UI
	clipboard bool

	paused  bool
	quit    bool
	help    bool
	loading bool

	status    string
	statusTTL int
}

func NewGame(a *app, clipboardOK bool) *Game {
	g := &Game{app: a, clipboard: clipboardOK}
	g.ui = NewPauseUI(g)
	a.persist.OnError = func(mode system.PersistenceMode, slot string, err error) {
		g.setStatus(fmt.Sprintf("%s %q failed: %v", mode, slot, err))
	}
	return g
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.setPaused(!g.paused)
	}
	if g.paused {
		g.ui.Update()
	} else {
		g.handleKeys()
	}

	if g.statusTTL > 0 {
		g.statusTTL--
	}
	g.app.update(1 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) setPaused(paused bool) {
	g.paused = paused
	g.app.sound.SetPaused(paused)
}

func (g *Game) handleKeys() {
	music := g.app.sound.Music()
	ambience := g.app.sound.Ambience()
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)

	for i, key := range trackKeys {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		req := soundtrack.PlayRequest{TrackID: i + 1, Loop: true, FadeTime: keyFade, ResumeIfPlayedBefore: true}
		if shift {
			g.setStatus(fmt.Sprintf("crossfade to %s (%.1fs)", g.app.catalogs.Music.Name(i+1), music.Crossfade(req)))
		} else {
			g.setStatus(fmt.Sprintf("play %s (%.1fs)", g.app.catalogs.Music.Name(i+1), music.Play(req)))
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ):
		next := g.nextMusicTrack()
		if next < 0 {
			g.setStatus("no music tracks")
			return
		}
		music.Crossfade(soundtrack.PlayRequest{TrackID: next, Loop: true, Enqueue: true, FadeTime: queueFade})
		g.setStatus(fmt.Sprintf("queued %s", g.app.catalogs.Music.Name(next)))
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		g.toggleAmbience(ambience)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		music.StopAll(keyFade, true)
		g.setStatus("music stopped")
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if d := music.ResumeLastQueue(keyFade, false); d > 0 {
			g.setStatus("resumed last queue")
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.app.persist.RequestSave(g.app.cfg.Save.Slot)
		g.setStatus("saved " + g.app.cfg.Save.Slot)
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		g.app.persist.RequestLoad(g.app.cfg.Save.Slot)
		g.setStatus("loaded " + g.app.cfg.Save.Slot)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copySave()
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		g.pasteSave()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.help = !g.help
	}

	loading := ebiten.IsKeyPressed(ebiten.KeyL)
	if loading != g.loading {
		g.loading = loading
		if loading {
			g.app.sound.BeginSceneLoad()
		} else {
			g.app.sound.EndSceneLoad()
		}
	}
}

func (g *Game) toggleAmbience(ambience *soundtrack.Engine) {
	if ambience.CurrentTrackID() >= 0 {
		ambience.StopAll(keyFade, true)
		g.setStatus("ambience off")
		return
	}
	if len(ambience.LastQueue()) > 0 {
		ambience.ResumeLastQueue(keyFade, false)
		g.setStatus("ambience resumed")
		return
	}
	ids := g.app.catalogs.Ambience.IDs()
	if len(ids) == 0 {
		g.setStatus("no ambience tracks")
		return
	}
	ambience.Play(soundtrack.PlayRequest{TrackID: ids[0], Loop: true, FadeTime: keyFade * 2, LoopOverlapTime: keyFade})
	g.setStatus("ambience on")
}

// nextMusicTrack is the catalog ID after the last queued track, wrapping.
func (g *Game) nextMusicTrack() int {
	ids := g.app.catalogs.Music.IDs()
	if len(ids) == 0 {
		return -1
	}
	queue := g.app.sound.Music().Queue()
	if len(queue) == 0 {
		return ids[0]
	}
	i := slices.Index(ids, queue[len(queue)-1].TrackID)
	return ids[(i+1)%len(ids)]
}

func (g *Game) copySave() {
	if !g.clipboard {
		g.setStatus("clipboard unavailable")
		return
	}
	text, err := g.app.persist.Export()
	if err != nil {
		g.setStatus("export failed: " + err.Error())
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	g.setStatus("save copied to clipboard")
}

func (g *Game) pasteSave() {
	if !g.clipboard {
		g.setStatus("clipboard unavailable")
		return
	}
	if err := g.app.persist.Import(string(clipboard.Read(clipboard.FmtText))); err != nil {
		g.app.log.Warn("jukebox: clipboard import failed", zap.Error(err))
		g.setStatus("import failed: " + err.Error())
		return
	}
	g.setStatus("save loaded from clipboard")
}

func (g *Game) setStatus(s string) {
	g.status = s
	g.statusTTL = statusTick
}

func (g *Game) Draw(screen *ebiten.Image) {
	var b strings.Builder
	fmt.Fprintf(&b, "TPS: %.0f\n\n", ebiten.ActualTPS())
	g.writeChannel(&b, "music", g.app.sound.Music(), g.app.catalogs.Music.Name)
	g.writeChannel(&b, "ambience", g.app.sound.Ambience(), g.app.catalogs.Ambience.Name)
	if g.loading {
		b.WriteString("\n[scene loading]\n")
	}
	if g.statusTTL > 0 {
		fmt.Fprintf(&b, "\n%s\n", g.status)
	}
	if g.help {
		fmt.Fprintf(&b, "\n%s\n", helpText)
	} else {
		b.WriteString("\nH for help\n")
	}
	ebitenutil.DebugPrint(screen, b.String())

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) writeChannel(b *strings.Builder, label string, ch *soundtrack.Engine, name func(int) string) {
	current := "-"
	if id := ch.CurrentTrackID(); id >= 0 {
		current = name(id)
	}
	fmt.Fprintf(b, "%-8s %-16s pos %-8d fades %d", label, current, ch.Position(), ch.FadeVoices())
	if ch.Waiting() {
		b.WriteString(" (waiting)")
	}
	b.WriteByte('\n')
	if q := ch.Queue(); len(q) > 1 {
		names := make([]string, 0, len(q)-1)
		for _, e := range q[1:] {
			names = append(names, name(e.TrackID))
		}
		fmt.Fprintf(b, "         queued: %s\n", strings.Join(names, ", "))
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
