package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.design/x/clipboard"

	"github.com/milk9111/soundtrack/logging"
)

var (
	runScript string
	runWatch  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the jukebox window",
	Long:  `Opens a window driving the music and ambience channels from the keyboard. Press H in the window for the key bindings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.L()

		out, err := openOutput(cfg.Audio.Backend, cfg.Audio.SampleRate, logger)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, out, logger)
		if err != nil {
			return err
		}
		defer a.close()

		script := runScript
		if script == "" {
			script = cfg.Cues.Startup
		}
		if script != "" {
			if err := a.startCue(script); err != nil {
				return err
			}
		}
		if runWatch {
			a.watch()
		}

		clipboardOK := true
		if err := clipboard.Init(); err != nil {
			logger.Warn("jukebox: clipboard unavailable", zap.Error(err))
			clipboardOK = false
		}

		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
		ebiten.SetWindowSize(baseWidth, baseHeight)
		ebiten.SetWindowTitle("jukebox")

		game := NewGame(a, clipboardOK)
		if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
			return err
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runScript, "script", "", "cue script to start with (defaults to cues.startup)")
	runCmd.Flags().BoolVar(&runWatch, "watch", true, "hot reload the manifest and running cue scripts")
	rootCmd.AddCommand(runCmd)
}
