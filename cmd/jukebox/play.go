package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milk9111/soundtrack/config"
	"github.com/milk9111/soundtrack/logging"
)

var (
	playScript   string
	playDuration time.Duration
	playTPS      int
	playOutro    float64
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a cue script headless through the speaker",
	Long:  `Runs a cue script on the beep backend without opening a window, until the duration elapses or the process is interrupted. Both channels are faded out before exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.L()
		if playTPS <= 0 {
			playTPS = 60
		}

		out, err := openOutput(config.BackendBeep, cfg.Audio.SampleRate, logger)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, out, logger)
		if err != nil {
			return err
		}
		defer a.close()

		script := playScript
		if script == "" {
			script = cfg.Cues.Startup
		}
		if err := a.startCue(script); err != nil {
			return err
		}
		a.watch()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if playDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, playDuration)
			defer cancel()
		}

		logger.Info("jukebox: playing", zap.String("script", script), zap.Duration("duration", playDuration))
		tick(ctx, a, playTPS)

		a.sound.Music().StopAll(playOutro, false)
		a.sound.Ambience().StopAll(playOutro, false)
		outro, cancel := context.WithTimeout(context.Background(), time.Duration(playOutro*float64(time.Second))+100*time.Millisecond)
		defer cancel()
		tick(outro, a, playTPS)
		return nil
	},
}

// tick advances the app at tps until ctx is done.
func tick(ctx context.Context, a *app, tps int) {
	interval := time.Second / time.Duration(tps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.update(now.Sub(last).Seconds())
			last = now
		}
	}
}

func init() {
	playCmd.Flags().StringVarP(&playScript, "script", "s", "", "cue script to play (defaults to cues.startup)")
	playCmd.Flags().DurationVarP(&playDuration, "duration", "d", 0, "stop after this long (0 plays until interrupted)")
	playCmd.Flags().IntVar(&playTPS, "tps", 60, "ticks per second")
	playCmd.Flags().Float64Var(&playOutro, "outro", 1, "fade-out seconds before exit")
	rootCmd.AddCommand(playCmd)
}
