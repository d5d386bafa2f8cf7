package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/milk9111/soundtrack/logging"
	"github.com/milk9111/soundtrack/savedata"
	"github.com/milk9111/soundtrack/soundtrack"
)

var inspectSlot string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a decoded save slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		slot := inspectSlot
		if slot == "" {
			slot = cfg.Save.Slot
		}
		store, err := savedata.Open(cfg, logging.L())
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		data, err := store.Load(ctx, slot)
		if err != nil {
			return err
		}
		writeSlot(cmd.OutOrStdout(), slot, data)
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectSlot, "slot", "", "slot to inspect (defaults to save.slot)")
	rootCmd.AddCommand(inspectCmd)
}

// writeSlot prints every key of data, expanding queue and resume strings.
func writeSlot(w io.Writer, slot string, data *savedata.Data) {
	fmt.Fprintf(w, "slot %s (%d keys)\n", slot, data.Len())
	for _, key := range data.Keys() {
		value := data.String(key)
		fmt.Fprintf(w, "  %s = %q\n", key, value)
		switch {
		case strings.HasSuffix(key, "."+soundtrack.KeyQueue), strings.HasSuffix(key, "."+soundtrack.KeyLastQueue):
			for i, e := range soundtrack.ParseQueue(value) {
				fmt.Fprintf(w, "    [%d] track %d loop=%t fade=%gs crossfade=%t overlap=%gs\n",
					i, e.TrackID, e.Loop, e.FadeTime, e.IsCrossfade, e.LoopOverlapTime)
			}
		case strings.HasSuffix(key, "."+soundtrack.KeyResume):
			points := soundtrack.ParseResumePoints(value)
			for _, id := range points.IDs() {
				fmt.Fprintf(w, "    track %d resumes at sample %d\n", id, points[id])
			}
		}
	}
}
