package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/milk9111/soundtrack/savedata"
)

func TestWriteSlot(t *testing.T) {
	d := savedata.New()
	d.SetString("music.queue", "1:1:0.5:0:0|2:0:2:1:1")
	d.SetString("music.last_queue", "3:1:0:0:0")
	d.SetString("music.resume", "4:300|1:20")
	d.SetInt("music.position", 120)

	var buf bytes.Buffer
	writeSlot(&buf, "slot1", d)
	out := buf.String()

	for _, want := range []string{
		"slot slot1 (4 keys)",
		"[0] track 1 loop=true fade=0.5s crossfade=false overlap=0s",
		"[1] track 2 loop=false fade=2s crossfade=true overlap=1s",
		"[0] track 3 loop=true",
		"track 1 resumes at sample 20",
		`music.position = "120"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Index(out, "track 1 resumes") > strings.Index(out, "track 4 resumes") {
		t.Fatalf("expected resume points in track order, got:\n%s", out)
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"run", "play", "inspect"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, cmd, err)
		}
	}
}
