package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// ErrEmptyClip is returned when a file decodes to no sample frames.
var ErrEmptyClip = errors.New("assets: clip has no samples")

const bytesPerFrame = 4

// Clip is decoded audio in ebiten's native layout: interleaved 16-bit
// little-endian stereo at SampleRate.
type Clip struct {
	name string
	pcm  []byte
	rate int
}

// NewClip wraps raw PCM. A trailing partial frame is dropped.
func NewClip(name string, pcm []byte, sampleRate int) *Clip {
	n := len(pcm) - len(pcm)%bytesPerFrame
	return &Clip{name: name, pcm: pcm[:n], rate: sampleRate}
}

func (c *Clip) Name() string    { return c.name }
func (c *Clip) Len() int        { return len(c.pcm) / bytesPerFrame }
func (c *Clip) SampleRate() int { return c.rate }
func (c *Clip) PCM() []byte     { return c.pcm }

func (c *Clip) Duration() time.Duration {
	if c.rate <= 0 {
		return 0
	}
	return time.Duration(c.Len()) * time.Second / time.Duration(c.rate)
}

// LoadClip reads and decodes an audio file from disk.
func LoadClip(path string, sampleRate int) (*Clip, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assets: read %q: %w", path, err)
	}
	return DecodeClip(path, b, sampleRate)
}

// LoadClipFS is LoadClip over an fs.FS, such as an embedded directory.
func LoadClipFS(fsys fs.FS, path string, sampleRate int) (*Clip, error) {
	b, err := fs.ReadFile(fsys, cleanClipPath(path))
	if err != nil {
		return nil, fmt.Errorf("assets: read %q: %w", path, err)
	}
	return DecodeClip(path, b, sampleRate)
}

// DecodeClip decodes wav, ogg and mp3 by file extension, resampling to
// sampleRate. Any other extension is taken as already-decoded PCM.
func DecodeClip(name string, b []byte, sampleRate int) (*Clip, error) {
	reader := bytes.NewReader(b)

	var (
		stream io.Reader
		err    error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(sampleRate, reader)
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(sampleRate, reader)
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(sampleRate, reader)
	default:
		stream = reader
	}
	if err != nil {
		return nil, fmt.Errorf("assets: decode %q: %w", name, err)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("assets: decode %q: %w", name, err)
	}
	clip := NewClip(cleanClipPath(name), pcm, sampleRate)
	if clip.Len() == 0 {
		return nil, fmt.Errorf("assets: decode %q: %w", name, ErrEmptyClip)
	}
	return clip, nil
}

func cleanClipPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if filepath.IsAbs(path) {
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return filepath.Base(path)
	}
	return strings.TrimPrefix(s, "assets/")
}
