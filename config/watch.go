package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileKind classifies a changed file.
type FileKind int

const (
	FileManifest FileKind = iota
	FileScript
)

type Change struct {
	Path string
	Kind FileKind
}

// Watcher reports writes to yaml manifests and tengo scripts in a set of
// directories. Bursts of events for one file inside the debounce window are
// reported once.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	changes  chan Change
	errors   chan error
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewWatcher(debounce time.Duration, dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:       fw,
		debounce: debounce,
		changes:  make(chan Change, 16),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) Changes() <-chan Change { return w.changes }
func (w *Watcher) Errors() <-chan error   { return w.errors }

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		close(w.changes)
		close(w.errors)
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	last := make(map[string]time.Time)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			kind, ok := classify(ev.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, seen := last[ev.Name]; seen && now.Sub(t) < w.debounce {
				continue
			}
			last[ev.Name] = now

			select {
			case w.changes <- Change{Path: ev.Name, Kind: kind}:
			case <-w.done:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		case <-w.done:
			return
		}
	}
}

func classify(path string) (FileKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FileManifest, true
	case ".tengo":
		return FileScript, true
	default:
		return 0, false
	}
}
