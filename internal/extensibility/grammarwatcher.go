package extensibility

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// GrammarWatcher emits the path of a grammar file whenever it changes on disk.
// Bursts of writes within the debounce window collapse into one event.
type GrammarWatcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	ch       chan string
	errs     chan error
	stop     chan struct{}
	once     sync.Once
}

// NewGrammarWatcher watches path. The parent directory is watched so editors that
// replace the file by rename are still seen.
func NewGrammarWatcher(path string, debounce time.Duration) (*GrammarWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	w := &GrammarWatcher{
		path:     abs,
		debounce: debounce,
		watcher:  watcher,
		ch:       make(chan string, 1),
		errs:     make(chan error, 1),
		stop:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *GrammarWatcher) run() {
	defer close(w.ch)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case w.ch <- w.path:
			default:
				// a reload is already pending
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Events returns the change channel. It is closed by Close.
func (w *GrammarWatcher) Events() <-chan string { return w.ch }

// Errors reports watcher failures; only the latest unread error is kept.
func (w *GrammarWatcher) Errors() <-chan error { return w.errs }

// Close stops watching. Safe to call multiple times.
func (w *GrammarWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.watcher.Close()
	})
	return err
}
