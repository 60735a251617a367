// Package watch notices newly-closed capture logs dropped into a directory
// and automatically runs them through the log-to-archive pipeline (C2 open,
// C3 segment, C4 write), without requiring a human to invoke
// cmd/make-labeler-data by hand.
//
// fsnotify does not expose a portable "file closed" event, only Create,
// Write, Remove, Rename, and Chmod, so a file is treated as finished once
// its mtime has stopped advancing for QuietPeriod — the same debounce shape
// the teacher's sibling submodule applies to inbound media segments.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/robocup-ssl/ssl-log-tools/internal/labeler"
	"github.com/robocup-ssl/ssl-log-tools/internal/logger"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog"
	"github.com/robocup-ssl/ssl-log-tools/internal/ssllog/message"
)

// DefaultQuietPeriod is how long a capture file's mtime must stay unchanged
// before it is considered closed and safe to process.
const DefaultQuietPeriod = 2 * time.Second

// ProcessLogFile drives a single capture log through C2 → C3 → C4,
// producing a labeler archive at archivePath (ArchivePathFor gives the
// sibling ".labeler" path). It is exported independent of the
// watcher so cmd/make-labeler-data can call it directly against one file.
func ProcessLogFile(logPath, archivePath string) error {
	src, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("watch: open %s: %w", logPath, err)
	}
	defer src.Close()

	rd, err := ssllog.Open(src)
	if err != nil {
		return fmt.Errorf("watch: opening log %s: %w", logPath, err)
	}

	dst, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("watch: create %s: %w", archivePath, err)
	}
	defer dst.Close()

	return labeler.WithWriter(dst, func(wr *labeler.Writer) error {
		return rd.Each(func(msg *message.Message) error {
			return wr.AddMsg(msg)
		})
	})
}

// ArchivePathFor derives the sibling archive path for a capture log,
// replacing its extension with ".labeler".
func ArchivePathFor(logPath string) string {
	ext := filepath.Ext(logPath)
	return strings.TrimSuffix(logPath, ext) + ".labeler"
}

// Watcher watches a single directory for newly-closed ".log" files and
// processes each one exactly once.
type Watcher struct {
	dir         string
	quietPeriod time.Duration
	fsw         *fsnotify.Watcher

	// OnProcessed, if set, is called after a capture is successfully
	// processed into an archive, with the archive's path. Used to chain a
	// publish step without internal/watch depending on internal/publish.
	OnProcessed func(archivePath string)

	mu      sync.Mutex
	pending map[string]time.Time // path -> last observed mtime
	done    map[string]bool      // path -> already processed
}

// New starts watching dir. Callers must call Run to begin processing
// events and Close to release the underlying inotify/kqueue handle.
func New(dir string, quietPeriod time.Duration) (*Watcher, error) {
	if quietPeriod <= 0 {
		quietPeriod = DefaultQuietPeriod
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch.New: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch.New: watching %s: %w", dir, err)
	}
	return &Watcher{
		dir:         dir,
		quietPeriod: quietPeriod,
		fsw:         fsw,
		pending:     make(map[string]time.Time),
		done:        make(map[string]bool),
	}, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes fsnotify events until stop is closed. Each closed ".log"
// file is passed through ProcessLogFile; failures are logged and do not
// stop the watcher.
func (w *Watcher) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(w.quietPeriod / 2)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.observe(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: fsnotify error", "error", err)
		case <-ticker.C:
			w.sweepQuiet()
		}
	}
}

func (w *Watcher) observe(ev fsnotify.Event) {
	if filepath.Ext(ev.Name) != ".log" {
		return
	}
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done[ev.Name] {
		return
	}
	w.pending[ev.Name] = info.ModTime()
}

// sweepQuiet processes any pending file whose mtime has not advanced for
// at least quietPeriod since it was last observed.
func (w *Watcher) sweepQuiet() {
	w.mu.Lock()
	ready := make([]string, 0)
	for path, lastMTime := range w.pending {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.pending, path)
			continue
		}
		if info.ModTime().After(lastMTime) {
			w.pending[path] = info.ModTime()
			continue
		}
		if time.Since(info.ModTime()) >= w.quietPeriod {
			ready = append(ready, path)
			delete(w.pending, path)
			w.done[path] = true
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		archivePath := ArchivePathFor(path)
		log := logger.WithSource(logger.Logger(), path)
		log.Info("watch: processing closed capture", "archive", archivePath)
		if err := ProcessLogFile(path, archivePath); err != nil {
			log.Warn("watch: failed to process capture", "error", err)
			continue
		}
		if w.OnProcessed != nil {
			w.OnProcessed(archivePath)
		}
	}
}
