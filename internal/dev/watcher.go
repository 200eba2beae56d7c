package dev

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeAsset ChangeType = iota
	ChangeCSS
	ChangeManifest
	ChangeShell
)

func (t ChangeType) String() string {
	switch t {
	case ChangeCSS:
		return "css"
	case ChangeManifest:
		return "manifest"
	case ChangeShell:
		return "shell"
	default:
		return "asset"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch recursively. A path that does
	// not exist yet is picked up once it is created.
	Paths []string

	// Ignore patterns to skip (globs matched against the base name).
	Ignore []string

	// Debounce collapses bursts of events, such as a bundler rewriting
	// its output, into one callback.
	Debounce time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".DS_Store",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher reports changes under the configured paths.
type Watcher struct {
	config   WatcherConfig
	mu       sync.Mutex
	onChange func([]Change)
	running  bool
	stopCh   chan struct{}
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Watcher{config: config}
}

// OnChange sets the callback for a debounced batch of changes.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// IsRunning reports whether Start is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	roots := make([]string, 0, len(w.config.Paths))
	for _, p := range w.config.Paths {
		root := filepath.Clean(p)
		roots = append(roots, root)
		if err := w.addTree(fw, root); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			// Watch the parent so the root is noticed when created.
			if err := fw.Add(filepath.Dir(root)); err != nil {
				w.config.Logger.Warn("cannot watch", "path", root, "error", err)
			}
		}
	}

	pending := make(map[string]ChangeType)
	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(ev.Name)
			if !underAny(name, roots) || w.shouldIgnore(name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(name); err == nil && info.IsDir() {
					_ = w.addTree(fw, name)
					continue
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			pending[name] = classifyChange(name)
			timer.Reset(w.config.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.config.Logger.Warn("watch error", "error", err)

		case <-timer.C:
			w.flush(pending)
			pending = make(map[string]ChangeType)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

func (w *Watcher) flush(pending map[string]ChangeType) {
	if len(pending) == 0 {
		return
	}
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()
	if callback == nil {
		return
	}

	changes := make([]Change, 0, len(pending))
	for p, t := range pending {
		changes = append(changes, Change{Path: p, Type: t})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	callback(changes)
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.shouldIgnore(p) {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}

func (w *Watcher) shouldIgnore(p string) bool {
	base := filepath.Base(p)
	for _, pattern := range w.config.Ignore {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func underAny(p string, roots []string) bool {
	for _, root := range roots {
		if p == root || strings.HasPrefix(p, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// classifyChange determines the type of change from the file name.
func classifyChange(p string) ChangeType {
	base := filepath.Base(p)
	switch {
	case base == "manifest.json":
		return ChangeManifest
	case base == "shell.html":
		return ChangeShell
	case strings.HasSuffix(base, ".css"):
		return ChangeCSS
	default:
		return ChangeAsset
	}
}
