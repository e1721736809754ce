// Package watch wraps fsnotify with recursive registration and
// repository-aware filtering: the whole worktree plus the git metadata
// directories, minus the subtrees that only churn (object store, per-branch
// reflogs).
package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Op is the subset of filesystem operations that can change a repository's
// status. Attribute-only changes are deliberately absent.
type Op uint8

const (
	Create Op = 1 << iota
	Write
	Remove
	Rename
)

func (op Op) Has(o Op) bool { return op&o != 0 }

func (op Op) String() string {
	var parts []string
	if op.Has(Create) {
		parts = append(parts, "create")
	}
	if op.Has(Write) {
		parts = append(parts, "write")
	}
	if op.Has(Remove) {
		parts = append(parts, "remove")
	}
	if op.Has(Rename) {
		parts = append(parts, "rename")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Event is one filesystem change that survived filtering.
type Event struct {
	Path string
	Op   Op
}

const eventBufferSize = 256

// Watcher forwards relevant filesystem changes on a buffered channel.
// Consumers read Events until they are done; when the OS subscription dies
// underneath us the Lost channel closes instead.
type Watcher struct {
	fs     *fsnotify.Watcher
	filter *filter

	events chan Event
	errs   chan error
	lost   chan struct{}

	mu     sync.Mutex
	paths  map[string]bool
	closed bool

	closeCh  chan struct{}
	wg       sync.WaitGroup
	lostOnce sync.Once
}

// New registers the worktree root and both metadata directories recursively
// and starts forwarding events. Failing to register a base directory is
// fatal; failures deeper in a tree are logged and skipped.
func New(root, gitDir, commonDir string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		fs:      fs,
		filter:  newFilter(gitDir, commonDir),
		events:  make(chan Event, eventBufferSize),
		errs:    make(chan error, 16),
		lost:    make(chan struct{}),
		paths:   make(map[string]bool),
		closeCh: make(chan struct{}),
	}
	for _, base := range dedupeBases(root, gitDir, commonDir) {
		slog.Debug("watching tree", slog.String("path", base))
		if err := w.addTree(base); err != nil {
			return nil, errors.Join(err, fs.Close())
		}
	}
	w.wg.Add(1)
	go w.forward()
	return w, nil
}

func (w *Watcher) Events() <-chan Event { return w.events }

func (w *Watcher) Errors() <-chan error { return w.errs }

// Lost closes when the underlying subscription terminated on its own. The
// watcher is useless afterwards; the owner decides whether to build a new
// one.
func (w *Watcher) Lost() <-chan struct{} { return w.lost }

// Close tears the subscription down and closes the event channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	close(w.closeCh)
	err := w.fs.Close()
	w.wg.Wait()
	close(w.events)
	close(w.errs)
	return err
}

// dedupeBases drops any base that another base already covers, keeping order.
// In a plain checkout the git dir lives under the root, so watching the root
// covers all three.
func dedupeBases(bases ...string) []string {
	var out []string
	for _, b := range bases {
		b = filepath.Clean(b)
		covered := false
		for _, prev := range out {
			if b == prev || strings.HasPrefix(b, prev+string(filepath.Separator)) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, b)
		}
	}
	return out
}

func (w *Watcher) addTree(base string) error {
	if err := w.add(base); err != nil {
		return fmt.Errorf("watch %s: %w", base, err)
	}
	return filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			slog.Debug("watch walk skipped", slog.String("path", path), slog.Any("error", err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.filter.SkipDir(path) {
			return filepath.SkipDir
		}
		if err := w.add(path); err != nil {
			slog.Debug("watch add failed", slog.String("path", path), slog.Any("error", err))
		}
		return nil
	})
}

func (w *Watcher) add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.paths[path] {
		return nil
	}
	if err := w.fs.Add(path); err != nil {
		return err
	}
	w.paths[path] = true
	return nil
}

func (w *Watcher) watching(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paths[filepath.Clean(path)]
}

func (w *Watcher) forward() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				w.signalLost()
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				w.signalLost()
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}
	// Register new directories before the suppression check: the logs tree is
	// suppressed for emission but must still be watched so the stash reflog
	// is seen the moment it appears.
	if op.Has(Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !w.filter.SkipDir(ev.Name) {
			if err := w.add(ev.Name); err != nil {
				slog.Debug("watch add failed", slog.String("path", ev.Name), slog.Any("error", err))
			}
		}
	}
	if w.filter.IgnoreEvent(ev.Name) {
		return
	}
	select {
	case w.events <- Event{Path: ev.Name, Op: op}:
	default:
		// Buffer full: dropping is harmless, the next recompute reads the
		// full status regardless of which events arrived.
	}
}

func (w *Watcher) signalLost() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}
	w.lostOnce.Do(func() { close(w.lost) })
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= Create
	}
	if fsOp.Has(fsnotify.Write) {
		op |= Write
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= Remove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= Rename
	}
	return op
}
