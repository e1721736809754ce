package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/git-status-watch/internal/coord"
	"github.com/thiagokokada/git-status-watch/internal/debounce"
)

// runFollower re-emits the leader's state file until the leader goes away.
// A non-nil Lock return means this process won the lock and must take over
// as leader; otherwise the error (nil on context cancellation) is final.
//
// Promotion is probed on every state file event and on a slow ticker; the
// ticker is what catches a leader that died silently between writes.
func (a *app) runFollower(ctx context.Context, sf coord.StateFile, lockPath string) (*coord.Lock, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	defer fsw.Close()
	stateDir := filepath.Dir(sf.Path())
	if err := fsw.Add(stateDir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", stateDir, err)
	}

	var last string
	var emitted bool
	relay := func() error {
		line, err := sf.Read()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				slog.Debug("state file read failed", slog.Any("error", err))
			}
			return nil
		}
		if emitted && line == last && !a.cfg.AlwaysPrint {
			return nil
		}
		last, emitted = line, true
		return a.out.WriteLine(line)
	}
	// The leader may have published long before we started.
	if err := relay(); err != nil {
		return nil, err
	}

	trigger := make(chan struct{}, 1)
	deb := debounce.New(a.cfg.Debounce, func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer deb.Stop()

	ticker := time.NewTicker(a.promoteEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil, errors.New("state directory watch closed")
			}
			if filepath.Clean(ev.Name) != sf.Path() {
				continue
			}
			slog.Debug("state file event", slog.String("op", ev.Op.String()))
			deb.Trigger()
		case werr, ok := <-fsw.Errors:
			if !ok {
				return nil, errors.New("state directory watch closed")
			}
			slog.Debug("state watch error", slog.Any("error", werr))
		case <-trigger:
			if err := relay(); err != nil {
				return nil, err
			}
			if lk := a.probeLock(lockPath); lk != nil {
				return lk, nil
			}
		case <-ticker.C:
			if lk := a.probeLock(lockPath); lk != nil {
				return lk, nil
			}
		}
	}
}

func (a *app) probeLock(lockPath string) *coord.Lock {
	lk, err := coord.TryLock(lockPath)
	if err != nil {
		if !errors.Is(err, coord.ErrLocked) {
			slog.Debug("leader lock probe failed", slog.Any("error", err))
		}
		return nil
	}
	slog.Debug("leader gone; taking over", slog.String("lock", lockPath))
	return lk
}
