package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/thiagokokada/git-status-watch/internal/coord"
)

// runOnce prints the current status a single time. When a leader is already
// watching this repository its state file is re-emitted instead of spawning
// git; otherwise one compute runs, and with coordination enabled its result
// is published so the next follower or --once call starts warm.
func (a *app) runOnce(ctx context.Context) error {
	var sf *coord.StateFile
	if a.cfg.StateDir != "" {
		target, lockPath, err := a.stateTarget()
		if err != nil {
			slog.Warn("coordination disabled", slog.Any("error", err))
		} else {
			lk, lockErr := coord.TryLock(lockPath)
			switch {
			case lockErr == nil:
				defer func() {
					if err := lk.Release(); err != nil {
						slog.Debug("lock release failed", slog.Any("error", err))
					}
				}()
				sf = &target
			case errors.Is(lockErr, coord.ErrLocked):
				// A live leader owns this repository; its state file is
				// fresher than anything computed here could be.
				if line, err := target.Read(); err == nil {
					return a.out.WriteLine(line)
				}
				// Nothing published yet: compute, but leave the state file
				// to the leader.
			default:
				slog.Warn("coordination disabled", slog.Any("error", lockErr))
			}
		}
	}
	snap, err := a.src.Compute(ctx)
	if err != nil {
		return err
	}
	line := a.tmpl.Render(snap)
	if sf != nil {
		if err := sf.Write(line); err != nil {
			slog.Warn("state file write failed", slog.Any("error", err))
		}
	}
	return a.out.WriteLine(line)
}
