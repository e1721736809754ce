package app

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/thiagokokada/git-status-watch/internal/coord"
	"github.com/thiagokokada/git-status-watch/internal/debounce"
	"github.com/thiagokokada/git-status-watch/internal/watch"
)

var errWatchLost = errors.New("watch subscription lost")

// runLeader owns the full pipeline: filesystem events arm the debouncer, the
// debouncer schedules recomputes, recomputes emit. With a state file the
// rendered line is also published for followers. A lost OS subscription gets
// one rebuild before giving up.
func (a *app) runLeader(ctx context.Context, sf *coord.StateFile) error {
	g := newGate(a.cfg.AlwaysPrint)
	resubscribed := false
	for {
		err := a.watchAndEmit(ctx, sf, g)
		if errors.Is(err, errWatchLost) && !resubscribed {
			resubscribed = true
			slog.Warn("watch subscription lost; resubscribing")
			continue
		}
		return err
	}
}

func (a *app) watchAndEmit(ctx context.Context, sf *coord.StateFile, g *gate) error {
	w, err := watch.New(a.repo.Root, a.repo.GitDir, a.repo.CommonDir)
	if err != nil {
		return err
	}
	defer w.Close()

	// Subscribe first, compute second: a change landing while the first
	// status runs still produces an event and schedules a recompute.
	if err := a.emit(ctx, sf, g); err != nil {
		return err
	}

	trigger := make(chan struct{}, 1)
	deb := debounce.New(a.cfg.Debounce, func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer deb.Stop()

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		// Event pump. Nothing here blocks on the recompute side; a burst
		// only restarts the debounce timer.
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.Events():
				if !ok {
					return nil
				}
				slog.Debug("fs event",
					slog.String("op", ev.Op.String()),
					slog.String("path", ev.Path),
				)
				deb.Trigger()
			case werr, ok := <-w.Errors():
				if !ok {
					return nil
				}
				slog.Error("watch error", slog.Any("error", werr))
			case <-w.Lost():
				return errWatchLost
			}
		}
	})
	grp.Go(func() error {
		// Recompute loop: at most one status reading in flight.
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-trigger:
				if err := a.emit(ctx, sf, g); err != nil {
					return err
				}
			}
		}
	})
	return grp.Wait()
}
