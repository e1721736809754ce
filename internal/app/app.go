// Package app wires the pipeline together: watch, debounce, recompute,
// render, emit. One process is either a standalone watcher, the leader for a
// repository, or a follower re-emitting the leader's output.
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/thiagokokada/git-status-watch/internal/coord"
	"github.com/thiagokokada/git-status-watch/internal/git"
	"github.com/thiagokokada/git-status-watch/internal/render"
)

// How often a follower probes for a dead leader's lock, on top of probing on
// every state file event.
const promoteInterval = 2 * time.Second

type Config struct {
	Path        string
	Format      string
	Once        bool
	Debounce    time.Duration
	AlwaysPrint bool
	StateDir    string
}

// statusSource produces snapshots; satisfied by git.Computer and by fakes in
// tests.
type statusSource interface {
	Compute(ctx context.Context) (git.Snapshot, error)
}

type app struct {
	cfg          Config
	repo         git.Repo
	src          statusSource
	tmpl         *render.Template
	out          *sink
	promoteEvery time.Duration
}

// Run resolves the repository, compiles the output template and runs the
// configured mode until the process is done. A consumer closing our stdout
// is a normal way for a watch to end and maps to a nil return.
func Run(ctx context.Context, cfg Config) error {
	tmpl, err := render.Compile(cfg.Format)
	if err != nil {
		return err
	}
	repo, err := git.ResolveRepo(ctx, cfg.Path)
	if err != nil {
		return err
	}
	slog.Debug("repository resolved",
		slog.String("root", repo.Root),
		slog.String("git_dir", repo.GitDir),
		slog.String("common_dir", repo.CommonDir),
	)
	a := &app{
		cfg:          cfg,
		repo:         repo,
		src:          git.NewComputer(repo),
		tmpl:         tmpl,
		out:          newStdoutSink(),
		promoteEvery: promoteInterval,
	}
	if err := a.run(ctx); err != nil {
		if errors.Is(err, errPipeClosed) {
			slog.Debug("output closed; exiting")
			return nil
		}
		return err
	}
	return nil
}

func (a *app) run(ctx context.Context) error {
	if a.cfg.Once {
		return a.runOnce(ctx)
	}
	if a.cfg.StateDir == "" {
		return a.runLeader(ctx, nil)
	}
	return a.runCoordinated(ctx)
}

// runCoordinated starts as leader or follower depending on who holds the
// lock, and turns a follower into the leader when the lock frees up. Any
// failure to set up coordination degrades to a standalone watcher rather
// than killing the prompt.
func (a *app) runCoordinated(ctx context.Context) error {
	sf, lockPath, err := a.stateTarget()
	if err != nil {
		slog.Warn("coordination disabled", slog.Any("error", err))
		return a.runLeader(ctx, nil)
	}
	lk, err := coord.TryLock(lockPath)
	for {
		switch {
		case err == nil:
			slog.Debug("leading", slog.String("lock", lockPath))
			lerr := a.runLeader(ctx, &sf)
			rerr := lk.Release()
			if lerr != nil {
				return lerr
			}
			return rerr
		case errors.Is(err, coord.ErrLocked):
			slog.Debug("following existing leader", slog.String("state", sf.Path()))
			lk, err = a.runFollower(ctx, sf, lockPath)
			if lk == nil {
				return err
			}
			err = nil
		default:
			slog.Warn("coordination disabled", slog.Any("error", err))
			return a.runLeader(ctx, nil)
		}
	}
}

func (a *app) stateTarget() (coord.StateFile, string, error) {
	id, err := coord.Identity(a.repo.Root)
	if err != nil {
		return coord.StateFile{}, "", err
	}
	if err := os.MkdirAll(a.cfg.StateDir, 0o755); err != nil {
		return coord.StateFile{}, "", err
	}
	sf := coord.NewStateFile(a.cfg.StateDir, id)
	return sf, sf.LockPath(), nil
}

// emit runs one recompute cycle. Git failures are transient here: the
// previous emission stays valid and the next trigger retries, so only output
// failures propagate.
func (a *app) emit(ctx context.Context, sf *coord.StateFile, g *gate) error {
	snap, err := a.src.Compute(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		slog.Warn("status recompute failed", slog.Any("error", err))
		return nil
	}
	if !g.Admit(snap) {
		slog.Debug("status unchanged; suppressing emission")
		return nil
	}
	line := a.tmpl.Render(snap)
	if sf != nil {
		if err := sf.Write(line); err != nil {
			slog.Warn("state file write failed", slog.Any("error", err))
		}
	}
	return a.out.WriteLine(line)
}
