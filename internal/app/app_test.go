package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/thiagokokada/git-status-watch/internal/git"
	"github.com/thiagokokada/git-status-watch/internal/render"
)

var (
	snapClean = git.Snapshot{Branch: "main", Ahead: 1}
	snapDirty = git.Snapshot{Branch: "main", Modified: 3, Untracked: 1}
)

// sourceFunc adapts a closure to the statusSource interface.
type sourceFunc func(ctx context.Context) (git.Snapshot, error)

func (f sourceFunc) Compute(ctx context.Context) (git.Snapshot, error) { return f(ctx) }

func fixedSource(snap git.Snapshot) sourceFunc {
	return func(context.Context) (git.Snapshot, error) { return snap, nil }
}

// seqSource returns its snapshots in order, repeating the last one, and
// counts how many readings were taken.
type seqSource struct {
	mu    sync.Mutex
	snaps []git.Snapshot
	calls int
}

func (s *seqSource) Compute(ctx context.Context) (git.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	i := s.calls - 1
	if i >= len(s.snaps) {
		i = len(s.snaps) - 1
	}
	return s.snaps[i], nil
}

func (s *seqSource) computes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// syncBuffer collects pipeline output; the pipeline writes from its own
// goroutines while the test polls.
type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

func (b *syncBuffer) Lines() []string {
	s := b.String()
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func newTestApp(t *testing.T, cfg Config, repo git.Repo, src statusSource) (*app, *syncBuffer) {
	t.Helper()

	tmpl, err := render.Compile(cfg.Format)
	if err != nil {
		t.Fatalf("Compile(%q) error = %v", cfg.Format, err)
	}
	buf := &syncBuffer{}
	return &app{
		cfg:          cfg,
		repo:         repo,
		src:          src,
		tmpl:         tmpl,
		out:          newSink(buf),
		promoteEvery: promoteInterval,
	}, buf
}

func waitForLines(t *testing.T, buf *syncBuffer, n int) []string {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		lines := buf.Lines()
		if len(lines) >= n {
			return lines
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d output lines before timeout, want at least %d:\n%s",
				len(lines), n, buf.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func waitErr(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not stop before timeout")
	}
	return nil
}

func assertTranscript(t *testing.T, got, want string) {
	t.Helper()

	if got == want {
		return
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		t.Fatalf("output mismatch:\ngot:\n%swant:\n%s", got, want)
	}
	t.Fatalf("output mismatch (-want +got):\n%s", text)
}
