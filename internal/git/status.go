package git

import (
	"context"
	"fmt"
	"strings"
)

// runner abstracts the git subprocess call so tests can substitute canned
// output for a real binary.
type runner func(ctx context.Context, dir string, args []string, label string) (string, error)

// Computer produces Snapshots for one repository on demand. It reads git
// plumbing output and a handful of files under the metadata directory; it
// never opens the object database itself.
type Computer struct {
	repo Repo
	run  runner
}

func NewComputer(repo Repo) *Computer {
	return &Computer{repo: repo, run: runGitCommand}
}

// InvocationError wraps a failure to run or parse a git subprocess. Callers
// treat it as transient: the previous snapshot stays valid and the next
// filesystem event schedules a fresh attempt.
type InvocationError struct {
	Op  string
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Compute runs one full status reading: porcelain v2 with branch headers for
// the counters, the stash reflog for the stash depth, and sentinel files for
// the operation state. The status subprocess runs with --no-optional-locks so
// that background invocations never touch the index.
func (c *Computer) Compute(ctx context.Context) (Snapshot, error) {
	out, err := c.run(ctx, c.repo.Root, []string{"--no-optional-locks", "status", "--porcelain=v2", "--branch"}, "git status")
	if err != nil {
		return Snapshot{}, &InvocationError{Op: "status", Err: err}
	}
	snap, err := parseStatusPorcelainV2(strings.NewReader(out))
	if err != nil {
		return Snapshot{}, &InvocationError{Op: "parse status", Err: err}
	}
	snap.Stash = c.stashCount(ctx)
	snap.State = detectOpState(c.repo.GitDir)
	return snap, nil
}
