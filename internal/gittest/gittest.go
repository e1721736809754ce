// Package gittest builds throwaway repositories for tests. Fixtures are
// assembled with go-git so the tests do not depend on a git binary being
// installed on the machine running them.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var fixtureTime = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// InitRepo creates a repository with one commit on main and returns the
// worktree root.
func InitRepo(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	if _, err := gogit.PlainInitWithOptions(root, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.Main},
	}); err != nil {
		t.Fatalf("init repository: %v", err)
	}
	WriteFile(t, root, "README.md", "fixture repository\n")
	Commit(t, root, "initial commit")
	return root
}

// WriteFile writes a file relative to the worktree root, creating parent
// directories as needed.
func WriteFile(t *testing.T, root, name, content string) {
	t.Helper()

	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// Commit stages everything and commits with a fixed signature so fixture
// hashes stay deterministic.
func Commit(t *testing.T, root, message string) {
	t.Helper()

	repo, err := gogit.PlainOpen(root)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		t.Fatalf("stage changes: %v", err)
	}
	sig := &object.Signature{Name: "fixture", Email: "fixture@example.invalid", When: fixtureTime}
	if _, err := wt.Commit(message, &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

// GitDir returns the metadata directory of a repository created by InitRepo.
func GitDir(t *testing.T, root string) string {
	t.Helper()

	dir := filepath.Join(root, ".git")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("no .git directory under %s", root)
	}
	return dir
}
