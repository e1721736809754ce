package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repo locates the three directories that matter when watching a repository:
// the worktree root, the worktree's own git dir, and the common dir shared by
// every worktree of the repository. For a plain checkout GitDir and CommonDir
// are the same directory.
type Repo struct {
	Root      string
	GitDir    string
	CommonDir string
}

// ResolveRepo maps any path inside a worktree to its Repo. It fails when git
// is missing or too old, or when the path is not part of a repository.
func ResolveRepo(ctx context.Context, path string) (Repo, error) {
	if err := ensureMinGitVersion(); err != nil {
		return Repo{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Repo{}, err
	}
	out, err := runGitCommand(ctx, abs, []string{"rev-parse", "--show-toplevel", "--absolute-git-dir", "--git-common-dir"}, "git rev-parse")
	if err != nil {
		return Repo{}, fmt.Errorf("open repository: %w", err)
	}
	repo, err := parseRevParseDirs(abs, out)
	if err != nil {
		return Repo{}, fmt.Errorf("open repository: %w", err)
	}
	return repo, nil
}

func parseRevParseDirs(base, out string) (Repo, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		return Repo{}, fmt.Errorf("git rev-parse returned %d lines, want 3", len(lines))
	}
	root := strings.TrimSpace(lines[0])
	gitDir := strings.TrimSpace(lines[1])
	commonDir := strings.TrimSpace(lines[2])
	if root == "" || gitDir == "" || commonDir == "" {
		return Repo{}, fmt.Errorf("git rev-parse returned an empty directory")
	}
	// --git-common-dir is the one of the three that git may print relative to
	// the directory the command ran in.
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(base, commonDir)
	}
	return Repo{
		Root:      filepath.Clean(root),
		GitDir:    filepath.Clean(gitDir),
		CommonDir: filepath.Clean(commonDir),
	}, nil
}

func runGitCommand(ctx context.Context, dir string, args []string, label string) (string, error) {
	cmdArgs := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", fmt.Errorf("%s: %v: %s", label, err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%s: %w", label, err)
	}
	return stdout.String(), nil
}
