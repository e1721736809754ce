package git

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// stashCount reads the stash depth from the reflog, one line per entry, which
// avoids a subprocess on the hot path. When the reflog cannot be read the
// rev-list fallback asks git directly; a missing stash ref means zero either
// way. Stashes live in the common dir, shared across worktrees.
func (c *Computer) stashCount(ctx context.Context) int {
	if n, err := countReflogEntries(filepath.Join(c.repo.CommonDir, "logs", "refs", "stash")); err == nil {
		return n
	}
	out, err := c.run(ctx, c.repo.Root, []string{"rev-list", "--count", "refs/stash"}, "git rev-list")
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0
	}
	return n
}

func countReflogEntries(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) > 0 {
			n++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return n, nil
}
