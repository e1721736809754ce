package git

import (
	"os"
	"path/filepath"
)

// Sentinel files that mark an in-progress operation, checked in a fixed order
// so that overlapping markers resolve the same way every time. Rebase leaves
// one of two directories depending on which backend ran it. All sentinels
// live in the worktree's own git dir, never the shared common dir.
var opSentinels = []struct {
	state OpState
	names []string
}{
	{OpMerge, []string{"MERGE_HEAD"}},
	{OpRebase, []string{"rebase-merge", "rebase-apply"}},
	{OpCherryPick, []string{"CHERRY_PICK_HEAD"}},
	{OpBisect, []string{"BISECT_LOG"}},
	{OpRevert, []string{"REVERT_HEAD"}},
}

// detectOpState reports which operation the repository is in the middle of.
func detectOpState(gitDir string) OpState {
	for _, s := range opSentinels {
		for _, name := range s.names {
			if _, err := os.Stat(filepath.Join(gitDir, name)); err == nil {
				return s.state
			}
		}
	}
	return OpClean
}
