package watch

import (
	"path/filepath"
	"strings"
)

// stashReflog is the one file under logs/ whose changes carry status signal.
var stashReflog = filepath.Join("logs", "refs", "stash")

// filter decides which paths are noise. It is a denylist: everything is
// forwarded unless it sits in a subtree known to be irrelevant, so index
// writes, ref updates and operation sentinels all pass through untouched.
type filter struct {
	metaDirs []string
}

func newFilter(gitDir, commonDir string) *filter {
	dirs := []string{filepath.Clean(gitDir)}
	if c := filepath.Clean(commonDir); c != dirs[0] {
		dirs = append(dirs, c)
	}
	return &filter{metaDirs: dirs}
}

// rel reports the path's location relative to a metadata dir, or ok=false
// when the path is outside both.
func (f *filter) rel(path string) (string, bool) {
	path = filepath.Clean(path)
	for _, dir := range f.metaDirs {
		if path == dir {
			return ".", true
		}
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return path[len(dir)+1:], true
		}
	}
	return "", false
}

// IgnoreEvent reports whether a change at path carries no status signal.
// Worktree paths always count. Under a metadata dir the object store and the
// reflogs are churn, except the stash reflog which feeds the stash counter.
func (f *filter) IgnoreEvent(path string) bool {
	rel, ok := f.rel(path)
	if !ok || rel == "." {
		return false
	}
	switch firstComponent(rel) {
	case "objects":
		return true
	case "logs":
		return rel != stashReflog
	}
	return false
}

// SkipDir reports whether a directory subtree holds nothing worth watching.
// The object store is skipped wholesale. Under logs only the chain leading to
// the stash reflog stays registered; per-branch reflog dirs churn on every
// commit.
func (f *filter) SkipDir(path string) bool {
	rel, ok := f.rel(path)
	if !ok || rel == "." {
		return false
	}
	switch firstComponent(rel) {
	case "objects":
		return true
	case "logs":
		return rel != "logs" && rel != filepath.Dir(stashReflog)
	}
	return false
}

func firstComponent(rel string) string {
	if i := strings.IndexByte(rel, filepath.Separator); i >= 0 {
		return rel[:i]
	}
	return rel
}
