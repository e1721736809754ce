package git

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Minimum supported git version. The global --no-optional-locks flag and the
// porcelain v2 branch headers both need 2.15.
var minGitVersion = gitVersion{major: 2, minor: 15, patch: 0}

type gitVersion struct {
	major int
	minor int
	patch int
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseGitVersionOutput tolerates the vendor decorations seen in the wild:
// "git version 2.44.0", "git version 2.39.3 (Apple Git-146)",
// "git version 2.39.3.windows.1".
func parseGitVersionOutput(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	if idx := strings.Index(s, "git version"); idx >= 0 {
		s = strings.TrimSpace(s[idx+len("git version"):])
	}
	start := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return gitVersion{}, false
	}
	s = s[start:]
	if end := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' }); end >= 0 {
		s = s[:end]
	}
	parts := strings.Split(strings.Trim(s, "."), ".")
	if len(parts) < 2 {
		return gitVersion{}, false
	}
	var v gitVersion
	var err error
	if v.major, err = strconv.Atoi(parts[0]); err != nil {
		return gitVersion{}, false
	}
	if v.minor, err = strconv.Atoi(parts[1]); err != nil {
		return gitVersion{}, false
	}
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			v.patch = p
		}
	}
	return v, true
}

var (
	gitVersionOnce sync.Once
	gitVersionErr  error
)

// ensureMinGitVersion runs "git --version" once per process and rejects
// anything older than minGitVersion. It doubles as the check that a git
// binary exists at all.
func ensureMinGitVersion() error {
	gitVersionOnce.Do(func() {
		outBytes, err := exec.Command("git", "--version").CombinedOutput()
		out := strings.TrimSpace(string(outBytes))
		if err != nil {
			if out != "" {
				gitVersionErr = fmt.Errorf("git --version: %v: %s", err, out)
			} else {
				gitVersionErr = fmt.Errorf("git --version: %w", err)
			}
			return
		}
		got, ok := parseGitVersionOutput(out)
		if !ok {
			gitVersionErr = fmt.Errorf("unable to parse git version output: %q", out)
			return
		}
		if got.less(minGitVersion) {
			gitVersionErr = fmt.Errorf("git %s is too old; git-status-watch requires git >= %s", got, minGitVersion)
		}
	})
	return gitVersionErr
}
