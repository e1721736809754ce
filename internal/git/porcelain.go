package git

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// parseStatusPorcelainV2 folds the output of
// "git status --porcelain=v2 --branch" into a Snapshot. Entry lines carry a
// two-character XY field at a fixed offset: X is the index side, Y the
// worktree side, '.' meaning unchanged on that side.
func parseStatusPorcelainV2(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	var oid string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 2 {
			continue
		}
		switch line[0] {
		case '#':
			switch {
			case strings.HasPrefix(line, "# branch.oid "):
				oid = line[len("# branch.oid "):]
			case strings.HasPrefix(line, "# branch.head "):
				snap.Branch = line[len("# branch.head "):]
			case strings.HasPrefix(line, "# branch.ab "):
				snap.Ahead, snap.Behind = parseAheadBehind(line[len("# branch.ab "):])
			}
		case '1', '2':
			if len(line) < 4 {
				continue
			}
			if line[2] != '.' {
				snap.Staged++
			}
			if line[3] != '.' {
				snap.Modified++
			}
		case 'u':
			snap.Conflicted++
		case '?':
			snap.Untracked++
		default:
			// '!' ignored entries and headers we do not recognize.
		}
	}
	if err := scanner.Err(); err != nil {
		return snap, err
	}
	if snap.Branch == "(detached)" {
		snap.Branch = shortOID(oid)
	}
	return snap, nil
}

// parseAheadBehind reads the "+N -M" tail of a "# branch.ab" header. Either
// token may be missing on odd upstream configurations; absent or malformed
// tokens count as zero.
func parseAheadBehind(s string) (ahead, behind int) {
	for _, part := range strings.Fields(s) {
		if len(part) < 2 {
			continue
		}
		n, err := strconv.Atoi(part[1:])
		if err != nil {
			continue
		}
		switch part[0] {
		case '+':
			ahead = n
		case '-':
			behind = n
		}
	}
	return ahead, behind
}

// shortOID abbreviates a commit id for display on a detached HEAD. Git prints
// "(initial)" before the first commit; anything unusable falls back to the
// literal "HEAD".
func shortOID(oid string) string {
	if oid == "" || oid == "(initial)" {
		return "HEAD"
	}
	if len(oid) > 7 {
		return oid[:7]
	}
	return oid
}
