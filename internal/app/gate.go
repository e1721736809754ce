package app

import "github.com/thiagokokada/git-status-watch/internal/git"

// gate decides whether a snapshot deserves an output line. The first
// snapshot always passes; afterwards only structural change passes, unless
// always-print forwards every recompute.
type gate struct {
	always bool
	prev   *git.Snapshot
}

func newGate(always bool) *gate {
	return &gate{always: always}
}

// Admit reports whether snap should be emitted, recording it as the new
// baseline when it is.
func (g *gate) Admit(snap git.Snapshot) bool {
	if g.prev != nil && *g.prev == snap && !g.always {
		return false
	}
	s := snap
	g.prev = &s
	return true
}
