package git

import "encoding/json"

// Snapshot is one complete reading of a repository's status. The field order
// matches the JSON record emitted in default output mode, so keep new fields
// at the end.
type Snapshot struct {
	Branch     string  `json:"branch"`
	Staged     int     `json:"staged"`
	Modified   int     `json:"modified"`
	Untracked  int     `json:"untracked"`
	Conflicted int     `json:"conflicted"`
	Ahead      int     `json:"ahead"`
	Behind     int     `json:"behind"`
	Stash      int     `json:"stash"`
	State      OpState `json:"state"`
}

// OpState identifies a multi-step git operation that is underway, such as a
// merge stopped on conflicts or a rebase waiting for an edit.
type OpState uint8

const (
	OpClean OpState = iota
	OpMerge
	OpRebase
	OpCherryPick
	OpBisect
	OpRevert
)

// String returns the spelling used in format templates: hyphenated, and empty
// for OpClean so that {state} renders nothing in a quiet repository.
func (s OpState) String() string {
	switch s {
	case OpMerge:
		return "merge"
	case OpRebase:
		return "rebase"
	case OpCherryPick:
		return "cherry-pick"
	case OpBisect:
		return "bisect"
	case OpRevert:
		return "revert"
	default:
		return ""
	}
}

// MarshalJSON uses the snake_case spelling of the JSON record, where a quiet
// repository is spelled out as "clean".
func (s OpState) MarshalJSON() ([]byte, error) {
	name := "clean"
	switch s {
	case OpMerge:
		name = "merge"
	case OpRebase:
		name = "rebase"
	case OpCherryPick:
		name = "cherry_pick"
	case OpBisect:
		name = "bisect"
	case OpRevert:
		name = "revert"
	}
	return json.Marshal(name)
}
