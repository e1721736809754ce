package git

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectOpState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files []string
		dirs  []string
		want  OpState
	}{
		{name: "clean", want: OpClean},
		{name: "merge", files: []string{"MERGE_HEAD"}, want: OpMerge},
		{name: "rebase_merge_backend", dirs: []string{"rebase-merge"}, want: OpRebase},
		{name: "rebase_apply_backend", dirs: []string{"rebase-apply"}, want: OpRebase},
		{name: "cherry_pick", files: []string{"CHERRY_PICK_HEAD"}, want: OpCherryPick},
		{name: "bisect", files: []string{"BISECT_LOG"}, want: OpBisect},
		{name: "revert", files: []string{"REVERT_HEAD"}, want: OpRevert},
		{
			name:  "merge_wins_over_rebase",
			files: []string{"MERGE_HEAD"},
			dirs:  []string{"rebase-merge"},
			want:  OpMerge,
		},
		{
			name:  "rebase_wins_over_cherry_pick",
			files: []string{"CHERRY_PICK_HEAD"},
			dirs:  []string{"rebase-apply"},
			want:  OpRebase,
		},
		{
			name:  "cherry_pick_wins_over_revert",
			files: []string{"CHERRY_PICK_HEAD", "REVERT_HEAD"},
			want:  OpCherryPick,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gitDir := t.TempDir()
			for _, name := range tt.files {
				if err := os.WriteFile(filepath.Join(gitDir, name), []byte("x\n"), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			for _, name := range tt.dirs {
				if err := os.Mkdir(filepath.Join(gitDir, name), 0o755); err != nil {
					t.Fatal(err)
				}
			}

			if got := detectOpState(gitDir); got != tt.want {
				t.Fatalf("detectOpState() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectOpStateMissingDir(t *testing.T) {
	t.Parallel()

	if got := detectOpState(filepath.Join(t.TempDir(), "nope")); got != OpClean {
		t.Fatalf("detectOpState() = %v, want %v", got, OpClean)
	}
}
