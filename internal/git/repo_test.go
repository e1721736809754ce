package git

import "testing"

func TestParseRevParseDirs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    string
		out     string
		want    Repo
		wantErr bool
	}{
		{
			name: "plain_checkout",
			base: "/work/repo",
			out:  "/work/repo\n/work/repo/.git\n/work/repo/.git\n",
			want: Repo{
				Root:      "/work/repo",
				GitDir:    "/work/repo/.git",
				CommonDir: "/work/repo/.git",
			},
		},
		{
			name: "linked_worktree",
			base: "/work/repo-wt",
			out:  "/work/repo-wt\n/work/repo/.git/worktrees/repo-wt\n/work/repo/.git\n",
			want: Repo{
				Root:      "/work/repo-wt",
				GitDir:    "/work/repo/.git/worktrees/repo-wt",
				CommonDir: "/work/repo/.git",
			},
		},
		{
			name: "relative_common_dir",
			base: "/work/repo",
			out:  "/work/repo\n/work/repo/.git\n.git\n",
			want: Repo{
				Root:      "/work/repo",
				GitDir:    "/work/repo/.git",
				CommonDir: "/work/repo/.git",
			},
		},
		{name: "too_few_lines", base: "/work/repo", out: "/work/repo\n", wantErr: true},
		{name: "empty", base: "/work/repo", out: "", wantErr: true},
		{name: "blank_lines", base: "/work/repo", out: "\n\n\n", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseRevParseDirs(tt.base, tt.out)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRevParseDirs() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("parseRevParseDirs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
