package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRepoKey(t *testing.T) {
	tests := []struct {
		owner, repo, want string
	}{
		{"owner", "repo", "owner_repo"},
		{"foo/bar", "baz/qux", "foo_bar_baz_qux"},
		{"", "", "_"},
	}
	for _, tt := range tests {
		if got := RepoKey(tt.owner, tt.repo); got != tt.want {
			t.Errorf("RepoKey(%q, %q) = %q, want %q", tt.owner, tt.repo, got, tt.want)
		}
	}
}

func TestForgeRepoKey(t *testing.T) {
	if got := ForgeRepoKey("gitlab", "group/sub", "proj"); got != "gitlab_group_sub_proj" {
		t.Errorf("ForgeRepoKey() = %q", got)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	Dir = t.TempDir()
	defer func() { Dir = "" }()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	Write("roundtrip", record{Name: "x", Count: 3})

	got, ok := Read[record]("roundtrip")
	if !ok {
		t.Fatal("Read returned not ok")
	}
	if got.Name != "x" || got.Count != 3 {
		t.Errorf("Read = %+v", got)
	}
}

func TestReadMissingKey(t *testing.T) {
	Dir = t.TempDir()
	defer func() { Dir = "" }()

	if _, ok := Read[string]("nope"); ok {
		t.Error("Read of missing key should not be ok")
	}
}

func TestReadCorruptFile(t *testing.T) {
	Dir = t.TempDir()
	defer func() { Dir = "" }()

	if err := os.WriteFile(filepath.Join(Dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := Read[map[string]int]("bad"); ok {
		t.Error("Read of corrupt file should not be ok")
	}
}
