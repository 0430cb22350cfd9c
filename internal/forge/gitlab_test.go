package forge

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/altinukshini/grit/internal/model"
)

func newTestGitLab(t *testing.T, handler http.HandlerFunc) *GitLab {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &GitLab{
		http: newHTTPClient(srv.URL, map[string]string{"PRIVATE-TOKEN": "secret"}),
		host: "gitlab.example.com",
	}
}

func TestGitLabListPrs(t *testing.T) {
	g := newTestGitLab(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("PRIVATE-TOKEN"); got != "secret" {
			t.Errorf("token header = %q", got)
		}
		if !strings.HasPrefix(r.URL.EscapedPath(), "/projects/group%2Fproj/merge_requests") {
			t.Errorf("path = %q", r.URL.EscapedPath())
		}
		w.Write([]byte(`[
			{"iid": 7, "title": "Add widget", "state": "opened",
			 "author": {"username": "alice"}, "updated_at": "2026-08-01T10:00:00Z"},
			{"iid": 6, "title": "Old one", "state": "merged",
			 "author": {"username": "bob"}, "updated_at": "2026-07-01T10:00:00Z"}
		]`))
	})

	page, err := g.ListPrs(context.Background(), "group", "proj", 1)
	if err != nil {
		t.Fatalf("ListPrs: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("items = %d", len(page.Items))
	}
	if page.Items[0].Number != 7 || page.Items[0].Author != "alice" || page.Items[0].State != model.PrStateOpen {
		t.Errorf("item 0 = %+v", page.Items[0])
	}
	if page.Items[1].State != model.PrStateMerged {
		t.Errorf("item 1 state = %v", page.Items[1].State)
	}
}

func TestGitLabErrorCarriesStatus(t *testing.T) {
	g := newTestGitLab(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "403 Forbidden"}`, http.StatusForbidden)
	})

	_, err := g.ListPrs(context.Background(), "o", "r", 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsKind(err, KindApi) {
		t.Errorf("error kind: %v", err)
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should name the status: %v", err)
	}
}

func TestGitLabGetPrDiffStitchesUnifiedDiff(t *testing.T) {
	g := newTestGitLab(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"changes": [
			{"old_path": "a.go", "new_path": "a.go", "diff": "@@ -1 +1 @@\n-old\n+new"}
		]}`))
	})

	diff, err := g.GetPrDiff(context.Background(), "o", "r", 1)
	if err != nil {
		t.Fatalf("GetPrDiff: %v", err)
	}
	want := "diff --git a/a.go b/a.go\n--- a/a.go\n+++ b/a.go\n@@ -1 +1 @@\n-old\n+new\n"
	if diff != want {
		t.Errorf("diff = %q, want %q", diff, want)
	}
}

func TestGitLabMergeSendsMethod(t *testing.T) {
	tests := []struct {
		method model.MergeMethod
		want   string
	}{
		{model.MergeMethodMerge, "merge"},
		{model.MergeMethodSquash, "squash_merge"},
		{model.MergeMethodRebase, "rebase_merge"},
	}
	for _, tt := range tests {
		var gotBody string
		g := newTestGitLab(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != "PUT" {
				t.Errorf("method = %s, want PUT", r.Method)
			}
			data, _ := io.ReadAll(r.Body)
			gotBody = string(data)
		})
		if err := g.MergePr(context.Background(), "o", "r", 3, tt.method); err != nil {
			t.Fatalf("MergePr(%v): %v", tt.method, err)
		}
		want := `{"merge_method":"` + tt.want + `"}`
		if gotBody != want {
			t.Errorf("body for %v = %s, want %s", tt.method, gotBody, want)
		}
	}
}

func TestGitLabCheckStatusUsesLatestPipeline(t *testing.T) {
	tests := []struct {
		body string
		want model.ChecksStatus
	}{
		{`[{"id": 1, "status": "success"}]`, model.ChecksSuccess},
		{`[{"id": 1, "status": "failed"}]`, model.ChecksFailure},
		{`[{"id": 1, "status": "running"}]`, model.ChecksPending},
		{`[]`, model.ChecksNone},
	}
	for _, tt := range tests {
		body := tt.body
		g := newTestGitLab(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		got, err := g.GetCheckStatus(context.Background(), "o", "r", 1)
		if err != nil {
			t.Fatalf("GetCheckStatus: %v", err)
		}
		if got != tt.want {
			t.Errorf("status for %s = %v, want %v", tt.body, got, tt.want)
		}
	}
}

func TestGlPipelineStatus(t *testing.T) {
	tests := []struct {
		raw        string
		status     model.ActionStatus
		conclusion model.ActionConclusion
	}{
		{"pending", model.ActionQueued, ""},
		{"running", model.ActionInProgress, ""},
		{"success", model.ActionCompleted, model.ConclusionSuccess},
		{"failed", model.ActionCompleted, model.ConclusionFailure},
		{"canceled", model.ActionCompleted, model.ConclusionCancelled},
		{"skipped", model.ActionCompleted, model.ConclusionSkipped},
	}
	for _, tt := range tests {
		status, conclusion := glPipelineStatus(tt.raw)
		if status != tt.status || conclusion != tt.conclusion {
			t.Errorf("glPipelineStatus(%q) = %v/%v, want %v/%v",
				tt.raw, status, conclusion, tt.status, tt.conclusion)
		}
	}
}

func TestCountDiffLines(t *testing.T) {
	diff := "--- a/x\n+++ b/x\n@@ -1,2 +1,2 @@\n-removed\n+added one\n+added two\n context\n"
	adds, dels := countDiffLines(diff)
	if adds != 2 || dels != 1 {
		t.Errorf("countDiffLines = %d/%d, want 2/1", adds, dels)
	}
}

func TestProjectPathEscapesNestedGroups(t *testing.T) {
	if got := projectPath("group/subgroup", "proj"); got != "group%2Fsubgroup%2Fproj" {
		t.Errorf("projectPath = %q", got)
	}
}

func TestGitLabWebURL(t *testing.T) {
	g := &GitLab{host: "gitlab.example.com"}
	tests := []struct {
		kind, id, want string
	}{
		{"pr", "5", "https://gitlab.example.com/o/r/-/merge_requests/5"},
		{"issue", "9", "https://gitlab.example.com/o/r/-/issues/9"},
		{"commit", "abc", "https://gitlab.example.com/o/r/-/commit/abc"},
		{"action_run", "17", "https://gitlab.example.com/o/r/-/pipelines/17"},
		{"repo", "", "https://gitlab.example.com/o/r"},
	}
	for _, tt := range tests {
		if got := g.WebURL("o", "r", tt.kind, tt.id); got != tt.want {
			t.Errorf("WebURL(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
