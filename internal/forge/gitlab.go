package forge

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/altinukshini/grit/internal/model"
)

// GitLab talks to the GitLab REST v4 API. Merge requests surface as pull
// requests and pipelines as action runs.
type GitLab struct {
	Unsupported
	http *httpClient
	host string
}

func NewGitLab(host, token string) *GitLab {
	return &GitLab{
		http: newHTTPClient("https://"+host+"/api/v4", map[string]string{"PRIVATE-TOKEN": token}),
		host: host,
	}
}

func (g *GitLab) Name() string { return "gitlab" }

func (g *GitLab) WebURL(owner, repo, kind, id string) string {
	base := fmt.Sprintf("https://%s/%s/%s", g.host, owner, repo)
	switch kind {
	case "pr":
		return base + "/-/merge_requests/" + id
	case "issue":
		return base + "/-/issues/" + id
	case "commit":
		return base + "/-/commit/" + id
	case "action_run":
		return base + "/-/pipelines/" + id
	}
	return base
}

// projectPath URL-encodes owner/repo into a GitLab project id segment.
func projectPath(owner, repo string) string {
	return url.PathEscape(owner + "/" + repo)
}

func (g *GitLab) CurrentUser(ctx context.Context) (string, error) {
	var user struct {
		Username string `json:"username"`
	}
	if err := g.http.getJSON(ctx, "/user", &user); err != nil {
		return "", err
	}
	return user.Username, nil
}

func (g *GitLab) ListRepos(ctx context.Context, page int) (Paged[model.Repository], error) {
	var projects []struct {
		PathWithNamespace string `json:"path_with_namespace"`
		Name              string `json:"name"`
		Description       string `json:"description"`
		WebURL            string `json:"web_url"`
		StarCount         int    `json:"star_count"`
		LastActivityAt    string `json:"last_activity_at"`
	}
	path := fmt.Sprintf("/projects?membership=true&order_by=last_activity_at&sort=desc&per_page=%d&page=%d", PageSize, page)
	if err := g.http.getJSON(ctx, path, &projects); err != nil {
		return Paged[model.Repository]{}, err
	}
	repos := make([]model.Repository, len(projects))
	for i, p := range projects {
		owner, name, found := strings.Cut(p.PathWithNamespace, "/")
		if !found {
			owner, name = "unknown", p.Name
		}
		repos[i] = model.Repository{
			Owner:       owner,
			Name:        name,
			Description: p.Description,
			URL:         p.WebURL,
			Stars:       p.StarCount,
			UpdatedAt:   timeOrNow(p.LastActivityAt),
		}
	}
	return Paged[model.Repository]{Items: repos}, nil
}

type glMergeRequest struct {
	IID          int    `json:"iid"`
	Title        string `json:"title"`
	State        string `json:"state"`
	Description  string `json:"description"`
	SourceBranch string `json:"source_branch"`
	TargetBranch string `json:"target_branch"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MergedAt     string `json:"merged_at"`
	ClosedAt     string `json:"closed_at"`
	NotesCount   int    `json:"user_notes_count"`
	ChangesCount string `json:"changes_count"`
	Author       struct {
		Username string `json:"username"`
	} `json:"author"`
}

func glMrState(state string) model.PrState {
	switch state {
	case "merged":
		return model.PrStateMerged
	case "closed":
		return model.PrStateClosed
	}
	return model.PrStateOpen
}

func (g *GitLab) ListPrs(ctx context.Context, owner, repo string, page int) (Paged[model.PrSummary], error) {
	var mrs []glMergeRequest
	path := fmt.Sprintf("/projects/%s/merge_requests?state=opened&order_by=updated_at&sort=desc&per_page=%d&page=%d",
		projectPath(owner, repo), PageSize, page)
	if err := g.http.getJSON(ctx, path, &mrs); err != nil {
		return Paged[model.PrSummary]{}, err
	}
	prs := make([]model.PrSummary, len(mrs))
	for i, mr := range mrs {
		prs[i] = model.PrSummary{
			Number:    mr.IID,
			Title:     mr.Title,
			State:     glMrState(mr.State),
			Author:    mr.Author.Username,
			UpdatedAt: timeOrNow(mr.UpdatedAt),
		}
	}
	return Paged[model.PrSummary]{Items: prs}, nil
}

func (g *GitLab) GetPr(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	var mr glMergeRequest
	path := fmt.Sprintf("/projects/%s/merge_requests/%d", projectPath(owner, repo), number)
	if err := g.http.getJSON(ctx, path, &mr); err != nil {
		return nil, err
	}
	// GitLab reports changes_count as a string, possibly "1000+".
	changed, _ := strconv.Atoi(mr.ChangesCount)
	return &model.PullRequest{
		Number:     mr.IID,
		Title:      mr.Title,
		Body:       mr.Description,
		State:      glMrState(mr.State),
		Author:     mr.Author.Username,
		HeadBranch: mr.SourceBranch,
		BaseBranch: mr.TargetBranch,
		Stats: model.PrStats{
			ChangedFiles: changed,
			Comments:     mr.NotesCount,
		},
		CreatedAt: timeOrNow(mr.CreatedAt),
		UpdatedAt: timeOrNow(mr.UpdatedAt),
		MergedAt:  timePtr(mr.MergedAt),
		ClosedAt:  timePtr(mr.ClosedAt),
	}, nil
}

func (g *GitLab) ListIssues(ctx context.Context, owner, repo string, page int) (Paged[model.Issue], error) {
	var raw []struct {
		IID        int      `json:"iid"`
		Title      string   `json:"title"`
		State      string   `json:"state"`
		Labels     []string `json:"labels"`
		NotesCount int      `json:"user_notes_count"`
		CreatedAt  string   `json:"created_at"`
		UpdatedAt  string   `json:"updated_at"`
		Author     struct {
			Username string `json:"username"`
		} `json:"author"`
	}
	path := fmt.Sprintf("/projects/%s/issues?state=opened&order_by=updated_at&sort=desc&per_page=%d&page=%d",
		projectPath(owner, repo), PageSize, page)
	if err := g.http.getJSON(ctx, path, &raw); err != nil {
		return Paged[model.Issue]{}, err
	}
	issues := make([]model.Issue, len(raw))
	for i, is := range raw {
		state := model.IssueStateOpen
		if is.State == "closed" {
			state = model.IssueStateClosed
		}
		issues[i] = model.Issue{
			Number:    is.IID,
			Title:     is.Title,
			State:     state,
			Author:    is.Author.Username,
			Labels:    is.Labels,
			Comments:  is.NotesCount,
			CreatedAt: timeOrNow(is.CreatedAt),
			UpdatedAt: timeOrNow(is.UpdatedAt),
		}
	}
	return Paged[model.Issue]{Items: issues}, nil
}

func (g *GitLab) ListCommits(ctx context.Context, owner, repo string, page int) (Paged[model.Commit], error) {
	var raw []struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Message    string `json:"message"`
		AuthorName string `json:"author_name"`
		CreatedAt  string `json:"created_at"`
	}
	path := fmt.Sprintf("/projects/%s/repository/commits?per_page=%d&page=%d", projectPath(owner, repo), PageSize, page)
	if err := g.http.getJSON(ctx, path, &raw); err != nil {
		return Paged[model.Commit]{}, err
	}
	commits := make([]model.Commit, len(raw))
	for i, c := range raw {
		msg := c.Title
		if msg == "" {
			msg, _, _ = strings.Cut(c.Message, "\n")
		}
		author := c.AuthorName
		if author == "" {
			author = "unknown"
		}
		commits[i] = model.Commit{
			SHA:     c.ID,
			Message: msg,
			Author:  author,
			Date:    timeOrNow(c.CreatedAt),
		}
	}
	return Paged[model.Commit]{Items: commits}, nil
}

func (g *GitLab) GetCommit(ctx context.Context, owner, repo, sha string) (*model.CommitDetail, error) {
	project := projectPath(owner, repo)
	var detail struct {
		ID         string `json:"id"`
		Message    string `json:"message"`
		AuthorName string `json:"author_name"`
		CreatedAt  string `json:"created_at"`
		Stats      struct {
			Additions int `json:"additions"`
			Deletions int `json:"deletions"`
			Total     int `json:"total"`
		} `json:"stats"`
	}
	if err := g.http.getJSON(ctx, fmt.Sprintf("/projects/%s/repository/commits/%s", project, sha), &detail); err != nil {
		return nil, err
	}
	var diffs []struct {
		NewPath     string `json:"new_path"`
		NewFile     bool   `json:"new_file"`
		RenamedFile bool   `json:"renamed_file"`
		DeletedFile bool   `json:"deleted_file"`
		Diff        string `json:"diff"`
	}
	if err := g.http.getJSON(ctx, fmt.Sprintf("/projects/%s/repository/commits/%s/diff", project, sha), &diffs); err != nil {
		return nil, err
	}
	files := make([]model.CommitFile, len(diffs))
	for i, d := range diffs {
		status := "modified"
		switch {
		case d.NewFile:
			status = "added"
		case d.DeletedFile:
			status = "removed"
		case d.RenamedFile:
			status = "renamed"
		}
		adds, dels := countDiffLines(d.Diff)
		files[i] = model.CommitFile{
			Filename:  d.NewPath,
			Status:    status,
			Additions: adds,
			Deletions: dels,
			Patch:     d.Diff,
		}
	}
	author := detail.AuthorName
	if author == "" {
		author = "unknown"
	}
	return &model.CommitDetail{
		SHA:     detail.ID,
		Message: detail.Message,
		Author:  author,
		Date:    timeOrNow(detail.CreatedAt),
		Stats: model.CommitStats{
			Additions: detail.Stats.Additions,
			Deletions: detail.Stats.Deletions,
			Total:     detail.Stats.Total,
		},
		Files: files,
	}, nil
}

// countDiffLines tallies added and removed lines in a unified diff hunk,
// skipping the +++/--- file header lines.
func countDiffLines(diff string) (adds, dels int) {
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			adds++
		case strings.HasPrefix(line, "-"):
			dels++
		}
	}
	return adds, dels
}

func (g *GitLab) GetPrDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	var mr struct {
		Changes []struct {
			OldPath string `json:"old_path"`
			NewPath string `json:"new_path"`
			Diff    string `json:"diff"`
		} `json:"changes"`
	}
	path := fmt.Sprintf("/projects/%s/merge_requests/%d/changes", projectPath(owner, repo), number)
	if err := g.http.getJSON(ctx, path, &mr); err != nil {
		return "", err
	}
	// GitLab returns per-file hunks; stitch them into a unified diff.
	var b strings.Builder
	for _, c := range mr.Changes {
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", c.OldPath, c.NewPath)
		fmt.Fprintf(&b, "--- a/%s\n", c.OldPath)
		fmt.Fprintf(&b, "+++ b/%s\n", c.NewPath)
		b.WriteString(c.Diff)
		if !strings.HasSuffix(c.Diff, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func glMergeMethod(method model.MergeMethod) string {
	switch method {
	case model.MergeMethodSquash:
		return "squash_merge"
	case model.MergeMethodRebase:
		return "rebase_merge"
	}
	return "merge"
}

func (g *GitLab) MergePr(ctx context.Context, owner, repo string, number int, method model.MergeMethod) error {
	body := map[string]string{"merge_method": glMergeMethod(method)}
	path := fmt.Sprintf("/projects/%s/merge_requests/%d/merge", projectPath(owner, repo), number)
	return g.http.send(ctx, "PUT", path, body)
}

func (g *GitLab) ClosePr(ctx context.Context, owner, repo string, number int) error {
	path := fmt.Sprintf("/projects/%s/merge_requests/%d", projectPath(owner, repo), number)
	return g.http.send(ctx, "PUT", path, map[string]string{"state_event": "close"})
}

func (g *GitLab) CloseIssue(ctx context.Context, owner, repo string, number int) error {
	path := fmt.Sprintf("/projects/%s/issues/%d", projectPath(owner, repo), number)
	return g.http.send(ctx, "PUT", path, map[string]string{"state_event": "close"})
}

func (g *GitLab) Comment(ctx context.Context, owner, repo string, number int, body string) error {
	path := fmt.Sprintf("/projects/%s/merge_requests/%d/notes", projectPath(owner, repo), number)
	return g.http.send(ctx, "POST", path, map[string]string{"body": body})
}

type glPipeline struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Ref       string `json:"ref"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

func glPipelineStatus(status string) (model.ActionStatus, model.ActionConclusion) {
	switch status {
	case "created", "waiting_for_resource", "preparing", "pending":
		return model.ActionQueued, ""
	case "running":
		return model.ActionInProgress, ""
	case "success":
		return model.ActionCompleted, model.ConclusionSuccess
	case "canceled":
		return model.ActionCompleted, model.ConclusionCancelled
	case "skipped":
		return model.ActionCompleted, model.ConclusionSkipped
	}
	return model.ActionCompleted, model.ConclusionFailure
}

func (g *GitLab) ListActionRuns(ctx context.Context, owner, repo string, page int) (Paged[model.ActionRun], error) {
	var pipelines []glPipeline
	path := fmt.Sprintf("/projects/%s/pipelines?per_page=%d&page=%d", projectPath(owner, repo), PageSize, page)
	if err := g.http.getJSON(ctx, path, &pipelines); err != nil {
		return Paged[model.ActionRun]{}, err
	}
	runs := make([]model.ActionRun, len(pipelines))
	for i, p := range pipelines {
		status, conclusion := glPipelineStatus(p.Status)
		branch := p.Ref
		if branch == "" {
			branch = "unknown"
		}
		event := p.Source
		if event == "" {
			event = "push"
		}
		runs[i] = model.ActionRun{
			ID:         p.ID,
			Name:       fmt.Sprintf("Pipeline #%d", p.ID),
			Status:     status,
			Conclusion: conclusion,
			Branch:     branch,
			Event:      event,
			CreatedAt:  timeOrNow(p.CreatedAt),
		}
	}
	return Paged[model.ActionRun]{Items: runs}, nil
}

func (g *GitLab) GetCheckStatus(ctx context.Context, owner, repo string, number int) (model.ChecksStatus, error) {
	var pipelines []glPipeline
	path := fmt.Sprintf("/projects/%s/merge_requests/%d/pipelines", projectPath(owner, repo), number)
	if err := g.http.getJSON(ctx, path, &pipelines); err != nil {
		return model.ChecksNone, err
	}
	if len(pipelines) == 0 {
		return model.ChecksNone, nil
	}
	switch pipelines[0].Status {
	case "success":
		return model.ChecksSuccess, nil
	case "failed", "canceled", "skipped":
		return model.ChecksFailure, nil
	case "running", "pending", "created", "waiting_for_resource", "preparing":
		return model.ChecksPending, nil
	}
	return model.ChecksNone, nil
}
