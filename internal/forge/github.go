package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"

	"github.com/altinukshini/grit/internal/model"
)

// GitHub talks to the GitHub REST v3 API through go-gh. Two clients are
// kept: diff requests need the vnd.github.diff media type, which go-gh
// pins per client rather than per request.
type GitHub struct {
	rest *ghAPI.RESTClient
	diff *ghAPI.RESTClient
	host string
}

func NewGitHub(host, token string) (*GitHub, error) {
	if host == "" {
		host = "github.com"
	}
	rest, err := ghAPI.NewRESTClient(ghAPI.ClientOptions{Host: host, AuthToken: token})
	if err != nil {
		return nil, ApiError(err)
	}
	diff, err := ghAPI.NewRESTClient(ghAPI.ClientOptions{
		Host:      host,
		AuthToken: token,
		Headers:   map[string]string{"Accept": "application/vnd.github.diff"},
	})
	if err != nil {
		return nil, ApiError(err)
	}
	return &GitHub{rest: rest, diff: diff, host: host}, nil
}

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) WebURL(owner, repo, kind, id string) string {
	base := fmt.Sprintf("https://%s/%s/%s", g.host, owner, repo)
	switch kind {
	case "pr":
		return base + "/pull/" + id
	case "issue":
		return base + "/issues/" + id
	case "commit":
		return base + "/commit/" + id
	case "action_run":
		return base + "/actions/runs/" + id
	}
	return base
}

func repoPath(owner, repo, path string) string {
	return fmt.Sprintf("repos/%s/%s/%s", owner, repo, path)
}

func (g *GitHub) get(ctx context.Context, path string, result any) error {
	if err := g.rest.DoWithContext(ctx, "GET", path, nil, result); err != nil {
		return ApiError(err)
	}
	return nil
}

func (g *GitHub) send(ctx context.Context, method, path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return IoError(err)
		}
		reader = bytes.NewReader(data)
	}
	if err := g.rest.DoWithContext(ctx, method, path, reader, result); err != nil {
		return ApiError(err)
	}
	return nil
}

func pageQuery(page int) string {
	return fmt.Sprintf("per_page=%d&page=%d", PageSize, page)
}

func (g *GitHub) CurrentUser(ctx context.Context) (string, error) {
	var user struct {
		Login string `json:"login"`
	}
	if err := g.get(ctx, "user", &user); err != nil {
		return "", err
	}
	return user.Login, nil
}

type ghRepo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Stars       int       `json:"stargazers_count"`
	UpdatedAt   time.Time `json:"updated_at"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (g *GitHub) ListRepos(ctx context.Context, page int) (Paged[model.Repository], error) {
	var raw []ghRepo
	path := fmt.Sprintf("user/repos?sort=updated&direction=desc&%s", pageQuery(page))
	if err := g.get(ctx, path, &raw); err != nil {
		return Paged[model.Repository]{}, err
	}
	repos := make([]model.Repository, len(raw))
	for i, r := range raw {
		repos[i] = model.Repository{
			Owner:       r.Owner.Login,
			Name:        r.Name,
			Description: r.Description,
			URL:         r.HTMLURL,
			Stars:       r.Stars,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return Paged[model.Repository]{Items: repos}, nil
}

type ghPull struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	MergedAt  *time.Time `json:"merged_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
	Head struct {
		Ref string `json:"ref"`
	} `json:"head"`
	Base struct {
		Ref string `json:"ref"`
	} `json:"base"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`
	Commits      int `json:"commits"`
	Comments     int `json:"comments"`
}

func (p ghPull) prState() model.PrState {
	if p.MergedAt != nil {
		return model.PrStateMerged
	}
	if p.State == "closed" {
		return model.PrStateClosed
	}
	return model.PrStateOpen
}

func (g *GitHub) ListPrs(ctx context.Context, owner, repo string, page int) (Paged[model.PrSummary], error) {
	var raw []ghPull
	path := repoPath(owner, repo, "pulls?state=open&sort=updated&direction=desc&"+pageQuery(page))
	if err := g.get(ctx, path, &raw); err != nil {
		return Paged[model.PrSummary]{}, err
	}
	prs := make([]model.PrSummary, len(raw))
	for i, p := range raw {
		prs[i] = model.PrSummary{
			Number:    p.Number,
			Title:     p.Title,
			State:     p.prState(),
			Author:    p.User.Login,
			UpdatedAt: p.UpdatedAt,
		}
	}
	return Paged[model.PrSummary]{Items: prs}, nil
}

func (g *GitHub) GetPr(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	var raw ghPull
	if err := g.get(ctx, repoPath(owner, repo, fmt.Sprintf("pulls/%d", number)), &raw); err != nil {
		return nil, err
	}
	return &model.PullRequest{
		Number:     raw.Number,
		Title:      raw.Title,
		Body:       raw.Body,
		State:      raw.prState(),
		Author:     raw.User.Login,
		HeadBranch: raw.Head.Ref,
		BaseBranch: raw.Base.Ref,
		Stats: model.PrStats{
			Additions:    raw.Additions,
			Deletions:    raw.Deletions,
			ChangedFiles: raw.ChangedFiles,
			Commits:      raw.Commits,
			Comments:     raw.Comments,
		},
		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,
		MergedAt:  raw.MergedAt,
		ClosedAt:  raw.ClosedAt,
	}, nil
}

func (g *GitHub) ListIssues(ctx context.Context, owner, repo string, page int) (Paged[model.Issue], error) {
	var raw []struct {
		Number    int       `json:"number"`
		Title     string    `json:"title"`
		State     string    `json:"state"`
		Comments  int       `json:"comments"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
		User      struct {
			Login string `json:"login"`
		} `json:"user"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
		PullRequest *struct{} `json:"pull_request"`
	}
	path := repoPath(owner, repo, "issues?state=open&sort=updated&direction=desc&"+pageQuery(page))
	if err := g.get(ctx, path, &raw); err != nil {
		return Paged[model.Issue]{}, err
	}
	// The issues endpoint includes pull requests; drop them.
	issues := make([]model.Issue, 0, len(raw))
	for _, is := range raw {
		if is.PullRequest != nil {
			continue
		}
		labels := make([]string, len(is.Labels))
		for i, l := range is.Labels {
			labels[i] = l.Name
		}
		state := model.IssueStateOpen
		if is.State == "closed" {
			state = model.IssueStateClosed
		}
		issues = append(issues, model.Issue{
			Number:    is.Number,
			Title:     is.Title,
			State:     state,
			Author:    is.User.Login,
			Labels:    labels,
			Comments:  is.Comments,
			CreatedAt: is.CreatedAt,
			UpdatedAt: is.UpdatedAt,
		})
	}
	return Paged[model.Issue]{Items: issues, TotalCount: len(raw)}, nil
}

type ghCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
	Stats struct {
		Additions int `json:"additions"`
		Deletions int `json:"deletions"`
		Total     int `json:"total"`
	} `json:"stats"`
	Files []struct {
		Filename  string `json:"filename"`
		Status    string `json:"status"`
		Additions int    `json:"additions"`
		Deletions int    `json:"deletions"`
		Patch     string `json:"patch"`
	} `json:"files"`
}

func (c ghCommit) authorName() string {
	if c.Author != nil && c.Author.Login != "" {
		return c.Author.Login
	}
	return c.Commit.Author.Name
}

func (g *GitHub) ListCommits(ctx context.Context, owner, repo string, page int) (Paged[model.Commit], error) {
	var raw []ghCommit
	path := repoPath(owner, repo, "commits?"+pageQuery(page))
	if err := g.get(ctx, path, &raw); err != nil {
		return Paged[model.Commit]{}, err
	}
	commits := make([]model.Commit, len(raw))
	for i, c := range raw {
		msg, _, _ := strings.Cut(c.Commit.Message, "\n")
		commits[i] = model.Commit{
			SHA:     c.SHA,
			Message: msg,
			Author:  c.authorName(),
			Date:    c.Commit.Author.Date,
		}
	}
	return Paged[model.Commit]{Items: commits}, nil
}

func (g *GitHub) GetCommit(ctx context.Context, owner, repo, sha string) (*model.CommitDetail, error) {
	var raw ghCommit
	if err := g.get(ctx, repoPath(owner, repo, "commits/"+sha), &raw); err != nil {
		return nil, err
	}
	files := make([]model.CommitFile, len(raw.Files))
	for i, f := range raw.Files {
		files[i] = model.CommitFile{
			Filename:  f.Filename,
			Status:    f.Status,
			Additions: f.Additions,
			Deletions: f.Deletions,
			Patch:     f.Patch,
		}
	}
	return &model.CommitDetail{
		SHA:     raw.SHA,
		Message: raw.Commit.Message,
		Author:  raw.authorName(),
		Date:    raw.Commit.Author.Date,
		Stats: model.CommitStats{
			Additions: raw.Stats.Additions,
			Deletions: raw.Stats.Deletions,
			Total:     raw.Stats.Total,
		},
		Files: files,
	}, nil
}

func (g *GitHub) GetPrDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	path := repoPath(owner, repo, fmt.Sprintf("pulls/%d", number))
	resp, err := g.diff.RequestWithContext(ctx, "GET", path, nil)
	if err != nil {
		return "", ApiError(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ApiError(err)
	}
	return string(data), nil
}

func (g *GitHub) MergePr(ctx context.Context, owner, repo string, number int, method model.MergeMethod) error {
	body := map[string]string{"merge_method": string(method)}
	return g.send(ctx, "PUT", repoPath(owner, repo, fmt.Sprintf("pulls/%d/merge", number)), body, nil)
}

func (g *GitHub) ClosePr(ctx context.Context, owner, repo string, number int) error {
	body := map[string]string{"state": "closed"}
	return g.send(ctx, "PATCH", repoPath(owner, repo, fmt.Sprintf("pulls/%d", number)), body, nil)
}

func (g *GitHub) CloseIssue(ctx context.Context, owner, repo string, number int) error {
	body := map[string]string{"state": "closed"}
	return g.send(ctx, "PATCH", repoPath(owner, repo, fmt.Sprintf("issues/%d", number)), body, nil)
}

func (g *GitHub) Comment(ctx context.Context, owner, repo string, number int, text string) error {
	body := map[string]string{"body": text}
	return g.send(ctx, "POST", repoPath(owner, repo, fmt.Sprintf("issues/%d/comments", number)), body, nil)
}

func (g *GitHub) SubmitReview(ctx context.Context, owner, repo string, number int, event model.ReviewEvent, text string) error {
	body := map[string]string{"event": string(event)}
	if text != "" {
		body["body"] = text
	}
	return g.send(ctx, "POST", repoPath(owner, repo, fmt.Sprintf("pulls/%d/reviews", number)), body, nil)
}

type ghSearchIssue struct {
	Number        int       `json:"number"`
	Title         string    `json:"title"`
	State         string    `json:"state"`
	UpdatedAt     time.Time `json:"updated_at"`
	RepositoryURL string    `json:"repository_url"`
	User          struct {
		Login string `json:"login"`
	} `json:"user"`
}

// splitRepoURL extracts owner and name from an API repository_url like
// https://api.github.com/repos/octocat/hello.
func splitRepoURL(repoURL string) (owner, name string, ok bool) {
	parts := strings.Split(repoURL, "/")
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[len(parts)-2], parts[len(parts)-1], true
}

func (g *GitHub) searchIssues(ctx context.Context, query string) ([]ghSearchIssue, error) {
	var result struct {
		Items []ghSearchIssue `json:"items"`
	}
	path := fmt.Sprintf("search/issues?q=%s&per_page=%d", url.QueryEscape(query), PageSize)
	if err := g.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (g *GitHub) ListReviewRequests(ctx context.Context, username string) ([]model.ReviewRequest, error) {
	items, err := g.searchIssues(ctx, "is:pr is:open review-requested:"+username)
	if err != nil {
		return nil, err
	}
	reqs := make([]model.ReviewRequest, 0, len(items))
	for _, it := range items {
		owner, name, ok := splitRepoURL(it.RepositoryURL)
		if !ok {
			continue
		}
		reqs = append(reqs, model.ReviewRequest{
			RepoOwner: owner,
			RepoName:  name,
			PrNumber:  it.Number,
			PrTitle:   it.Title,
			Author:    it.User.Login,
			UpdatedAt: it.UpdatedAt,
		})
	}
	return reqs, nil
}

func (g *GitHub) ListMyPrs(ctx context.Context, username string) ([]model.MyPr, error) {
	items, err := g.searchIssues(ctx, "is:pr is:open author:"+username)
	if err != nil {
		return nil, err
	}
	prs := make([]model.MyPr, 0, len(items))
	for _, it := range items {
		owner, name, ok := splitRepoURL(it.RepositoryURL)
		if !ok {
			continue
		}
		state := model.PrStateOpen
		if it.State == "closed" {
			state = model.PrStateClosed
		}
		checks, err := g.GetCheckStatus(ctx, owner, name, it.Number)
		if err != nil {
			checks = model.ChecksNone
		}
		prs = append(prs, model.MyPr{
			RepoOwner:    owner,
			RepoName:     name,
			Number:       it.Number,
			Title:        it.Title,
			State:        state,
			ChecksStatus: checks,
			UpdatedAt:    it.UpdatedAt,
		})
	}
	return prs, nil
}

func (g *GitHub) ListActionRuns(ctx context.Context, owner, repo string, page int) (Paged[model.ActionRun], error) {
	var result struct {
		TotalCount int `json:"total_count"`
		Runs       []struct {
			ID         int64     `json:"id"`
			Name       string    `json:"name"`
			Status     string    `json:"status"`
			Conclusion string    `json:"conclusion"`
			HeadBranch string    `json:"head_branch"`
			Event      string    `json:"event"`
			CreatedAt  time.Time `json:"created_at"`
		} `json:"workflow_runs"`
	}
	path := repoPath(owner, repo, "actions/runs?"+pageQuery(page))
	if err := g.get(ctx, path, &result); err != nil {
		return Paged[model.ActionRun]{}, err
	}
	runs := make([]model.ActionRun, len(result.Runs))
	for i, r := range result.Runs {
		status := model.ActionCompleted
		switch r.Status {
		case "queued":
			status = model.ActionQueued
		case "in_progress":
			status = model.ActionInProgress
		}
		runs[i] = model.ActionRun{
			ID:         r.ID,
			Name:       r.Name,
			Status:     status,
			Conclusion: actionConclusion(r.Conclusion),
			Branch:     r.HeadBranch,
			Event:      r.Event,
			CreatedAt:  r.CreatedAt,
		}
	}
	return Paged[model.ActionRun]{Items: runs, TotalCount: result.TotalCount}, nil
}

func actionConclusion(s string) model.ActionConclusion {
	switch s {
	case "success":
		return model.ConclusionSuccess
	case "failure":
		return model.ConclusionFailure
	case "cancelled":
		return model.ConclusionCancelled
	case "skipped":
		return model.ConclusionSkipped
	case "timed_out":
		return model.ConclusionTimedOut
	}
	return ""
}

func (g *GitHub) GetCheckStatus(ctx context.Context, owner, repo string, number int) (model.ChecksStatus, error) {
	var pr struct {
		Head struct {
			SHA string `json:"sha"`
		} `json:"head"`
	}
	if err := g.get(ctx, repoPath(owner, repo, fmt.Sprintf("pulls/%d", number)), &pr); err != nil {
		return model.ChecksNone, err
	}
	var checks struct {
		CheckRuns []struct {
			Status     string `json:"status"`
			Conclusion string `json:"conclusion"`
		} `json:"check_runs"`
	}
	path := repoPath(owner, repo, "commits/"+pr.Head.SHA+"/check-runs")
	if err := g.get(ctx, path, &checks); err != nil {
		return model.ChecksNone, err
	}
	if len(checks.CheckRuns) == 0 {
		return model.ChecksNone, nil
	}
	status := model.ChecksSuccess
	for _, run := range checks.CheckRuns {
		if run.Status != "completed" {
			return model.ChecksPending, nil
		}
		switch run.Conclusion {
		case "failure", "timed_out", "cancelled":
			status = model.ChecksFailure
		}
	}
	return status, nil
}
