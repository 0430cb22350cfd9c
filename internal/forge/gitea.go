package forge

import (
	"context"
	"fmt"
	"strings"

	"github.com/altinukshini/grit/internal/model"
)

// Gitea talks to the Gitea REST v1 API. Gitea has no CI runs endpoint, so
// the action-run surface stays on the Unsupported defaults.
type Gitea struct {
	Unsupported
	http *httpClient
	host string
}

func NewGitea(host, token string) *Gitea {
	return &Gitea{
		http: newHTTPClient("https://"+host+"/api/v1", map[string]string{"Authorization": "token " + token}),
		host: host,
	}
}

func (g *Gitea) Name() string { return "gitea" }

func (g *Gitea) WebURL(owner, repo, kind, id string) string {
	base := fmt.Sprintf("https://%s/%s/%s", g.host, owner, repo)
	switch kind {
	case "pr":
		return base + "/pulls/" + id
	case "issue":
		return base + "/issues/" + id
	case "commit":
		return base + "/commit/" + id
	}
	return base
}

func (g *Gitea) CurrentUser(ctx context.Context) (string, error) {
	var user struct {
		Login string `json:"login"`
	}
	if err := g.http.getJSON(ctx, "/user", &user); err != nil {
		return "", err
	}
	return user.Login, nil
}

type gtUser struct {
	Login string `json:"login"`
}

func (u *gtUser) login() string {
	if u == nil || u.Login == "" {
		return "unknown"
	}
	return u.Login
}

func (g *Gitea) ListRepos(ctx context.Context, page int) (Paged[model.Repository], error) {
	var raw []struct {
		Owner       *gtUser `json:"owner"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		HTMLURL     string  `json:"html_url"`
		Stars       int     `json:"stars_count"`
		UpdatedAt   string  `json:"updated_at"`
	}
	path := fmt.Sprintf("/user/repos?sort=updated&limit=%d&page=%d", PageSize, page)
	if err := g.http.getJSON(ctx, path, &raw); err != nil {
		return Paged[model.Repository]{}, err
	}
	repos := make([]model.Repository, len(raw))
	for i, r := range raw {
		repos[i] = model.Repository{
			Owner:       r.Owner.login(),
			Name:        r.Name,
			Description: r.Description,
			URL:         r.HTMLURL,
			Stars:       r.Stars,
			UpdatedAt:   timeOrNow(r.UpdatedAt),
		}
	}
	return Paged[model.Repository]{Items: repos}, nil
}

type gtPull struct {
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	State     string  `json:"state"`
	Body      string  `json:"body"`
	User      *gtUser `json:"user"`
	Merged    bool    `json:"merged"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	MergedAt  string  `json:"merged_at"`
	ClosedAt  string  `json:"closed_at"`
	Head      struct {
		Ref string `json:"ref"`
	} `json:"head"`
	Base struct {
		Ref string `json:"ref"`
	} `json:"base"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`
	Comments     int `json:"comments"`
}

func (p gtPull) prState() model.PrState {
	if p.Merged {
		return model.PrStateMerged
	}
	if p.State == "closed" {
		return model.PrStateClosed
	}
	return model.PrStateOpen
}

func (g *Gitea) ListPrs(ctx context.Context, owner, repo string, page int) (Paged[model.PrSummary], error) {
	var raw []gtPull
	path := fmt.Sprintf("/repos/%s/%s/pulls?state=open&sort=updated&limit=%d&page=%d", owner, repo, PageSize, page)
	if err := g.http.getJSON(ctx, path, &raw); err != nil {
		return Paged[model.PrSummary]{}, err
	}
	prs := make([]model.PrSummary, len(raw))
	for i, p := range raw {
		prs[i] = model.PrSummary{
			Number:    p.Number,
			Title:     p.Title,
			State:     p.prState(),
			Author:    p.User.login(),
			UpdatedAt: timeOrNow(p.UpdatedAt),
		}
	}
	return Paged[model.PrSummary]{Items: prs}, nil
}

func (g *Gitea) GetPr(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	var p gtPull
	if err := g.http.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number), &p); err != nil {
		return nil, err
	}
	return &model.PullRequest{
		Number:     p.Number,
		Title:      p.Title,
		Body:       p.Body,
		State:      p.prState(),
		Author:     p.User.login(),
		HeadBranch: p.Head.Ref,
		BaseBranch: p.Base.Ref,
		Stats: model.PrStats{
			Additions:    p.Additions,
			Deletions:    p.Deletions,
			ChangedFiles: p.ChangedFiles,
			Comments:     p.Comments,
		},
		CreatedAt: timeOrNow(p.CreatedAt),
		UpdatedAt: timeOrNow(p.UpdatedAt),
		MergedAt:  timePtr(p.MergedAt),
		ClosedAt:  timePtr(p.ClosedAt),
	}, nil
}

func (g *Gitea) ListIssues(ctx context.Context, owner, repo string, page int) (Paged[model.Issue], error) {
	var raw []struct {
		Number    int     `json:"number"`
		Title     string  `json:"title"`
		State     string  `json:"state"`
		User      *gtUser `json:"user"`
		Comments  int     `json:"comments"`
		CreatedAt string  `json:"created_at"`
		UpdatedAt string  `json:"updated_at"`
		Labels    []struct {
			Name string `json:"name"`
		} `json:"labels"`
	}
	path := fmt.Sprintf("/repos/%s/%s/issues?type=issues&state=open&sort=updated&limit=%d&page=%d", owner, repo, PageSize, page)
	if err := g.http.getJSON(ctx, path, &raw); err != nil {
		return Paged[model.Issue]{}, err
	}
	issues := make([]model.Issue, len(raw))
	for i, is := range raw {
		labels := make([]string, len(is.Labels))
		for j, l := range is.Labels {
			labels[j] = l.Name
		}
		state := model.IssueStateOpen
		if is.State == "closed" {
			state = model.IssueStateClosed
		}
		issues[i] = model.Issue{
			Number:    is.Number,
			Title:     is.Title,
			State:     state,
			Author:    is.User.login(),
			Labels:    labels,
			Comments:  is.Comments,
			CreatedAt: timeOrNow(is.CreatedAt),
			UpdatedAt: timeOrNow(is.UpdatedAt),
		}
	}
	return Paged[model.Issue]{Items: issues}, nil
}

type gtCommitInner struct {
	Message string `json:"message"`
	Author  struct {
		Name string `json:"name"`
		Date string `json:"date"`
	} `json:"author"`
}

func (c gtCommitInner) authorName() string {
	if c.Author.Name == "" {
		return "unknown"
	}
	return c.Author.Name
}

func (g *Gitea) ListCommits(ctx context.Context, owner, repo string, page int) (Paged[model.Commit], error) {
	var raw []struct {
		SHA    string        `json:"sha"`
		Commit gtCommitInner `json:"commit"`
	}
	path := fmt.Sprintf("/repos/%s/%s/commits?limit=%d&page=%d", owner, repo, PageSize, page)
	if err := g.http.getJSON(ctx, path, &raw); err != nil {
		return Paged[model.Commit]{}, err
	}
	commits := make([]model.Commit, len(raw))
	for i, c := range raw {
		msg, _, _ := strings.Cut(c.Commit.Message, "\n")
		commits[i] = model.Commit{
			SHA:     c.SHA,
			Message: msg,
			Author:  c.Commit.authorName(),
			Date:    timeOrNow(c.Commit.Author.Date),
		}
	}
	return Paged[model.Commit]{Items: commits}, nil
}

func (g *Gitea) GetCommit(ctx context.Context, owner, repo, sha string) (*model.CommitDetail, error) {
	var raw struct {
		SHA    string        `json:"sha"`
		Commit gtCommitInner `json:"commit"`
		Stats  struct {
			Additions int `json:"additions"`
			Deletions int `json:"deletions"`
			Total     int `json:"total"`
		} `json:"stats"`
		Files []struct {
			Filename  string `json:"filename"`
			Status    string `json:"status"`
			Additions int    `json:"additions"`
			Deletions int    `json:"deletions"`
		} `json:"files"`
	}
	if err := g.http.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/git/commits/%s", owner, repo, sha), &raw); err != nil {
		return nil, err
	}
	if raw.SHA == "" {
		raw.SHA = sha
	}
	// Gitea's commit endpoint carries no patch text.
	files := make([]model.CommitFile, len(raw.Files))
	for i, f := range raw.Files {
		status := f.Status
		if status == "" {
			status = "modified"
		}
		files[i] = model.CommitFile{
			Filename:  f.Filename,
			Status:    status,
			Additions: f.Additions,
			Deletions: f.Deletions,
		}
	}
	return &model.CommitDetail{
		SHA:     raw.SHA,
		Message: raw.Commit.Message,
		Author:  raw.Commit.authorName(),
		Date:    timeOrNow(raw.Commit.Author.Date),
		Stats: model.CommitStats{
			Additions: raw.Stats.Additions,
			Deletions: raw.Stats.Deletions,
			Total:     raw.Stats.Total,
		},
		Files: files,
	}, nil
}

func (g *Gitea) GetPrDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	return g.http.getText(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%d.diff", owner, repo, number))
}

func (g *Gitea) MergePr(ctx context.Context, owner, repo string, number int, method model.MergeMethod) error {
	body := map[string]string{"Do": string(method)}
	return g.http.send(ctx, "POST", fmt.Sprintf("/repos/%s/%s/pulls/%d/merge", owner, repo, number), body)
}

func (g *Gitea) ClosePr(ctx context.Context, owner, repo string, number int) error {
	body := map[string]string{"state": "closed"}
	return g.http.send(ctx, "PATCH", fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number), body)
}

func (g *Gitea) CloseIssue(ctx context.Context, owner, repo string, number int) error {
	body := map[string]string{"state": "closed"}
	return g.http.send(ctx, "PATCH", fmt.Sprintf("/repos/%s/%s/issues/%d", owner, repo, number), body)
}

// Comment posts through the issues API; Gitea treats PRs as issues.
func (g *Gitea) Comment(ctx context.Context, owner, repo string, number int, body string) error {
	payload := map[string]string{"body": body}
	return g.http.send(ctx, "POST", fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, number), payload)
}
