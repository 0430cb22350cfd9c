package tui

import (
	"log/slog"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/altinukshini/grit/internal/cache"
	"github.com/altinukshini/grit/internal/model"
	"github.com/altinukshini/grit/internal/ui"
)

// Load commands run the cache read and the network fetch in sequence, so
// the stale paint always lands before the fresh result within one
// loadID. A cache miss produces no message at all.

func (a *App) homeKey() string { return a.forgeName + "_home" }

func (a *App) loadHomeCmd(loadID uint64) tea.Cmd {
	readCache := func() tea.Msg {
		if data, ok := cache.Read[model.HomeData](a.homeKey()); ok {
			return ui.HomeLoadedMsg{LoadID: loadID, Data: data, FromCache: true}
		}
		return nil
	}
	fetch := func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		username, err := a.forge.CurrentUser(ctx)
		if err != nil {
			return ui.HomeLoadedMsg{LoadID: loadID, Err: err}
		}
		reviews, err := a.forge.ListReviewRequests(ctx, username)
		if err != nil {
			return ui.HomeLoadedMsg{LoadID: loadID, Err: err}
		}
		myPrs, err := a.forge.ListMyPrs(ctx, username)
		if err != nil {
			return ui.HomeLoadedMsg{LoadID: loadID, Err: err}
		}
		data := model.HomeData{ReviewRequests: reviews, MyPrs: myPrs}
		cache.Write(a.homeKey(), data)
		return ui.HomeLoadedMsg{LoadID: loadID, Data: data}
	}
	return tea.Sequence(readCache, fetch)
}

func (a *App) loadReposCmd(loadID uint64) tea.Cmd {
	key := a.forgeName + "_repos"
	readCache := func() tea.Msg {
		if repos, ok := cache.Read[[]model.Repository](key); ok {
			return ui.ReposLoadedMsg{LoadID: loadID, Repos: repos, FromCache: true}
		}
		return nil
	}
	fetch := func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		page, err := a.forge.ListRepos(ctx, 1)
		if err != nil {
			return ui.ReposLoadedMsg{LoadID: loadID, Err: err}
		}
		cache.Write(key, page.Items)
		return ui.ReposLoadedMsg{LoadID: loadID, Repos: page.Items}
	}
	return tea.Sequence(readCache, fetch)
}

func (a *App) loadPrsCmd(owner, repo string, loadID uint64) tea.Cmd {
	key := "prs_" + cache.ForgeRepoKey(a.forgeName, owner, repo)
	readCache := func() tea.Msg {
		if prs, ok := cache.Read[[]model.PrSummary](key); ok {
			return ui.PrsLoadedMsg{LoadID: loadID, Prs: prs, FromCache: true}
		}
		return nil
	}
	fetch := func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		page, err := a.forge.ListPrs(ctx, owner, repo, 1)
		if err != nil {
			return ui.PrsLoadedMsg{LoadID: loadID, Err: err}
		}
		cache.Write(key, page.Items)
		return ui.PrsLoadedMsg{LoadID: loadID, Prs: page.Items}
	}
	return tea.Sequence(readCache, fetch)
}

func (a *App) loadIssuesCmd(owner, repo string, loadID uint64) tea.Cmd {
	key := "issues_" + cache.ForgeRepoKey(a.forgeName, owner, repo)
	readCache := func() tea.Msg {
		if issues, ok := cache.Read[[]model.Issue](key); ok {
			return ui.IssuesLoadedMsg{LoadID: loadID, Issues: issues, FromCache: true}
		}
		return nil
	}
	fetch := func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		page, err := a.forge.ListIssues(ctx, owner, repo, 1)
		if err != nil {
			return ui.IssuesLoadedMsg{LoadID: loadID, Err: err}
		}
		cache.Write(key, page.Items)
		return ui.IssuesLoadedMsg{LoadID: loadID, Issues: page.Items}
	}
	return tea.Sequence(readCache, fetch)
}

func (a *App) loadCommitsCmd(owner, repo string, loadID uint64) tea.Cmd {
	key := "commits_" + cache.ForgeRepoKey(a.forgeName, owner, repo)
	readCache := func() tea.Msg {
		if commits, ok := cache.Read[[]model.Commit](key); ok {
			return ui.CommitsLoadedMsg{LoadID: loadID, Commits: commits, FromCache: true}
		}
		return nil
	}
	fetch := func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		page, err := a.forge.ListCommits(ctx, owner, repo, 1)
		if err != nil {
			return ui.CommitsLoadedMsg{LoadID: loadID, Err: err}
		}
		cache.Write(key, page.Items)
		return ui.CommitsLoadedMsg{LoadID: loadID, Commits: page.Items}
	}
	return tea.Sequence(readCache, fetch)
}

func (a *App) loadActionRunsCmd(owner, repo string, loadID uint64) tea.Cmd {
	key := "actions_" + cache.ForgeRepoKey(a.forgeName, owner, repo)
	readCache := func() tea.Msg {
		if runs, ok := cache.Read[[]model.ActionRun](key); ok {
			return ui.ActionRunsLoadedMsg{LoadID: loadID, Runs: runs, FromCache: true}
		}
		return nil
	}
	fetch := func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		page, err := a.forge.ListActionRuns(ctx, owner, repo, 1)
		if err != nil {
			return ui.ActionRunsLoadedMsg{LoadID: loadID, Err: err}
		}
		cache.Write(key, page.Items)
		return ui.ActionRunsLoadedMsg{LoadID: loadID, Runs: page.Items}
	}
	return tea.Sequence(readCache, fetch)
}

func (a *App) loadPrDetailCmd(owner, repo string, number int, loadID uint64) tea.Cmd {
	key := "pr_" + cache.ForgeRepoKey(a.forgeName, owner, repo) + "_" + strconv.Itoa(number)
	readCache := func() tea.Msg {
		if pr, ok := cache.Read[model.PullRequest](key); ok {
			return ui.PrDetailMsg{LoadID: loadID, Pr: &pr, FromCache: true}
		}
		return nil
	}
	fetch := func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		pr, err := a.forge.GetPr(ctx, owner, repo, number)
		if err != nil {
			return ui.PrDetailMsg{LoadID: loadID, Err: err}
		}
		cache.Write(key, *pr)
		return ui.PrDetailMsg{LoadID: loadID, Pr: pr}
	}
	return tea.Sequence(readCache, fetch)
}

func (a *App) loadCommitDetailCmd(owner, repo, sha string, loadID uint64) tea.Cmd {
	short := sha
	if len(short) > 7 {
		short = short[:7]
	}
	key := "commit_" + cache.ForgeRepoKey(a.forgeName, owner, repo) + "_" + short
	readCache := func() tea.Msg {
		if c, ok := cache.Read[model.CommitDetail](key); ok {
			return ui.CommitDetailMsg{LoadID: loadID, Commit: &c, FromCache: true}
		}
		return nil
	}
	fetch := func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		c, err := a.forge.GetCommit(ctx, owner, repo, sha)
		if err != nil {
			return ui.CommitDetailMsg{LoadID: loadID, Err: err}
		}
		cache.Write(key, *c)
		return ui.CommitDetailMsg{LoadID: loadID, Commit: c}
	}
	return tea.Sequence(readCache, fetch)
}

// Page fetches for infinite scroll. These never touch the cache.

func (a *App) loadReposPageCmd(page int, loadID uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		res, err := a.forge.ListRepos(ctx, page)
		if err != nil {
			return ui.ReposPageMsg{LoadID: loadID, Page: page, Err: err}
		}
		return ui.ReposPageMsg{LoadID: loadID, Repos: res.Items, Page: page}
	}
}

func (a *App) loadPrsPageCmd(owner, repo string, page int, loadID uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		res, err := a.forge.ListPrs(ctx, owner, repo, page)
		if err != nil {
			return ui.PrsPageMsg{LoadID: loadID, Page: page, Err: err}
		}
		return ui.PrsPageMsg{LoadID: loadID, Prs: res.Items, Page: page}
	}
}

func (a *App) loadIssuesPageCmd(owner, repo string, page int, loadID uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		res, err := a.forge.ListIssues(ctx, owner, repo, page)
		if err != nil {
			return ui.IssuesPageMsg{LoadID: loadID, Page: page, Err: err}
		}
		return ui.IssuesPageMsg{LoadID: loadID, Issues: res.Items, Page: page}
	}
}

func (a *App) loadCommitsPageCmd(owner, repo string, page int, loadID uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		res, err := a.forge.ListCommits(ctx, owner, repo, page)
		if err != nil {
			return ui.CommitsPageMsg{LoadID: loadID, Page: page, Err: err}
		}
		return ui.CommitsPageMsg{LoadID: loadID, Commits: res.Items, Page: page}
	}
}

func (a *App) loadActionRunsPageCmd(owner, repo string, page int, loadID uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		res, err := a.forge.ListActionRuns(ctx, owner, repo, page)
		if err != nil {
			return ui.ActionRunsPageMsg{LoadID: loadID, Page: page, Err: err}
		}
		return ui.ActionRunsPageMsg{LoadID: loadID, Runs: res.Items, Page: page}
	}
}

func (a *App) loadPrDiffCmd(owner, repo string, number int) tea.Cmd {
	loadID := a.loadID
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		diff, err := a.forge.GetPrDiff(ctx, owner, repo, number)
		if err != nil {
			return ui.DiffLoadedMsg{LoadID: loadID, Err: err}
		}
		return ui.DiffLoadedMsg{LoadID: loadID, Diff: diff}
	}
}

// Mutations.

func (a *App) mergePrCmd(owner, repo string, number int, method model.MergeMethod) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		err := a.forge.MergePr(ctx, owner, repo, number, method)
		if err != nil {
			slog.Warn("merge failed", "repo", owner+"/"+repo, "number", number, "err", err)
		}
		return ui.PrMergedMsg{Number: number, Err: err}
	}
}

func (a *App) closePrCmd(owner, repo string, number int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		return ui.PrClosedMsg{Number: number, Err: a.forge.ClosePr(ctx, owner, repo, number)}
	}
}

func (a *App) closeIssueCmd(owner, repo string, number int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		return ui.IssueClosedMsg{Number: number, Err: a.forge.CloseIssue(ctx, owner, repo, number)}
	}
}

func (a *App) commentCmd(owner, repo string, number int, body string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		return ui.CommentPostedMsg{Err: a.forge.Comment(ctx, owner, repo, number, body)}
	}
}

func (a *App) submitReviewCmd(owner, repo string, number int, event model.ReviewEvent, body string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		return ui.ReviewSubmittedMsg{Err: a.forge.SubmitReview(ctx, owner, repo, number, event, body)}
	}
}
