package ui

import (
	"github.com/altinukshini/grit/internal/model"
)

// Data fetched messages. Every load message carries the LoadID that was
// current when the fetch started; the app discards results from a stale
// LoadID. FromCache marks the stale-data paint that precedes the network
// refresh.

type HomeLoadedMsg struct {
	LoadID    uint64
	Data      model.HomeData
	FromCache bool
	Err       error
}

type ReposLoadedMsg struct {
	LoadID    uint64
	Repos     []model.Repository
	FromCache bool
	Err       error
}

type ReposPageMsg struct {
	LoadID uint64
	Repos  []model.Repository
	Page   int
	Err    error
}

type PrsLoadedMsg struct {
	LoadID    uint64
	Prs       []model.PrSummary
	FromCache bool
	Err       error
}

type PrsPageMsg struct {
	LoadID uint64
	Prs    []model.PrSummary
	Page   int
	Err    error
}

type IssuesLoadedMsg struct {
	LoadID    uint64
	Issues    []model.Issue
	FromCache bool
	Err       error
}

type IssuesPageMsg struct {
	LoadID uint64
	Issues []model.Issue
	Page   int
	Err    error
}

type CommitsLoadedMsg struct {
	LoadID    uint64
	Commits   []model.Commit
	FromCache bool
	Err       error
}

type CommitsPageMsg struct {
	LoadID  uint64
	Commits []model.Commit
	Page    int
	Err     error
}

type ActionRunsLoadedMsg struct {
	LoadID    uint64
	Runs      []model.ActionRun
	FromCache bool
	Err       error
}

type ActionRunsPageMsg struct {
	LoadID uint64
	Runs   []model.ActionRun
	Page   int
	Err    error
}

type PrDetailMsg struct {
	LoadID    uint64
	Pr        *model.PullRequest
	FromCache bool
	Err       error
}

type CommitDetailMsg struct {
	LoadID    uint64
	Commit    *model.CommitDetail
	FromCache bool
	Err       error
}

// DiffLoadedMsg delivers the diff text destined for the pager.
type DiffLoadedMsg struct {
	LoadID uint64
	Diff   string
	Err    error
}

// Mutation result messages.

type PrMergedMsg struct {
	Number int
	Err    error
}

type PrClosedMsg struct {
	Number int
	Err    error
}

type IssueClosedMsg struct {
	Number int
	Err    error
}

type CommentPostedMsg struct {
	Err error
}

type ReviewSubmittedMsg struct {
	Err error
}

// EditorFinishedMsg reports the text composed in the external editor;
// empty Body means the user aborted.
type EditorFinishedMsg struct {
	Body string
	Err  error
}

// PagerDoneMsg reports the external pager exiting.
type PagerDoneMsg struct {
	Err error
}

// TickMsg drives flash expiry.
type TickMsg struct{}
