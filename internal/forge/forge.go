// Package forge abstracts the code-hosting backends (GitHub, GitLab,
// Gitea) behind one capability interface. The session engine depends only
// on this contract and never branches on backend identity.
package forge

import (
	"context"

	"github.com/altinukshini/grit/internal/model"
)

// Paged is one page of a listing. Only len(Items) is meaningful to the
// caller's pagination; TotalCount is informational and may be absent.
type Paged[T any] struct {
	Items      []T
	TotalCount int
}

// Forge is implemented once per backend. Backends that don't support an
// optional capability return an empty result or an Api-kind error rather
// than panicking; see the embeddable Unsupported helpers.
type Forge interface {
	Name() string
	// WebURL builds the browser URL for an item. kind is one of
	// "repo", "pr", "issue", "commit", "action_run".
	WebURL(owner, repo, kind, id string) string

	CurrentUser(ctx context.Context) (string, error)
	ListRepos(ctx context.Context, page int) (Paged[model.Repository], error)
	ListPrs(ctx context.Context, owner, repo string, page int) (Paged[model.PrSummary], error)
	GetPr(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error)
	ListIssues(ctx context.Context, owner, repo string, page int) (Paged[model.Issue], error)
	ListCommits(ctx context.Context, owner, repo string, page int) (Paged[model.Commit], error)
	GetCommit(ctx context.Context, owner, repo, sha string) (*model.CommitDetail, error)
	GetPrDiff(ctx context.Context, owner, repo string, number int) (string, error)
	MergePr(ctx context.Context, owner, repo string, number int, method model.MergeMethod) error
	ClosePr(ctx context.Context, owner, repo string, number int) error
	CloseIssue(ctx context.Context, owner, repo string, number int) error
	Comment(ctx context.Context, owner, repo string, number int, body string) error

	// Optional surface.
	ListReviewRequests(ctx context.Context, username string) ([]model.ReviewRequest, error)
	ListMyPrs(ctx context.Context, username string) ([]model.MyPr, error)
	ListActionRuns(ctx context.Context, owner, repo string, page int) (Paged[model.ActionRun], error)
	GetCheckStatus(ctx context.Context, owner, repo string, number int) (model.ChecksStatus, error)
	SubmitReview(ctx context.Context, owner, repo string, number int, event model.ReviewEvent, body string) error
}

// PageSize is the fixed per-page item count every backend requests. The
// engine derives has-more purely from whether a page came back full.
const PageSize = 50

// Unsupported provides default implementations of the optional surface for
// backends that lack a feature. Embed it and override what the backend
// actually supports.
type Unsupported struct{}

func (Unsupported) ListReviewRequests(context.Context, string) ([]model.ReviewRequest, error) {
	return nil, nil
}

func (Unsupported) ListMyPrs(context.Context, string) ([]model.MyPr, error) {
	return nil, nil
}

func (Unsupported) ListActionRuns(context.Context, string, string, int) (Paged[model.ActionRun], error) {
	return Paged[model.ActionRun]{}, nil
}

func (Unsupported) GetCheckStatus(context.Context, string, string, int) (model.ChecksStatus, error) {
	return model.ChecksNone, nil
}

func (Unsupported) SubmitReview(context.Context, string, string, int, model.ReviewEvent, string) error {
	return apiErrorf("reviews not supported by this forge")
}
