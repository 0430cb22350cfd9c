package model

import "time"

type PrState string

const (
	PrStateOpen   PrState = "open"
	PrStateClosed PrState = "closed"
	PrStateMerged PrState = "merged"
)

func (s PrState) Display() string {
	switch s {
	case PrStateOpen:
		return "Open"
	case PrStateClosed:
		return "Closed"
	case PrStateMerged:
		return "Merged"
	}
	return string(s)
}

type IssueState string

const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
)

func (s IssueState) Display() string {
	if s == IssueStateClosed {
		return "Closed"
	}
	return "Open"
}

// ChecksStatus is the rolled-up CI status of a pull request.
type ChecksStatus string

const (
	ChecksPending ChecksStatus = "pending"
	ChecksSuccess ChecksStatus = "success"
	ChecksFailure ChecksStatus = "failure"
	ChecksNone    ChecksStatus = "none"
)

func (s ChecksStatus) Display() string {
	switch s {
	case ChecksPending:
		return "⏳"
	case ChecksSuccess:
		return "✓"
	case ChecksFailure:
		return "✗"
	}
	return "-"
}

type Repository struct {
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Stars       int       `json:"stars"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PrSummary struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     PrState   `json:"state"`
	Author    string    `json:"author"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PrStats struct {
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changed_files"`
	Commits      int `json:"commits"`
	Comments     int `json:"comments"`
}

type PullRequest struct {
	Number     int        `json:"number"`
	Title      string     `json:"title"`
	Body       string     `json:"body,omitempty"`
	State      PrState    `json:"state"`
	Author     string     `json:"author"`
	HeadBranch string     `json:"head_branch"`
	BaseBranch string     `json:"base_branch"`
	Stats      PrStats    `json:"stats"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	MergedAt   *time.Time `json:"merged_at,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     IssueState `json:"state"`
	Author    string     `json:"author"`
	Labels    []string   `json:"labels,omitempty"`
	Comments  int        `json:"comments"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Commit is the list-view summary; CommitDetail carries the full record.
type Commit struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

type CommitStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Total     int `json:"total"`
}

type CommitFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

type CommitDetail struct {
	SHA     string       `json:"sha"`
	Message string       `json:"message"`
	Author  string       `json:"author"`
	Date    time.Time    `json:"date"`
	Stats   CommitStats  `json:"stats"`
	Files   []CommitFile `json:"files"`
}

// ShortSHA returns the abbreviated commit hash used in list rows and cache keys.
func (c Commit) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

type ActionStatus string

const (
	ActionQueued     ActionStatus = "queued"
	ActionInProgress ActionStatus = "in_progress"
	ActionCompleted  ActionStatus = "completed"
)

func (s ActionStatus) Display() string {
	switch s {
	case ActionQueued:
		return "Queued"
	case ActionInProgress:
		return "Running"
	case ActionCompleted:
		return "Done"
	}
	return string(s)
}

type ActionConclusion string

const (
	ConclusionSuccess   ActionConclusion = "success"
	ConclusionFailure   ActionConclusion = "failure"
	ConclusionCancelled ActionConclusion = "cancelled"
	ConclusionSkipped   ActionConclusion = "skipped"
	ConclusionTimedOut  ActionConclusion = "timed_out"
)

func (c ActionConclusion) Display() string {
	switch c {
	case ConclusionSuccess:
		return "✓"
	case ConclusionFailure:
		return "✗"
	case ConclusionTimedOut:
		return "⏱"
	case ConclusionCancelled, ConclusionSkipped:
		return "⊘"
	}
	return "-"
}

// ActionRun is a CI workflow run (GitHub Actions run, GitLab pipeline).
type ActionRun struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Status     ActionStatus     `json:"status"`
	Conclusion ActionConclusion `json:"conclusion,omitempty"`
	Branch     string           `json:"branch"`
	Event      string           `json:"event"`
	CreatedAt  time.Time        `json:"created_at"`
}

// ReviewRequest is a PR where the current user is requested as reviewer.
type ReviewRequest struct {
	RepoOwner string    `json:"repo_owner"`
	RepoName  string    `json:"repo_name"`
	PrNumber  int       `json:"pr_number"`
	PrTitle   string    `json:"pr_title"`
	Author    string    `json:"author"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MyPr is one of the current user's open PRs, with CI status.
type MyPr struct {
	RepoOwner    string       `json:"repo_owner"`
	RepoName     string       `json:"repo_name"`
	Number       int          `json:"number"`
	Title        string       `json:"title"`
	State        PrState      `json:"state"`
	ChecksStatus ChecksStatus `json:"checks_status"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// HomeData bundles the two home-screen sections for caching.
type HomeData struct {
	ReviewRequests []ReviewRequest `json:"review_requests"`
	MyPrs          []MyPr          `json:"my_prs"`
}

type MergeMethod string

const (
	MergeMethodMerge  MergeMethod = "merge"
	MergeMethodSquash MergeMethod = "squash"
	MergeMethodRebase MergeMethod = "rebase"
)

func (m MergeMethod) Display() string {
	switch m {
	case MergeMethodMerge:
		return "Merge commit"
	case MergeMethodSquash:
		return "Squash and merge"
	case MergeMethodRebase:
		return "Rebase and merge"
	}
	return string(m)
}

type ReviewEvent string

const (
	ReviewApprove        ReviewEvent = "APPROVE"
	ReviewRequestChanges ReviewEvent = "REQUEST_CHANGES"
	ReviewComment        ReviewEvent = "COMMENT"
)

func (e ReviewEvent) Display() string {
	switch e {
	case ReviewApprove:
		return "Approve"
	case ReviewRequestChanges:
		return "Request changes"
	case ReviewComment:
		return "Comment"
	}
	return string(e)
}
