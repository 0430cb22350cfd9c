// Package tui holds the session state machine: one App model updated by
// key actions and load messages, rendered as screens with tabs, search,
// confirm dialogs and select popups.
package tui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/go-gh/v2/pkg/browser"

	"github.com/altinukshini/grit/internal/forge"
	"github.com/altinukshini/grit/internal/model"
	"github.com/altinukshini/grit/internal/search"
	"github.com/altinukshini/grit/internal/ui"
)

type screen int

const (
	screenHome screen = iota
	screenRepoList
	screenRepoView
	screenPrDetail
	screenCommitDetail
)

type repoTab int

const (
	tabPrs repoTab = iota
	tabIssues
	tabCommits
	tabActions
)

type homeSection int

const (
	sectionReviews homeSection = iota
	sectionMyPrs
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeSearch
	modeConfirm
	modePopup
)

// prefetchThreshold is how close to the end of a list the cursor may get
// before the next page is requested.
const prefetchThreshold = 5

// moveStep is the half-page jump used by ctrl+d/ctrl+u.
const moveStep = 10

const flashDuration = 3 * time.Second

type pagination struct {
	page        int
	hasMore     bool
	loadingMore bool
}

type searchState struct {
	query   string
	active  bool
	matches []int
	content []search.ContentMatch
	current int
}

// App is the whole session state. All mutation happens in Update on the
// program goroutine; background fetches only ever deliver messages.
type App struct {
	forge     forge.Forge
	forgeName string

	screen     screen
	prevScreen screen
	hasPrev    bool
	mode       inputMode
	tab        repoTab
	section    homeSection

	search searchState

	confirm    confirmState
	popup      popupKind
	popupTitle string
	popupItems []string
	popupIndex int

	flash   string
	flashAt time.Time

	reviewRequests []model.ReviewRequest
	myPrs          []model.MyPr
	reviewIndex    int
	myPrIndex      int

	repos   []model.Repository
	prs     []model.PrSummary
	issues  []model.Issue
	commits []model.Commit
	runs    []model.ActionRun

	repoIndex   int
	prIndex     int
	issueIndex  int
	commitIndex int
	runIndex    int

	currentPr     *model.PullRequest
	currentCommit *model.CommitDetail
	scroll        int

	owner   string
	repo    string
	hasRepo bool

	loading bool
	spin    spinner.Model
	errMsg  string

	width  int
	height int

	// loadID stamps every fetch; results from a stale loadID are dropped.
	loadID uint64

	reposPage   pagination
	prsPage     pagination
	issuesPage  pagination
	commitsPage pagination
	runsPage    pagination

	pendingEditor *editorContext
}

func New(f forge.Forge, forgeName string) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &App{
		forge:     f,
		forgeName: forgeName,
		spin:      sp,
	}
}

// OpenRepo makes the session start on a repository view instead of Home.
func (a *App) OpenRepo(owner, repo string) {
	a.owner, a.repo, a.hasRepo = owner, repo, true
	a.screen = screenRepoView
}

func (a *App) Init() tea.Cmd {
	a.loading = true
	a.loadID++
	if a.screen == screenRepoView {
		return tea.Batch(a.spin.Tick, a.loadPrsCmd(a.owner, a.repo, a.loadID), tickCmd())
	}
	return tea.Batch(a.spin.Tick, a.loadHomeCmd(a.loadID), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return ui.TickMsg{}
	})
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a.expireFlash()
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case tea.KeyMsg:
		act, r := a.translateKey(msg)
		return a, a.apply(act, r)

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case ui.TickMsg:
		// The tick only forces a repaint; expiry itself runs on every
		// Update so a flash never needs the timer to disappear.
		return a, tickCmd()
	}
	return a, a.handleLoadMsg(msg)
}

func (a *App) expireFlash() {
	if a.flash != "" && time.Since(a.flashAt) > flashDuration {
		a.flash = ""
	}
}

// setError records a failed fetch. Displayed data is never cleared; the
// banner sits on top of whatever was already on screen.
func (a *App) setError(err error) {
	a.loading = false
	a.errMsg = err.Error()
}

func (a *App) setFlash(text string) {
	a.flash = text
	a.flashAt = time.Now()
}

func (a *App) handleLoadMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ui.HomeLoadedMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.loading = false
		a.reviewRequests = msg.Data.ReviewRequests
		a.myPrs = msg.Data.MyPrs
		a.reviewIndex = clampIndex(a.reviewIndex, len(a.reviewRequests))
		a.myPrIndex = clampIndex(a.myPrIndex, len(a.myPrs))

	case ui.ReposLoadedMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.loading = false
		a.reposPage = pagination{page: 1, hasMore: len(msg.Repos) == forge.PageSize}
		a.repos = msg.Repos
		a.repoIndex = clampIndex(a.repoIndex, len(a.repos))

	case ui.ReposPageMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.reposPage.loadingMore = false
			a.reposPage.page--
			a.setError(msg.Err)
			return nil
		}
		a.reposPage.loadingMore = false
		a.reposPage.hasMore = len(msg.Repos) == forge.PageSize
		a.repos = append(a.repos, msg.Repos...)

	case ui.PrsLoadedMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.loading = false
		a.prsPage = pagination{page: 1, hasMore: len(msg.Prs) == forge.PageSize}
		a.prs = msg.Prs
		a.prIndex = clampIndex(a.prIndex, len(a.prs))

	case ui.PrsPageMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.prsPage.loadingMore = false
			a.prsPage.page--
			a.setError(msg.Err)
			return nil
		}
		a.prsPage.loadingMore = false
		a.prsPage.hasMore = len(msg.Prs) == forge.PageSize
		a.prs = append(a.prs, msg.Prs...)

	case ui.IssuesLoadedMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.loading = false
		a.issuesPage = pagination{page: 1, hasMore: len(msg.Issues) == forge.PageSize}
		a.issues = msg.Issues
		a.issueIndex = clampIndex(a.issueIndex, len(a.issues))

	case ui.IssuesPageMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.issuesPage.loadingMore = false
			a.issuesPage.page--
			a.setError(msg.Err)
			return nil
		}
		a.issuesPage.loadingMore = false
		a.issuesPage.hasMore = len(msg.Issues) == forge.PageSize
		a.issues = append(a.issues, msg.Issues...)

	case ui.CommitsLoadedMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.loading = false
		a.commitsPage = pagination{page: 1, hasMore: len(msg.Commits) == forge.PageSize}
		a.commits = msg.Commits
		a.commitIndex = clampIndex(a.commitIndex, len(a.commits))

	case ui.CommitsPageMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.commitsPage.loadingMore = false
			a.commitsPage.page--
			a.setError(msg.Err)
			return nil
		}
		a.commitsPage.loadingMore = false
		a.commitsPage.hasMore = len(msg.Commits) == forge.PageSize
		a.commits = append(a.commits, msg.Commits...)

	case ui.ActionRunsLoadedMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.loading = false
		a.runsPage = pagination{page: 1, hasMore: len(msg.Runs) == forge.PageSize}
		a.runs = msg.Runs
		a.runIndex = clampIndex(a.runIndex, len(a.runs))

	case ui.ActionRunsPageMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.runsPage.loadingMore = false
			a.runsPage.page--
			a.setError(msg.Err)
			return nil
		}
		a.runsPage.loadingMore = false
		a.runsPage.hasMore = len(msg.Runs) == forge.PageSize
		a.runs = append(a.runs, msg.Runs...)

	case ui.PrDetailMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.loading = false
		a.currentPr = msg.Pr
		// Only transition on first load, not on a background refresh.
		if a.screen != screenPrDetail {
			a.prevScreen, a.hasPrev = a.screen, true
			a.scroll = 0
			a.screen = screenPrDetail
		}
		a.recomputeSearch()

	case ui.CommitDetailMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.loading = false
		a.currentCommit = msg.Commit
		if a.screen != screenCommitDetail {
			a.prevScreen, a.hasPrev = a.screen, true
			a.scroll = 0
			a.screen = screenCommitDetail
		}
		a.recomputeSearch()

	case ui.DiffLoadedMsg:
		if msg.LoadID != a.loadID {
			return nil
		}
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		return a.pagerCmd(msg.Diff)

	case ui.PrMergedMsg:
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.setFlash("PR merged!")
		return a.apply(actionBack, 0)

	case ui.PrClosedMsg:
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.setFlash("PR closed.")
		return a.apply(actionBack, 0)

	case ui.IssueClosedMsg:
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.setFlash("Issue closed.")
		return a.refresh()

	case ui.CommentPostedMsg:
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.setFlash("Comment posted.")

	case ui.ReviewSubmittedMsg:
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		a.setFlash("Review submitted.")

	case ui.EditorFinishedMsg:
		ectx := a.pendingEditor
		a.pendingEditor = nil
		if msg.Err != nil {
			a.setError(msg.Err)
			return nil
		}
		body := strings.TrimSpace(msg.Body)
		if ectx == nil || body == "" {
			return nil
		}
		switch ectx.kind {
		case editorCommentPr, editorCommentIssue:
			return a.commentCmd(ectx.owner, ectx.repo, ectx.number, body)
		case editorReview:
			return a.submitReviewCmd(ectx.owner, ectx.repo, ectx.number, ectx.event, body)
		}

	case ui.PagerDoneMsg:
		if msg.Err != nil {
			a.setError(msg.Err)
		}
	}
	return nil
}

// apply is the reducer for key actions. The error banner clears on any
// action except Quit and Back.
func (a *App) apply(act action, r rune) tea.Cmd {
	a.expireFlash()
	if a.errMsg != "" && act != actionQuit && act != actionBack {
		a.errMsg = ""
	}

	switch act {
	case actionQuit:
		return tea.Quit

	case actionBack:
		return a.goBack()

	case actionScrollUp:
		if a.screen == screenPrDetail || a.screen == screenCommitDetail {
			if a.scroll > 0 {
				a.scroll--
			}
			return nil
		}
		if idx := a.cursor(); idx != nil && *idx > 0 {
			*idx--
		}

	case actionScrollDown:
		if a.screen == screenPrDetail || a.screen == screenCommitDetail {
			if a.scroll < a.maxScroll() {
				a.scroll++
			}
			return nil
		}
		if idx := a.cursor(); idx != nil && *idx < a.listLen()-1 {
			*idx++
		}
		return a.checkPagination()

	case actionGoToTop:
		if a.screen == screenPrDetail || a.screen == screenCommitDetail {
			a.scroll = 0
			return nil
		}
		if idx := a.cursor(); idx != nil {
			*idx = 0
		}

	case actionGoToBottom:
		if a.screen == screenPrDetail || a.screen == screenCommitDetail {
			a.scroll = a.maxScroll()
			return nil
		}
		if idx := a.cursor(); idx != nil && a.listLen() > 0 {
			*idx = a.listLen() - 1
		}
		return a.checkPagination()

	case actionPageUp:
		if a.screen == screenPrDetail || a.screen == screenCommitDetail {
			a.scroll = max(0, a.scroll-moveStep)
			return nil
		}
		if idx := a.cursor(); idx != nil {
			*idx = max(0, *idx-moveStep)
		}

	case actionPageDown:
		if a.screen == screenPrDetail || a.screen == screenCommitDetail {
			a.scroll = min(a.maxScroll(), a.scroll+moveStep)
			return nil
		}
		if idx := a.cursor(); idx != nil {
			*idx = min(max(0, a.listLen()-1), *idx+moveStep)
		}
		return a.checkPagination()

	case actionNextTab:
		return a.switchTab(true)

	case actionPrevTab:
		return a.switchTab(false)

	case actionSelect:
		return a.selectCurrent()

	case actionRefresh:
		return a.refresh()

	case actionViewDiff:
		return a.viewDiff()

	case actionOpenInBrowser:
		if url, ok := a.currentItemURL(); ok {
			b := browser.New("", io.Discard, io.Discard)
			_ = b.Browse(url)
		}

	case actionYankURL:
		if url, ok := a.currentItemURL(); ok {
			if err := clipboard.WriteAll(url); err == nil {
				a.setFlash("URL copied!")
			}
		}

	case actionEnterSearch:
		a.mode = modeSearch
		a.search = searchState{}

	case actionExitSearch:
		a.mode = modeNormal
		// Keep results live for n/N.
		if a.search.query != "" {
			a.search.active = true
		}

	case actionSearchInput:
		a.search.query += string(r)
		a.recomputeSearch()

	case actionSearchBackspace:
		if a.search.query != "" {
			rs := []rune(a.search.query)
			a.search.query = string(rs[:len(rs)-1])
		}
		if a.search.query == "" {
			a.search.matches = nil
			a.search.content = nil
			a.search.active = false
		} else {
			a.recomputeSearch()
		}

	case actionSearchConfirm:
		a.mode = modeNormal
		if a.search.query != "" {
			a.search.active = true
			a.jumpToMatch()
		}

	case actionSearchNext:
		a.cycleMatch(1)

	case actionSearchPrev:
		a.cycleMatch(-1)

	case actionClearSearch:
		a.search = searchState{}

	case actionShowMergeSelect:
		if a.currentPr != nil {
			a.mode = modePopup
			a.popup = popupMergeMethod
			a.popupTitle = "Merge Method"
			a.popupItems = []string{
				model.MergeMethodMerge.Display(),
				model.MergeMethodSquash.Display(),
				model.MergeMethodRebase.Display(),
			}
			a.popupIndex = 0
		}

	case actionShowReviewSelect:
		if a.currentPr != nil {
			a.mode = modePopup
			a.popup = popupReview
			a.popupTitle = "Submit Review"
			a.popupItems = []string{
				model.ReviewApprove.Display(),
				model.ReviewRequestChanges.Display(),
				model.ReviewComment.Display(),
			}
			a.popupIndex = 0
		}

	case actionCloseCurrent:
		switch {
		case a.screen == screenPrDetail && a.currentPr != nil:
			a.confirm = confirmState{kind: confirmClosePr, number: a.currentPr.Number}
			a.mode = modeConfirm
		case a.screen == screenRepoView && a.tab == tabIssues && a.issueIndex < len(a.issues):
			a.confirm = confirmState{kind: confirmCloseIssue, number: a.issues[a.issueIndex].Number}
			a.mode = modeConfirm
		}

	case actionComment:
		if !a.hasRepo {
			return nil
		}
		switch {
		case a.screen == screenPrDetail && a.currentPr != nil:
			a.pendingEditor = &editorContext{
				kind: editorCommentPr, owner: a.owner, repo: a.repo, number: a.currentPr.Number,
			}
			return a.editorCmd()
		case a.screen == screenRepoView && a.tab == tabIssues && a.issueIndex < len(a.issues):
			a.pendingEditor = &editorContext{
				kind: editorCommentIssue, owner: a.owner, repo: a.repo, number: a.issues[a.issueIndex].Number,
			}
			return a.editorCmd()
		}

	case actionConfirmYes:
		confirm := a.confirm
		a.confirm = confirmState{}
		a.mode = modeNormal
		if !a.hasRepo {
			return nil
		}
		switch confirm.kind {
		case confirmClosePr:
			return a.closePrCmd(a.owner, a.repo, confirm.number)
		case confirmCloseIssue:
			return a.closeIssueCmd(a.owner, a.repo, confirm.number)
		case confirmMergePr:
			return a.mergePrCmd(a.owner, a.repo, confirm.number, confirm.method)
		}

	case actionConfirmNo:
		a.confirm = confirmState{}
		a.popup = popupNone
		a.mode = modeNormal

	case actionPopupUp:
		if a.popupIndex > 0 {
			a.popupIndex--
		}

	case actionPopupDown:
		if a.popupIndex < len(a.popupItems)-1 {
			a.popupIndex++
		}

	case actionPopupSelect:
		return a.popupSelect()

	case actionSwitchTabPrs:
		return a.setTab(tabPrs)
	case actionSwitchTabIssues:
		return a.setTab(tabIssues)
	case actionSwitchTabCommits:
		return a.setTab(tabCommits)
	case actionSwitchTabActions:
		return a.setTab(tabActions)
	}
	return nil
}

func (a *App) goBack() tea.Cmd {
	switch a.screen {
	case screenHome:
		return tea.Quit
	case screenRepoList:
		a.screen = screenHome
	case screenRepoView:
		a.screen = screenRepoList
		a.tab = tabPrs
		a.prs = nil
		a.issues = nil
		a.commits = nil
		a.runs = nil
	case screenPrDetail:
		if a.hasPrev {
			a.screen = a.prevScreen
		} else {
			a.screen = screenHome
		}
		a.currentPr = nil
		a.scroll = 0
		a.hasPrev = false
	case screenCommitDetail:
		if a.hasPrev {
			a.screen = a.prevScreen
		} else {
			a.screen = screenRepoView
		}
		a.currentCommit = nil
		a.scroll = 0
		a.hasPrev = false
	}
	return nil
}

// cursor returns the selection index for the current list, or nil on
// detail screens.
func (a *App) cursor() *int {
	switch a.screen {
	case screenHome:
		if a.section == sectionReviews {
			return &a.reviewIndex
		}
		return &a.myPrIndex
	case screenRepoList:
		return &a.repoIndex
	case screenRepoView:
		switch a.tab {
		case tabPrs:
			return &a.prIndex
		case tabIssues:
			return &a.issueIndex
		case tabCommits:
			return &a.commitIndex
		case tabActions:
			return &a.runIndex
		}
	}
	return nil
}

func (a *App) listLen() int {
	switch a.screen {
	case screenHome:
		if a.section == sectionReviews {
			return len(a.reviewRequests)
		}
		return len(a.myPrs)
	case screenRepoList:
		return len(a.repos)
	case screenRepoView:
		switch a.tab {
		case tabPrs:
			return len(a.prs)
		case tabIssues:
			return len(a.issues)
		case tabCommits:
			return len(a.commits)
		case tabActions:
			return len(a.runs)
		}
	}
	return 0
}

// document returns the synthetic document of the current detail screen.
func (a *App) document() []model.DocLine {
	switch a.screen {
	case screenPrDetail:
		if a.currentPr != nil {
			return a.currentPr.DocumentLines()
		}
	case screenCommitDetail:
		if a.currentCommit != nil {
			return a.currentCommit.DocumentLines()
		}
	}
	return nil
}

func (a *App) maxScroll() int {
	return max(0, len(a.document())-1)
}

func (a *App) switchTab(forward bool) tea.Cmd {
	switch a.screen {
	case screenHome:
		if a.section == sectionReviews {
			a.section = sectionMyPrs
		} else {
			a.section = sectionReviews
		}
	case screenRepoView:
		var next repoTab
		if forward {
			next = (a.tab + 1) % 4
		} else {
			next = (a.tab + 3) % 4
		}
		return a.setTab(next)
	}
	return nil
}

// setTab activates a repo tab, resets its cursor and starts a fresh load
// under a new loadID so in-flight results for the old tab are dropped.
func (a *App) setTab(tab repoTab) tea.Cmd {
	if a.screen != screenRepoView {
		return nil
	}
	a.tab = tab
	switch tab {
	case tabPrs:
		a.prIndex = 0
	case tabIssues:
		a.issueIndex = 0
	case tabCommits:
		a.commitIndex = 0
	case tabActions:
		a.runIndex = 0
	}
	a.loadID++
	if !a.hasRepo {
		return nil
	}
	a.loading = true
	cmd := a.loadTabCmd(tab)
	return tea.Batch(cmd, a.spin.Tick)
}

func (a *App) loadTabCmd(tab repoTab) tea.Cmd {
	switch tab {
	case tabIssues:
		return a.loadIssuesCmd(a.owner, a.repo, a.loadID)
	case tabCommits:
		return a.loadCommitsCmd(a.owner, a.repo, a.loadID)
	case tabActions:
		return a.loadActionRunsCmd(a.owner, a.repo, a.loadID)
	}
	return a.loadPrsCmd(a.owner, a.repo, a.loadID)
}

func (a *App) selectCurrent() tea.Cmd {
	switch a.screen {
	case screenHome:
		var owner, repo string
		var number int
		if a.section == sectionReviews {
			if a.reviewIndex >= len(a.reviewRequests) {
				return nil
			}
			req := a.reviewRequests[a.reviewIndex]
			owner, repo, number = req.RepoOwner, req.RepoName, req.PrNumber
		} else {
			if a.myPrIndex >= len(a.myPrs) {
				return nil
			}
			pr := a.myPrs[a.myPrIndex]
			owner, repo, number = pr.RepoOwner, pr.RepoName, pr.Number
		}
		a.owner, a.repo, a.hasRepo = owner, repo, true
		a.loadID++
		a.loading = true
		return tea.Batch(a.loadPrDetailCmd(owner, repo, number, a.loadID), a.spin.Tick)

	case screenRepoList:
		if a.repoIndex >= len(a.repos) {
			return nil
		}
		r := a.repos[a.repoIndex]
		a.owner, a.repo, a.hasRepo = r.Owner, r.Name, true
		a.screen = screenRepoView
		a.tab = tabPrs
		a.prIndex, a.issueIndex, a.commitIndex, a.runIndex = 0, 0, 0, 0
		a.loadID++
		a.loading = true
		return tea.Batch(a.loadPrsCmd(r.Owner, r.Name, a.loadID), a.spin.Tick)

	case screenRepoView:
		if !a.hasRepo {
			return nil
		}
		switch a.tab {
		case tabPrs:
			if a.prIndex >= len(a.prs) {
				return nil
			}
			a.loadID++
			a.loading = true
			return tea.Batch(a.loadPrDetailCmd(a.owner, a.repo, a.prs[a.prIndex].Number, a.loadID), a.spin.Tick)
		case tabCommits:
			if a.commitIndex >= len(a.commits) {
				return nil
			}
			a.loadID++
			a.loading = true
			return tea.Batch(a.loadCommitDetailCmd(a.owner, a.repo, a.commits[a.commitIndex].SHA, a.loadID), a.spin.Tick)
		}
	}
	return nil
}

// refresh reloads whatever the current screen shows. On Home, r opens
// the repository browser instead.
func (a *App) refresh() tea.Cmd {
	a.loadID++
	switch a.screen {
	case screenHome:
		a.loading = true
		a.screen = screenRepoList
		return tea.Batch(a.loadReposCmd(a.loadID), a.spin.Tick)
	case screenRepoList:
		a.loading = true
		return tea.Batch(a.loadReposCmd(a.loadID), a.spin.Tick)
	case screenRepoView:
		if !a.hasRepo {
			return nil
		}
		a.loading = true
		return tea.Batch(a.loadTabCmd(a.tab), a.spin.Tick)
	case screenPrDetail:
		if a.hasRepo && a.currentPr != nil {
			return a.loadPrDetailCmd(a.owner, a.repo, a.currentPr.Number, a.loadID)
		}
	case screenCommitDetail:
		if a.hasRepo && a.currentCommit != nil {
			return a.loadCommitDetailCmd(a.owner, a.repo, a.currentCommit.SHA, a.loadID)
		}
	}
	return nil
}

func (a *App) viewDiff() tea.Cmd {
	if !a.hasRepo {
		return nil
	}
	switch a.screen {
	case screenPrDetail:
		if a.currentPr != nil {
			return a.loadPrDiffCmd(a.owner, a.repo, a.currentPr.Number)
		}
	case screenCommitDetail:
		if a.currentCommit != nil {
			return a.pagerCmd(commitDiff(a.currentCommit))
		}
	}
	return nil
}

// commitDiff assembles pager content from the per-file patches.
func commitDiff(c *model.CommitDetail) string {
	var b strings.Builder
	for _, f := range c.Files {
		if f.Patch == "" {
			continue
		}
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", f.Filename, f.Filename)
		b.WriteString(f.Patch)
		b.WriteByte('\n')
	}
	return b.String()
}

func (a *App) popupSelect() tea.Cmd {
	kind := a.popup
	a.popup = popupNone
	a.mode = modeNormal
	switch kind {
	case popupMergeMethod:
		if a.currentPr == nil {
			return nil
		}
		method := model.MergeMethodMerge
		switch a.popupIndex {
		case 1:
			method = model.MergeMethodSquash
		case 2:
			method = model.MergeMethodRebase
		}
		a.confirm = confirmState{kind: confirmMergePr, number: a.currentPr.Number, method: method}
		a.mode = modeConfirm
	case popupReview:
		if !a.hasRepo || a.currentPr == nil {
			return nil
		}
		event := model.ReviewApprove
		switch a.popupIndex {
		case 1:
			event = model.ReviewRequestChanges
		case 2:
			event = model.ReviewComment
		}
		a.pendingEditor = &editorContext{
			kind: editorReview, owner: a.owner, repo: a.repo,
			number: a.currentPr.Number, event: event,
		}
		return a.editorCmd()
	}
	return nil
}

// checkPagination requests the next page when the cursor is within the
// prefetch threshold of the end of a list that has more.
func (a *App) checkPagination() tea.Cmd {
	switch a.screen {
	case screenRepoList:
		if a.repoIndex >= max(0, len(a.repos)-prefetchThreshold) &&
			a.reposPage.hasMore && !a.reposPage.loadingMore {
			a.reposPage.loadingMore = true
			a.reposPage.page++
			return a.loadReposPageCmd(a.reposPage.page, a.loadID)
		}
	case screenRepoView:
		if !a.hasRepo {
			return nil
		}
		switch a.tab {
		case tabPrs:
			if a.prIndex >= max(0, len(a.prs)-prefetchThreshold) &&
				a.prsPage.hasMore && !a.prsPage.loadingMore {
				a.prsPage.loadingMore = true
				a.prsPage.page++
				return a.loadPrsPageCmd(a.owner, a.repo, a.prsPage.page, a.loadID)
			}
		case tabIssues:
			if a.issueIndex >= max(0, len(a.issues)-prefetchThreshold) &&
				a.issuesPage.hasMore && !a.issuesPage.loadingMore {
				a.issuesPage.loadingMore = true
				a.issuesPage.page++
				return a.loadIssuesPageCmd(a.owner, a.repo, a.issuesPage.page, a.loadID)
			}
		case tabCommits:
			if a.commitIndex >= max(0, len(a.commits)-prefetchThreshold) &&
				a.commitsPage.hasMore && !a.commitsPage.loadingMore {
				a.commitsPage.loadingMore = true
				a.commitsPage.page++
				return a.loadCommitsPageCmd(a.owner, a.repo, a.commitsPage.page, a.loadID)
			}
		case tabActions:
			if a.runIndex >= max(0, len(a.runs)-prefetchThreshold) &&
				a.runsPage.hasMore && !a.runsPage.loadingMore {
				a.runsPage.loadingMore = true
				a.runsPage.page++
				return a.loadActionRunsPageCmd(a.owner, a.repo, a.runsPage.page, a.loadID)
			}
		}
	}
	return nil
}

func (a *App) recomputeSearch() {
	q := a.search.query
	a.search.current = 0
	if q == "" {
		a.search.matches = nil
		a.search.content = nil
		return
	}

	switch a.screen {
	case screenHome:
		if a.section == sectionReviews {
			a.search.matches = search.FilterIndices(a.reviewRequests, q, func(r model.ReviewRequest) []string {
				return []string{r.PrTitle, r.RepoName, r.Author}
			})
		} else {
			a.search.matches = search.FilterIndices(a.myPrs, q, func(p model.MyPr) []string {
				return []string{p.Title, p.RepoName}
			})
		}
	case screenRepoList:
		a.search.matches = search.FilterIndices(a.repos, q, func(r model.Repository) []string {
			return []string{r.Name, r.Owner, r.Description}
		})
	case screenRepoView:
		switch a.tab {
		case tabPrs:
			a.search.matches = search.FilterIndices(a.prs, q, func(p model.PrSummary) []string {
				return []string{p.Title, p.Author, strconv.Itoa(p.Number)}
			})
		case tabIssues:
			a.search.matches = search.FilterIndices(a.issues, q, func(i model.Issue) []string {
				return []string{i.Title, i.Author, strconv.Itoa(i.Number)}
			})
		case tabCommits:
			a.search.matches = search.FilterIndices(a.commits, q, func(c model.Commit) []string {
				return []string{c.Message, c.Author, c.SHA}
			})
		case tabActions:
			a.search.matches = search.FilterIndices(a.runs, q, func(r model.ActionRun) []string {
				return []string{r.Name, r.Branch}
			})
		}
	case screenPrDetail, screenCommitDetail:
		a.search.content = search.ScanDocument(a.document(), q)
	}
}

func (a *App) cycleMatch(dir int) {
	switch {
	case len(a.search.matches) > 0:
		n := len(a.search.matches)
		a.search.current = (a.search.current + dir + n) % n
		a.jumpToMatch()
	case len(a.search.content) > 0:
		n := len(a.search.content)
		a.search.current = (a.search.current + dir + n) % n
		a.jumpToMatch()
	}
}

// jumpToMatch moves the cursor (lists) or scroll (documents) to the
// current match. Document jumps leave five lines of context above.
func (a *App) jumpToMatch() {
	if len(a.search.matches) > 0 && a.search.current < len(a.search.matches) {
		if idx := a.cursor(); idx != nil {
			*idx = a.search.matches[a.search.current]
		}
		return
	}
	if len(a.search.content) > 0 && a.search.current < len(a.search.content) {
		a.scroll = max(0, a.search.content[a.search.current].Line-5)
	}
}

// currentItemURL builds the forge web URL for whatever is selected.
func (a *App) currentItemURL() (string, bool) {
	switch a.screen {
	case screenHome:
		if a.section == sectionReviews {
			if a.reviewIndex < len(a.reviewRequests) {
				req := a.reviewRequests[a.reviewIndex]
				return a.forge.WebURL(req.RepoOwner, req.RepoName, "pr", strconv.Itoa(req.PrNumber)), true
			}
		} else if a.myPrIndex < len(a.myPrs) {
			pr := a.myPrs[a.myPrIndex]
			return a.forge.WebURL(pr.RepoOwner, pr.RepoName, "pr", strconv.Itoa(pr.Number)), true
		}
	case screenRepoList:
		if a.repoIndex < len(a.repos) {
			r := a.repos[a.repoIndex]
			return a.forge.WebURL(r.Owner, r.Name, "repo", ""), true
		}
	case screenRepoView:
		if !a.hasRepo {
			return "", false
		}
		switch a.tab {
		case tabPrs:
			if a.prIndex < len(a.prs) {
				return a.forge.WebURL(a.owner, a.repo, "pr", strconv.Itoa(a.prs[a.prIndex].Number)), true
			}
		case tabIssues:
			if a.issueIndex < len(a.issues) {
				return a.forge.WebURL(a.owner, a.repo, "issue", strconv.Itoa(a.issues[a.issueIndex].Number)), true
			}
		case tabCommits:
			if a.commitIndex < len(a.commits) {
				return a.forge.WebURL(a.owner, a.repo, "commit", a.commits[a.commitIndex].SHA), true
			}
		case tabActions:
			if a.runIndex < len(a.runs) {
				return a.forge.WebURL(a.owner, a.repo, "action_run", strconv.FormatInt(a.runs[a.runIndex].ID, 10)), true
			}
		}
	case screenPrDetail:
		if a.hasRepo && a.currentPr != nil {
			return a.forge.WebURL(a.owner, a.repo, "pr", strconv.Itoa(a.currentPr.Number)), true
		}
	case screenCommitDetail:
		if a.hasRepo && a.currentCommit != nil {
			return a.forge.WebURL(a.owner, a.repo, "commit", a.currentCommit.SHA), true
		}
	}
	return "", false
}

func clampIndex(idx, length int) int {
	return min(idx, max(0, length-1))
}

func fetchCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
