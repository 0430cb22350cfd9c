package tui

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/altinukshini/grit/internal/forge"
	"github.com/altinukshini/grit/internal/model"
	"github.com/altinukshini/grit/internal/ui"
)

// fakeForge satisfies forge.Forge with canned data so the state machine
// can be driven without a network.
type fakeForge struct {
	forge.Unsupported
}

func (fakeForge) Name() string { return "fake" }

func (fakeForge) WebURL(owner, repo, kind, id string) string {
	return "https://fake.example/" + owner + "/" + repo + "/" + kind + "/" + id
}

func (fakeForge) CurrentUser(context.Context) (string, error) { return "tester", nil }

func (fakeForge) ListRepos(context.Context, int) (forge.Paged[model.Repository], error) {
	return forge.Paged[model.Repository]{}, nil
}

func (fakeForge) ListPrs(context.Context, string, string, int) (forge.Paged[model.PrSummary], error) {
	return forge.Paged[model.PrSummary]{}, nil
}

func (fakeForge) GetPr(context.Context, string, string, int) (*model.PullRequest, error) {
	return &model.PullRequest{}, nil
}

func (fakeForge) ListIssues(context.Context, string, string, int) (forge.Paged[model.Issue], error) {
	return forge.Paged[model.Issue]{}, nil
}

func (fakeForge) ListCommits(context.Context, string, string, int) (forge.Paged[model.Commit], error) {
	return forge.Paged[model.Commit]{}, nil
}

func (fakeForge) GetCommit(context.Context, string, string, string) (*model.CommitDetail, error) {
	return &model.CommitDetail{}, nil
}

func (fakeForge) GetPrDiff(context.Context, string, string, int) (string, error) { return "", nil }

func (fakeForge) MergePr(context.Context, string, string, int, model.MergeMethod) error { return nil }

func (fakeForge) ClosePr(context.Context, string, string, int) error { return nil }

func (fakeForge) CloseIssue(context.Context, string, string, int) error { return nil }

func (fakeForge) Comment(context.Context, string, string, int, string) error { return nil }

func newTestApp() *App {
	return New(fakeForge{}, "fake")
}

func makePrs(n int) []model.PrSummary {
	prs := make([]model.PrSummary, n)
	for i := range prs {
		prs[i] = model.PrSummary{Number: i + 1, Title: fmt.Sprintf("pr %d", i+1), Author: "dev"}
	}
	return prs
}

func TestStaleLoadResultDropped(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoView
	a.loadID = 5

	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: 4, Prs: makePrs(3)})
	if a.prs != nil {
		t.Errorf("stale result applied: %d prs", len(a.prs))
	}

	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: 5, Prs: makePrs(3)})
	if len(a.prs) != 3 {
		t.Errorf("current result dropped: %d prs", len(a.prs))
	}
}

func TestFullPageMarksHasMore(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoView

	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: 0, Prs: makePrs(forge.PageSize)})
	if !a.prsPage.hasMore || a.prsPage.page != 1 {
		t.Errorf("full page: %+v, want page 1 hasMore", a.prsPage)
	}

	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: 0, Prs: makePrs(3)})
	if a.prsPage.hasMore {
		t.Error("short page should mean no more pages")
	}
}

func TestPrefetchTriggersOnceNearEnd(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoView
	a.tab = tabPrs
	a.owner, a.repo, a.hasRepo = "o", "r", true
	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: 0, Prs: makePrs(forge.PageSize)})

	a.prIndex = forge.PageSize - prefetchThreshold - 2
	if cmd := a.apply(actionScrollDown, 0); cmd != nil {
		t.Error("prefetch fired before reaching the threshold")
	}

	cmd := a.apply(actionScrollDown, 0)
	if cmd == nil {
		t.Fatal("prefetch did not fire at the threshold")
	}
	if !a.prsPage.loadingMore || a.prsPage.page != 2 {
		t.Errorf("pagination = %+v, want loadingMore page 2", a.prsPage)
	}

	// Already in flight; must not fire again.
	if cmd := a.apply(actionScrollDown, 0); cmd != nil {
		t.Error("prefetch fired twice for the same page")
	}
}

func TestPageAppendExtendsList(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoView
	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: 0, Prs: makePrs(forge.PageSize)})
	a.prsPage.loadingMore = true
	a.prsPage.page = 2

	a.handleLoadMsg(ui.PrsPageMsg{LoadID: 0, Prs: makePrs(3), Page: 2})
	if len(a.prs) != forge.PageSize+3 {
		t.Errorf("len = %d, want %d", len(a.prs), forge.PageSize+3)
	}
	if a.prsPage.loadingMore {
		t.Error("loadingMore should clear when the page lands")
	}
	if a.prsPage.hasMore {
		t.Error("short page should end pagination")
	}
}

func TestListSearchFiltersAndJumps(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoList
	a.repos = []model.Repository{
		{Owner: "me", Name: "grit"},
		{Owner: "me", Name: "dotfiles"},
		{Owner: "me", Name: "graphite"},
	}

	a.apply(actionEnterSearch, 0)
	for _, r := range "gr" {
		a.apply(actionSearchInput, r)
	}
	if want := []int{0, 2}; !reflect.DeepEqual(a.search.matches, want) {
		t.Fatalf("matches = %v, want %v", a.search.matches, want)
	}

	a.apply(actionSearchConfirm, 0)
	if a.mode != modeNormal || !a.search.active {
		t.Errorf("mode = %v active = %v after confirm", a.mode, a.search.active)
	}
	if a.repoIndex != 0 {
		t.Errorf("repoIndex = %d, want 0", a.repoIndex)
	}

	a.apply(actionSearchNext, 0)
	if a.repoIndex != 2 {
		t.Errorf("repoIndex after n = %d, want 2", a.repoIndex)
	}
	// Wraps around.
	a.apply(actionSearchNext, 0)
	if a.repoIndex != 0 {
		t.Errorf("repoIndex after wrap = %d, want 0", a.repoIndex)
	}

	a.apply(actionClearSearch, 0)
	if a.search.active || a.search.query != "" {
		t.Errorf("search not cleared: %+v", a.search)
	}
}

func TestSearchBackspaceToEmptyDeactivates(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoList
	a.repos = []model.Repository{{Owner: "me", Name: "grit"}}

	a.apply(actionEnterSearch, 0)
	a.apply(actionSearchInput, 'g')
	if len(a.search.matches) != 1 {
		t.Fatalf("matches = %v", a.search.matches)
	}
	a.apply(actionSearchBackspace, 0)
	if a.search.matches != nil || a.search.active {
		t.Errorf("empty query should drop matches: %+v", a.search)
	}
}

func TestBackFromRepoViewClearsLists(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoView
	a.tab = tabCommits
	a.prs = makePrs(2)
	a.issues = []model.Issue{{Number: 1}}
	a.commits = []model.Commit{{SHA: "abc"}}
	a.runs = []model.ActionRun{{ID: 1}}

	a.apply(actionBack, 0)
	if a.screen != screenRepoList {
		t.Fatalf("screen = %v, want repo list", a.screen)
	}
	if a.tab != tabPrs {
		t.Errorf("tab = %v, want prs", a.tab)
	}
	if a.prs != nil || a.issues != nil || a.commits != nil || a.runs != nil {
		t.Error("repo lists should be cleared on back")
	}
}

func TestDetailTransitionRecordsOrigin(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoView
	a.scroll = 7

	pr := &model.PullRequest{Number: 12, Title: "t", Body: "body"}
	a.handleLoadMsg(ui.PrDetailMsg{LoadID: 0, Pr: pr})
	if a.screen != screenPrDetail {
		t.Fatalf("screen = %v, want pr detail", a.screen)
	}
	if !a.hasPrev || a.prevScreen != screenRepoView {
		t.Errorf("origin not recorded: hasPrev=%v prev=%v", a.hasPrev, a.prevScreen)
	}
	if a.scroll != 0 {
		t.Errorf("scroll = %d, want 0", a.scroll)
	}

	// A refresh landing while already on the detail screen must not
	// reset the reading position.
	a.scroll = 3
	a.handleLoadMsg(ui.PrDetailMsg{LoadID: 0, Pr: pr})
	if a.scroll != 3 {
		t.Errorf("scroll = %d after refresh, want 3", a.scroll)
	}

	a.apply(actionBack, 0)
	if a.screen != screenRepoView || a.currentPr != nil {
		t.Errorf("back: screen=%v pr=%v", a.screen, a.currentPr)
	}
}

func TestErrorKeepsDataAndClearsOnNextAction(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoView
	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: 0, Prs: makePrs(3)})

	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: 0, Err: errors.New("api: rate limited")})
	if a.errMsg == "" {
		t.Fatal("error not recorded")
	}
	if len(a.prs) != 3 {
		t.Error("error cleared displayed data")
	}
	if a.loading {
		t.Error("loading should stop on error")
	}

	// Back keeps the banner so it stays readable across the transition.
	a.apply(actionBack, 0)
	if a.errMsg == "" {
		t.Error("back should not clear the error banner")
	}

	a.apply(actionScrollDown, 0)
	if a.errMsg != "" {
		t.Error("any other action should clear the error banner")
	}
}

func TestFlashExpiry(t *testing.T) {
	a := newTestApp()
	a.flash = "PR merged!"
	a.flashAt = time.Now().Add(-2 * time.Second)
	a.Update(ui.TickMsg{})
	if a.flash == "" {
		t.Error("flash expired too early")
	}

	a.flashAt = time.Now().Add(-4 * time.Second)
	a.Update(ui.TickMsg{})
	if a.flash != "" {
		t.Error("flash should expire after its duration")
	}
}

func TestFlashExpiresOnAnyAction(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoView
	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: 0, Prs: makePrs(3)})

	a.flash = "PR merged!"
	a.flashAt = time.Now().Add(-4 * time.Second)
	a.apply(actionScrollDown, 0)
	if a.flash != "" {
		t.Error("expired flash should clear on the next action, not wait for a tick")
	}
}

func TestStaleDiffDoesNotOpenPager(t *testing.T) {
	a := newTestApp()
	a.loadID = 3

	if cmd := a.handleLoadMsg(ui.DiffLoadedMsg{LoadID: 2, Diff: "diff --git"}); cmd != nil {
		t.Error("diff from a stale generation should not reach the pager")
	}
	if cmd := a.handleLoadMsg(ui.DiffLoadedMsg{LoadID: 3, Diff: "diff --git"}); cmd == nil {
		t.Error("current-generation diff should open the pager")
	}
}

func TestFailedPageFetchRetriesSamePage(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoView
	a.tab = tabPrs
	a.owner, a.repo, a.hasRepo = "o", "r", true
	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: 0, Prs: makePrs(forge.PageSize)})

	a.prIndex = forge.PageSize - 1
	if cmd := a.apply(actionScrollDown, 0); cmd == nil {
		t.Fatal("prefetch did not fire")
	}
	if a.prsPage.page != 2 {
		t.Fatalf("page = %d, want 2", a.prsPage.page)
	}

	a.handleLoadMsg(ui.PrsPageMsg{LoadID: 0, Page: 2, Err: errors.New("api: boom")})
	if a.prsPage.page != 1 || a.prsPage.loadingMore {
		t.Fatalf("pagination after failure = %+v, want page 1 idle", a.prsPage)
	}

	// The retry must ask for page 2 again, not skip to page 3.
	a.apply(actionScrollUp, 0)
	if cmd := a.apply(actionScrollDown, 0); cmd == nil {
		t.Fatal("prefetch did not retry after failure")
	}
	if a.prsPage.page != 2 {
		t.Errorf("retry page = %d, want 2", a.prsPage.page)
	}
}

func TestMergedResultFlashesAndGoesBack(t *testing.T) {
	a := newTestApp()
	a.screen = screenPrDetail
	a.prevScreen, a.hasPrev = screenRepoView, true
	a.currentPr = &model.PullRequest{Number: 9}

	a.handleLoadMsg(ui.PrMergedMsg{Number: 9})
	if a.flash != "PR merged!" {
		t.Errorf("flash = %q", a.flash)
	}
	if a.screen != screenRepoView {
		t.Errorf("screen = %v, want repo view", a.screen)
	}
}

func TestDocumentSearchScrollLeavesContext(t *testing.T) {
	a := newTestApp()
	a.screen = screenPrDetail
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = "filler"
	}
	lines[20] = "the needle is here"
	lines[2] = "another needle"
	a.currentPr = &model.PullRequest{Number: 1, Body: strings.Join(lines, "\n")}

	a.apply(actionEnterSearch, 0)
	for _, r := range "needle" {
		a.apply(actionSearchInput, r)
	}
	if len(a.search.content) != 2 {
		t.Fatalf("content matches = %d, want 2", len(a.search.content))
	}

	a.apply(actionSearchConfirm, 0)
	// First match is on line 2; context cannot go above the top.
	if a.scroll != 0 {
		t.Errorf("scroll = %d, want 0", a.scroll)
	}

	a.apply(actionSearchNext, 0)
	if a.scroll != 15 {
		t.Errorf("scroll = %d, want 15 (match line minus context)", a.scroll)
	}
}

func TestTabSwitchBumpsLoadID(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoView
	a.owner, a.repo, a.hasRepo = "o", "r", true
	before := a.loadID

	cmd := a.apply(actionSwitchTabIssues, 0)
	if a.tab != tabIssues {
		t.Errorf("tab = %v, want issues", a.tab)
	}
	if a.loadID != before+1 {
		t.Errorf("loadID = %d, want %d", a.loadID, before+1)
	}
	if cmd == nil {
		t.Error("tab switch should start a load")
	}

	// A result stamped with the old generation is now stale.
	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: before, Prs: makePrs(2)})
	if a.prs != nil {
		t.Error("stale pr result applied after tab switch")
	}
}

func TestPopupSelectionArmsConfirm(t *testing.T) {
	a := newTestApp()
	a.screen = screenPrDetail
	a.owner, a.repo, a.hasRepo = "o", "r", true
	a.currentPr = &model.PullRequest{Number: 4}

	a.apply(actionShowMergeSelect, 0)
	if a.mode != modePopup || a.popup != popupMergeMethod {
		t.Fatalf("mode=%v popup=%v", a.mode, a.popup)
	}

	a.apply(actionPopupDown, 0)
	a.apply(actionPopupSelect, 0)
	if a.mode != modeConfirm || a.confirm.kind != confirmMergePr {
		t.Fatalf("mode=%v confirm=%+v", a.mode, a.confirm)
	}
	if a.confirm.method != model.MergeMethodSquash {
		t.Errorf("method = %v, want squash", a.confirm.method)
	}

	// Declining must drop back to normal with nothing armed.
	a.apply(actionConfirmNo, 0)
	if a.mode != modeNormal || a.confirm.kind != confirmNone {
		t.Errorf("mode=%v confirm=%+v after no", a.mode, a.confirm)
	}
}

func TestEditorAbortPostsNothing(t *testing.T) {
	a := newTestApp()
	a.pendingEditor = &editorContext{kind: editorCommentPr, owner: "o", repo: "r", number: 1}

	if cmd := a.handleLoadMsg(ui.EditorFinishedMsg{Body: "   \n"}); cmd != nil {
		t.Error("whitespace-only body should not post a comment")
	}
	if a.pendingEditor != nil {
		t.Error("editor context should be consumed")
	}

	a.pendingEditor = &editorContext{kind: editorCommentPr, owner: "o", repo: "r", number: 1}
	if cmd := a.handleLoadMsg(ui.EditorFinishedMsg{Body: "looks good\n"}); cmd == nil {
		t.Error("non-empty body should post a comment")
	}
}

func TestListCursorClampsAtEnds(t *testing.T) {
	a := newTestApp()
	a.screen = screenRepoView
	a.handleLoadMsg(ui.PrsLoadedMsg{LoadID: 0, Prs: makePrs(3)})

	a.apply(actionScrollUp, 0)
	if a.prIndex != 0 {
		t.Errorf("scroll up at top moved cursor to %d", a.prIndex)
	}

	a.prIndex = 2
	a.apply(actionScrollDown, 0)
	if a.prIndex != 2 {
		t.Errorf("scroll down at bottom moved cursor to %d", a.prIndex)
	}

	a.apply(actionPageDown, 0)
	if a.prIndex != 2 {
		t.Errorf("page down past bottom moved cursor to %d", a.prIndex)
	}
	a.apply(actionPageUp, 0)
	if a.prIndex != 0 {
		t.Errorf("page up = %d, want 0", a.prIndex)
	}
}

func TestScrollClampsOnDetailScreen(t *testing.T) {
	a := newTestApp()
	a.screen = screenPrDetail
	a.currentPr = &model.PullRequest{Body: "one\ntwo\nthree"}

	a.apply(actionGoToBottom, 0)
	if a.scroll != 2 {
		t.Errorf("scroll = %d, want 2", a.scroll)
	}
	a.apply(actionScrollDown, 0)
	if a.scroll != 2 {
		t.Errorf("scroll past end = %d, want 2", a.scroll)
	}
	a.apply(actionGoToTop, 0)
	if a.scroll != 0 {
		t.Errorf("scroll = %d, want 0", a.scroll)
	}
	a.apply(actionScrollUp, 0)
	if a.scroll != 0 {
		t.Errorf("scroll above top = %d, want 0", a.scroll)
	}
}
