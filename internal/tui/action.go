package tui

import "github.com/altinukshini/grit/internal/model"

// action is the result of translating a key press in the current input
// mode. Translation is pure; apply executes the action against the app.
type action int

const (
	actionNone action = iota
	actionQuit
	actionBack
	actionScrollUp
	actionScrollDown
	actionGoToTop
	actionGoToBottom
	actionPageUp
	actionPageDown
	actionNextTab
	actionPrevTab
	actionSelect
	actionRefresh
	actionViewDiff
	actionOpenInBrowser
	actionYankURL

	actionEnterSearch
	actionExitSearch
	actionSearchInput
	actionSearchBackspace
	actionSearchConfirm
	actionSearchNext
	actionSearchPrev
	actionClearSearch

	actionShowMergeSelect
	actionShowReviewSelect
	actionCloseCurrent
	actionComment

	actionConfirmYes
	actionConfirmNo
	actionPopupUp
	actionPopupDown
	actionPopupSelect

	actionSwitchTabPrs
	actionSwitchTabIssues
	actionSwitchTabCommits
	actionSwitchTabActions
)

// confirmKind identifies what a pending y/n dialog will do.
type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmClosePr
	confirmCloseIssue
	confirmMergePr
)

type confirmState struct {
	kind   confirmKind
	number int
	method model.MergeMethod
}

// popupKind identifies the open select popup, so selection dispatches
// without string-matching the title.
type popupKind int

const (
	popupNone popupKind = iota
	popupMergeMethod
	popupReview
)

// editorKind identifies what the composed editor text is for.
type editorKind int

const (
	editorCommentPr editorKind = iota
	editorCommentIssue
	editorReview
)

type editorContext struct {
	kind   editorKind
	owner  string
	repo   string
	number int
	event  model.ReviewEvent
}
