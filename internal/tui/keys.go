package tui

import tea "github.com/charmbracelet/bubbletea"

// translateKey maps a key press to an action given the current input
// mode and screen. It never mutates state; unbound keys translate to
// actionNone. For actionSearchInput the typed rune is returned too.
func (a *App) translateKey(msg tea.KeyMsg) (action, rune) {
	switch a.mode {
	case modeSearch:
		return translateSearchKey(msg)
	case modeConfirm:
		switch msg.String() {
		case "y":
			return actionConfirmYes, 0
		case "n", "esc":
			return actionConfirmNo, 0
		}
		return actionNone, 0
	case modePopup:
		switch msg.String() {
		case "j", "down":
			return actionPopupDown, 0
		case "k", "up":
			return actionPopupUp, 0
		case "enter":
			return actionPopupSelect, 0
		case "esc":
			return actionConfirmNo, 0
		}
		return actionNone, 0
	}
	return a.translateNormalKey(msg)
}

func translateSearchKey(msg tea.KeyMsg) (action, rune) {
	switch msg.Type {
	case tea.KeyEsc:
		return actionExitSearch, 0
	case tea.KeyEnter:
		return actionSearchConfirm, 0
	case tea.KeyBackspace:
		return actionSearchBackspace, 0
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return actionSearchInput, msg.Runes[0]
		}
	case tea.KeySpace:
		return actionSearchInput, ' '
	}
	return actionNone, 0
}

func (a *App) translateNormalKey(msg tea.KeyMsg) (action, rune) {
	switch msg.String() {
	case "q":
		if a.screen == screenHome {
			return actionQuit, 0
		}
		return actionBack, 0
	case "esc":
		if a.search.active {
			return actionClearSearch, 0
		}
		if a.screen == screenHome {
			return actionQuit, 0
		}
		return actionBack, 0
	case "ctrl+c":
		return actionQuit, 0

	case "/":
		return actionEnterSearch, 0
	case "n":
		if a.search.active {
			return actionSearchNext, 0
		}
	case "N":
		if a.search.active {
			return actionSearchPrev, 0
		}

	case "j", "down":
		return actionScrollDown, 0
	case "k", "up":
		return actionScrollUp, 0
	case "g", "home":
		return actionGoToTop, 0
	case "G", "end":
		return actionGoToBottom, 0
	case "ctrl+d", "ctrl+f", "pgdown":
		return actionPageDown, 0
	case "ctrl+u", "ctrl+b", "pgup":
		return actionPageUp, 0

	case "h", "left", "shift+tab":
		return actionPrevTab, 0
	case "l", "right", "tab":
		return actionNextTab, 0

	case "enter":
		return actionSelect, 0

	case "d":
		if a.screen == screenPrDetail || a.screen == screenCommitDetail {
			return actionViewDiff, 0
		}
	case "r":
		return actionRefresh, 0
	case "o":
		return actionOpenInBrowser, 0
	case "y":
		return actionYankURL, 0

	case "m":
		if a.screen == screenPrDetail {
			return actionShowMergeSelect, 0
		}
	case "x":
		if a.screen == screenPrDetail || (a.screen == screenRepoView && a.tab == tabIssues) {
			return actionCloseCurrent, 0
		}
	case "C":
		if a.screen == screenPrDetail || (a.screen == screenRepoView && a.tab == tabIssues) {
			return actionComment, 0
		}
	case "R":
		if a.screen == screenPrDetail {
			return actionShowReviewSelect, 0
		}

	case "p":
		if a.screen == screenRepoView {
			return actionSwitchTabPrs, 0
		}
	case "i":
		if a.screen == screenRepoView {
			return actionSwitchTabIssues, 0
		}
	case "c":
		if a.screen == screenRepoView {
			return actionSwitchTabCommits, 0
		}
	case "a":
		if a.screen == screenRepoView {
			return actionSwitchTabActions, 0
		}
	}
	return actionNone, 0
}
