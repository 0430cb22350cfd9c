package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNormalModeNavigation(t *testing.T) {
	a := &App{}
	tests := []struct {
		msg  tea.KeyMsg
		want action
	}{
		{runeKey('j'), actionScrollDown},
		{runeKey('k'), actionScrollUp},
		{runeKey('g'), actionGoToTop},
		{runeKey('G'), actionGoToBottom},
		{tea.KeyMsg{Type: tea.KeyCtrlD}, actionPageDown},
		{tea.KeyMsg{Type: tea.KeyCtrlU}, actionPageUp},
		{runeKey('h'), actionPrevTab},
		{runeKey('l'), actionNextTab},
		{tea.KeyMsg{Type: tea.KeyTab}, actionNextTab},
		{tea.KeyMsg{Type: tea.KeyEnter}, actionSelect},
		{runeKey('/'), actionEnterSearch},
		{runeKey('r'), actionRefresh},
		{runeKey('o'), actionOpenInBrowser},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, actionQuit},
	}
	for _, tt := range tests {
		got, _ := a.translateKey(tt.msg)
		if got != tt.want {
			t.Errorf("translateKey(%s) = %v, want %v", tt.msg.String(), got, tt.want)
		}
	}
}

func TestQuitOnHomeBackElsewhere(t *testing.T) {
	a := &App{screen: screenHome}
	if got, _ := a.translateKey(runeKey('q')); got != actionQuit {
		t.Errorf("q on home = %v, want quit", got)
	}
	a.screen = screenRepoList
	if got, _ := a.translateKey(runeKey('q')); got != actionBack {
		t.Errorf("q on repo list = %v, want back", got)
	}
	if got, _ := a.translateKey(tea.KeyMsg{Type: tea.KeyEsc}); got != actionBack {
		t.Errorf("esc on repo list = %v, want back", got)
	}
}

func TestEscClearsActiveSearchFirst(t *testing.T) {
	a := &App{screen: screenRepoList}
	a.search.active = true
	if got, _ := a.translateKey(tea.KeyMsg{Type: tea.KeyEsc}); got != actionClearSearch {
		t.Errorf("esc with active search = %v, want clear search", got)
	}
}

func TestSearchNextOnlyWhenActive(t *testing.T) {
	a := &App{screen: screenRepoList}
	if got, _ := a.translateKey(runeKey('n')); got != actionNone {
		t.Errorf("n without search = %v, want none", got)
	}
	a.search.active = true
	if got, _ := a.translateKey(runeKey('n')); got != actionSearchNext {
		t.Errorf("n with search = %v, want next", got)
	}
	if got, _ := a.translateKey(runeKey('N')); got != actionSearchPrev {
		t.Errorf("N with search = %v, want prev", got)
	}
}

func TestDetailOnlyKeys(t *testing.T) {
	a := &App{screen: screenRepoList}
	if got, _ := a.translateKey(runeKey('d')); got != actionNone {
		t.Errorf("d on list screen = %v, want none", got)
	}
	if got, _ := a.translateKey(runeKey('m')); got != actionNone {
		t.Errorf("m on list screen = %v, want none", got)
	}

	a.screen = screenPrDetail
	if got, _ := a.translateKey(runeKey('d')); got != actionViewDiff {
		t.Errorf("d on pr detail = %v, want view diff", got)
	}
	if got, _ := a.translateKey(runeKey('m')); got != actionShowMergeSelect {
		t.Errorf("m on pr detail = %v, want merge select", got)
	}
	if got, _ := a.translateKey(runeKey('R')); got != actionShowReviewSelect {
		t.Errorf("R on pr detail = %v, want review select", got)
	}

	a.screen = screenCommitDetail
	if got, _ := a.translateKey(runeKey('d')); got != actionViewDiff {
		t.Errorf("d on commit detail = %v, want view diff", got)
	}
}

func TestCloseAndCommentScreenGated(t *testing.T) {
	a := &App{screen: screenRepoView, tab: tabPrs}
	if got, _ := a.translateKey(runeKey('x')); got != actionNone {
		t.Errorf("x on prs tab = %v, want none", got)
	}
	a.tab = tabIssues
	if got, _ := a.translateKey(runeKey('x')); got != actionCloseCurrent {
		t.Errorf("x on issues tab = %v, want close", got)
	}
	if got, _ := a.translateKey(runeKey('C')); got != actionComment {
		t.Errorf("C on issues tab = %v, want comment", got)
	}
}

func TestRepoViewTabShortcuts(t *testing.T) {
	a := &App{screen: screenRepoView}
	tests := []struct {
		key  rune
		want action
	}{
		{'p', actionSwitchTabPrs},
		{'i', actionSwitchTabIssues},
		{'c', actionSwitchTabCommits},
		{'a', actionSwitchTabActions},
	}
	for _, tt := range tests {
		if got, _ := a.translateKey(runeKey(tt.key)); got != tt.want {
			t.Errorf("%c on repo view = %v, want %v", tt.key, got, tt.want)
		}
	}

	a.screen = screenHome
	if got, _ := a.translateKey(runeKey('p')); got != actionNone {
		t.Errorf("p on home = %v, want none", got)
	}
}

func TestConfirmModeIsExclusive(t *testing.T) {
	a := &App{mode: modeConfirm}
	if got, _ := a.translateKey(runeKey('j')); got != actionNone {
		t.Errorf("j in confirm mode = %v, want none", got)
	}
	if got, _ := a.translateKey(runeKey('y')); got != actionConfirmYes {
		t.Errorf("y in confirm mode = %v, want yes", got)
	}
	if got, _ := a.translateKey(runeKey('n')); got != actionConfirmNo {
		t.Errorf("n in confirm mode = %v, want no", got)
	}
	if got, _ := a.translateKey(tea.KeyMsg{Type: tea.KeyEsc}); got != actionConfirmNo {
		t.Errorf("esc in confirm mode = %v, want no", got)
	}
}

func TestPopupModeIsExclusive(t *testing.T) {
	a := &App{mode: modePopup}
	if got, _ := a.translateKey(runeKey('j')); got != actionPopupDown {
		t.Errorf("j in popup mode = %v, want popup down", got)
	}
	if got, _ := a.translateKey(runeKey('k')); got != actionPopupUp {
		t.Errorf("k in popup mode = %v, want popup up", got)
	}
	if got, _ := a.translateKey(tea.KeyMsg{Type: tea.KeyEnter}); got != actionPopupSelect {
		t.Errorf("enter in popup mode = %v, want select", got)
	}
	if got, _ := a.translateKey(runeKey('x')); got != actionNone {
		t.Errorf("x in popup mode = %v, want none", got)
	}
}

func TestSearchModeCapturesRunes(t *testing.T) {
	a := &App{mode: modeSearch}
	got, r := a.translateKey(runeKey('q'))
	if got != actionSearchInput || r != 'q' {
		t.Errorf("q in search mode = %v/%q, want input/'q'", got, r)
	}
	got, r = a.translateKey(tea.KeyMsg{Type: tea.KeySpace})
	if got != actionSearchInput || r != ' ' {
		t.Errorf("space in search mode = %v/%q, want input/' '", got, r)
	}
	if got, _ := a.translateKey(tea.KeyMsg{Type: tea.KeyBackspace}); got != actionSearchBackspace {
		t.Errorf("backspace in search mode = %v, want backspace", got)
	}
	if got, _ := a.translateKey(tea.KeyMsg{Type: tea.KeyEnter}); got != actionSearchConfirm {
		t.Errorf("enter in search mode = %v, want confirm", got)
	}
	if got, _ := a.translateKey(tea.KeyMsg{Type: tea.KeyEsc}); got != actionExitSearch {
		t.Errorf("esc in search mode = %v, want exit", got)
	}
}
