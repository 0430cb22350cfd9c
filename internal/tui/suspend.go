package tui

import (
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/altinukshini/grit/internal/ui"
)

// DetectPager picks the user's pager the way git does: GIT_PAGER, then
// git config core.pager, then PAGER, then less.
func DetectPager() string {
	if p := os.Getenv("GIT_PAGER"); p != "" {
		return p
	}
	if out, err := exec.Command("git", "config", "core.pager").Output(); err == nil {
		if p := strings.TrimSpace(string(out)); p != "" {
			return p
		}
	}
	if p := os.Getenv("PAGER"); p != "" {
		return p
	}
	return "less"
}

// ensurePagingAlways appends --paging=always when the pager command runs
// delta without an explicit paging flag. Delta otherwise skips its
// internal pager for short content, which flashes and vanishes when the
// alternate screen is restored.
func ensurePagingAlways(pagerCmd string) string {
	hasDelta := false
	for _, tok := range strings.Fields(pagerCmd) {
		if tok == "delta" || strings.HasSuffix(tok, "/delta") {
			hasDelta = true
			break
		}
	}
	if hasDelta && !strings.Contains(pagerCmd, "--paging") {
		return pagerCmd + " --paging=always"
	}
	return pagerCmd
}

// pagerCmd suspends the TUI and pipes content to the pager's stdin, the
// same way git does. The runtime pauses input reading and restores the
// terminal around the child process.
func (a *App) pagerCmd(content string) tea.Cmd {
	shell := exec.Command("sh", "-c", ensurePagingAlways(DetectPager()))
	shell.Stdin = strings.NewReader(content)
	return tea.ExecProcess(shell, func(err error) tea.Msg {
		return ui.PagerDoneMsg{Err: err}
	})
}

// editorCmd suspends the TUI into $EDITOR on a temp file and reports the
// trimmed result. An empty file means the user aborted.
func (a *App) editorCmd() tea.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	tmp, err := os.CreateTemp("", "grit-message-*.md")
	if err != nil {
		return func() tea.Msg { return ui.EditorFinishedMsg{Err: err} }
	}
	path := tmp.Name()
	tmp.Close()

	shell := exec.Command("sh", "-c", editor+" "+path)
	return tea.ExecProcess(shell, func(err error) tea.Msg {
		defer os.Remove(path)
		if err != nil {
			return ui.EditorFinishedMsg{Err: err}
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return ui.EditorFinishedMsg{Err: readErr}
		}
		return ui.EditorFinishedMsg{Body: string(data)}
	})
}
