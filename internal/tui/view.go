package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/grit/internal/ui"
)

func (a *App) View() string {
	if a.width == 0 {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	bodyHeight := max(1, a.height-3)
	var body string
	switch a.mode {
	case modeConfirm:
		body = a.renderConfirm(bodyHeight)
	case modePopup:
		body = a.renderPopup(bodyHeight)
	default:
		body = a.renderBody(bodyHeight)
	}
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(a.renderStatus())
	return b.String()
}

func (a *App) renderHeader() string {
	title := ui.StyleHeader.Render(" grit ")
	var ctx string
	switch a.screen {
	case screenHome:
		ctx = "Home"
	case screenRepoList:
		ctx = "Repositories"
	case screenRepoView:
		ctx = a.owner + "/" + a.repo
	case screenPrDetail:
		if a.currentPr != nil {
			ctx = fmt.Sprintf("%s/%s #%d", a.owner, a.repo, a.currentPr.Number)
		}
	case screenCommitDetail:
		if a.currentCommit != nil {
			ctx = fmt.Sprintf("%s/%s %s", a.owner, a.repo, shortSHA(a.currentCommit.SHA))
		}
	}
	line := title + " " + ui.StyleTitle.Render(ctx)
	if a.loading {
		line += " " + a.spin.View()
	}
	return line
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func (a *App) renderBody(height int) string {
	switch a.screen {
	case screenHome:
		return a.renderHome(height)
	case screenRepoList:
		return a.renderRepoList(height)
	case screenRepoView:
		return a.renderRepoView(height)
	case screenPrDetail:
		return a.renderPrDetail(height)
	case screenCommitDetail:
		return a.renderDocument(height)
	}
	return ""
}

func (a *App) renderHome(height int) string {
	var b strings.Builder

	section := func(s homeSection, label string) string {
		if a.section == s {
			return ui.StyleTabActive.Render(label)
		}
		return ui.StyleTab.Render(label)
	}
	b.WriteString(section(sectionReviews, "Review Requests"))
	b.WriteString(section(sectionMyPrs, "My Pull Requests"))
	b.WriteString("\n")

	listHeight := max(1, height-2)
	if a.section == sectionReviews {
		rows := make([]string, len(a.reviewRequests))
		for i, r := range a.reviewRequests {
			rows[i] = fmt.Sprintf("%s/%s #%-5d %s  %s",
				r.RepoOwner, r.RepoName, r.PrNumber,
				a.highlightRow(i, r.PrTitle),
				ui.StyleMuted.Render("by "+r.Author))
		}
		b.WriteString(renderList(rows, a.reviewIndex, listHeight, "No review requests."))
	} else {
		rows := make([]string, len(a.myPrs))
		for i, p := range a.myPrs {
			rows[i] = fmt.Sprintf("%s/%s #%-5d %s %s  %s",
				p.RepoOwner, p.RepoName, p.Number,
				p.ChecksStatus.Display(),
				a.highlightRow(i, p.Title),
				ui.PrStateStyle(string(p.State)).Render(p.State.Display()))
		}
		b.WriteString(renderList(rows, a.myPrIndex, listHeight, "No open pull requests."))
	}
	return b.String()
}

func (a *App) renderRepoList(height int) string {
	rows := make([]string, len(a.repos))
	for i, r := range a.repos {
		desc := r.Description
		if desc != "" {
			desc = "  " + ui.StyleMuted.Render(desc)
		}
		rows[i] = fmt.Sprintf("%-40s %s%s",
			a.highlightRow(i, r.Owner+"/"+r.Name),
			ui.StyleWarning.Render(fmt.Sprintf("* %d", r.Stars)),
			desc)
	}
	return renderList(rows, a.repoIndex, height, "No repositories.")
}

func (a *App) renderRepoView(height int) string {
	var b strings.Builder
	tabs := []struct {
		tab   repoTab
		label string
	}{
		{tabPrs, "[p] Pull Requests"},
		{tabIssues, "[i] Issues"},
		{tabCommits, "[c] Commits"},
		{tabActions, "[a] Actions"},
	}
	for _, t := range tabs {
		if a.tab == t.tab {
			b.WriteString(ui.StyleTabActive.Render(t.label))
		} else {
			b.WriteString(ui.StyleTab.Render(t.label))
		}
	}
	b.WriteString("\n")

	listHeight := max(1, height-2)
	switch a.tab {
	case tabPrs:
		rows := make([]string, len(a.prs))
		for i, p := range a.prs {
			rows[i] = fmt.Sprintf("#%-5d %s  %s",
				p.Number,
				a.highlightRow(i, p.Title),
				ui.StyleMuted.Render("by "+p.Author))
		}
		b.WriteString(renderList(rows, a.prIndex, listHeight, "No open pull requests."))
	case tabIssues:
		rows := make([]string, len(a.issues))
		for i, is := range a.issues {
			labels := ""
			if len(is.Labels) > 0 {
				labels = "  " + ui.StyleInfo.Render("["+strings.Join(is.Labels, ", ")+"]")
			}
			rows[i] = fmt.Sprintf("#%-5d %s%s  %s",
				is.Number,
				a.highlightRow(i, is.Title),
				labels,
				ui.StyleMuted.Render("by "+is.Author))
		}
		b.WriteString(renderList(rows, a.issueIndex, listHeight, "No open issues."))
	case tabCommits:
		rows := make([]string, len(a.commits))
		for i, c := range a.commits {
			rows[i] = fmt.Sprintf("%s %s  %s",
				ui.StyleWarning.Render(c.ShortSHA()),
				a.highlightRow(i, c.Message),
				ui.StyleMuted.Render(c.Author))
		}
		b.WriteString(renderList(rows, a.commitIndex, listHeight, "No commits."))
	case tabActions:
		rows := make([]string, len(a.runs))
		for i, r := range a.runs {
			rows[i] = fmt.Sprintf("%s %s  %s %s",
				ui.RunIcon(string(r.Status), string(r.Conclusion)),
				a.highlightRow(i, r.Name),
				ui.StyleMuted.Render(r.Branch),
				ui.StyleMuted.Render("("+r.Event+")"))
		}
		b.WriteString(renderList(rows, a.runIndex, listHeight, "No runs."))
	}
	return b.String()
}

func (a *App) renderPrDetail(height int) string {
	pr := a.currentPr
	if pr == nil {
		return ui.StyleMuted.Render("Loading...")
	}
	var b strings.Builder
	b.WriteString(ui.StyleTitle.Render(fmt.Sprintf("#%d %s", pr.Number, pr.Title)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s -> %s  by %s\n",
		ui.PrStateStyle(string(pr.State)).Render(pr.State.Display()),
		pr.HeadBranch, pr.BaseBranch, pr.Author))
	b.WriteString(ui.StyleMuted.Render(fmt.Sprintf("+%d -%d  %d files  %d commits  %d comments",
		pr.Stats.Additions, pr.Stats.Deletions, pr.Stats.ChangedFiles, pr.Stats.Commits, pr.Stats.Comments)))
	b.WriteString("\n\n")
	b.WriteString(a.renderDocument(max(1, height-4)))
	return b.String()
}

// renderDocument paints the scroll window of the current detail document
// with search matches highlighted.
func (a *App) renderDocument(height int) string {
	doc := a.document()
	if len(doc) == 0 {
		return ui.StyleMuted.Render("(no content)")
	}
	top := min(a.scroll, max(0, len(doc)-1))
	end := min(len(doc), top+height)

	matchesByLine := map[int][]int{}
	for _, m := range a.search.content {
		matchesByLine[m.Line] = append(matchesByLine[m.Line], m.Start, m.End)
	}

	var b strings.Builder
	for i := top; i < end; i++ {
		line := doc[i].Text
		if spans, ok := matchesByLine[i]; ok && a.search.query != "" {
			line = highlightSpans(line, spans)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// highlightSpans wraps [start,end) byte ranges in the match style. Spans
// arrive flattened and sorted.
func highlightSpans(line string, spans []int) string {
	var b strings.Builder
	prev := 0
	for i := 0; i+1 < len(spans); i += 2 {
		start, end := spans[i], spans[i+1]
		if start < prev || end > len(line) {
			continue
		}
		b.WriteString(line[prev:start])
		b.WriteString(ui.StyleMatch.Render(line[start:end]))
		prev = end
	}
	b.WriteString(line[prev:])
	return b.String()
}

// highlightRow marks a list row that matches the active search.
func (a *App) highlightRow(i int, text string) string {
	for _, m := range a.search.matches {
		if m == i {
			return ui.StyleMatch.Render(text)
		}
	}
	return text
}

// renderList windows rows around the selection and renders the cursor.
func renderList(rows []string, selected, height int, empty string) string {
	if len(rows) == 0 {
		return ui.StyleMuted.Render(empty)
	}
	top := 0
	if selected >= height {
		top = selected - height + 1
	}
	end := min(len(rows), top+height)

	var b strings.Builder
	for i := top; i < end; i++ {
		if i == selected {
			b.WriteString(ui.StyleSelected.Render("> " + rows[i]))
		} else {
			b.WriteString("  " + rows[i])
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a *App) renderConfirm(height int) string {
	var prompt string
	switch a.confirm.kind {
	case confirmClosePr:
		prompt = fmt.Sprintf("Close PR #%d?", a.confirm.number)
	case confirmCloseIssue:
		prompt = fmt.Sprintf("Close issue #%d?", a.confirm.number)
	case confirmMergePr:
		prompt = fmt.Sprintf("Merge PR #%d (%s)?", a.confirm.number, a.confirm.method.Display())
	}
	box := ui.StylePopup.Render(prompt + "\n\n" + ui.StyleMuted.Render("[y] yes  [n] no"))
	return lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Center, box)
}

func (a *App) renderPopup(height int) string {
	var b strings.Builder
	b.WriteString(ui.StyleTitle.Render(a.popupTitle))
	b.WriteString("\n\n")
	for i, item := range a.popupItems {
		if i == a.popupIndex {
			b.WriteString(ui.StyleSelected.Render("> " + item))
		} else {
			b.WriteString("  " + item)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(ui.StyleMuted.Render("[enter] select  [esc] cancel"))
	box := ui.StylePopup.Render(b.String())
	return lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Center, box)
}

func (a *App) renderStatus() string {
	switch {
	case a.errMsg != "":
		return ui.StyleError.Render("Error: " + a.errMsg)
	case a.mode == modeSearch:
		return ui.StyleStatusBar.Render("/" + a.search.query + "_")
	case a.flash != "":
		return ui.StyleFlash.Render(a.flash)
	}

	var hints string
	switch a.screen {
	case screenHome:
		hints = "j/k move  tab section  enter open  r repos  / search  q quit"
	case screenRepoList:
		hints = "j/k move  enter open  r refresh  / search  q back"
	case screenRepoView:
		hints = "j/k move  h/l tab  enter open  o browser  y yank  / search  q back"
	case screenPrDetail:
		hints = "j/k scroll  d diff  m merge  x close  C comment  R review  q back"
	case screenCommitDetail:
		hints = "j/k scroll  d diff  o browser  y yank  / search  q back"
	}
	if a.search.active {
		n := len(a.search.matches) + len(a.search.content)
		hints = fmt.Sprintf("%d matches  n/N cycle  esc clear  |  %s", n, hints)
	}
	return ui.StyleStatusBar.Render(hints)
}
