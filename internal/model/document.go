package model

import (
	"fmt"
	"strings"
)

// DocLine is one line of a detail screen's synthetic document. Search only
// scans lines marked Searchable; scroll bounds and rendering use the full
// slice. Keeping both derivations on one layout prevents them drifting.
type DocLine struct {
	Text       string
	Searchable bool
}

// DocumentLines lays out the PR detail body. The surrounding metadata is
// rendered separately by the view, so the scrollable document is the body
// alone and every line is searchable.
func (pr *PullRequest) DocumentLines() []DocLine {
	if pr.Body == "" {
		return nil
	}
	lines := splitLines(pr.Body)
	doc := make([]DocLine, len(lines))
	for i, l := range lines {
		doc[i] = DocLine{Text: l, Searchable: true}
	}
	return doc
}

// DocumentLines lays out the commit detail screen: a fixed five-line header
// block, the message, then per file a header line followed by its patch,
// each section separated by a blank line. Header and separator lines are
// not searchable.
func (c *CommitDetail) DocumentLines() []DocLine {
	var doc []DocLine
	frame := func(text string) {
		doc = append(doc, DocLine{Text: text})
	}
	body := func(text string) {
		doc = append(doc, DocLine{Text: text, Searchable: true})
	}

	frame("Commit " + c.SHA)
	frame("")
	frame(statsLine(c.Stats))
	frame("")
	frame("Message:")
	for _, l := range splitLines(c.Message) {
		body(l)
	}
	frame("")
	for _, f := range c.Files {
		frame(fileHeader(f))
		if f.Patch != "" {
			for _, l := range splitLines(f.Patch) {
				body(l)
			}
		}
		frame("")
	}
	return doc
}

// splitLines splits on newlines without producing a trailing empty line
// for text that ends in one.
func splitLines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func statsLine(s CommitStats) string {
	return fmt.Sprintf("+%d -%d (%d changes)", s.Additions, s.Deletions, s.Total)
}

func fileHeader(f CommitFile) string {
	return fmt.Sprintf("%s (%s, +%d -%d)", f.Filename, f.Status, f.Additions, f.Deletions)
}
