// Package search implements the two in-screen search modes: filtering
// list rows by their visible fields, and scanning detail documents for
// match positions. Matching is case-insensitive substring in both modes.
package search

import (
	"strings"

	"github.com/altinukshini/grit/internal/model"
)

// FilterIndices returns, in order, the indices of items whose fields
// contain query. fields extracts the searchable strings for one item.
// An empty query matches nothing.
func FilterIndices[T any](items []T, query string, fields func(T) []string) []int {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	var out []int
	for i, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// ContentMatch is one occurrence of the query inside a document. Start
// and End are byte offsets into the line.
type ContentMatch struct {
	Line  int
	Start int
	End   int
}

// ScanDocument finds every non-overlapping occurrence of query in the
// searchable lines of doc, in (line, offset) order.
func ScanDocument(doc []model.DocLine, query string) []ContentMatch {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	var out []ContentMatch
	for i, line := range doc {
		if !line.Searchable {
			continue
		}
		lower := strings.ToLower(line.Text)
		start := 0
		for {
			pos := strings.Index(lower[start:], q)
			if pos < 0 {
				break
			}
			begin := start + pos
			end := begin + len(q)
			out = append(out, ContentMatch{Line: i, Start: begin, End: end})
			start = end
		}
	}
	return out
}
