// Package diff computes line-level differences between two text blobs.
package diff

import "strings"

// Kind classifies a diff line.
type Kind string

const (
	Added     Kind = "added"
	Removed   Kind = "removed"
	Unchanged Kind = "unchanged"
)

// NoChangesMarker is the text of the single line returned when neither side has any lines.
const NoChangesMarker = "(no changes)"

// Line is one line of comparison output.
type Line struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Lines returns the ordered edit script turning previous into current, based
// on the longest common subsequence of their lines. When both sides differ at
// a position and dropping either keeps an equally long common subsequence,
// the removal is emitted first.
func Lines(previous, current string) []Line {
	a := split(previous)
	b := split(current)
	m, n := len(a), len(b)

	if m == 0 && n == 0 {
		return []Line{{Kind: Unchanged, Text: NoChangesMarker}}
	}

	// lcs[i*(n+1)+j] is the LCS length of a[i:] and b[j:].
	w := n + 1
	lcs := make([]int, (m+1)*w)
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i*w+j] = lcs[(i+1)*w+j+1] + 1
			} else {
				lcs[i*w+j] = max(lcs[(i+1)*w+j], lcs[i*w+j+1])
			}
		}
	}

	out := make([]Line, 0, m+n)
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case a[i] == b[j]:
			out = append(out, Line{Kind: Unchanged, Text: a[i]})
			i++
			j++
		case lcs[(i+1)*w+j] >= lcs[i*w+j+1]:
			out = append(out, Line{Kind: Removed, Text: a[i]})
			i++
		default:
			out = append(out, Line{Kind: Added, Text: b[j]})
			j++
		}
	}
	for ; i < m; i++ {
		out = append(out, Line{Kind: Removed, Text: a[i]})
	}
	for ; j < n; j++ {
		out = append(out, Line{Kind: Added, Text: b[j]})
	}
	return out
}

// Count tallies added and removed lines.
func Count(lines []Line) (added, removed int) {
	for _, l := range lines {
		switch l.Kind {
		case Added:
			added++
		case Removed:
			removed++
		case Unchanged:
		}
	}
	return added, removed
}

// split breaks s on newlines, keeping empty trailing segments. The empty
// string has no lines.
func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
