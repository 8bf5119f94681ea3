// Package changes builds per-file change summaries for a work and tracks
// which changed files a user has staged for a snapshot.
package changes

import (
	"sort"

	"github.com/starford/quire/internal/diff"
	"github.com/starford/quire/internal/models"
)

// FileSummary is the diff of one file against its baseline.
type FileSummary struct {
	FileName string      `json:"file_name"`
	Added    int         `json:"added"`
	Removed  int         `json:"removed"`
	Lines    []diff.Line `json:"lines"`
}

// Changed reports whether the file has any added or removed line.
func (s FileSummary) Changed() bool {
	return s.Added+s.Removed > 0
}

// BaselineFunc returns the previous text of a file. ok is false when the
// file has no baseline, which is treated as empty text.
type BaselineFunc func(fileName string) (text string, ok bool)

// NoBaseline treats every file as new.
func NoBaseline(string) (string, bool) { return "", false }

// MapBaseline serves baselines from a file name to text map.
func MapBaseline(texts map[string]string) BaselineFunc {
	return func(fileName string) (string, bool) {
		text, ok := texts[fileName]
		return text, ok
	}
}

// Summarize diffs previous against current for a single file.
func Summarize(fileName, previous, current string) FileSummary {
	lines := diff.Lines(previous, current)
	added, removed := diff.Count(lines)
	return FileSummary{
		FileName: fileName,
		Added:    added,
		Removed:  removed,
		Lines:    lines,
	}
}

// Build returns one summary per file document of w, sorted by file name.
// A work without documents yields a single empty summary named displayName.
func Build(w *models.Work, baseline BaselineFunc, displayName string) []FileSummary {
	if baseline == nil {
		baseline = NoBaseline
	}

	docs := w.FileDocuments()
	if len(docs) == 0 {
		return []FileSummary{Summarize(displayName, "", "")}
	}

	out := make([]FileSummary, 0, len(docs))
	for _, doc := range docs {
		name := doc.FileName()
		previous, _ := baseline(name)
		out = append(out, Summarize(name, previous, doc.Text))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FileName < out[j].FileName
	})
	return out
}
