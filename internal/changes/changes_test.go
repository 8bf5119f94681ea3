package changes

import (
	"reflect"
	"testing"
	"time"

	"github.com/starford/quire/internal/diff"
	"github.com/starford/quire/internal/models"
)

var now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func names(files []FileSummary) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.FileName
	}
	return out
}

func TestBuild_SortedAndCounted(t *testing.T) {
	w := models.NewWork("Review", models.TemplateStandard, now)
	w.UpdateDocumentByFileName("content.md", "one\ntwo\nthree", now)
	w.UpdateDocumentByFileName("plot.md", "twist", now)

	baseline := MapBaseline(map[string]string{
		"content.md": "one\n2\nthree",
		"plot.md":    "twist",
	})
	got := Build(w, baseline, "content.md")

	want := []string{"characters.md", "content.md", "info.md", "outline.md", "plot.md"}
	if !reflect.DeepEqual(names(got), want) {
		t.Fatalf("files = %v, want %v", names(got), want)
	}
	content := got[1]
	if content.Added != 1 || content.Removed != 1 {
		t.Errorf("content.md = (+%d, -%d), want (+1, -1)", content.Added, content.Removed)
	}
	if plot := got[4]; plot.Changed() {
		t.Errorf("plot.md should be unchanged, got (+%d, -%d)", plot.Added, plot.Removed)
	}
	// Empty text against a missing baseline is the no-changes marker.
	if info := got[2]; info.Changed() || len(info.Lines) != 1 || info.Lines[0].Text != diff.NoChangesMarker {
		t.Errorf("info.md = %+v", info)
	}
}

func TestBuild_MissingBaselineMeansEmpty(t *testing.T) {
	w := models.NewWork("New", models.TemplateMinimal, now)
	w.UpdateDocument(models.DocContent, "a\nb", now)

	got := Build(w, nil, "content.md")
	if len(got) != 1 || got[0].Added != 2 || got[0].Removed != 0 {
		t.Fatalf("got = %+v", got)
	}
}

func TestBuild_NoDocumentsYieldsPlaceholder(t *testing.T) {
	w := &models.Work{ID: "w", Title: "Empty", CreatedAt: now, UpdatedAt: now}
	got := Build(w, NoBaseline, "content.md")
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].FileName != "content.md" || got[0].Changed() {
		t.Errorf("placeholder = %+v", got[0])
	}
}

func TestNewSelection_FiltersUnchanged(t *testing.T) {
	files := []FileSummary{
		{FileName: "a.md", Added: 1},
		{FileName: "b.md"},
	}
	s := NewSelection(files)

	if got := names(s.Files()); !reflect.DeepEqual(got, []string{"a.md"}) {
		t.Errorf("files = %v", got)
	}
	if got := s.Selected(); !reflect.DeepEqual(got, []string{"a.md"}) {
		t.Errorf("selected = %v", got)
	}
	if !s.CanSave() {
		t.Error("CanSave = false, want true")
	}
}

func TestNewSelectionFrom_DropsStaleNames(t *testing.T) {
	files := []FileSummary{
		{FileName: "a.md", Added: 1},
		{FileName: "b.md", Removed: 2},
		{FileName: "c.md"},
	}
	s := NewSelectionFrom(files, []string{"b.md", "c.md", "gone.md"})
	if got := s.Selected(); !reflect.DeepEqual(got, []string{"b.md"}) {
		t.Errorf("selected = %v, want [b.md]", got)
	}

	empty := NewSelectionFrom(files, nil)
	if empty.CanSave() {
		t.Error("empty initial selection should not be savable")
	}
}

func TestSelectionTransitions(t *testing.T) {
	files := []FileSummary{
		{FileName: "a.md", Added: 1},
		{FileName: "b.md", Removed: 1},
		{FileName: "c.md"},
	}
	s := NewSelection(files)

	cleared := s.ClearAll()
	if cleared.CanSave() || len(cleared.Selected()) != 0 {
		t.Errorf("ClearAll selected = %v", cleared.Selected())
	}
	if len(s.Selected()) != 2 {
		t.Errorf("ClearAll mutated receiver: %v", s.Selected())
	}

	toggled := cleared.Toggle("b.md")
	if got := toggled.Selected(); !reflect.DeepEqual(got, []string{"b.md"}) {
		t.Errorf("after toggle = %v", got)
	}
	if toggled.Toggle("b.md").CanSave() {
		t.Error("toggling twice should unstage")
	}
	if got := toggled.Toggle("c.md").Selected(); !reflect.DeepEqual(got, []string{"b.md"}) {
		t.Errorf("toggle of unchanged file changed selection: %v", got)
	}
	if got := toggled.Toggle("missing.md").Selected(); !reflect.DeepEqual(got, []string{"b.md"}) {
		t.Errorf("toggle of unknown file changed selection: %v", got)
	}

	all := cleared.SelectAll()
	if got := all.Selected(); !reflect.DeepEqual(got, []string{"a.md", "b.md"}) {
		t.Errorf("SelectAll = %v", got)
	}
}

func TestSelectionDiffTarget(t *testing.T) {
	files := []FileSummary{
		{FileName: "a.md", Added: 1, Lines: []diff.Line{{Kind: diff.Added, Text: "x"}}},
		{FileName: "b.md"},
	}
	s := NewSelection(files)

	if _, ok := s.DiffFile(); ok {
		t.Error("no diff should be open initially")
	}
	if _, ok := s.OpenDiff("b.md").DiffFile(); ok {
		t.Error("diff of filtered file should not open")
	}

	opened := s.OpenDiff("a.md")
	f, ok := opened.DiffFile()
	if !ok || f.FileName != "a.md" || len(f.Lines) != 1 {
		t.Fatalf("DiffFile = (%+v, %v)", f, ok)
	}
	if _, ok := opened.CloseDiff().DiffFile(); ok {
		t.Error("CloseDiff left diff open")
	}
	if _, ok := opened.OpenDiff("nope.md").DiffFile(); !ok {
		t.Error("invalid OpenDiff should keep the current target")
	}
}
