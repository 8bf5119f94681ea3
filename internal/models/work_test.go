package models

import (
	"sort"
	"testing"
	"time"
)

var base = time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)

func TestNewWork_StandardTemplate(t *testing.T) {
	w := NewWork("New work", TemplateStandard, base)

	var names []string
	for _, n := range w.RootNodes() {
		names = append(names, n.Name)
	}
	sort.Strings(names)
	want := []string{"characters", "content", "info", "outline", "plot", "snapshots"}
	if len(names) != len(want) {
		t.Fatalf("root nodes = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("root nodes = %v, want %v", names, want)
			break
		}
	}

	for _, kind := range DocumentKinds() {
		doc := w.Document(kind)
		if doc == nil {
			t.Fatalf("missing %s document", kind)
		}
		if doc.Text != "" {
			t.Errorf("%s text = %q, want empty", kind, doc.Text)
		}
		if !doc.CreatedAt.Equal(base) || !doc.UpdatedAt.Equal(base) {
			t.Errorf("%s timestamps not stamped with now", kind)
		}
	}

	var folder *Node
	for _, n := range w.RootNodes() {
		if n.Name == SnapshotsFolderName {
			folder = n
		}
	}
	if folder == nil || folder.Kind != NodeFolder {
		t.Fatalf("snapshots folder = %+v", folder)
	}
	if w.NodeDocument(folder) != nil {
		t.Error("snapshots folder should not own a document")
	}
}

func TestNewWork_MinimalTemplate(t *testing.T) {
	w := NewWork("Minimal", TemplateMinimal, base)

	roots := w.RootNodes()
	if len(roots) != 1 || roots[0].Name != "content" {
		t.Fatalf("root nodes = %+v, want only content", roots)
	}
	if w.Document(DocContent) == nil {
		t.Error("content document missing")
	}
	if w.Document(DocOutline) != nil {
		t.Error("outline document should not exist")
	}
}

func TestNodeBackReferences(t *testing.T) {
	w := NewWork("Refs", TemplateStandard, base)
	for _, doc := range w.FileDocuments() {
		n := w.Node(doc.NodeID)
		if n == nil {
			t.Fatalf("document %s has no node", doc.ID)
		}
		if n.DocumentID != doc.ID || n.WorkID != w.ID {
			t.Errorf("node %s does not point back at document %s", n.ID, doc.ID)
		}
	}
	if len(w.Children(w.RootNodes()[0].ID)) != 0 {
		t.Error("template nodes should have no children")
	}
}

func TestParseDocumentKind(t *testing.T) {
	cases := []struct {
		in   string
		want DocumentKind
		ok   bool
	}{
		{"content.md", DocContent, true},
		{"content", DocContent, true},
		{"  Outline.MD ", DocOutline, true},
		{"PLOT", DocPlot, true},
		{"characters.md", DocCharacters, true},
		{"info", DocInfo, true},
		{"unknown.md", "", false},
		{"content.txt", "", false},
		{"", "", false},
		{".md", "", false},
	}
	for _, c := range cases {
		got, ok := ParseDocumentKind(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseDocumentKind(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
	for _, kind := range DocumentKinds() {
		back, ok := ParseDocumentKind(kind.FileName())
		if !ok || back != kind {
			t.Errorf("round trip %s -> %s -> %s", kind, kind.FileName(), back)
		}
	}
}

func TestStoredKindFallbacks(t *testing.T) {
	if got := ParseNodeKind("symlink"); got != NodeFile {
		t.Errorf("ParseNodeKind fallback = %q", got)
	}
	if got := ParseStoredDocumentKind("notes"); got != DocContent {
		t.Errorf("ParseStoredDocumentKind fallback = %q", got)
	}
	if got := ParseSnapshotKind("auto"); got != SnapshotManual {
		t.Errorf("ParseSnapshotKind fallback = %q", got)
	}
	if got := ParseSnapshotKind("conflict"); got != SnapshotConflict {
		t.Errorf("ParseSnapshotKind(conflict) = %q", got)
	}
}

func TestParseWorkTemplate(t *testing.T) {
	if tpl, err := ParseWorkTemplate(""); err != nil || tpl != TemplateStandard {
		t.Errorf("empty template = (%q, %v)", tpl, err)
	}
	if tpl, err := ParseWorkTemplate("Minimal"); err != nil || tpl != TemplateMinimal {
		t.Errorf("Minimal = (%q, %v)", tpl, err)
	}
	if _, err := ParseWorkTemplate("novel"); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestUpdateDocument(t *testing.T) {
	updatedAt := base.Add(100 * time.Second)
	w := NewWork("Draft", TemplateStandard, base)

	if !w.UpdateDocument(DocContent, "Chapter one\nbeginning", updatedAt) {
		t.Fatal("UpdateDocument returned false")
	}
	doc := w.Document(DocContent)
	if doc.Text != "Chapter one\nbeginning" {
		t.Errorf("text = %q", doc.Text)
	}
	if !doc.UpdatedAt.Equal(updatedAt) {
		t.Errorf("document updated_at = %v", doc.UpdatedAt)
	}
	if n := w.Node(doc.NodeID); !n.UpdatedAt.Equal(updatedAt) {
		t.Errorf("node updated_at = %v", n.UpdatedAt)
	}
	if !w.UpdatedAt.Equal(updatedAt) {
		t.Errorf("work updated_at = %v, want %v", w.UpdatedAt, updatedAt)
	}
	if !w.CreatedAt.Equal(base) {
		t.Errorf("created_at changed to %v", w.CreatedAt)
	}
}

func TestUpdateDocument_NeverMovesWorkBackwards(t *testing.T) {
	later := base.Add(time.Hour)
	w := NewWork("Clock", TemplateStandard, base)
	w.UpdateDocument(DocContent, "a", later)
	w.UpdateDocument(DocPlot, "b", base.Add(time.Minute))
	if !w.UpdatedAt.Equal(later) {
		t.Errorf("work updated_at = %v, want %v", w.UpdatedAt, later)
	}
}

func TestUpdateDocumentByFileName(t *testing.T) {
	updatedAt := base.Add(200 * time.Second)
	w := NewWork("By name", TemplateStandard, base)

	if !w.UpdateDocumentByFileName("content.md", "Chapter two", updatedAt) {
		t.Fatal("update by file name failed")
	}
	if got := w.DocumentByFileName("content.md").Text; got != "Chapter two" {
		t.Errorf("text = %q", got)
	}
	if w.DocumentByFileName("outline.md").Kind != DocOutline {
		t.Error("outline.md did not resolve to outline")
	}
	if w.DocumentByFileName("unknown.md") != nil {
		t.Error("unknown.md should not resolve")
	}
	if w.UpdateDocumentByFileName("unknown.md", "x", updatedAt) {
		t.Error("update of unknown file should fail")
	}
}

func TestUpdateDocument_MissingKindDoesNotMutate(t *testing.T) {
	w := NewWork("Minimal", TemplateMinimal, base)
	if w.UpdateDocument(DocOutline, "outline", base.Add(time.Hour)) {
		t.Fatal("update of missing kind should fail")
	}
	if !w.UpdatedAt.Equal(base) {
		t.Errorf("work updated_at moved to %v", w.UpdatedAt)
	}
}

func TestUpdateWorkDocument_RequiresWorkID(t *testing.T) {
	updated := base.Add(300 * time.Second)
	first := NewWork("Same title", TemplateStandard, base)
	second := NewWork("Same title", TemplateStandard, base)
	works := []*Work{first, second}

	if UpdateWorkDocument(works, "", "content.md", "must not be saved", updated) {
		t.Error("update without work id should fail")
	}
	if UpdateWorkDocument(works, "no-such-work", "content.md", "must not be saved", updated) {
		t.Error("update with unknown work id should fail")
	}
	if !UpdateWorkDocument(works, second.ID, "content.md", "saved", updated) {
		t.Fatal("update with second.ID should succeed")
	}

	if got := first.Document(DocContent).Text; got != "" {
		t.Errorf("first content = %q, want empty", got)
	}
	if !first.UpdatedAt.Equal(base) {
		t.Errorf("first updated_at moved to %v", first.UpdatedAt)
	}
	if got := second.Document(DocContent).Text; got != "saved" {
		t.Errorf("second content = %q, want %q", got, "saved")
	}
	if FindWorkDocument(works, second.ID, "content.md").Text != "saved" {
		t.Error("FindWorkDocument did not resolve second work")
	}
	if FindWorkDocument(works, "", "content.md") != nil {
		t.Error("FindWorkDocument without id should be nil")
	}
}

func TestClone_IsIndependent(t *testing.T) {
	w := NewWork("Clone", TemplateStandard, base)
	c := w.Clone()
	c.UpdateDocument(DocContent, "changed", base.Add(time.Minute))
	if w.Document(DocContent).Text != "" {
		t.Error("clone mutation leaked into original")
	}
}

func TestNextWorkTitle(t *testing.T) {
	got := NextWorkTitle("Work ", []string{"Work 1", "Memo", "Work 3", "Work X", "Work 10"})
	if got != "Work 11" {
		t.Errorf("got = %q, want %q", got, "Work 11")
	}
	if got := NextWorkTitle("Work ", []string{"Draft", "Plot"}); got != "Work 1" {
		t.Errorf("got = %q, want %q", got, "Work 1")
	}
	if got := NextWorkTitle("Work ", []string{"Work 0", "Work -2", "Work 2b"}); got != "Work 1" {
		t.Errorf("got = %q, want %q", got, "Work 1")
	}
}
