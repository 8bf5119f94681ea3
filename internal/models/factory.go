package models

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotsFolderName is the folder node the standard template reserves for snapshots.
const SnapshotsFolderName = "snapshots"

// NewWork builds a work and its initial nodes for the given template.
// Standard creates one file node per DocumentKind plus the snapshots folder;
// minimal creates only the content file. Every entity is stamped with now.
func NewWork(title string, template WorkTemplate, now time.Time) *Work {
	w := &Work{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch template {
	case TemplateMinimal:
		w.addFile(DocContent, now)
	case TemplateStandard:
		for _, kind := range DocumentKinds() {
			w.addFile(kind, now)
		}
		w.addNode(SnapshotsFolderName, NodeFolder, "", now)
	default:
		w.addFile(DocContent, now)
	}
	return w
}

func (w *Work) addNode(name string, kind NodeKind, parentID string, now time.Time) *Node {
	w.Nodes = append(w.Nodes, Node{
		ID:        uuid.NewString(),
		WorkID:    w.ID,
		ParentID:  parentID,
		Name:      name,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return &w.Nodes[len(w.Nodes)-1]
}

func (w *Work) addFile(kind DocumentKind, now time.Time) {
	n := w.addNode(string(kind), NodeFile, "", now)
	doc := Document{
		ID:        uuid.NewString(),
		NodeID:    n.ID,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	n.DocumentID = doc.ID
	w.Documents = append(w.Documents, doc)
}
