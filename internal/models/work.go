// Package models defines the work/node/document entity graph for Quire.
//
// A Work owns its nodes and documents in flat slices; nodes point at their
// parent and document by ID, documents point back at their node by ID.
package models

import "time"

// Work is a single writing project, the root aggregate.
type Work struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Nodes     []Node     `json:"nodes"`
	Documents []Document `json:"documents"`
	Snapshots []Snapshot `json:"snapshots,omitempty"`
}

// Node is a named tree entry. ParentID is empty for root nodes and
// DocumentID is empty for folders and for files without content.
type Node struct {
	ID         string    `json:"id"`
	WorkID     string    `json:"work_id"`
	ParentID   string    `json:"parent_id,omitempty"`
	Name       string    `json:"name"`
	Kind       NodeKind  `json:"kind"`
	DocumentID string    `json:"document_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Document is the text carried by a file node.
type Document struct {
	ID        string       `json:"id"`
	NodeID    string       `json:"node_id"`
	Kind      DocumentKind `json:"kind"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// FileName returns the canonical file name of the document.
func (d *Document) FileName() string {
	return d.Kind.FileName()
}

// Snapshot is an immutable record of staged file texts. Manifest holds the
// encoded manifest payload.
type Snapshot struct {
	ID         string       `json:"id"`
	WorkID     string       `json:"work_id"`
	Title      string       `json:"title"`
	Memo       string       `json:"memo"`
	CreatedAt  time.Time    `json:"created_at"`
	DeviceName string       `json:"device_name"`
	Kind       SnapshotKind `json:"kind"`
	Manifest   string       `json:"manifest"`
}

// RootNodes returns the nodes without a parent, in node order.
func (w *Work) RootNodes() []*Node {
	var out []*Node
	for i := range w.Nodes {
		if w.Nodes[i].ParentID == "" {
			out = append(out, &w.Nodes[i])
		}
	}
	return out
}

// Children returns the direct children of the node with the given ID.
func (w *Work) Children(nodeID string) []*Node {
	var out []*Node
	for i := range w.Nodes {
		if nodeID != "" && w.Nodes[i].ParentID == nodeID {
			out = append(out, &w.Nodes[i])
		}
	}
	return out
}

// Node returns the node with the given ID, or nil.
func (w *Work) Node(id string) *Node {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i]
		}
	}
	return nil
}

// NodeDocument returns the document owned by n, or nil.
func (w *Work) NodeDocument(n *Node) *Document {
	if n == nil || n.Kind != NodeFile || n.DocumentID == "" {
		return nil
	}
	for i := range w.Documents {
		if w.Documents[i].ID == n.DocumentID {
			return &w.Documents[i]
		}
	}
	return nil
}

// FileDocuments returns the document of every file node, in node order.
func (w *Work) FileDocuments() []*Document {
	var out []*Document
	for i := range w.Nodes {
		if doc := w.NodeDocument(&w.Nodes[i]); doc != nil {
			out = append(out, doc)
		}
	}
	return out
}

// Document returns the first document, in node order, of the given kind.
func (w *Work) Document(kind DocumentKind) *Document {
	for _, doc := range w.FileDocuments() {
		if doc.Kind == kind {
			return doc
		}
	}
	return nil
}

// DocumentByFileName resolves fileName to a kind and returns its document.
// Names that do not map to a kind never match.
func (w *Work) DocumentByFileName(fileName string) *Document {
	kind, ok := ParseDocumentKind(fileName)
	if !ok {
		return nil
	}
	return w.Document(kind)
}

// UpdateDocument replaces the text of the document of the given kind and
// stamps the document, its node and the work with now. It reports false,
// leaving the work untouched, when no such document exists.
func (w *Work) UpdateDocument(kind DocumentKind, text string, now time.Time) bool {
	doc := w.Document(kind)
	if doc == nil {
		return false
	}
	doc.Text = text
	doc.UpdatedAt = now
	if n := w.Node(doc.NodeID); n != nil {
		n.UpdatedAt = now
	}
	if now.After(w.UpdatedAt) {
		w.UpdatedAt = now
	}
	return true
}

// UpdateDocumentByFileName is UpdateDocument keyed by file name.
func (w *Work) UpdateDocumentByFileName(fileName, text string, now time.Time) bool {
	kind, ok := ParseDocumentKind(fileName)
	if !ok {
		return false
	}
	return w.UpdateDocument(kind, text, now)
}

// Clone returns a deep copy of w.
func (w *Work) Clone() *Work {
	c := *w
	c.Nodes = append([]Node(nil), w.Nodes...)
	c.Documents = append([]Document(nil), w.Documents...)
	c.Snapshots = append([]Snapshot(nil), w.Snapshots...)
	return &c
}

// FindWork returns the work with the given ID. An empty ID never matches,
// so callers without a work identity cannot fall through to another work.
func FindWork(works []*Work, id string) *Work {
	if id == "" {
		return nil
	}
	for _, w := range works {
		if w != nil && w.ID == id {
			return w
		}
	}
	return nil
}

// FindWorkDocument resolves a work by ID and then a document by file name.
func FindWorkDocument(works []*Work, workID, fileName string) *Document {
	w := FindWork(works, workID)
	if w == nil {
		return nil
	}
	return w.DocumentByFileName(fileName)
}

// UpdateWorkDocument updates fileName in the work identified by workID.
// It reports false and mutates nothing when the work or file is unknown.
func UpdateWorkDocument(works []*Work, workID, fileName, text string, now time.Time) bool {
	w := FindWork(works, workID)
	if w == nil {
		return false
	}
	return w.UpdateDocumentByFileName(fileName, text, now)
}
