package models

import (
	"fmt"
	"strings"
)

// NodeKind distinguishes file entries from folders in a work's tree.
type NodeKind string

const (
	NodeFile   NodeKind = "file"
	NodeFolder NodeKind = "folder"
)

// ParseNodeKind maps a stored raw value to a NodeKind. Unknown values fall back to NodeFile.
func ParseNodeKind(raw string) NodeKind {
	switch NodeKind(raw) {
	case NodeFile:
		return NodeFile
	case NodeFolder:
		return NodeFolder
	default:
		return NodeFile
	}
}

// DocumentKind is the fixed set of document roles a work can carry.
type DocumentKind string

const (
	DocContent    DocumentKind = "content"
	DocOutline    DocumentKind = "outline"
	DocPlot       DocumentKind = "plot"
	DocCharacters DocumentKind = "characters"
	DocInfo       DocumentKind = "info"
)

const fileExt = ".md"

// DocumentKinds returns every kind in template order.
func DocumentKinds() []DocumentKind {
	return []DocumentKind{DocContent, DocOutline, DocPlot, DocCharacters, DocInfo}
}

// FileName returns the canonical file name, e.g. "content.md".
func (k DocumentKind) FileName() string {
	return string(k) + fileExt
}

// ParseDocumentKind maps a file name back to its kind. Matching is
// case-insensitive, ignores surrounding whitespace and accepts the name with
// or without the ".md" suffix.
func ParseDocumentKind(fileName string) (DocumentKind, bool) {
	name := strings.ToLower(strings.TrimSpace(fileName))
	name = strings.TrimSuffix(name, fileExt)
	switch DocumentKind(name) {
	case DocContent:
		return DocContent, true
	case DocOutline:
		return DocOutline, true
	case DocPlot:
		return DocPlot, true
	case DocCharacters:
		return DocCharacters, true
	case DocInfo:
		return DocInfo, true
	default:
		return "", false
	}
}

// ParseStoredDocumentKind decodes a kind column value. Unknown values fall back to DocContent.
func ParseStoredDocumentKind(raw string) DocumentKind {
	switch k := DocumentKind(raw); k {
	case DocContent, DocOutline, DocPlot, DocCharacters, DocInfo:
		return k
	default:
		return DocContent
	}
}

// SnapshotKind records why a snapshot was taken.
type SnapshotKind string

const (
	SnapshotManual   SnapshotKind = "manual"
	SnapshotConflict SnapshotKind = "conflict"
)

// ParseSnapshotKind maps a stored raw value to a SnapshotKind. Unknown values fall back to SnapshotManual.
func ParseSnapshotKind(raw string) SnapshotKind {
	switch SnapshotKind(raw) {
	case SnapshotManual:
		return SnapshotManual
	case SnapshotConflict:
		return SnapshotConflict
	default:
		return SnapshotManual
	}
}

// WorkTemplate selects the initial node layout of a new work.
type WorkTemplate string

const (
	TemplateStandard WorkTemplate = "standard"
	TemplateMinimal  WorkTemplate = "minimal"
)

// ParseWorkTemplate validates a template name. The empty string selects TemplateStandard.
func ParseWorkTemplate(raw string) (WorkTemplate, error) {
	switch WorkTemplate(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TemplateStandard:
		return TemplateStandard, nil
	case TemplateMinimal:
		return TemplateMinimal, nil
	default:
		return "", fmt.Errorf("unknown work template %q", raw)
	}
}
