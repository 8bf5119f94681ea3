// Package manifest builds and serializes snapshot manifests: the versioned,
// sorted list of file texts captured by a snapshot.
package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/starford/quire/internal/models"
)

// Version is the manifest format produced by Build.
const Version = 1

var (
	ErrEmptySelection      = errors.New("manifest: no files selected")
	ErrUnresolvedFileNames = errors.New("manifest: unresolved file names")
)

// UnresolvedError lists every selected name that did not resolve to a document.
type UnresolvedError struct {
	FileNames []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("manifest: unresolved file names: %s", strings.Join(e.FileNames, ", "))
}

// Is allows errors.Is to match ErrUnresolvedFileNames.
func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolvedFileNames
}

// File is one captured file.
type File struct {
	FileName string `json:"fileName"`
	Text     string `json:"text"`
}

// Manifest is the payload of a snapshot.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	Files     []File    `json:"files"`
}

// Build captures the current text of every selected file of w. Names are
// deduplicated and processed in sorted order. If any name does not resolve
// the result is an *UnresolvedError naming all of them and no manifest.
func Build(w *models.Work, fileNames []string, createdAt time.Time) (Manifest, error) {
	if len(fileNames) == 0 {
		return Manifest{}, ErrEmptySelection
	}

	names := append([]string(nil), fileNames...)
	sort.Strings(names)

	files := make([]File, 0, len(names))
	var unresolved []string
	for i, name := range names {
		if i > 0 && names[i-1] == name {
			continue
		}
		doc := w.DocumentByFileName(name)
		if doc == nil {
			unresolved = append(unresolved, name)
			continue
		}
		files = append(files, File{FileName: name, Text: doc.Text})
	}
	if len(unresolved) > 0 {
		return Manifest{}, &UnresolvedError{FileNames: unresolved}
	}

	return Manifest{
		Version:   Version,
		CreatedAt: createdAt,
		Files:     files,
	}, nil
}

// Texts maps each captured file name to its text.
func (m Manifest) Texts() map[string]string {
	out := make(map[string]string, len(m.Files))
	for _, f := range m.Files {
		out[f.FileName] = f.Text
	}
	return out
}

// Equal reports whether m and o describe the same manifest. Timestamps are
// compared as instants.
func (m Manifest) Equal(o Manifest) bool {
	if m.Version != o.Version || !m.CreatedAt.Equal(o.CreatedAt) || len(m.Files) != len(o.Files) {
		return false
	}
	for i := range m.Files {
		if m.Files[i] != o.Files[i] {
			return false
		}
	}
	return true
}
