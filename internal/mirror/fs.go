// Package mirror keeps a plain Markdown copy of every work on disk, laid out
// as <root>/<workID>/<kind>.md, and feeds external edits of those files back
// into the works.
package mirror

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/models"
)

// FileMeta describes one mirrored document file.
type FileMeta struct {
	WorkID   string
	FileName string
	Checksum string
}

// Mirror is the on-disk Markdown copy rooted at a directory.
type Mirror struct {
	root string // absolute path to the mirror directory
}

// New creates a Mirror rooted at root, creating the directory if needed.
func New(root string) (*Mirror, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("mirror: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("mirror: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("mirror: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mirror: root is not a directory: %s", abs)
	}
	return &Mirror{root: abs}, nil
}

// Root returns the absolute mirror directory.
func (m *Mirror) Root() string { return m.root }

// safePath resolves a relative path against the mirror root and rejects
// any result that escapes it.
func (m *Mirror) safePath(rel string) (string, error) {
	if rel == "" {
		return m.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("mirror: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(m.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("mirror: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, m.root+string(os.PathSeparator)) && abs != m.root {
		return "", fmt.Errorf("mirror: path escapes root: %s", rel)
	}
	return abs, nil
}

func filePath(workID, fileName string) string {
	return filepath.Join(workID, fileName)
}

// ErrInvalidUTF8 is returned by Read for files that are not UTF-8 text.
var ErrInvalidUTF8 = errors.New("not valid UTF-8")

// Read returns the text of a mirrored document.
func (m *Mirror) Read(workID, fileName string) (string, error) {
	abs, err := m.safePath(filePath(workID, fileName))
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("mirror: read %s/%s: %w", workID, fileName, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("mirror: read %s/%s: %w", workID, fileName, ErrInvalidUTF8)
	}
	return string(data), nil
}

// Write atomically writes a document: tmp file, fsync, rename.
func (m *Mirror) Write(workID, fileName, text string) error {
	abs, err := m.safePath(filePath(workID, fileName))
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mirror: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".quire-tmp-*")
	if err != nil {
		return fmt.Errorf("mirror: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(text); err != nil {
		return fmt.Errorf("mirror: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("mirror: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("mirror: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("mirror: rename: %w", err)
	}
	success = true
	return nil
}

// RemoveWork deletes the mirror directory of a work. A missing directory is not an error.
func (m *Mirror) RemoveWork(workID string) error {
	if workID == "" {
		return errors.New("mirror: empty work id")
	}
	abs, err := m.safePath(workID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("mirror: remove %s: %w", workID, err)
	}
	return nil
}

// List returns metadata for every document file in the mirror. Files whose
// name is not a document kind are skipped.
func (m *Mirror) List() ([]FileMeta, error) {
	var out []FileMeta
	err := filepath.WalkDir(m.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		workID, fileName, ok := m.split(p)
		if !ok {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out = append(out, FileMeta{WorkID: workID, FileName: fileName, Checksum: checksum.Sum(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mirror: list: %w", err)
	}
	return out, nil
}

// WorkIDs returns the names of the work directories in the mirror.
func (m *Mirror) WorkIDs() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return nil, fmt.Errorf("mirror: read root: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// split maps an absolute path to its work id and canonical file name. Only
// document files directly inside a work directory qualify.
func (m *Mirror) split(abs string) (workID, fileName string, ok bool) {
	rel, err := filepath.Rel(m.root, abs)
	if err != nil {
		return "", "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 || parts[0] == "" || strings.HasPrefix(parts[0], ".") {
		return "", "", false
	}
	kind, ok := models.ParseDocumentKind(parts[1])
	if !ok || !strings.HasSuffix(strings.ToLower(parts[1]), ".md") {
		return "", "", false
	}
	return parts[0], kind.FileName(), true
}
