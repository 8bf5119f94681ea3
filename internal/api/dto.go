package api

import (
	"time"

	"github.com/starford/quire/internal/changes"
	"github.com/starford/quire/internal/manifest"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/store"
	"github.com/starford/quire/internal/workservice"
)

// CreateWorkRequest is the request body for creating a work.
type CreateWorkRequest struct {
	Title    string `json:"title" example:"The Long Winter"`
	Template string `json:"template" example:"standard" enums:"standard,minimal"`
}

// UpdateFileRequest is the request body for replacing a file's text.
type UpdateFileRequest struct {
	Text *string `json:"text" example:"# Chapter 1\nIt was cold." validate:"required"`
}

// WorkListItem is a lightweight item in a list response (aliased from the domain layer).
type WorkListItem = workservice.WorkSummary

// WorkListResponse wraps work listings.
type WorkListResponse struct {
	Works []WorkListItem `json:"works" validate:"required"`
	Total int            `json:"total" example:"3" validate:"required"`
}

// FileDetail is the full file response type (aliased from the domain layer).
type FileDetail = workservice.FileDetail

// NodeDTO is one entry of a work's tree.
type NodeDTO struct {
	ID       string          `json:"id" validate:"required"`
	ParentID string          `json:"parent_id,omitempty"`
	Name     string          `json:"name" example:"plot.md" validate:"required"`
	Kind     models.NodeKind `json:"kind" example:"file" validate:"required"`
	FileName string          `json:"file_name,omitempty" example:"plot.md"`
}

// WorkDetail is a work with its tree and snapshot headers.
type WorkDetail struct {
	ID        string        `json:"id" validate:"required"`
	Title     string        `json:"title" example:"The Long Winter" validate:"required"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Nodes     []NodeDTO     `json:"nodes" validate:"required"`
	Files     []string      `json:"files" validate:"required"`
	Snapshots []SnapshotDTO `json:"snapshots" validate:"required"`
}

func newWorkDetail(w *models.Work) WorkDetail {
	out := WorkDetail{
		ID:        w.ID,
		Title:     w.Title,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
		Nodes:     make([]NodeDTO, 0, len(w.Nodes)),
		Files:     make([]string, 0, len(w.Documents)),
		Snapshots: make([]SnapshotDTO, 0, len(w.Snapshots)),
	}
	for i := range w.Nodes {
		n := &w.Nodes[i]
		dto := NodeDTO{ID: n.ID, ParentID: n.ParentID, Name: n.Name, Kind: n.Kind}
		if d := w.NodeDocument(n); d != nil {
			dto.FileName = d.FileName()
		}
		out.Nodes = append(out.Nodes, dto)
	}
	for _, d := range w.FileDocuments() {
		out.Files = append(out.Files, d.FileName())
	}
	for _, s := range w.Snapshots {
		out.Snapshots = append(out.Snapshots, newSnapshotDTO(s))
	}
	return out
}

// FileChanges is the change summary of one file (aliased from the domain layer).
type FileChanges = changes.FileSummary

// ChangesResponse wraps the per-file summaries of a work.
type ChangesResponse struct {
	Files []FileChanges `json:"files" validate:"required"`
}

// ReviewAction is one transition applied to a review selection.
type ReviewAction struct {
	Op       string `json:"op" example:"toggle" enums:"select_all,clear_all,toggle,open_diff,close_diff" validate:"required"`
	FileName string `json:"file_name,omitempty" example:"plot.md"`
}

// ReviewRequest seeds a selection and applies actions in order. A missing
// selected list selects every changed file.
type ReviewRequest struct {
	Selected []string       `json:"selected"`
	Actions  []ReviewAction `json:"actions"`
}

// ReviewResponse is the state of a review selection.
type ReviewResponse struct {
	Files    []FileChanges `json:"files" validate:"required"`
	Selected []string      `json:"selected" validate:"required"`
	CanSave  bool          `json:"can_save"`
	Diff     *FileChanges  `json:"diff,omitempty"`
}

func newReviewResponse(s changes.Selection) ReviewResponse {
	out := ReviewResponse{
		Files:    s.Files(),
		Selected: s.Selected(),
		CanSave:  s.CanSave(),
	}
	if out.Files == nil {
		out.Files = []FileChanges{}
	}
	if out.Selected == nil {
		out.Selected = []string{}
	}
	if f, ok := s.DiffFile(); ok {
		out.Diff = &f
	}
	return out
}

// CreateSnapshotRequest is the request body for staging a snapshot (aliased from the domain layer).
type CreateSnapshotRequest = workservice.SnapshotRequest

// SnapshotDTO is a snapshot header without its payload.
type SnapshotDTO struct {
	ID         string              `json:"id" validate:"required"`
	WorkID     string              `json:"work_id" validate:"required"`
	Title      string              `json:"title" example:"First draft" validate:"required"`
	Memo       string              `json:"memo" example:"before rewriting act two"`
	CreatedAt  time.Time           `json:"created_at"`
	DeviceName string              `json:"device_name" example:"desk"`
	Kind       models.SnapshotKind `json:"kind" example:"manual"`
}

func newSnapshotDTO(s models.Snapshot) SnapshotDTO {
	return SnapshotDTO{
		ID:         s.ID,
		WorkID:     s.WorkID,
		Title:      s.Title,
		Memo:       s.Memo,
		CreatedAt:  s.CreatedAt,
		DeviceName: s.DeviceName,
		Kind:       s.Kind,
	}
}

// SnapshotListResponse wraps snapshot listings.
type SnapshotListResponse struct {
	Snapshots []SnapshotDTO `json:"snapshots" validate:"required"`
}

// ManifestDTO is a decoded snapshot manifest.
type ManifestDTO struct {
	Version   int             `json:"version" example:"1"`
	CreatedAt time.Time       `json:"created_at"`
	Files     []manifest.File `json:"files" validate:"required"`
}

// SnapshotDetailResponse is a snapshot with its captured files.
type SnapshotDetailResponse struct {
	Snapshot SnapshotDTO `json:"snapshot" validate:"required"`
	Manifest ManifestDTO `json:"manifest" validate:"required"`
}

func newSnapshotDetail(d *workservice.SnapshotDetail) SnapshotDetailResponse {
	files := d.Manifest.Files
	if files == nil {
		files = []manifest.File{}
	}
	return SnapshotDetailResponse{
		Snapshot: newSnapshotDTO(d.Snapshot),
		Manifest: ManifestDTO{Version: d.Manifest.Version, CreatedAt: d.Manifest.CreatedAt, Files: files},
	}
}

// SearchHit is a single search hit in the API response (aliased from the storage layer).
type SearchHit = store.SearchHit

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchHit `json:"results" validate:"required"`
}

// SignInRequest is the request body for signing in.
type SignInRequest struct {
	UserID string `json:"user_id" example:"alice"`
}
