package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/changes"
)

// Changes handles GET /api/works/{workID}/changes.
//
//	@Summary		Summarize every file of a work against its last snapshot
//	@Tags			review
//	@Produce		json
//	@Param			workID	path		string	true	"Work ID"
//	@Param			display	query		string	false	"Label for the placeholder of a work without documents"
//	@Success		200		{object}	ChangesResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/works/{workID}/changes [get]
func (h *Handler) Changes(w http.ResponseWriter, r *http.Request) {
	id := workID(r)
	files, err := h.works.Changes(r.Context(), id, r.URL.Query().Get("display"))
	if err != nil {
		writeServiceError(w, "changes", err, slog.String("work_id", id))
		return
	}
	writeJSON(w, http.StatusOK, ChangesResponse{Files: files})
}

// FileChanges handles GET /api/works/{workID}/changes/{fileName}.
//
//	@Summary		Diff one file against its last snapshot
//	@Tags			review
//	@Produce		json
//	@Param			workID		path		string	true	"Work ID"
//	@Param			fileName	path		string	true	"File name"
//	@Success		200			{object}	FileChanges
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/works/{workID}/changes/{fileName} [get]
func (h *Handler) FileChanges(w http.ResponseWriter, r *http.Request) {
	id, name := workID(r), fileName(r)
	f, err := h.works.FileChanges(r.Context(), id, name)
	if err != nil {
		writeServiceError(w, "file changes", err, slog.String("work_id", id), slog.String("file", name))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Review handles POST /api/works/{workID}/review.
//
//	@Summary		Stage changed files for the next snapshot
//	@Description	Opens a selection over the changed files, seeds it and applies the actions in order.
//	@Tags			review
//	@Accept			json
//	@Produce		json
//	@Param			workID	path		string			true	"Work ID"
//	@Param			body	body		ReviewRequest	false	"Seed selection and actions"
//	@Success		200		{object}	ReviewResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/works/{workID}/review [post]
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id := workID(r)

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	sel, err := h.works.Review(r.Context(), id, req.Selected)
	if err != nil {
		writeServiceError(w, "review", err, slog.String("work_id", id))
		return
	}
	for _, a := range req.Actions {
		sel, err = applyReviewAction(sel, a)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
	}
	writeJSON(w, http.StatusOK, newReviewResponse(sel))
}

func applyReviewAction(s changes.Selection, a ReviewAction) (changes.Selection, error) {
	switch a.Op {
	case "select_all":
		return s.SelectAll(), nil
	case "clear_all":
		return s.ClearAll(), nil
	case "toggle":
		return s.Toggle(a.FileName), nil
	case "open_diff":
		return s.OpenDiff(a.FileName), nil
	case "close_diff":
		return s.CloseDiff(), nil
	default:
		return s, fmt.Errorf("unknown review op %q", a.Op)
	}
}

// CreateSnapshot handles POST /api/works/{workID}/snapshots.
//
//	@Summary		Save the selected files as a manual snapshot
//	@Tags			snapshots
//	@Accept			json
//	@Produce		json
//	@Param			workID	path		string					true	"Work ID"
//	@Param			body	body		CreateSnapshotRequest	true	"Snapshot to create"
//	@Success		201		{object}	SnapshotDetailResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	unresolvedResponse
//	@Security		BearerAuth
//	@Router			/works/{workID}/snapshots [post]
func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id := workID(r)

	var req CreateSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	detail, err := h.works.CreateSnapshot(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, "create snapshot", err, slog.String("work_id", id))
		return
	}
	writeJSON(w, http.StatusCreated, newSnapshotDetail(detail))
}

// ListSnapshots handles GET /api/works/{workID}/snapshots.
//
//	@Summary		List the snapshots of a work, newest first
//	@Tags			snapshots
//	@Produce		json
//	@Param			workID	path		string	true	"Work ID"
//	@Success		200		{object}	SnapshotListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/works/{workID}/snapshots [get]
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	id := workID(r)
	snaps, err := h.works.ListSnapshots(r.Context(), id)
	if err != nil {
		writeServiceError(w, "list snapshots", err, slog.String("work_id", id))
		return
	}
	out := SnapshotListResponse{Snapshots: make([]SnapshotDTO, 0, len(snaps))}
	for _, s := range snaps {
		out.Snapshots = append(out.Snapshots, newSnapshotDTO(s))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSnapshot handles GET /api/works/{workID}/snapshots/{snapshotID}.
//
//	@Summary		Get a snapshot with its captured files
//	@Tags			snapshots
//	@Produce		json
//	@Param			workID		path		string	true	"Work ID"
//	@Param			snapshotID	path		string	true	"Snapshot ID"
//	@Success		200			{object}	SnapshotDetailResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/works/{workID}/snapshots/{snapshotID} [get]
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, snapID := workID(r), chi.URLParam(r, "snapshotID")
	detail, err := h.works.GetSnapshot(r.Context(), id, snapID)
	if err != nil {
		writeServiceError(w, "get snapshot", err, slog.String("work_id", id), slog.String("snapshot_id", snapID))
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotDetail(detail))
}
