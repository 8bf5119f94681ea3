package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/session"
	"github.com/starford/quire/internal/workservice"
)

// Handler holds API route handlers.
type Handler struct {
	works    *workservice.Service
	sessions *session.Service
}

// NewHandler creates a new Handler. sessions may be nil, in which case the
// session routes are not mounted.
func NewHandler(works *workservice.Service, sessions *session.Service) *Handler {
	return &Handler{works: works, sessions: sessions}
}

func workID(r *http.Request) string {
	return chi.URLParam(r, "workID")
}

func fileName(r *http.Request) string {
	return strings.ToLower(chi.URLParam(r, "fileName"))
}

// ListWorks handles GET /api/works.
//
//	@Summary		List works, most recently updated first
//	@Tags			works
//	@Produce		json
//	@Success		200		{object}	WorkListResponse
//	@Security		BearerAuth
//	@Router			/works [get]
func (h *Handler) ListWorks(w http.ResponseWriter, r *http.Request) {
	items, err := h.works.ListWorks(r.Context())
	if err != nil {
		writeServiceError(w, "list works", err)
		return
	}
	if items == nil {
		items = []WorkListItem{}
	}
	writeJSON(w, http.StatusOK, WorkListResponse{Works: items, Total: len(items)})
}

// CreateWork handles POST /api/works.
//
//	@Summary		Create a work from a template
//	@Tags			works
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateWorkRequest	false	"Work to create"
//	@Success		201		{object}	WorkDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/works [post]
func (h *Handler) CreateWork(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateWorkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	template, err := models.ParseWorkTemplate(req.Template)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	work, err := h.works.CreateWork(r.Context(), req.Title, template)
	if err != nil {
		writeServiceError(w, "create work", err, slog.String("title", req.Title))
		return
	}
	writeJSON(w, http.StatusCreated, newWorkDetail(work))
}

// GetWork handles GET /api/works/{workID}.
//
//	@Summary		Get a work with its tree and snapshots
//	@Tags			works
//	@Produce		json
//	@Param			workID	path		string	true	"Work ID"
//	@Success		200		{object}	WorkDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/works/{workID} [get]
func (h *Handler) GetWork(w http.ResponseWriter, r *http.Request) {
	id := workID(r)
	work, err := h.works.GetWork(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get work", err, slog.String("work_id", id))
		return
	}
	writeJSON(w, http.StatusOK, newWorkDetail(work))
}

// DeleteWork handles DELETE /api/works/{workID}.
//
//	@Summary		Delete a work with its documents and snapshots
//	@Tags			works
//	@Param			workID	path	string	true	"Work ID"
//	@Success		204		"Work deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/works/{workID} [delete]
func (h *Handler) DeleteWork(w http.ResponseWriter, r *http.Request) {
	id := workID(r)
	if err := h.works.DeleteWork(r.Context(), id); err != nil {
		writeServiceError(w, "delete work", err, slog.String("work_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFile handles GET /api/works/{workID}/files/{fileName}.
//
//	@Summary		Read one document file
//	@Tags			files
//	@Produce		json
//	@Param			workID		path		string	true	"Work ID"
//	@Param			fileName	path		string	true	"File name"	Enums(content.md, outline.md, plot.md, characters.md, info.md)
//	@Success		200			{object}	FileDetail
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/works/{workID}/files/{fileName} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, name := workID(r), fileName(r)
	file, err := h.works.ReadFile(r.Context(), id, name)
	if err != nil {
		writeServiceError(w, "read file", err, slog.String("work_id", id), slog.String("file", name))
		return
	}
	w.Header().Set("ETag", `"`+file.Checksum+`"`)
	writeJSON(w, http.StatusOK, file)
}

// UpdateFile handles PUT /api/works/{workID}/files/{fileName}.
//
//	@Summary		Replace a file's text with optimistic concurrency
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			workID		path		string				true	"Work ID"
//	@Param			fileName	path		string				true	"File name"
//	@Param			If-Match	header		string				false	"SHA-256 checksum of the text being replaced"
//	@Param			body		body		UpdateFileRequest	true	"New text"
//	@Success		200			{object}	FileDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/works/{workID}/files/{fileName} [put]
func (h *Handler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id, name := workID(r), fileName(r)

	var req UpdateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Text == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	file, err := h.works.WriteFile(r.Context(), id, name, *req.Text, ifMatch)
	if err != nil {
		writeServiceError(w, "update file", err, slog.String("work_id", id), slog.String("file", name))
		return
	}
	w.Header().Set("ETag", `"`+file.Checksum+`"`)
	writeJSON(w, http.StatusOK, file)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across the documents of all works
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.works.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", q))
		return
	}
	if results == nil {
		results = []SearchHit{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
