package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starford/quire/internal/session"
)

// SessionView is the session response type (aliased from the domain layer).
type SessionView = session.View

// SyncStatus is the sync-check response type (aliased from the domain layer).
type SyncStatus = session.SyncStatus

// GetSession handles GET /api/session.
//
//	@Summary		Get the session, its verification and the sync status
//	@Tags			session
//	@Produce		json
//	@Param			wait	query		bool	false	"Block until the pending verification finishes"
//	@Success		200		{object}	SessionView
//	@Security		BearerAuth
//	@Router			/session [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("wait") == "true" {
		if err := h.sessions.Wait(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody("verification still pending"))
			return
		}
	}
	writeJSON(w, http.StatusOK, h.sessions.View())
}

// SignIn handles POST /api/session/sign-in.
//
//	@Summary		Record a sign-in
//	@Description	A blank user id records a failed sign-in and sets the session error.
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SignInRequest	true	"Identity"
//	@Success		200		{object}	SessionView
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session/sign-in [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if _, err := h.sessions.SignIn(r.Context(), req.UserID); err != nil {
		writeServiceError(w, "sign in", err, slog.String("user_id", req.UserID))
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.View())
}

// SignOut handles POST /api/session/sign-out.
//
//	@Summary		Forget the stored identity
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SessionView
//	@Security		BearerAuth
//	@Router			/session/sign-out [post]
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.SignOut(r.Context()); err != nil {
		writeServiceError(w, "sign out", err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.View())
}

// SyncCheck handles POST /api/session/sync-check.
//
//	@Summary		Re-check the sync account status
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SyncStatus
//	@Security		BearerAuth
//	@Router			/session/sync-check [post]
func (h *Handler) SyncCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.CheckSync(r.Context()))
}
