package handlers

import (
	"net/http"

	"github.com/achworks/achd/internal/api/middleware"
	"github.com/achworks/achd/internal/domain"
	"github.com/achworks/achd/internal/service"
	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	svc *service.WorkspaceService
}

func NewSessionHandler(svc *service.WorkspaceService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func sessionID(r *http.Request) domain.SessionID {
	return domain.SessionID(chi.URLParam(r, "sid"))
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.svc.ListSessions(agentID))
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())

	view, err := h.svc.CreateSession(r.Context(), agentID)
	if err != nil {
		writeServiceError(w, err, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// DiscardAll drops every session in the workspace and forgets the caller's
// agent cookie.
func (h *SessionHandler) DiscardAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DiscardAll(r.Context()); err != nil {
		writeServiceError(w, err, "failed to discard sessions")
		return
	}
	middleware.ClearAgentCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())

	view, err := h.svc.State(agentID, sessionID(r))
	if err != nil {
		writeServiceError(w, err, "failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SessionHandler) Switch(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())
	sid := sessionID(r)

	if err := h.svc.SwitchSession(r.Context(), agentID, sid); err != nil {
		writeServiceError(w, err, "failed to switch session")
		return
	}
	view, err := h.svc.State(agentID, sid)
	if err != nil {
		writeServiceError(w, err, "failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SessionHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())

	view, err := h.svc.DuplicateSession(r.Context(), agentID, sessionID(r))
	if err != nil {
		writeServiceError(w, err, "failed to duplicate session")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *SessionHandler) Scores(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())

	scores, err := h.svc.Scores(agentID, sessionID(r))
	if err != nil {
		writeServiceError(w, err, "failed to score session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": scores})
}
