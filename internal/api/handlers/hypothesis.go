package handlers

import (
	"net/http"

	"github.com/achworks/achd/internal/api/middleware"
	"github.com/achworks/achd/internal/domain"
	"github.com/achworks/achd/internal/service"
	"github.com/go-chi/chi/v5"
)

type HypothesisHandler struct {
	svc *service.WorkspaceService
}

func NewHypothesisHandler(svc *service.WorkspaceService) *HypothesisHandler {
	return &HypothesisHandler{svc: svc}
}

type hypothesisRequest struct {
	Content string `json:"content"`
}

type addHypothesisResponse struct {
	ID      domain.HypothesisID  `json:"id"`
	Session *service.SessionView `json:"session"`
}

func hypothesisID(r *http.Request) domain.HypothesisID {
	return domain.HypothesisID(chi.URLParam(r, "hid"))
}

func (h *HypothesisHandler) Add(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())

	var req hypothesisRequest
	if err := decodeBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	id, view, err := h.svc.AddHypothesis(r.Context(), agentID, sessionID(r), req.Content)
	if err != nil {
		writeServiceError(w, err, "failed to add hypothesis")
		return
	}
	writeJSON(w, http.StatusCreated, addHypothesisResponse{ID: id, Session: view})
}

func (h *HypothesisHandler) Rename(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())

	var req hypothesisRequest
	if err := decodeBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	view, err := h.svc.RenameHypothesis(r.Context(), agentID, sessionID(r), hypothesisID(r), req.Content)
	if err != nil {
		writeServiceError(w, err, "failed to rename hypothesis")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *HypothesisHandler) Remove(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())

	view, err := h.svc.RemoveHypothesis(r.Context(), agentID, sessionID(r), hypothesisID(r))
	if err != nil {
		writeServiceError(w, err, "failed to remove hypothesis")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *HypothesisHandler) Score(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())
	hid := hypothesisID(r)

	score, err := h.svc.Score(agentID, sessionID(r), hid)
	if err != nil {
		writeServiceError(w, err, "failed to score hypothesis")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hypothesis": hid, "score": score})
}
