package handlers

import (
	"net/http"

	"github.com/achworks/achd/internal/api/middleware"
	"github.com/achworks/achd/internal/domain"
	"github.com/achworks/achd/internal/service"
	"github.com/go-chi/chi/v5"
)

type EvidenceHandler struct {
	svc *service.WorkspaceService
}

func NewEvidenceHandler(svc *service.WorkspaceService) *EvidenceHandler {
	return &EvidenceHandler{svc: svc}
}

// Weights decode from either a level string ("high") or a number.
type evidenceRequest struct {
	Content     *string        `json:"content"`
	Credibility *domain.Weight `json:"credibility"`
	Relevance   *domain.Weight `json:"relevance"`
}

type addEvidenceResponse struct {
	ID      domain.EvidenceID    `json:"id"`
	Session *service.SessionView `json:"session"`
}

func evidenceID(r *http.Request) domain.EvidenceID {
	return domain.EvidenceID(chi.URLParam(r, "eid"))
}

func (h *EvidenceHandler) Add(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())

	var req evidenceRequest
	if err := decodeBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	in := service.EvidenceInput{Credibility: req.Credibility, Relevance: req.Relevance}
	if req.Content != nil {
		in.Content = *req.Content
	}

	id, view, err := h.svc.AddEvidence(r.Context(), agentID, sessionID(r), in)
	if err != nil {
		writeServiceError(w, err, "failed to add evidence")
		return
	}
	writeJSON(w, http.StatusCreated, addEvidenceResponse{ID: id, Session: view})
}

// Update renames the evidence and/or sets its weights in one atomic step.
func (h *EvidenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())

	var req evidenceRequest
	if err := decodeBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	view, err := h.svc.UpdateEvidence(r.Context(), agentID, sessionID(r), evidenceID(r), service.EvidenceUpdate{
		Content:     req.Content,
		Credibility: req.Credibility,
		Relevance:   req.Relevance,
	})
	if err != nil {
		writeServiceError(w, err, "failed to update evidence")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *EvidenceHandler) Remove(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())

	view, err := h.svc.RemoveEvidence(r.Context(), agentID, sessionID(r), evidenceID(r))
	if err != nil {
		writeServiceError(w, err, "failed to remove evidence")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
