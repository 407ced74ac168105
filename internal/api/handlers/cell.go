package handlers

import (
	"net/http"

	"github.com/achworks/achd/internal/api/middleware"
	"github.com/achworks/achd/internal/domain"
	"github.com/achworks/achd/internal/service"
)

type CellHandler struct {
	svc *service.WorkspaceService
}

func NewCellHandler(svc *service.WorkspaceService) *CellHandler {
	return &CellHandler{svc: svc}
}

type rateRequest struct {
	Consistency string `json:"consistency"`
}

func (h *CellHandler) Rate(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.AgentIDFromContext(r.Context())

	var req rateRequest
	if err := decodeBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if req.Consistency == "" {
		writeError(w, http.StatusBadRequest, "consistency is required")
		return
	}

	level, err := domain.ParseConsistency(req.Consistency)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.svc.Rate(r.Context(), agentID, sessionID(r), hypothesisID(r), evidenceID(r), level)
	if err != nil {
		writeServiceError(w, err, "failed to rate cell")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
