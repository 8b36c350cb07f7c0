package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
)

func (h *Handler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	var req models.AutoAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.BlockCodes) == 0 {
		writeError(w, http.StatusBadRequest, "block_codes is required")
		return
	}
	if req.RequestedBy == "" {
		writeError(w, http.StatusBadRequest, "requested_by is required")
		return
	}

	ctx := r.Context()
	resp, err := h.gradingService.AutoAssign(ctx, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, resp)
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.BlockCode == "" {
		writeError(w, http.StatusBadRequest, "block_code is required")
		return
	}
	if req.ExaminerID == "" {
		writeError(w, http.StatusBadRequest, "examiner_id is required")
		return
	}
	if req.RoundNumber <= 0 {
		writeError(w, http.StatusBadRequest, "round_number must be positive")
		return
	}

	ctx := r.Context()
	assignment, err := h.schedulerService.CreateAssignment(ctx, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, assignment)
}

func (h *Handler) UpdateAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if assignmentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID is required")
		return
	}

	var req models.UpdateAssignmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !models.IsValidAssignmentStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	ctx := r.Context()
	assignment, err := h.schedulerService.UpdateStatus(ctx, assignmentID, req.Status)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, assignment)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if assignmentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID is required")
		return
	}

	ctx := r.Context()
	if err := h.schedulerService.DeleteAssignment(ctx, assignmentID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Assignment deleted successfully",
	})
}

func (h *Handler) AssignmentStats(w http.ResponseWriter, r *http.Request) {
	examinerID := r.URL.Query().Get("examiner_id")

	ctx := r.Context()
	stats, err := h.gradingService.AssignmentStats(ctx, examinerID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, stats)
}
