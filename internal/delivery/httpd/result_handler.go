package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
)

func (h *Handler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.AssignmentID == "" {
		writeError(w, http.StatusBadRequest, "assignment_id is required")
		return
	}
	if req.ExaminerID == "" {
		writeError(w, http.StatusBadRequest, "examiner_id is required")
		return
	}

	ctx := r.Context()
	result, err := h.gradingService.SubmitResult(ctx, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, result)
}

func (h *Handler) UpdateResult(w http.ResponseWriter, r *http.Request) {
	resultID := chi.URLParam(r, "id")
	if resultID == "" {
		writeError(w, http.StatusBadRequest, "Result ID is required")
		return
	}

	var req models.UpdateResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Score == nil && req.Comments == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	ctx := r.Context()
	result, err := h.resultService.Update(ctx, resultID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, result)
}

func (h *Handler) FinalizeResult(w http.ResponseWriter, r *http.Request) {
	resultID := chi.URLParam(r, "id")
	if resultID == "" {
		writeError(w, http.StatusBadRequest, "Result ID is required")
		return
	}

	ctx := r.Context()
	result, err := h.resultService.Finalize(ctx, resultID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, result)
}
