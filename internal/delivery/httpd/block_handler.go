package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quangtus/HeThongChamThi-sub000/internal/models"
)

func (h *Handler) PendingBlocks(w http.ResponseWriter, r *http.Request) {
	filter := models.PendingBlocksFilter{
		SubjectID: r.URL.Query().Get("subject_id"),
		ExamID:    r.URL.Query().Get("exam_id"),
	}
	limit := getIntQueryParam(r, "limit", 20)

	ctx := r.Context()
	blocks, err := h.gradingService.PendingBlocks(ctx, filter, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := map[string]interface{}{
		"blocks": blocks,
		"total":  len(blocks),
	}

	writeSuccess(w, response)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	blockCode := chi.URLParam(r, "code")
	if blockCode == "" {
		writeError(w, http.StatusBadRequest, "Block code is required")
		return
	}

	maxDifference := getFloatQueryParam(r, "max_difference", 0)

	ctx := r.Context()
	resolution, err := h.gradingService.Resolve(ctx, blockCode, maxDifference)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, resolution)
}
