package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quangtus/HeThongChamThi-sub000/internal/repository"
	"github.com/quangtus/HeThongChamThi-sub000/internal/service"
)

type Handler struct {
	gradingService   service.GradingService
	schedulerService service.SchedulerService
	resultService    service.ResultService
	logger           zerolog.Logger
}

func NewHandler(
	gradingService service.GradingService,
	schedulerService service.SchedulerService,
	resultService service.ResultService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		gradingService:   gradingService,
		schedulerService: schedulerService,
		resultService:    resultService,
		logger:           logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/assignments", func(r chi.Router) {
			r.Post("/auto", h.AutoAssign)
			r.Post("/", h.CreateAssignment)
			r.Get("/stats", h.AssignmentStats)
			r.Put("/{id}/status", h.UpdateAssignmentStatus)
			r.Delete("/{id}", h.DeleteAssignment)
		})

		api.Route("/results", func(r chi.Router) {
			r.Post("/", h.SubmitResult)
			r.Put("/{id}", h.UpdateResult)
			r.Post("/{id}/finalize", h.FinalizeResult)
		})

		api.Route("/blocks", func(r chi.Router) {
			r.Get("/pending", h.PendingBlocks)
			r.Get("/{code}/resolution", h.Resolve)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "grading-service",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleServiceError maps the error taxonomy to HTTP codes. Business-rule
// rejections get 4xx so callers do not retry them; only storage failures
// fall through to 500.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrDuplicateAssignment),
		errors.Is(err, repository.ErrDuplicateResult),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrResultFinal),
		errors.Is(err, service.ErrInsufficientExaminers):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidScore):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrWrongExaminer):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Grading service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getFloatQueryParam(r *http.Request, key string, defaultValue float64) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
