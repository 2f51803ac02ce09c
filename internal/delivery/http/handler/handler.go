package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/banner-resolver/internal/delivery/http/response"
	"github.com/user/banner-resolver/internal/entity"
	"github.com/user/banner-resolver/internal/repository"
)

// RunCoordinator starts background runs and reports on them.
type RunCoordinator interface {
	TryRun() (string, error)
	Running() (string, bool)
	Latest() *entity.RunReport
}

type Handler struct {
	runs   RunCoordinator
	logger *zap.Logger
}

func NewHandler(runs RunCoordinator, logger *zap.Logger) *Handler {
	return &Handler{
		runs:   runs,
		logger: logger.Named("handler"),
	}
}

func (h *Handler) HandleStartRun(w http.ResponseWriter, r *http.Request) {
	id, err := h.runs.TryRun()
	if err != nil {
		if errors.Is(err, repository.ErrRunInProgress) {
			running, _ := h.runs.Running()
			h.writeJSON(w, http.StatusConflict, response.RunAcceptedResponse{
				Status:  "conflict",
				Message: err.Error(),
				RunID:   running,
			})
			return
		}
		h.logger.Error("failed to start run", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.RunAcceptedResponse{
		Status:  "accepted",
		Message: "Run started",
		RunID:   id,
	})
}

func (h *Handler) HandleLatestRun(w http.ResponseWriter, r *http.Request) {
	report := h.runs.Latest()
	if report == nil {
		h.writeJSONError(w, "No run has finished yet", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, response.NewRunReportResponse(report))
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := response.HealthResponse{Status: "ok"}
	if id, ok := h.runs.Running(); ok {
		resp.RunningRunID = id
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
