package response

import (
	"time"

	"github.com/user/banner-resolver/internal/entity"
)

type RunAcceptedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	RunningRunID string `json:"running_run_id,omitempty"`
}

// RunReportResponse is the DTO for a finished run, mirroring entity.RunReport.
type RunReportResponse struct {
	ID          string                `json:"id"`
	Mode        string                `json:"mode"`
	StartURL    string                `json:"start_url"`
	StartedAt   time.Time             `json:"started_at"`
	FinishedAt  time.Time             `json:"finished_at"`
	DurationMS  int64                 `json:"duration_ms"`
	RecordCount int                   `json:"record_count"`
	BySource    map[string]int        `json:"by_source"`
	Records     []entity.BannerRecord `json:"records"`
	OutputPath  string                `json:"output_path,omitempty"`
	RemoteID    string                `json:"remote_id,omitempty"`
	UploadError string                `json:"upload_error,omitempty"`
	Error       string                `json:"error,omitempty"`
}

func NewRunReportResponse(r *entity.RunReport) RunReportResponse {
	bySource := make(map[string]int, len(r.BySource))
	for k, v := range r.BySource {
		bySource[string(k)] = v
	}
	records := r.Records
	if records == nil {
		records = []entity.BannerRecord{}
	}
	return RunReportResponse{
		ID:          r.ID,
		Mode:        string(r.Mode),
		StartURL:    r.StartURL,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		DurationMS:  r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
		RecordCount: len(r.Records),
		BySource:    bySource,
		Records:     records,
		OutputPath:  r.OutputPath,
		RemoteID:    r.RemoteID,
		UploadError: r.UploadError,
		Error:       r.Error,
	}
}
