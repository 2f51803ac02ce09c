package entity

import "time"

// Mode selects how the page is obtained and resolved.
type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeStatic      Mode = "static"
)

// RunReport summarizes one completed resolution run.
type RunReport struct {
	ID          string               `json:"id"`
	Mode        Mode                 `json:"mode"`
	StartURL    string               `json:"start_url"`
	StartedAt   time.Time            `json:"started_at"`
	FinishedAt  time.Time            `json:"finished_at"`
	Records     []BannerRecord       `json:"records"`
	BySource    map[RecordSource]int `json:"by_source"`
	OutputPath  string               `json:"output_path"`
	RemoteID    string               `json:"remote_id,omitempty"`
	UploadError string               `json:"upload_error,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Tally recomputes BySource from Records.
func (r *RunReport) Tally() {
	r.BySource = make(map[RecordSource]int)
	for _, rec := range r.Records {
		r.BySource[rec.Source]++
	}
}
