package dto

import "time"

// ExportRequest selects the rendering format for a timetable export.
type ExportRequest struct {
	Format string `json:"format" binding:"required,oneof=csv pdf"`
}

// ExportJobResponse acknowledges an accepted export job.
type ExportJobResponse struct {
	JobID     string    `json:"jobId"`
	Status    string    `json:"status"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportStatusResponse reports the state of an export job and, once the
// job completes, a signed download URL.
type ExportStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      string     `json:"status"`
	Format      string     `json:"format"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	DownloadURL *string    `json:"downloadUrl,omitempty"`
	Error       *string    `json:"error,omitempty"`
}
