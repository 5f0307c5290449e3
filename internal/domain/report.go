package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportDescription labels every generated report.
const ReportDescription = "Report analysis"

// Report is the result of a background report job. It is pushed to the
// user's socket and never persisted.
type Report struct {
	UserID      uuid.UUID `json:"user_id"`
	Description string    `json:"description"`
	Total       int64     `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewReport builds a report for userID covering total tasks.
func NewReport(userID uuid.UUID, total int64) Report {
	return Report{
		UserID:      userID,
		Description: ReportDescription,
		Total:       total,
		CreatedAt:   time.Now().UTC(),
	}
}
