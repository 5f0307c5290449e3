package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/job"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// ReportScheduler schedules report jobs and reports their progress.
type ReportScheduler interface {
	Request(ctx context.Context, userID uuid.UUID) (*job.Job, error)
	Status(ctx context.Context, userID, jobID uuid.UUID) (*job.Job, error)
}

// ReportHandler handles report requests. Results are delivered over the
// user's socket, not in the HTTP response.
type ReportHandler struct {
	reports ReportScheduler
	logger  *slog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports ReportScheduler, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReportHandler")
	}
	return &ReportHandler{
		reports: reports,
		logger:  logger.With(slog.String("component", "report_handler")),
	}
}

// Request handles GET /reports.
func (h *ReportHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	j, err := h.reports.Request(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_schedule_report")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Report is being processed. Please wait.",
		ReportRequestResponse{JobID: j.ID})
}

// Status handles GET /reports/{id}.
func (h *ReportHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, jobID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	j, err := h.reports.Status(r.Context(), userID, jobID)
	if err != nil {
		HandleAPIError(w, r, err, "failed_to_get_report")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "", jobToStatusResponse(j))
}
