package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReportHandler_Request(t *testing.T) {
	userID := uuid.New()
	queued := &job.Job{ID: uuid.New(), Status: job.StatusPending}

	reports := new(mockReportScheduler)
	reports.On("Request", mock.Anything, userID).Return(queued, nil)
	handler := NewReportHandler(reports, discardLogger())

	rr := httptest.NewRecorder()
	handler.Request(rr, newRequest(t, http.MethodGet, "/v1/reports", nil, userID))

	assert.Equal(t, http.StatusOK, rr.Code)
	var got ReportRequestResponse
	env := decodeEnvelope(t, rr, &got)
	assert.Equal(t, "Report is being processed. Please wait.", env.Message)
	assert.Equal(t, queued.ID, got.JobID)
}

func TestReportHandler_Status(t *testing.T) {
	userID := uuid.New()
	own := &job.Job{ID: uuid.New(), Status: job.StatusCompleted, Attempts: 1, MaxAttempts: 3}
	foreign := uuid.New()

	reports := new(mockReportScheduler)
	reports.On("Status", mock.Anything, userID, own.ID).Return(own, nil)
	reports.On("Status", mock.Anything, userID, foreign).Return(nil, job.ErrJobNotFound)
	handler := NewReportHandler(reports, discardLogger())

	rr := httptest.NewRecorder()
	handler.Status(rr, withURLParam(newRequest(t, http.MethodGet, "/v1/reports/"+own.ID.String(), nil, userID),
		"id", own.ID.String()))
	assert.Equal(t, http.StatusOK, rr.Code)
	var got ReportStatusResponse
	decodeEnvelope(t, rr, &got)
	assert.Equal(t, job.StatusCompleted, got.Status)
	assert.Equal(t, 1, got.Attempts)

	rr = httptest.NewRecorder()
	handler.Status(rr, withURLParam(newRequest(t, http.MethodGet, "/v1/reports/"+foreign.String(), nil, userID),
		"id", foreign.String()))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	env := decodeEnvelope(t, rr, nil)
	assert.Equal(t, "report_not_found", env.Error.Message)
}
