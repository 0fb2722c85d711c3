package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-discovery/internal/models"
	"github.com/jonesrussell/content-discovery/internal/scheduler"
	"github.com/jonesrussell/content-discovery/internal/testhelpers"
)

type fakeSchedulerService struct {
	scheduleResult scheduler.ScheduleResult
	immediate      scheduler.ImmediateCheckResult
	stats          scheduler.StatsResult
	cleanup        scheduler.CleanupResult
	lastSourceID   string
}

func (f *fakeSchedulerService) ScheduleAllSources(context.Context) scheduler.ScheduleResult {
	return f.scheduleResult
}

func (f *fakeSchedulerService) ScheduleImmediateCheck(_ context.Context, sourceID string) scheduler.ImmediateCheckResult {
	f.lastSourceID = sourceID
	return f.immediate
}

func (f *fakeSchedulerService) QueueStats(context.Context) scheduler.StatsResult {
	return f.stats
}

func (f *fakeSchedulerService) CleanupJobs(context.Context) scheduler.CleanupResult {
	return f.cleanup
}

func newSchedulerRouter(service *fakeSchedulerService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSchedulerHandler(service, testhelpers.NewTestLogger())

	router := gin.New()
	router.POST("/scheduler/run", handler.Run)
	router.POST("/sources/:id/check", handler.ImmediateCheck)
	router.GET("/scheduler/stats", handler.Stats)
	router.POST("/scheduler/cleanup", handler.Cleanup)
	return router
}

func performRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRun(t *testing.T) {
	service := &fakeSchedulerService{
		scheduleResult: scheduler.ScheduleResult{
			Success: true,
			Total:   8,
			Scheduled: map[models.CheckFrequency]int{
				models.FrequencyHourly: 2,
				models.FrequencyDaily:  6,
			},
		},
	}
	router := newSchedulerRouter(service)

	recorder := performRequest(router, http.MethodPost, "/scheduler/run")

	assert.Equal(t, http.StatusOK, recorder.Code)

	var result scheduler.ScheduleResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 8, result.Total)
}

func TestRun_Failure(t *testing.T) {
	service := &fakeSchedulerService{
		scheduleResult: scheduler.ScheduleResult{Error: "drain hourly queue: redis gone"},
	}
	router := newSchedulerRouter(service)

	recorder := performRequest(router, http.MethodPost, "/scheduler/run")

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "redis gone")
}

func TestImmediateCheck(t *testing.T) {
	service := &fakeSchedulerService{
		immediate: scheduler.ImmediateCheckResult{
			Success:    true,
			JobID:      "hourly-job-1",
			SourceID:   "abc-123",
			SourceName: "Example Feed",
		},
	}
	router := newSchedulerRouter(service)

	recorder := performRequest(router, http.MethodPost, "/sources/abc-123/check")

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.Equal(t, "abc-123", service.lastSourceID)

	var result scheduler.ImmediateCheckResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, "hourly-job-1", result.JobID)
	assert.Equal(t, "Example Feed", result.SourceName)
}

func TestImmediateCheck_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		errMsg     string
		wantStatus int
	}{
		{"source not found", scheduler.MsgSourceNotFound, http.StatusNotFound},
		{"source inactive", scheduler.MsgSourceInactive, http.StatusBadRequest},
		{"backend failure", "redis: connection refused", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeSchedulerService{
				immediate: scheduler.ImmediateCheckResult{Error: tt.errMsg},
			}
			router := newSchedulerRouter(service)

			recorder := performRequest(router, http.MethodPost, "/sources/abc-123/check")

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.errMsg)
		})
	}
}

func TestStats(t *testing.T) {
	service := &fakeSchedulerService{
		stats: scheduler.StatsResult{
			Success: true,
			Stats: &models.QueueStats{
				Tiers: map[models.CheckFrequency]models.QueueCounts{
					models.FrequencyHourly: {Waiting: 3, Failed: 1},
				},
				Total: models.QueueCounts{Waiting: 3, Failed: 1},
			},
		},
	}
	router := newSchedulerRouter(service)

	recorder := performRequest(router, http.MethodGet, "/scheduler/stats")

	assert.Equal(t, http.StatusOK, recorder.Code)

	var result scheduler.StatsResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.NotNil(t, result.Stats)
	assert.Equal(t, 3, result.Stats.Total.Waiting)
}

func TestStats_Failure(t *testing.T) {
	service := &fakeSchedulerService{
		stats: scheduler.StatsResult{Error: "stats for weekly: inspector error"},
	}
	router := newSchedulerRouter(service)

	recorder := performRequest(router, http.MethodGet, "/scheduler/stats")

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestCleanup(t *testing.T) {
	service := &fakeSchedulerService{
		cleanup: scheduler.CleanupResult{Success: true},
	}
	router := newSchedulerRouter(service)

	recorder := performRequest(router, http.MethodPost, "/scheduler/cleanup")

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestCleanup_Failure(t *testing.T) {
	service := &fakeSchedulerService{
		cleanup: scheduler.CleanupResult{Error: "clean failed"},
	}
	router := newSchedulerRouter(service)

	recorder := performRequest(router, http.MethodPost, "/scheduler/cleanup")

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
