package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/content-discovery/internal/logger"
	"github.com/jonesrussell/content-discovery/internal/scheduler"
)

// SchedulerService exposes the scheduler operations to the HTTP layer. Every
// method returns a result value rather than an error, so no handler needs
// scheduling-specific error middleware.
type SchedulerService interface {
	ScheduleAllSources(ctx context.Context) scheduler.ScheduleResult
	ScheduleImmediateCheck(ctx context.Context, sourceID string) scheduler.ImmediateCheckResult
	QueueStats(ctx context.Context) scheduler.StatsResult
	CleanupJobs(ctx context.Context) scheduler.CleanupResult
}

type SchedulerHandler struct {
	service SchedulerService
	logger  logger.Logger
}

func NewSchedulerHandler(service SchedulerService, log logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{
		service: service,
		logger:  log,
	}
}

// Run triggers a full scheduling pass across all tiers.
func (h *SchedulerHandler) Run(c *gin.Context) {
	result := h.service.ScheduleAllSources(c.Request.Context())
	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ImmediateCheck schedules an on-demand check for one source.
func (h *SchedulerHandler) ImmediateCheck(c *gin.Context) {
	result := h.service.ScheduleImmediateCheck(c.Request.Context(), c.Param("id"))
	if !result.Success {
		c.JSON(immediateCheckStatus(result), result)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// Stats returns current queue statistics for all tiers.
func (h *SchedulerHandler) Stats(c *gin.Context) {
	result := h.service.QueueStats(c.Request.Context())
	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cleanup purges completed and failed jobs from all tier queues.
func (h *SchedulerHandler) Cleanup(c *gin.Context) {
	result := h.service.CleanupJobs(c.Request.Context())
	if !result.Success {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func immediateCheckStatus(result scheduler.ImmediateCheckResult) int {
	switch result.Error {
	case scheduler.MsgSourceNotFound:
		return http.StatusNotFound
	case scheduler.MsgSourceInactive:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
