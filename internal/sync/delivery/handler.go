package delivery

import (
	"net/http"

	"migralog-backend/internal/sync/scheduler"
	"migralog-backend/internal/sync/usecase"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	engines   []usecase.SyncEngine
	scheduler *scheduler.SyncScheduler
}

func NewSyncHandler(engines []usecase.SyncEngine, scheduler *scheduler.SyncScheduler) *SyncHandler {
	return &SyncHandler{
		engines:   engines,
		scheduler: scheduler,
	}
}

// GetStatus returns per-domain sync state and outbox counts for the user
func (h *SyncHandler) GetStatus(c *gin.Context) {
	userID := c.GetString("userID")

	statuses := make([]*usecase.SyncStatus, 0, len(h.engines))
	for _, engine := range h.engines {
		status, err := engine.Status(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		statuses = append(statuses, status)
	}

	c.JSON(http.StatusOK, gin.H{"domains": statuses})
}

type runRequest struct {
	Domain string `json:"domain"`
}

// RunNow triggers an immediate sync cycle for the user, optionally scoped
// to one domain
func (h *SyncHandler) RunNow(c *gin.Context) {
	userID := c.GetString("userID")

	var req runRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := h.scheduler.RunNow(c.Request.Context(), userID, req.Domain); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "sync completed"})
}

// RetryFailed moves failed outbox rows back to pending so the next push
// attempts them again
func (h *SyncHandler) RetryFailed(c *gin.Context) {
	userID := c.GetString("userID")

	var req runRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var total int64
	for _, engine := range h.engines {
		if req.Domain != "" && engine.Domain() != req.Domain {
			continue
		}
		reset, err := engine.RetryFailed(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		total += reset
	}

	c.JSON(http.StatusOK, gin.H{"reset": total})
}
