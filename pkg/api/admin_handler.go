package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/model/rest"
)

const defaultRetryFailedLimit = 100

func (h *Handler) getQueueStats(c *gin.Context) {
	stats, err := h.queue.Stats(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rest.SuccessResp(stats))
}

func (h *Handler) retryFailed(c *gin.Context) {
	limit := defaultRetryFailedLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			_ = c.Error(errors.NewError().
				WithCode(errors.RequestParameterInvalid).
				WithMessagef("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	moved, err := h.queue.RetryFailed(c, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	log.Infof("admin retry-failed moved %d result ids back onto the queue", moved)
	c.JSON(http.StatusOK, rest.SuccessResp(gin.H{"requeued": moved}))
}

func (h *Handler) reloadCacheConfig(c *gin.Context) {
	if err := h.service.ReloadCacheConfig(c); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rest.SuccessResp(gin.H{"reloaded": true}))
}

func (h *Handler) getJob(c *gin.Context) {
	jobID := c.Param("id")
	job, err := h.service.GetJob(c, jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if job == nil {
		_ = c.Error(errors.NewError().
			WithCode(errors.RequestDataNotExisted).
			WithMessagef("job %s not found", jobID))
		return
	}
	c.JSON(http.StatusOK, rest.SuccessResp(job))
}
