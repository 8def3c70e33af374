package api

import (
	"github.com/gin-gonic/gin"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/coordinator"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/queue"
)

// Handler owns the HTTP surface: the bot pull/submit endpoints and the
// small admin surface for the queue and caches.
type Handler struct {
	auth    *BotAuthenticator
	service *coordinator.Service
	queue   queue.Queue
}

func NewHandler(auth *BotAuthenticator, service *coordinator.Service, q queue.Queue) *Handler {
	return &Handler{auth: auth, service: service, queue: q}
}

func (h *Handler) RegisterRouter(group *gin.RouterGroup) error {
	group.POST("/pull", h.pullJobs)
	group.POST("/submit", h.submitResult)

	adminGroup := group.Group("/admin")
	{
		adminGroup.GET("/queue/stats", h.getQueueStats)
		adminGroup.POST("/queue/retry-failed", h.retryFailed)
		adminGroup.POST("/cache/reload", h.reloadCacheConfig)
		adminGroup.GET("/jobs/:id", h.getJob)
	}
	return nil
}
