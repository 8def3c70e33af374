package router

import (
	"github.com/gin-gonic/gin"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/config"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/router/middleware"
)

var (
	groupRegisters []GroupRegister
)

func RegisterGroup(group GroupRegister) {
	groupRegisters = append(groupRegisters, group)
}

func InitRouter(engine *gin.Engine, cfg *config.Config) error {
	g := engine.Group("/api/v1")
	g.Use(middleware.HandleMetrics())

	// Decide whether to enable logging middleware based on configuration
	if cfg.Middleware.IsLoggingEnabled() {
		log.Info("HTTP request logging middleware enabled")
		g.Use(middleware.HandleLogging())
	} else {
		log.Info("HTTP request logging middleware disabled")
	}

	// Error handling middleware is always enabled
	g.Use(middleware.HandleErrors())

	// CORS middleware is always enabled
	g.Use(middleware.CorsMiddleware())

	for _, group := range groupRegisters {
		err := group(g)
		if err != nil {
			return err
		}
	}
	return nil
}

type GroupRegister func(group *gin.RouterGroup) error
