package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
)

var (
	once sync.Once

	engineMu sync.Mutex
	engine   *gin.Engine

	registersMu sync.Mutex
	registers   = []func(g *gin.RouterGroup){}

	defaultGather prometheus.Gatherer = prometheus.DefaultGatherer
)

func init() {
	AddRegister(addMetrics)
	AddDefaultRegister("/health", func() (interface{}, error) {
		return gin.H{"status": "ok"}, nil
	})
	AddDefaultRegister("/ready", func() (interface{}, error) {
		return gin.H{"status": "ready"}, nil
	})
}

// SetDefaultGather overrides the prometheus gatherer behind /metrics.
func SetDefaultGather(g prometheus.Gatherer) {
	defaultGather = g
}

// AddRegister appends a route register applied when the health server
// starts. Must be called before InitHealthServer.
func AddRegister(register func(g *gin.RouterGroup)) {
	registersMu.Lock()
	defer registersMu.Unlock()
	registers = append(registers, register)
}

// AddDefaultRegister exposes a GET endpoint backed by a plain data
// function. Errors surface as 500.
func AddDefaultRegister(path string, fn func() (interface{}, error)) {
	AddRegister(func(g *gin.RouterGroup) {
		g.GET(path, func(c *gin.Context) {
			data, err := fn()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, data)
		})
	})
}

func addMetrics(g *gin.RouterGroup) {
	handler := promhttp.HandlerFor(defaultGather, promhttp.HandlerOpts{})
	g.GET("/metrics", gin.WrapH(handler))
}

// InitHealthServer starts the health/metrics listener once. Subsequent
// calls are no-ops.
func InitHealthServer(port int) {
	once.Do(func() {
		engineMu.Lock()
		engine = gin.New()
		engine.Use(gin.Recovery())
		group := engine.Group("")

		registersMu.Lock()
		for _, register := range registers {
			register(group)
		}
		registersMu.Unlock()

		healthEngine := engine
		engineMu.Unlock()

		go func() {
			if err := healthEngine.Run(fmt.Sprintf(":%d", port)); err != nil {
				log.Errorf("health server exited: %v", err)
			}
		}()
	})
}
