package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires every route. ws serves the WebSocket upgrade on /ws.
func NewRouter(h *Handlers, ws http.Handler, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(allowAllOrigins())

	router.GET("/", h.Root)
	router.GET("/health", h.HealthCheck)

	router.GET("/companies", h.ListCompanies)
	router.GET("/companies/:symbol", h.GetCompany)
	router.GET("/stock/:symbol", h.GetSeries)
	router.GET("/stock/:symbol/stats", h.GetStats)
	router.GET("/search/:query", h.Search)

	market := router.Group("/market")
	{
		market.GET("/overview", h.Overview)
		market.GET("/summary", h.Summary)
		market.GET("/sectors", h.Sectors)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/refresh-data", h.Refresh)
		admin.POST("/refresh-data/:symbol", h.RegenerateSymbol)
		admin.GET("/stats", h.DatasetStats)
	}

	if ws != nil {
		router.GET("/ws", gin.WrapH(ws))
	}
	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

func allowAllOrigins() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
