package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.HealthCheck)

	r.GET("/news/latest", handler.GetLatestNews)
	r.GET("/news/snapshots/:date", handler.ListNewsSnapshots)
	r.GET("/news/summaries", handler.GetRunSummaries)

	r.GET("/market/indices", handler.GetMarketIndices)
	r.GET("/market/index/:symbol", handler.GetMarketIndex)
	r.GET("/market/summary", handler.GetMarketSummary)
	r.POST("/market/collect", handler.CollectMarketData)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "finnews",
			"version":     handler.version,
			"description": "Naver Finance news collector with overseas market index data",
			"endpoints": map[string]string{
				"health":         "/health",
				"latest news":    "/news/latest?date=YYYY-MM-DD",
				"snapshots":      "/news/snapshots/<date>",
				"run summaries":  "/news/summaries?date=YYYY-MM-DD",
				"market indices": "/market/indices?region={us|asia|europe}",
				"market index":   "/market/index/<symbol>",
				"market summary": "/market/summary",
				"collect market": "/market/collect (POST)",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
