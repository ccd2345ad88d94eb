package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hjpark/finnews/app/collector"
	"github.com/hjpark/finnews/app/database"
	"github.com/hjpark/finnews/app/market"
	"github.com/hjpark/finnews/app/snapshot"
)

type Handler struct {
	store         *snapshot.Store
	marketCrawler *market.Crawler
	newsRepo      database.NewsRepository
	dataDir       string
	version       string
}

// NewHandler creates the HTTP handler set. newsRepo may be nil when the
// durable store is not configured.
func NewHandler(store *snapshot.Store, marketCrawler *market.Crawler, newsRepo database.NewsRepository, version string) *Handler {
	return &Handler{
		store:         store,
		marketCrawler: marketCrawler,
		newsRepo:      newsRepo,
		dataDir:       store.Dir(),
		version:       version,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GetLatestNews returns the most recent snapshot for a date (today by
// default).
func (h *Handler) GetLatestNews(c *gin.Context) {
	date := c.DefaultQuery("date", collector.Today())

	payload, identity, err := h.store.Latest(date)
	if err != nil {
		slog.Error("Failed to load latest snapshot", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load snapshot"})
		return
	}
	if payload == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot for date", "date": date})
		return
	}

	c.JSON(http.StatusOK, gin.H{"identity": identity, "snapshot": payload})
}

// ListNewsSnapshots lists the artifact identities for a date.
func (h *Handler) ListNewsSnapshots(c *gin.Context) {
	date := c.Param("date")

	identities, err := h.store.List(date)
	if err != nil {
		slog.Error("Failed to list snapshots", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list snapshots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "count": len(identities), "snapshots": identities})
}

// GetRunSummaries returns stored run summaries for a date.
func (h *Handler) GetRunSummaries(c *gin.Context) {
	if h.newsRepo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "durable store not configured"})
		return
	}

	date := c.DefaultQuery("date", collector.Today())
	summaries, err := h.newsRepo.GetRunSummaries(date)
	if err != nil {
		slog.Error("Failed to load run summaries", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run summaries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "count": len(summaries), "summaries": summaries})
}

func (h *Handler) GetMarketIndices(c *gin.Context) {
	region := c.Query("region")
	if region != "" && !market.ValidRegion(region) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "region must be one of us, asia, europe"})
		return
	}

	indices := h.marketCrawler.GetAllIndices(c.Request.Context(), region)
	if len(indices) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no index data available"})
		return
	}

	if region == "" {
		region = "all"
	}
	c.JSON(http.StatusOK, gin.H{
		"region":    region,
		"count":     len(indices),
		"indices":   indices,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) GetMarketIndex(c *gin.Context) {
	symbol := c.Param("symbol")

	data := h.marketCrawler.GetIndexData(c.Request.Context(), symbol)
	if data == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown or unavailable index", "symbol": symbol})
		return
	}

	c.JSON(http.StatusOK, data)
}

func (h *Handler) GetMarketSummary(c *gin.Context) {
	summary := h.marketCrawler.GetMarketSummary(c.Request.Context())
	if summary.TotalCount == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no market data available"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// CollectMarketData collects current quotes and writes the dated
// market artifact.
func (h *Handler) CollectMarketData(c *gin.Context) {
	summary := h.marketCrawler.GetMarketSummary(c.Request.Context())
	if summary.TotalCount == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "market data collection failed"})
		return
	}

	path, err := market.WriteSummary(h.dataDir, collector.Today(), summary)
	if err != nil {
		slog.Error("Failed to write market summary", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write market summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"filename":  path,
		"count":     summary.TotalCount,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
