package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"MarketPulse/internal/model"
	"MarketPulse/internal/query"
)

// MarketService is the read and admin surface the handlers call.
type MarketService interface {
	ListCompanies(ctx context.Context) ([]model.CompanySummary, error)
	GetCompany(ctx context.Context, symbol string) (*model.CompanySummary, error)
	GetSeries(ctx context.Context, symbol, period string) ([]model.DerivedPoint, error)
	GetStats(ctx context.Context, symbol string) (*model.MarketStats, error)
	Search(ctx context.Context, q string) ([]model.SearchResult, error)
	Overview(ctx context.Context) (*model.MarketOverview, error)
	Refresh(ctx context.Context) (*model.DatasetStats, error)
	RegenerateSymbol(ctx context.Context, symbol string) (*model.DatasetStats, error)
	DatasetStats(ctx context.Context) (*model.DatasetStats, error)
	GenerationID() string
}

// SubscriberCounter reports live WebSocket subscribers.
type SubscriberCounter interface {
	Count() int
}

// Handlers holds the dependencies for HTTP handlers.
type Handlers struct {
	market      MarketService
	subscribers SubscriberCounter
	log         *zap.Logger
}

func NewHandlers(market MarketService, subscribers SubscriberCounter, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{market: market, subscribers: subscribers, log: log}
}

// Root handles GET /
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "MarketPulse API", "status": "running"})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	subs := 0
	if h.subscribers != nil {
		subs = h.subscribers.Count()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"timestamp":     time.Now().Format(time.RFC3339),
		"generation_id": h.market.GenerationID(),
		"subscribers":   subs,
	})
}

// ListCompanies handles GET /companies
func (h *Handlers) ListCompanies(c *gin.Context) {
	companies, err := h.market.ListCompanies(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

// GetCompany handles GET /companies/:symbol
func (h *Handlers) GetCompany(c *gin.Context) {
	company, err := h.market.GetCompany(c.Request.Context(), symbolParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// GetSeries handles GET /stock/:symbol?period=1mo
func (h *Handlers) GetSeries(c *gin.Context) {
	period := c.DefaultQuery("period", query.DefaultPeriod)
	points, err := h.market.GetSeries(c.Request.Context(), symbolParam(c), period)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// GetStats handles GET /stock/:symbol/stats
func (h *Handlers) GetStats(c *gin.Context) {
	st, err := h.market.GetStats(c.Request.Context(), symbolParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Search handles GET /search/:query
func (h *Handlers) Search(c *gin.Context) {
	results, err := h.market.Search(c.Request.Context(), c.Param("query"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// Overview handles GET /market/overview
func (h *Handlers) Overview(c *gin.Context) {
	ov, err := h.market.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// Summary handles GET /market/summary
func (h *Handlers) Summary(c *gin.Context) {
	ov, err := h.market.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ov.Summary)
}

// Sectors handles GET /market/sectors
func (h *Handlers) Sectors(c *gin.Context) {
	ov, err := h.market.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ov.Sectors)
}

// Refresh handles POST /admin/refresh-data
func (h *Handlers) Refresh(c *gin.Context) {
	st, err := h.market.Refresh(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dataset refreshed successfully", "stats": st})
}

// RegenerateSymbol handles POST /admin/refresh-data/:symbol
func (h *Handlers) RegenerateSymbol(c *gin.Context) {
	st, err := h.market.RegenerateSymbol(c.Request.Context(), symbolParam(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Series regenerated successfully", "stats": st})
}

// DatasetStats handles GET /admin/stats
func (h *Handlers) DatasetStats(c *gin.Context) {
	st, err := h.market.DatasetStats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func symbolParam(c *gin.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
}

// fail maps domain errors onto HTTP status codes.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidParameter):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
