package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"estimate-service/internal/service"
	"estimate-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether the record store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles what the handlers call into
type Services struct {
	Estimates *service.EstimateService
	Pricing   *service.PricingService
	Catalog   *service.CatalogService
	Quotes    *service.QuoteService
	Versions  *service.VersionService
	Contracts *service.ContractService

	Store       Pinger
	StorageMode string
}

// Handler contains HTTP handlers
type Handler struct {
	svc    Services
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services) *Handler {
	return &Handler{
		svc:    svc,
		logger: util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(h.recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/estimates", h.createEstimate)
		v1.GET("/estimates", h.listEstimates)
		v1.GET("/estimates/:id", h.getEstimate)
		v1.PATCH("/estimates/:id/status", h.updateEstimateStatus)

		v1.GET("/extracted-items", h.listExtractedItems)
		v1.POST("/extracted-items", h.createExtractedItem)
		v1.PUT("/extracted-items/:id", h.updateExtractedItem)
		v1.POST("/extracted-items/promote", h.promoteItems)
		v1.POST("/extracted-items/verify", h.verifyItem)

		v1.GET("/standard-prices", h.listStandardPrices)

		v1.GET("/quotes", h.listQuotes)
		v1.POST("/quotes", h.createQuote)
		v1.GET("/quotes/:id", h.getQuote)

		v1.GET("/quote-versions", h.listQuoteVersions)
		v1.POST("/quote-versions", h.saveQuoteVersion)
		v1.GET("/quote-versions/:id", h.getQuoteVersion)

		v1.GET("/contracts", h.listContracts)
		v1.POST("/contracts", h.createContract)
		v1.POST("/contracts/sign", h.signContract)
		v1.GET("/contracts/:id", h.getContract)
		v1.GET("/contracts/:id/versions", h.listContractVersions)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports the storage mode and whether the store answers
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.svc.Store != nil {
		if err := h.svc.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"storage": h.svc.StorageMode,
				"details": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"storage": h.svc.StorageMode,
		"time":    time.Now().Unix(),
	})
}

// respondError maps service errors onto HTTP statuses
func (h *Handler) respondError(c *gin.Context, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, service.ErrValidation):
		status, message = http.StatusBadRequest, "Invalid request"
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrConflict):
		status, message = http.StatusConflict, "Conflict"
	case errors.Is(err, service.ErrStore):
		status, message = http.StatusInternalServerError, "Record store failure"
	default:
		h.logger.Error("Unexpected error",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"details": err.Error(),
	})
}

func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{
		"success": false,
		"message": message,
	}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

// pathID parses the :id parameter, answering 400 itself on failure
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid id", err)
		return 0, false
	}
	return id, true
}

// recovery turns a panic into a generic 500 payload
func (h *Handler) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		h.logger.Error("Recovered from panic",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
