package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/productmatch/backend/internal/domain"
	"github.com/productmatch/backend/internal/logger"
	"github.com/sirupsen/logrus"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	queries domain.QueryPreparer
	shaper  domain.ResultShaper
	logger  logrus.FieldLogger
}

// NewHandler creates a new HTTP handler. A nil log discards output.
func NewHandler(queries domain.QueryPreparer, shaper domain.ResultShaper, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		queries: queries,
		shaper:  shaper,
		logger:  log,
	}
}

// BatchRequest is the body of a batch query request
type BatchRequest struct {
	Records []domain.Record `json:"records" binding:"required"`
}

// ShapeRequest is the body of a result shaping request
type ShapeRequest struct {
	Results []domain.Result `json:"results" binding:"required"`
}

// ConfigResponse describes the effective matching configuration; the token is reported only as present or not
type ConfigResponse struct {
	domain.QueryConfig
	TokenConfigured bool `json:"tokenConfigured"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "productmatch-backend",
		"version": "1.0.0",
	})
}

// BuildQuery builds the search request for a single record
func (h *Handler) BuildQuery(c *gin.Context) {
	var record domain.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		h.respondError(c, http.StatusBadRequest, err)
		return
	}

	request, err := h.queries.Prepare(c.Request.Context(), &record)
	if err != nil {
		h.respondError(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// BuildBatch builds search requests for a list of records
func (h *Handler) BuildBatch(c *gin.Context) {
	var body BatchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, http.StatusBadRequest, err)
		return
	}

	items, err := h.queries.PrepareBatch(c.Request.Context(), body.Records)
	if err != nil {
		h.respondError(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// ShapeResults applies output shaping to raw search results
func (h *Handler) ShapeResults(c *gin.Context) {
	var body ShapeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, http.StatusBadRequest, err)
		return
	}

	shaped := h.shaper.ShapeAll(body.Results)
	c.JSON(http.StatusOK, gin.H{
		"results": shaped,
		"count":   len(shaped),
	})
}

// GetConfig returns the effective matching configuration
func (h *Handler) GetConfig(c *gin.Context) {
	cfg := h.queries.Config()
	c.JSON(http.StatusOK, ConfigResponse{
		QueryConfig:     cfg,
		TokenConfigured: cfg.Token != "",
	})
}

func (h *Handler) respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
