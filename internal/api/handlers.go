// handlers.go - HTTP handlers for the parse and status endpoints.

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/settleloop/payment-ai-service/internal/models"
	"github.com/settleloop/payment-ai-service/internal/parser"
)

// Handlers carries the orchestrator shared by all endpoints.
type Handlers struct {
	service *parser.Service
}

// NewHandlers wires the HTTP layer to the parse orchestrator.
func NewHandlers(service *parser.Service) *Handlers {
	return &Handlers{service: service}
}

// RootHandler answers load-balancer and SSL-verification probes.
func (h *Handlers) RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "payment-ai-service",
		"status":  "running",
	})
}

// HealthHandler handles GET /health.
func (h *Handlers) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Service:   "payment-ai-service",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// StatusHandler handles GET /status - guardrail state and quota usage.
func (h *Handlers) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.StatusResponse{
		Enabled:                h.service.Enabled(),
		Provider:               h.service.ProviderName(),
		DailyLimit:             h.service.DailyLimit(),
		RequestsToday:          h.service.RequestsToday(),
		RequestsRemaining:      h.service.RequestsRemaining(),
		MinConfidenceThreshold: h.service.ConfidenceThreshold(),
	})
}

// ParsePaymentHandler handles POST /parse-payment. Every parse outcome,
// including business failures, is returned as HTTP 200 with the envelope -
// only a malformed request body gets a non-200 status.
func (h *Handlers) ParsePaymentHandler(c *gin.Context) {
	var req models.ParsePaymentRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Invalid request format",
			"details":  err.Error(),
			"expected": "JSON with image_base64 (required) and match_date (optional, YYYY-MM-DD)",
		})
		return
	}

	resp := h.service.ParsePaymentScreenshot(c.Request.Context(), req.ImageBase64, req.MatchDate)
	c.JSON(http.StatusOK, resp)
}
