package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speclens/backend/internal/domain"
	"github.com/speclens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	isqService *usecase.ISQService
}

// NewHandler creates a new HTTP handler
func NewHandler(isqService *usecase.ISQService) *Handler {
	return &Handler{isqService: isqService}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "speclens-backend",
		"version": "1.0.0",
	})
}

// reconcileRequest carries already-extracted stage records.
type reconcileRequest struct {
	Stage1 *domain.Stage1Record `json:"stage1" binding:"required"`
	Stage2 *domain.Stage2Record `json:"stage2" binding:"required"`
}

// Reconcile runs the reconciliation engine over caller-supplied Stage 1 and
// Stage 2 records. Empty results are a valid 200 ("no matches found").
func (h *Handler) Reconcile(c *gin.Context) {
	if h.isqService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ISQ service not configured"})
		return
	}

	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result := h.isqService.Reconcile(req.Stage1, req.Stage2)
	c.JSON(http.StatusOK, result)
}

// generateRequest asks for the full extraction + reconciliation pipeline.
type generateRequest struct {
	Category string   `json:"category" binding:"required"`
	URLs     []string `json:"urls"`
}

// Generate runs the full pipeline: LLM extraction of both stages, then
// reconciliation. When both stages degrade to empty records the upstream
// is reported as unavailable.
func (h *Handler) Generate(c *gin.Context) {
	if h.isqService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ISQ service not configured"})
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.isqService.Generate(c.Request.Context(), req.Category, req.URLs)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		case errors.Is(err, domain.ErrStagesUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":  "extraction stages unavailable",
				"result": result,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
