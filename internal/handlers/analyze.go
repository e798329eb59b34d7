package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/croplens/api/internal/analysis"
	apierrors "github.com/croplens/api/internal/errors"
	"github.com/croplens/api/internal/fields"
	"github.com/croplens/api/internal/middleware"
	"github.com/croplens/api/internal/models"
)

// AnalyzeHandler handles field analysis requests.
type AnalyzeHandler struct {
	service analysis.Service
}

// NewAnalyzeHandler creates a new AnalyzeHandler instance.
func NewAnalyzeHandler(service analysis.Service) *AnalyzeHandler {
	return &AnalyzeHandler{service: service}
}

// AnalyzeRequest is the request body for the analyze endpoint. Properties
// are accepted but untrusted; the server re-derives everything it needs
// from the geometry.
type AnalyzeRequest struct {
	Geometry   *models.Geometry        `json:"geometry" binding:"required"`
	Properties *models.FieldProperties `json:"properties"`
}

// Analyze handles POST /api/analyze_field.
// Responds 200 with a success envelope, 400 on validation failure, and 500
// on credential/upstream failure, always in the standard envelope shape.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body: field geometry is required")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		ring := req.Geometry.OuterRing()
		log.Info("Processing field analysis request", map[string]interface{}{
			"ring_points": len(ring),
		})
	}

	result, err := h.service.Analyze(c.Request.Context(), req.Geometry)
	if err != nil {
		switch {
		case errors.Is(err, fields.ErrInvalidGeometry), errors.Is(err, fields.ErrAreaOutOfRange):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, analysis.ErrProviderUnavailable):
			apierrors.InternalServerError(c, "Analysis service is not configured", err)
		case errors.Is(err, analysis.ErrUpstream):
			apierrors.InternalServerError(c, "Field analysis failed; please try again", err)
		default:
			apierrors.InternalServerError(c, "Field analysis failed; please try again", err)
		}
		return
	}

	ok(c, "Field analysis complete", result)
}
