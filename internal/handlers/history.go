package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/croplens/api/internal/errors"
	"github.com/croplens/api/internal/repository"
)

// HistoryHandler serves the recorded-analysis listing. Only registered when
// a database is configured.
type HistoryHandler struct {
	repo repository.AnalysisRepository
}

// NewHistoryHandler creates a new HistoryHandler instance.
func NewHistoryHandler(repo repository.AnalysisRepository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// HistoryRequest represents the query parameters for the history endpoint.
type HistoryRequest struct {
	Limit int `form:"limit" binding:"omitempty,gte=1,lte=100"`
}

// HistoryResponse is the data payload of the history envelope.
type HistoryResponse struct {
	Analyses []repository.AnalysisRecord `json:"analyses"`
	Count    int                         `json:"count"`
}

// Recent handles GET /api/v1/analyses.
func (h *HistoryHandler) Recent(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters")
		return
	}

	const defaultLimit = 20
	if req.Limit == 0 {
		req.Limit = defaultLimit
	}

	records, err := h.repo.Recent(c.Request.Context(), req.Limit)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list analyses", err)
		return
	}

	ok(c, "Recent analyses", HistoryResponse{
		Analyses: records,
		Count:    len(records),
	})
}
