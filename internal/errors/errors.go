// Package errors writes failure responses in the standard envelope shape
// used by every endpoint: success, message, timestamp, and no data field.
// Helpers log through the request-scoped logger so every failure carries
// its request ID.
package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/croplens/api/internal/middleware"
	"github.com/croplens/api/internal/models"
)

// BadRequest returns a 400 failure envelope with the given reason. Used for
// malformed bodies and geometry validation failures, whose reasons are safe
// to surface verbatim.
func BadRequest(c *gin.Context, message string) {
	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Bad request", map[string]interface{}{
			"message": message,
			"path":    c.Request.URL.Path,
		})
	}

	c.JSON(http.StatusBadRequest, models.NewEnvelope(false, message, nil))
}

// InternalServerError returns a 500 failure envelope. The caller supplies a
// sanitized message; the underlying error is logged with full context but
// never sent to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message": message,
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	}

	c.JSON(http.StatusInternalServerError, models.NewEnvelope(false, message, nil))
}

// ValidationError returns a 400 failure envelope for binding validation
// failures, folding the field errors into a single readable message.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	message := "Validation failed"
	if len(validationErrors) > 0 {
		first := validationErrors[0]
		message = "Validation failed for field " + first.Field() + ": " + formatValidationError(first)
	}

	if log := middleware.GetLogger(c); log != nil {
		fields := make(map[string]interface{})
		for _, err := range validationErrors {
			fields[err.Field()] = formatValidationError(err)
		}
		log.Warn("Validation error", map[string]interface{}{
			"path":   c.Request.URL.Path,
			"fields": fields,
		})
	}

	c.JSON(http.StatusBadRequest, models.NewEnvelope(false, message, nil))
}

// formatValidationError converts a validator.FieldError to a human-readable
// message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "value is too small (minimum: " + err.Param() + ")"
	case "max":
		return "value is too large (maximum: " + err.Param() + ")"
	case "gte":
		return "must be greater than or equal to " + err.Param()
	case "lte":
		return "must be less than or equal to " + err.Param()
	case "oneof":
		return "must be one of: " + err.Param()
	default:
		return "validation failed for tag: " + err.Tag()
	}
}
