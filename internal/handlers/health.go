package handlers

import (
	"github.com/gin-gonic/gin"
)

// APIVersion is the current version of the API.
const APIVersion = "0.1.0"

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	initialized bool
}

// NewHealthHandler creates a HealthHandler. initialized reflects whether
// the imagery provider credentials were configured at startup.
func NewHealthHandler(initialized bool) *HealthHandler {
	return &HealthHandler{initialized: initialized}
}

// HealthStatus is the data payload of the health envelope.
type HealthStatus struct {
	Initialized bool   `json:"initialized"`
	Version     string `json:"version"`
}

// Health handles GET /health.
// Always 200: the process is serving; Initialized tells callers whether
// analysis requests can succeed.
func (h *HealthHandler) Health(c *gin.Context) {
	ok(c, "Service healthy", HealthStatus{
		Initialized: h.initialized,
		Version:     APIVersion,
	})
}
