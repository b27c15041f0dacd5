package handler

import (
	"net/http"

	"findway/internal/diagnostics"

	"github.com/gin-gonic/gin"
)

// DiagnosticsSource lists recently absorbed failures.
type DiagnosticsSource interface {
	Recent() []diagnostics.Diagnostic
}

// DiagnosticsHandler handles diagnostics requests
type DiagnosticsHandler struct {
	source DiagnosticsSource
}

// NewDiagnosticsHandler creates a new diagnostics handler
func NewDiagnosticsHandler(source DiagnosticsSource) *DiagnosticsHandler {
	return &DiagnosticsHandler{source: source}
}

// Recent handles GET /diagnostics requests
func (h *DiagnosticsHandler) Recent(c *gin.Context) {
	recent := h.source.Recent()
	if recent == nil {
		recent = []diagnostics.Diagnostic{}
	}
	c.JSON(http.StatusOK, gin.H{"diagnostics": recent})
}
