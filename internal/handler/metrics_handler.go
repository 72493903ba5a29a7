package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ensa-dev/student-records-api/internal/service"
)

// MetricsHandler exposes Prometheus exposition.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs MetricsHandler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Expose serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Expose(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
