package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ensa-dev/student-records-api/internal/models"
	"github.com/ensa-dev/student-records-api/pkg/response"
)

type statsProvider interface {
	Summary(ctx context.Context) (*models.StudentStats, bool, error)
}

// StatsHandler exposes the dashboard statistics endpoint.
type StatsHandler struct {
	stats statsProvider
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats statsProvider) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Summary godoc
// @Summary Roster statistics
// @Description Total count, distribution by filiere and niveau, newest students
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	stats, cacheHit, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, map[string]interface{}{"cache_hit": cacheHit})
}
