package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ensa-dev/student-records-api/internal/service"
	"github.com/ensa-dev/student-records-api/pkg/response"
)

// SeedHandler exposes the one-shot database initialization endpoint.
type SeedHandler struct {
	seed *service.SeedService
}

// NewSeedHandler constructs SeedHandler.
func NewSeedHandler(seed *service.SeedService) *SeedHandler {
	return &SeedHandler{seed: seed}
}

// Run godoc
// @Summary Initialize the database
// @Description Creates the administrator identity and five sample students; no-op when the administrator exists
// @Tags Seed
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /seed [post]
func (h *SeedHandler) Run(c *gin.Context) {
	result, err := h.seed.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
