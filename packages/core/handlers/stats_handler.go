package handlers

import (
	"net/http"

	"towerhub-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats retrieves general statistics
// @Summary Get general statistics
// @Description Platform totals and completed matches over the last two weeks
// @Tags stats
// @Produce json
// @Success 200 {object} models.PlatformStats
// @Failure 500 {object} map[string]string
// @Router /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetStats()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
