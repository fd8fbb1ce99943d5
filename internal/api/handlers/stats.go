package handlers

import (
	"net/http"
	"time"

	"github.com/aitracker-project/aitracker-server/internal/database/queries"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// StatsHandler serves the dashboard header counts.
type StatsHandler struct {
	entryQueries *queries.EntryQueries
	userQueries  *queries.UserQueries
}

func NewStatsHandler(eq *queries.EntryQueries, uq *queries.UserQueries) *StatsHandler {
	return &StatsHandler{
		entryQueries: eq,
		userQueries:  uq,
	}
}

type StatsSummary struct {
	TotalEntries int        `json:"total_entries"`
	TotalUsers   int        `json:"total_users"`
	NewestEntry  *time.Time `json:"newest_entry,omitempty"`
}

// GetSummary returns entry and user totals plus the newest entry time.
func (h *StatsHandler) GetSummary(c *gin.Context) {
	entryCount, newest, err := h.entryQueries.CountEntries()
	if err != nil {
		log.Error().Err(err).Msg("failed to count entries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	userCount, err := h.userQueries.CountUsers()
	if err != nil {
		log.Error().Err(err).Msg("failed to count users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, StatsSummary{
		TotalEntries: entryCount,
		TotalUsers:   userCount,
		NewestEntry:  newest,
	})
}
