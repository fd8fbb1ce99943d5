package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aitracker-project/aitracker-server/internal/api/middleware"
	"github.com/aitracker-project/aitracker-server/internal/database/queries"
	"github.com/aitracker-project/aitracker-server/internal/models"
	"github.com/aitracker-project/aitracker-server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EntryHandler handles CRUD over tracked website entries.
type EntryHandler struct {
	entryQueries *queries.EntryQueries
	confirms     *services.ConfirmGuard
}

func NewEntryHandler(eq *queries.EntryQueries, confirms *services.ConfirmGuard) *EntryHandler {
	return &EntryHandler{
		entryQueries: eq,
		confirms:     confirms,
	}
}

// EntryListItem decorates an entry with its video link classification so
// the client renders embed/file/link/none without duplicating the rules.
type EntryListItem struct {
	models.EntryWithCreator
	Video services.VideoInfo `json:"video"`
}

// EntryListResponse mirrors the dashboard's "Showing X of Y entries" line.
type EntryListResponse struct {
	Entries []EntryListItem `json:"entries"`
	Showing int             `json:"showing"`
	Total   int             `json:"total"`
}

// ListEntries returns all entries, filtered and sorted per query params.
// Filtering and sorting happen in memory over the full collection.
func (h *EntryHandler) ListEntries(c *gin.Context) {
	entries, err := h.entryQueries.GetAllEntries()
	if err != nil {
		log.Error().Err(err).Msg("failed to list entries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list entries"})
		return
	}
	total := len(entries)

	filtered := services.FilterEntries(entries, services.EntryFilter{
		Website:     c.Query("website"),
		Description: c.Query("description"),
		Remarks:     c.Query("remarks"),
		Date:        c.Query("date"),
	})
	services.SortEntries(filtered, services.ParseSortField(c.Query("sort_by")), services.ParseSortOrder(c.Query("order")))

	items := make([]EntryListItem, 0, len(filtered))
	for _, e := range filtered {
		items = append(items, EntryListItem{
			EntryWithCreator: e,
			Video:            services.ClassifyVideoLink(e.VideoLink),
		})
	}

	c.JSON(http.StatusOK, EntryListResponse{
		Entries: items,
		Showing: len(items),
		Total:   total,
	})
}

// GetEntry returns a single entry with its video classification.
func (h *EntryHandler) GetEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	entry, err := h.entryQueries.GetEntryByID(id)
	if errors.Is(err, queries.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("entry_id", id.String()).Msg("failed to get entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry": entry,
		"video": services.ClassifyVideoLink(entry.VideoLink),
	})
}

// CreateEntry adds a new tracked website for the authenticated user.
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var req models.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "website address is required"})
		return
	}

	website := strings.TrimSpace(req.WebsiteAddress)
	if website == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "website address is required"})
		return
	}

	session := middleware.SessionFromContext(c)
	entry, err := h.entryQueries.CreateEntry(
		website,
		optional(req.VideoLink),
		optional(req.Description),
		optional(req.Remarks),
		session.UserID,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create entry"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// UpdateEntry replaces an entry's fields and advances updated_at.
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	var req models.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "website address is required"})
		return
	}

	website := strings.TrimSpace(req.WebsiteAddress)
	if website == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "website address is required"})
		return
	}

	matched, err := h.entryQueries.UpdateEntry(id, website, optional(req.VideoLink), optional(req.Description), optional(req.Remarks))
	if err != nil {
		log.Error().Err(err).Str("entry_id", id.String()).Msg("failed to update entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update entry"})
		return
	}
	if !matched {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "entry updated successfully"})
}

// DeleteEntry runs the two-step confirmation flow: "request" arms a
// confirmation for exactly this entry, "confirm" executes it, "cancel"
// disarms. A confirm without a matching pending request is rejected.
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}

	var req models.ConfirmActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	session := middleware.SessionFromContext(c)
	switch req.Action {
	case "request":
		if _, err := h.entryQueries.GetEntryByID(id); errors.Is(err, queries.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		h.confirms.Request(session.SessionID, services.ActionDeleteEntry, id)
		c.JSON(http.StatusAccepted, gin.H{"status": "pending_confirm", "message": "confirm to delete this entry, this cannot be undone"})

	case "confirm":
		if !h.confirms.Confirm(session.SessionID, services.ActionDeleteEntry, id) {
			c.JSON(http.StatusConflict, gin.H{"error": "no delete confirmation pending for this entry"})
			return
		}
		matched, err := h.entryQueries.DeleteEntry(id)
		if err != nil {
			log.Error().Err(err).Str("entry_id", id.String()).Msg("failed to delete entry")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete entry"})
			return
		}
		if !matched {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		log.Info().Str("entry_id", id.String()).Str("username", session.Username).Msg("entry deleted")
		c.JSON(http.StatusOK, gin.H{"message": "entry deleted successfully"})

	case "cancel":
		h.confirms.Cancel(session.SessionID, services.ActionDeleteEntry, id)
		c.JSON(http.StatusOK, gin.H{"status": "cancelled"})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be request, confirm or cancel"})
	}
}

// optional trims a form value and maps blank to NULL.
func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
