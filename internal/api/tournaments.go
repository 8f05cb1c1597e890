package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cube-tracker/internal/store"
)

// ListTournaments returns all tournaments, most recent first.
func (h *Handlers) ListTournaments(c *gin.Context) {
	tournaments, err := h.store.ListTournaments()
	if err != nil {
		slog.Error("failed to list tournaments", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to list tournaments"})
		return
	}
	c.JSON(http.StatusOK, tournaments)
}

type createTournamentRequest struct {
	Name     string `json:"name"`
	Date     string `json:"date"` // ISO date, YYYY-MM-DD
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// CreateTournament creates a new event.
func (h *Handlers) CreateTournament(c *gin.Context) {
	var req createTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Date == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "name and date are required"})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "date must be ISO format (YYYY-MM-DD)"})
		return
	}

	t := store.Tournament{
		Name:     req.Name,
		Date:     date,
		Location: req.Location,
		Notes:    req.Notes,
		Status:   store.TournamentDraft,
	}
	if err := h.store.CreateTournament(&t); err != nil {
		slog.Error("failed to create tournament", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to create tournament"})
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetTournament returns one tournament with its cubes.
func (h *Handlers) GetTournament(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}
	t, err := h.store.GetTournament(uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: "tournament not found"})
			return
		}
		slog.Error("failed to load tournament", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load tournament"})
		return
	}
	c.JSON(http.StatusOK, t)
}
