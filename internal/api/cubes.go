package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cube-tracker/internal/store"
)

// ListCubes returns cubes, optionally filtered by ?tournament_id=.
func (h *Handlers) ListCubes(c *gin.Context) {
	var tournamentID uint
	if raw := c.Query("tournament_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid tournament_id"})
			return
		}
		tournamentID = uint(id)
	}

	cubes, err := h.store.ListCubes(tournamentID)
	if err != nil {
		slog.Error("failed to list cubes", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to list cubes"})
		return
	}
	c.JSON(http.StatusOK, cubes)
}

// GetCube returns one cube with its cards.
func (h *Handlers) GetCube(c *gin.Context) {
	cube, ok := h.cubeByID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cube)
}

// GetCubeCards returns a cube's cards in reading order.
func (h *Handlers) GetCubeCards(c *gin.Context) {
	cube, ok := h.cubeByID(c)
	if !ok {
		return
	}
	cards, err := h.store.ListCards(cube.ID)
	if err != nil {
		slog.Error("failed to list cards", "cube", cube.ID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load cards"})
		return
	}
	c.JSON(http.StatusOK, cards)
}

// DeleteCube removes a cube and its cards.
func (h *Handlers) DeleteCube(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid cube id"})
		return
	}
	if err := h.store.DeleteCube(uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: "cube not found"})
			return
		}
		slog.Error("failed to delete cube", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to delete cube"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchCards returns catalog names ranked by similarity to ?q=, for
// autocomplete while correcting detected names.
func (h *Handlers) SearchCards(c *gin.Context) {
	query := c.Query("q")
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	names := h.catalog.Search(query, limit)
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"results": names})
}

func (h *Handlers) cubeByID(c *gin.Context) (*store.Cube, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid cube id"})
		return nil, false
	}
	cube, err := h.store.GetCube(uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: "cube not found"})
		} else {
			slog.Error("failed to load cube", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load cube"})
		}
		return nil, false
	}
	return cube, true
}
