package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cube-tracker/internal/checkin"
	"cube-tracker/internal/store"
	"cube-tracker/pkg/geometry"
)

type startCheckinRequest struct {
	TournamentID uint   `json:"tournament_id"`
	OwnerName    string `json:"owner_name"`
	OwnerEmail   string `json:"owner_email"`
	CubeName     string `json:"cube_name"`
}

// StartCheckin creates a cube and the check-in session that drives the
// rest of the workflow.
func (h *Handlers) StartCheckin(c *gin.Context) {
	var req startCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	req.OwnerName = strings.TrimSpace(req.OwnerName)
	req.CubeName = strings.TrimSpace(req.CubeName)
	if req.TournamentID == 0 || req.OwnerName == "" || req.CubeName == "" {
		c.JSON(http.StatusBadRequest,
			errorResponse{Error: "tournament_id, owner_name, and cube_name are required"})
		return
	}

	cube := store.Cube{
		TournamentID: req.TournamentID,
		OwnerName:    req.OwnerName,
		OwnerEmail:   req.OwnerEmail,
		CubeName:     req.CubeName,
		SessionID:    uuid.NewString(),
		Status:       store.CubePendingCheckin,
	}
	if err := h.store.CreateCube(&cube); err != nil {
		slog.Error("failed to create cube", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to create cube"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session_id": cube.SessionID, "cube": cube})
}

// GetSession returns the current state of a check-in session.
func (h *Handlers) GetSession(c *gin.Context) {
	cube, ok := h.sessionCube(c)
	if !ok {
		return
	}

	cards, err := h.store.ListCards(cube.ID)
	if err != nil {
		slog.Error("failed to list cards", "cube", cube.ID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load cards"})
		return
	}

	resp := gin.H{"cube": cube, "cards": cards}
	if cube.AnnotatedImagePath != "" {
		if _, err := os.Stat(cube.AnnotatedImagePath); err == nil {
			resp["annotated_image_url"] = annotatedURL(cube.SessionID)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// UploadImage accepts a multipart photo, runs the detection pipeline,
// persists the detected cards and renders the annotated preview.
func (h *Handlers) UploadImage(c *gin.Context) {
	cube, ok := h.sessionCube(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "no image file provided"})
		return
	}
	if file.Size > h.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "image too large"})
		return
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	uploadPath := filepath.Join(h.cfg.UploadDir, cube.SessionID+ext)
	if err := c.SaveUploadedFile(file, uploadPath); err != nil {
		slog.Error("failed to save upload", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to save image"})
		return
	}
	cube.SourceImagePath = uploadPath

	cards, err := h.service.ProcessImage(uploadPath, cube)
	if err != nil {
		if errors.Is(err, checkin.ErrUnreadableImage) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "uploaded file is not a readable image"})
			return
		}
		slog.Error("image processing failed", "cube", cube.ID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "image processing failed"})
		return
	}

	if err := h.store.AddCards(cards); err != nil {
		slog.Error("failed to persist cards", "cube", cube.ID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to persist cards"})
		return
	}

	annotatedPath := filepath.Join(h.cfg.AnnotatedDir, cube.SessionID+"_annotated.jpg")
	if h.service.RenderAnnotatedImage(uploadPath, cards, annotatedPath) {
		cube.AnnotatedImagePath = annotatedPath
	}
	cube.TotalCards = len(cards)
	if err := h.store.SaveCube(cube); err != nil {
		slog.Error("failed to save cube", "cube", cube.ID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to save cube"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cards":               cards,
		"total_detected":      len(cards),
		"annotated_image_url": annotatedURL(cube.SessionID),
	})
}

// GetAnnotated serves the rendered annotated preview.
func (h *Handlers) GetAnnotated(c *gin.Context) {
	cube, ok := h.sessionCube(c)
	if !ok {
		return
	}
	if cube.AnnotatedImagePath == "" {
		c.JSON(http.StatusNotFound, errorResponse{Error: "annotated image not available"})
		return
	}
	if _, err := os.Stat(cube.AnnotatedImagePath); err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "annotated image not available"})
		return
	}
	c.File(cube.AnnotatedImagePath)
}

// ListSessionCards returns the session's cards in reading order.
func (h *Handlers) ListSessionCards(c *gin.Context) {
	cube, ok := h.sessionCube(c)
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

type updateCardRequest struct {
	ConfirmedName string `json:"confirmed_name"`
}

// UpdateCard confirms or corrects a card name.
func (h *Handlers) UpdateCard(c *gin.Context) {
	cube, ok := h.sessionCube(c)
	if !ok {
		return
	}

	cardID, err := strconv.ParseUint(c.Param("card_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid card id"})
		return
	}

	var req updateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	req.ConfirmedName = strings.TrimSpace(req.ConfirmedName)
	if req.ConfirmedName == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "confirmed_name is required"})
		return
	}

	card, err := h.store.GetCard(uint(cardID), cube.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: "card not found"})
			return
		}
		slog.Error("failed to load card", "card", cardID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load card"})
		return
	}

	h.service.UpdateCardName(card, req.ConfirmedName)
	if err := h.store.SaveCard(card); err != nil {
		slog.Error("failed to save card", "card", card.ID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to save card"})
		return
	}
	c.JSON(http.StatusOK, card)
}

type analyzeRegionRequest struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AnalyzeRegion runs text extraction and name resolution on one
// operator-drawn region of the session's source photo, bypassing
// detection, and persists the resulting card.
func (h *Handlers) AnalyzeRegion(c *gin.Context) {
	cube, ok := h.sessionCube(c)
	if !ok {
		return
	}
	if cube.SourceImagePath == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "no source image uploaded yet"})
		return
	}

	var req analyzeRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	bbox := geometry.RectInt{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	if bbox.Empty() {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "region must have positive width and height"})
		return
	}

	card, err := h.service.AnalyzeRegion(cube.SourceImagePath, bbox, cube)
	if err != nil {
		if errors.Is(err, checkin.ErrUnreadableImage) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "source image is not readable"})
			return
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := h.store.AddCards([]store.Card{*card}); err != nil {
		slog.Error("failed to persist analyzed card", "cube", cube.ID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to persist card"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// Finalize marks the cube checked in.
func (h *Handlers) Finalize(c *gin.Context) {
	cube, ok := h.sessionCube(c)
	if !ok {
		return
	}

	cards, err := h.store.ListCards(cube.ID)
	if err != nil {
		slog.Error("failed to list cards", "cube", cube.ID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load cards"})
		return
	}

	h.service.FinalizeCube(cube, cards)
	if err := h.store.SaveCube(cube); err != nil {
		slog.Error("failed to save cube", "cube", cube.ID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to save cube"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cube": cube, "cards": cards})
}

// sessionCube resolves the :session_id path parameter, writing the error
// response itself when the session is unknown.
func (h *Handlers) sessionCube(c *gin.Context) (*store.Cube, bool) {
	sessionID := c.Param("session_id")
	cube, err := h.store.GetCubeBySession(sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
		} else {
			slog.Error("failed to load session", "session", sessionID, "error", err)
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to load session"})
		}
		return nil, false
	}
	return cube, true
}

func annotatedURL(sessionID string) string {
	return fmt.Sprintf("/api/checkin/%s/annotated", sessionID)
}
