// Package api exposes the check-in workflow over HTTP.
package api

import (
	"github.com/gin-gonic/gin"

	"cube-tracker/internal/catalog"
	"cube-tracker/internal/checkin"
	"cube-tracker/internal/config"
	"cube-tracker/internal/store"
)

// Handlers bundles the dependencies shared by all endpoints.
type Handlers struct {
	cfg     config.Config
	store   *store.Store
	service *checkin.Service
	catalog *catalog.Catalog
}

// NewHandlers creates the handler set.
func NewHandlers(cfg config.Config, st *store.Store, svc *checkin.Service, cat *catalog.Catalog) *Handlers {
	return &Handlers{cfg: cfg, store: st, service: svc, catalog: cat}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = h.cfg.MaxUploadBytes

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		ci := api.Group("/checkin")
		{
			ci.POST("/start", h.StartCheckin)
			ci.GET("/:session_id", h.GetSession)
			ci.POST("/:session_id/upload", h.UploadImage)
			ci.GET("/:session_id/annotated", h.GetAnnotated)
			ci.GET("/:session_id/cards", h.ListSessionCards)
			ci.PATCH("/:session_id/cards/:card_id", h.UpdateCard)
			ci.POST("/:session_id/analyze", h.AnalyzeRegion)
			ci.POST("/:session_id/finalize", h.Finalize)
		}

		api.GET("/tournaments", h.ListTournaments)
		api.POST("/tournaments", h.CreateTournament)
		api.GET("/tournaments/:id", h.GetTournament)

		api.GET("/cubes", h.ListCubes)
		api.GET("/cubes/:id", h.GetCube)
		api.GET("/cubes/:id/cards", h.GetCubeCards)
		api.DELETE("/cubes/:id", h.DeleteCube)

		api.GET("/cards/search", h.SearchCards)
	}

	return r
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
