package handler

import "github.com/gin-gonic/gin"

// Handlers groups the HTTP handlers mounted by RegisterRoutes. Nil handlers are skipped.
type Handlers struct {
	Tables  *TableHandler
	Movies  *MovieHandler
	Metrics *MetricsHandler
}

// RegisterRoutes mounts the table, movie and observability endpoints.
func RegisterRoutes(r gin.IRouter, h Handlers) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
	}

	if h.Tables != nil {
		r.GET("/", h.Tables.Index)
		tables := r.Group("/tables")
		tables.GET("/:slug", h.Tables.Show)
		tables.POST("/:slug", h.Tables.Dispatch)
		tables.GET("/:slug/settings", h.Tables.Settings)
		tables.POST("/:slug/settings", h.Tables.SaveSettings)
		tables.DELETE("/:slug/settings", h.Tables.ResetSettings)
	}

	if h.Movies != nil {
		r.GET("/movies/:id", h.Movies.Detail)
		r.GET("/movies/:id/modal", h.Movies.Modal)
		r.GET("/action", h.Movies.ActionPage)
	}
}
