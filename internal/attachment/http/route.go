package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the public attachment download routes. Uploads
// are registered with the messaging routes since they need a session.
func RegisterRoutes(r gin.IRouter, h *Handler) {
	group := r.Group("/attachments")

	group.GET("/:id", h.ServeFile)
	group.GET("/:id/thumbnail", h.ServeThumbnail)
}
