package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(r gin.IRouter, h *Handler, sessionMiddleware gin.HandlerFunc) {
	group := r.Group("/search")
	group.Use(sessionMiddleware)
	{
		group.GET("", h.Get)
		group.PUT("/filters", h.SetFilter)
		group.DELETE("/filters", h.ResetFilters)
		group.PUT("/sort", h.SetSort)
		group.POST("/load-more", h.LoadMore)
	}
}
