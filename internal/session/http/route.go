package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(r gin.IRouter, h *Handler, sessionMiddleware gin.HandlerFunc) {
	group := r.Group("/sessions")

	group.POST("", h.Create)
	group.DELETE("/current", sessionMiddleware, h.Close)
}
