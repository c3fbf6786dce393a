package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the messaging routes. upload handles attachment
// uploads for the current session.
func RegisterRoutes(r gin.IRouter, h *Handler, upload gin.HandlerFunc, sessionMiddleware gin.HandlerFunc) {
	group := r.Group("/messaging")
	group.Use(sessionMiddleware)
	{
		group.GET("", h.Conversation)
		group.GET("/threads", h.ListThreads)
		group.POST("/threads/:id/select", h.SelectThread)
		group.POST("/messages", h.SendMessage)
		group.POST("/attachments", upload)
	}
}
