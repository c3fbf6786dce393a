package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(r gin.IRouter, h *Handler, sessionMiddleware gin.HandlerFunc) {
	group := r.Group("/booking")
	group.Use(sessionMiddleware)
	{
		group.GET("", h.Get)
		group.PUT("/draft", h.MergeDraft)
		group.GET("/steps/:step/form", h.Form)
		group.POST("/steps/next", h.Next)
		group.POST("/steps/previous", h.Previous)
		group.POST("/steps/:step", h.Jump)
		group.GET("/schedule/dates", h.Dates)
		group.GET("/schedule/dates/:date", h.TimeOptions)
		group.PUT("/schedule/date", h.SelectDate)
		group.PUT("/schedule/time", h.SelectTime)
		group.POST("/submit", h.Submit)
		group.GET("/confirmation/qr", h.ConfirmationQR)
	}

	requests := r.Group("/booking-requests")
	requests.Use(sessionMiddleware)
	{
		requests.GET("", h.ListRequests)
		requests.GET("/:id", h.GetRequest)
	}
}
