package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/lesson-booking-backend/internal/auth"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/lesson-booking-backend/internal/search"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func viewOf(c *gin.Context) *search.View {
	return auth.GetSession(c).Search
}

func (h *Handler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, NewResultResponse(viewOf(c).Snapshot()))
}

func (h *Handler) SetFilter(c *gin.Context) {
	var body SetFilterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s, err := viewOf(c).SetFilter(body.Key, body.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResultResponse(s))
}

func (h *Handler) ResetFilters(c *gin.Context) {
	c.JSON(http.StatusOK, NewResultResponse(viewOf(c).Reset()))
}

func (h *Handler) SetSort(c *gin.Context) {
	var body SetSortRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	s, err := viewOf(c).SetSort(body.Sort)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResultResponse(s))
}

func (h *Handler) LoadMore(c *gin.Context) {
	c.JSON(http.StatusAccepted, NewResultResponse(viewOf(c).LoadMore()))
}
