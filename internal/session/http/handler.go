package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/lesson-booking-backend/internal/auth"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/lesson-booking-backend/internal/session"
)

type Handler struct {
	store  *session.Store
	tokens *auth.TokenManager
}

func NewHandler(store *session.Store, tokens *auth.TokenManager) *Handler {
	return &Handler{
		store:  store,
		tokens: tokens,
	}
}

// Create opens a session with fresh views and returns its token.
func (h *Handler) Create(c *gin.Context) {
	sess := h.store.Create()

	token, expiresAt, err := h.tokens.Issue(sess.ID)
	if err != nil {
		h.store.Close(sess.ID)
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Close discards the current session and everything pending in it.
func (h *Handler) Close(c *gin.Context) {
	h.store.Close(auth.GetSessionID(c))
	c.Status(http.StatusNoContent)
}
