package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	attachmentHttp "github.com/nekogravitycat/lesson-booking-backend/internal/attachment/http"
	"github.com/nekogravitycat/lesson-booking-backend/internal/auth"
	bookingHttp "github.com/nekogravitycat/lesson-booking-backend/internal/booking/http"
	messagingHttp "github.com/nekogravitycat/lesson-booking-backend/internal/messaging/http"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/response"
	searchHttp "github.com/nekogravitycat/lesson-booking-backend/internal/search/http"
	"github.com/nekogravitycat/lesson-booking-backend/internal/session"
	sessionHttp "github.com/nekogravitycat/lesson-booking-backend/internal/session/http"
)

// Config holds what the router needs to assemble middleware and handlers.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	RateLimit    int

	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Sessions *session.Store
	Tokens   *auth.TokenManager

	SessionHandler    *sessionHttp.Handler
	BookingHandler    *bookingHttp.Handler
	SearchHandler     *searchHttp.Handler
	MessagingHandler  *messagingHttp.Handler
	AttachmentHandler *attachmentHttp.Handler
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (recovery, logging, metrics, CORS, rate limiting)
// and registers the routes of every module.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(cfg.Logger), cfg.Metrics.Middleware())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": cfg.Sessions.Len()})
	})
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "not found"})
	})

	sessionMiddleware := auth.SessionRequired(cfg.Tokens, cfg.Sessions)

	v1 := r.Group("/v1")
	v1.Use(RateLimit(cfg.RateLimit, cfg.Logger))
	{
		sessionHttp.RegisterRoutes(v1, cfg.SessionHandler, sessionMiddleware)
		bookingHttp.RegisterRoutes(v1, cfg.BookingHandler, sessionMiddleware)
		searchHttp.RegisterRoutes(v1, cfg.SearchHandler, sessionMiddleware)
		messagingHttp.RegisterRoutes(v1, cfg.MessagingHandler, cfg.AttachmentHandler.Upload, sessionMiddleware)
		attachmentHttp.RegisterRoutes(v1, cfg.AttachmentHandler)
	}

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
