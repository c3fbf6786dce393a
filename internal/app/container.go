package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/lesson-booking-backend/internal/api"
	"github.com/nekogravitycat/lesson-booking-backend/internal/attachment"
	attachmentHttp "github.com/nekogravitycat/lesson-booking-backend/internal/attachment/http"
	"github.com/nekogravitycat/lesson-booking-backend/internal/auth"
	"github.com/nekogravitycat/lesson-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/lesson-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/lesson-booking-backend/internal/catalog"
	"github.com/nekogravitycat/lesson-booking-backend/internal/messaging"
	messagingHttp "github.com/nekogravitycat/lesson-booking-backend/internal/messaging/http"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/scheduler"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/lesson-booking-backend/internal/search"
	searchHttp "github.com/nekogravitycat/lesson-booking-backend/internal/search/http"
	"github.com/nekogravitycat/lesson-booking-backend/internal/session"
	sessionHttp "github.com/nekogravitycat/lesson-booking-backend/internal/session/http"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	RateLimit    int

	// DBPool is optional; a nil pool keeps booking requests and attachment
	// metadata in memory.
	DBPool  *pgxpool.Pool
	Storage storage.Storage
	Logger  *zap.Logger

	SessionSecret   string
	SessionTTL      time.Duration
	SessionTokenTTL time.Duration
	BcryptCost      int

	PaymentDelay         time.Duration
	ConfirmDelay         time.Duration
	MessageDeliveryDelay time.Duration
	ThreadLoadDelay      time.Duration
	LoadMoreDelay        time.Duration
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router   *gin.Engine
	Sessions *session.Store
	Bookings booking.Service
	Metrics  *metrics.Metrics
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}

	m := metrics.New("lesson_booking")
	tokens := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTokenTTL)

	// Booking request archive
	var bookingRepo booking.Repository
	var attachmentRepo attachment.Repository
	if cfg.DBPool != nil {
		bookingRepo = booking.NewPgxRepository(cfg.DBPool)
		attachmentRepo = attachment.NewPgxRepository(cfg.DBPool)
	} else {
		bookingRepo = booking.NewMemoryRepository()
		attachmentRepo = attachment.NewMemoryRepository()
	}
	bookingService := booking.NewService(bookingRepo, booking.NewBcryptCardHasher(cfg.BcryptCost))
	attachmentService := attachment.NewService(attachmentRepo, cfg.Storage, log)

	// Per-session views
	factory := func(id string, sched *scheduler.Scheduler) session.Controllers {
		return session.Controllers{
			Booking: booking.NewFlow(booking.FlowConfig{
				SessionID:    id,
				PaymentDelay: cfg.PaymentDelay,
				ConfirmDelay: cfg.ConfirmDelay,
				OnCompleted:  func(*booking.Request) { m.BookingCompleted() },
			}, sched, cat, bookingService, log),
			Search: search.NewView(cat.Instructors(), sched, cfg.LoadMoreDelay),
			Messaging: messaging.NewView(cat, sched, messaging.Config{
				LoadDelay:     cfg.ThreadLoadDelay,
				DeliveryDelay: cfg.MessageDeliveryDelay,
				OnSent:        func(messaging.Message) { m.MessageSent() },
			}),
		}
	}
	sessions := session.NewStore(factory, cfg.SessionTTL, log, session.WithActiveGauge(m.SetActiveSessions))

	router := api.NewRouter(api.Config{
		IsProduction:      cfg.IsProduction,
		ProdOrigins:       cfg.ProdOrigins,
		RateLimit:         cfg.RateLimit,
		Logger:            log,
		Metrics:           m,
		Sessions:          sessions,
		Tokens:            tokens,
		SessionHandler:    sessionHttp.NewHandler(sessions, tokens),
		BookingHandler:    bookingHttp.NewHandler(bookingService, cat),
		SearchHandler:     searchHttp.NewHandler(),
		MessagingHandler:  messagingHttp.NewHandler(attachmentService),
		AttachmentHandler: attachmentHttp.NewHandler(attachmentService, log),
	})

	return &Container{
		Router:   router,
		Sessions: sessions,
		Bookings: bookingService,
		Metrics:  m,
	}, nil
}
