package routes

import (
	"net/http"
	"time"

	"aviato/internal/auth"
	"aviato/internal/bookings"
	"aviato/internal/flashsales"
	"aviato/internal/flights"
	"aviato/internal/notifications"
	"aviato/internal/refunds"
	"aviato/internal/seats"
	"aviato/internal/shared/config"
	"aviato/internal/shared/database"
	"aviato/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config       *config.Config
	db           *database.DB
	cacheService cache.Service
	notifier     *notifications.Service

	// shared between route groups
	authRepo      auth.Repository
	seatRepo      seats.Repository
	flightService flights.Service
	bookingRepo   bookings.Repository
	flashSaleRepo flashsales.Repository
}

// NewRouter creates a new router instance. notifier may be nil when the
// notification pipeline is unavailable; booking still works without it.
func NewRouter(cfg *config.Config, db *database.DB, notifier *notifications.Service) *Router {
	return &Router{
		config:       cfg,
		db:           db,
		cacheService: cache.NewService(db.GetRedisClient()),
		notifier:     notifier,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupFlightRoutes(api)
		r.setupSeatRoutes(api)
		r.setupFlashSaleRoutes(api)
		r.setupBookingRoutes(api)
		r.setupRefundRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "aviato-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "aviato-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	r.authRepo = auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(r.authRepo, r.config)
	authController := auth.NewController(authService)

	auth.SetupAuthRoutes(rg, authController)
}

func (r *Router) setupFlightRoutes(rg *gin.RouterGroup) {
	flightRepo := flights.NewRepository(r.db.GetPostgreSQL())
	r.seatRepo = seats.NewRepository(r.db.GetPostgreSQL())

	flightService := flights.NewService(flightRepo, r.seatRepo)
	flightService.SetCacheService(r.cacheService)
	r.flightService = flightService

	flights.SetupFlightRoutes(rg, flights.NewController(flightService))
}

func (r *Router) setupSeatRoutes(rg *gin.RouterGroup) {
	seatService := seats.NewService(r.seatRepo, r.config)
	seatService.SetCacheService(r.cacheService)

	seats.SetupSeatRoutes(rg, seats.NewController(seatService))
}

func (r *Router) setupFlashSaleRoutes(rg *gin.RouterGroup) {
	r.flashSaleRepo = flashsales.NewRepository(r.db.GetPostgreSQL())

	flashSaleService := flashsales.NewService(r.flashSaleRepo)
	flashSaleService.SetCacheService(r.cacheService)

	flashsales.SetupFlashSaleRoutes(rg, flashsales.NewController(flashSaleService))
}

func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	r.bookingRepo = bookings.NewRepository(r.db.GetPostgreSQL())

	bookingService := bookings.NewService(
		r.bookingRepo,
		r.seatRepo,
		r.flightService,
		r.flashSaleRepo,
		r.authRepo,
		r.config,
	)
	bookingService.SetCacheService(r.cacheService)
	if r.notifier != nil {
		bookingService.SetNotifier(r.notifier)
	}

	bookings.SetupBookingRoutes(rg, bookings.NewController(bookingService))
}

func (r *Router) setupRefundRoutes(rg *gin.RouterGroup) {
	refundRepo := refunds.NewRepository(r.db.GetPostgreSQL())

	refundService := refunds.NewService(refundRepo, r.bookingRepo, r.flightService)
	refundService.SetCacheService(r.cacheService)
	if r.notifier != nil {
		refundService.SetNotifier(r.notifier)
	}

	refunds.SetupRefundRoutes(rg, refunds.NewController(refundService))
}
