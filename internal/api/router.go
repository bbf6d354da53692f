package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/app"
	iauth "github.com/dumumtergo/server/internal/auth"
	"github.com/dumumtergo/server/internal/handlers"
	"github.com/dumumtergo/server/internal/middleware"
	"github.com/dumumtergo/server/internal/monitoring"
	"github.com/dumumtergo/server/internal/realtime"
	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/mail"
)

// Dependencies carries the externally constructed collaborators the router
// wires into handlers. Google may be nil when Google sign-in is disabled.
type Dependencies struct {
	DB       *gorm.DB
	JWT      *iauth.JWTService
	Registry *realtime.Registry
	Mailer   mail.Mailer
	Google   *iauth.GoogleVerifier
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(cfg *app.Config, deps Dependencies) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("realtime registry must be provided")
	}

	otpService, err := iauth.NewOTPService(deps.DB, deps.Mailer, cfg.Auth.OTPServiceConfig())
	if err != nil {
		return nil, err
	}

	notificationSvc, err := services.NewNotificationService(deps.DB, deps.Registry)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(deps.DB, deps.JWT, otpService, deps.Google)
	if err != nil {
		return nil, err
	}
	vendorSvc, err := services.NewVendorService(deps.DB, deps.JWT, otpService)
	if err != nil {
		return nil, err
	}
	carSvc, err := services.NewCarService(deps.DB)
	if err != nil {
		return nil, err
	}
	reservationSvc, err := services.NewReservationService(deps.DB, carSvc, notificationSvc)
	if err != nil {
		return nil, err
	}
	campingSvc, err := services.NewCampingService(deps.DB, notificationSvc)
	if err != nil {
		return nil, err
	}
	experienceSvc, err := services.NewExperienceService(deps.DB, notificationSvc)
	if err != nil {
		return nil, err
	}
	complaintSvc, err := services.NewComplaintService(deps.DB, notificationSvc)
	if err != nil {
		return nil, err
	}
	ratingSvc, err := services.NewRatingService(deps.DB)
	if err != nil {
		return nil, err
	}
	adminSvc, err := services.NewAdminService(deps.DB, notificationSvc)
	if err != nil {
		return nil, err
	}
	eventSvc, err := services.NewEventService(deps.DB)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	health := monitoring.NewHealthManager()
	health.Register(monitoring.DatabaseCheck(deps.DB, 0))
	health.Register(monitoring.RealtimeCheck(deps.Registry))
	registerHealthRoutes(r, cfg, health)

	requireAuth := middleware.Auth(deps.JWT, deps.DB)
	requireSubscription := middleware.RequireActiveSubscription(deps.DB)
	api := r.Group("/api/v1")

	registerAuthRoutes(api, requireAuth, handlers.NewAuthHandler(userSvc), handlers.NewProfileHandler(userSvc))
	registerVendorRoutes(api, requireAuth, handlers.NewVendorHandler(vendorSvc, ratingSvc))
	registerCarRoutes(api, requireAuth, requireSubscription, handlers.NewCarHandler(carSvc))
	registerReservationRoutes(api, requireAuth, handlers.NewReservationHandler(reservationSvc))
	registerCampingRoutes(api, requireAuth, requireSubscription, handlers.NewCampingHandler(campingSvc))
	registerExperienceRoutes(api, requireAuth, handlers.NewExperienceHandler(experienceSvc))
	registerEventRoutes(api, requireAuth, handlers.NewEventHandler(eventSvc))
	complaintHandler := handlers.NewComplaintHandler(complaintSvc)
	registerComplaintRoutes(api, requireAuth, complaintHandler)
	registerNotificationRoutes(api, requireAuth, handlers.NewNotificationHandler(notificationSvc))
	registerAdminRoutes(api, requireAuth, handlers.NewAdminHandler(adminSvc))
	registerAdminComplaintRoutes(api, requireAuth, complaintHandler)

	// Websocket upgrade endpoint. Authentication happens inside the handler
	// so browser clients can pass the token as a query parameter.
	realtimeHandler := handlers.NewRealtimeHandler(deps.Registry, deps.JWT)
	r.GET("/ws", realtimeHandler.Stream)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
