package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/api"
	"github.com/dumumtergo/server/internal/app"
	"github.com/dumumtergo/server/internal/app/maintenance"
	iauth "github.com/dumumtergo/server/internal/auth"
	"github.com/dumumtergo/server/internal/database"
	"github.com/dumumtergo/server/internal/realtime"
	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/logger"
	"github.com/dumumtergo/server/pkg/mail"
)

// runtimeStack bundles long-lived components used by the HTTP server.
type runtimeStack struct {
	DB       *gorm.DB
	Registry *realtime.Registry
	Cleaner  *maintenance.Cleaner
	Router   *gin.Engine
}

// bootstrapRuntime initialises the database, realtime registry, background
// jobs, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Registry = realtime.NewRegistry()

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	var mailer mail.Mailer
	if cfg.Email.SMTP.Enabled {
		mailer, err = mail.NewSMTPMailer(cfg.Email.SMTPSettings())
		if err != nil {
			return nil, fmt.Errorf("initialise mailer: %w", err)
		}
	}

	var google *iauth.GoogleVerifier
	if cfg.Auth.Google.Enabled {
		google, err = iauth.NewGoogleVerifier(ctx, cfg.Auth.GoogleVerifierConfig())
		if err != nil {
			log.Warn("google sign-in unavailable", zap.Error(err))
		}
	}

	otpSvc, err := iauth.NewOTPService(stack.DB, mailer, cfg.Auth.OTPServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise otp service: %w", err)
	}
	notificationSvc, err := services.NewNotificationService(stack.DB, stack.Registry)
	if err != nil {
		return nil, fmt.Errorf("initialise notification service: %w", err)
	}
	carSvc, err := services.NewCarService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise car service: %w", err)
	}
	reservationSvc, err := services.NewReservationService(stack.DB, carSvc, notificationSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise reservation service: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(reservationSvc, notificationSvc, otpSvc,
		maintenance.WithReservationExpiryDays(cfg.Maintenance.ReservationExpiryDays),
		maintenance.WithNotificationRetentionDays(cfg.Maintenance.NotificationRetentionDays),
		maintenance.WithReservationSchedule(cfg.Maintenance.ReservationSchedule),
		maintenance.WithNotificationSchedule(cfg.Maintenance.NotificationSchedule),
		maintenance.WithOTPSchedule(cfg.Maintenance.OTPSchedule),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Router, err = api.NewRouter(cfg, api.Dependencies{
		DB:       stack.DB,
		JWT:      jwtSvc,
		Registry: stack.Registry,
		Mailer:   mailer,
		Google:   google,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.OpenAndMigrate(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	if err := database.Close(db); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
