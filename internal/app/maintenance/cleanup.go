package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/dumumtergo/server/internal/auth"
	"github.com/dumumtergo/server/internal/services"
	"github.com/dumumtergo/server/pkg/logger"
)

const (
	defaultReservationExpiryDays     = 3
	defaultNotificationRetentionDays = 30
	defaultReservationSpec           = "@hourly"
	defaultNotificationSpec          = "@daily"
	defaultOTPSpec                   = "@hourly"
)

// Cleaner coordinates background maintenance tasks: expiring stale pending
// reservations, pruning old read notifications, and purging dead OTP
// challenges. Any nil dependency results in the corresponding job being
// skipped.
type Cleaner struct {
	reservations  *services.ReservationService
	notifications *services.NotificationService
	otp           *iauth.OTPService
	cron          *cron.Cron
	now           func() time.Time
	log           *zap.Logger
	enabled       bool

	reservationExpiry     time.Duration
	notificationRetention time.Duration
	reservationSchedule   string
	notificationSchedule  string
	otpSchedule           string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cutoff calculations.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithReservationExpiryDays adjusts how long a reservation may stay pending
// before it is expired.
func WithReservationExpiryDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.reservationExpiry = time.Duration(days) * 24 * time.Hour
		}
	}
}

// WithNotificationRetentionDays adjusts how long read notifications are kept.
func WithNotificationRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.notificationRetention = time.Duration(days) * 24 * time.Hour
		}
	}
}

// WithReservationSchedule overrides the cron specification for reservation expiry.
func WithReservationSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.reservationSchedule = spec
		}
	}
}

// WithNotificationSchedule overrides the cron specification for notification pruning.
func WithNotificationSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.notificationSchedule = spec
		}
	}
}

// WithOTPSchedule overrides the cron specification for OTP challenge purging.
func WithOTPSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.otpSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(reservations *services.ReservationService, notifications *services.NotificationService, otp *iauth.OTPService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		reservations:          reservations,
		notifications:         notifications,
		otp:                   otp,
		now:                   time.Now,
		reservationExpiry:     defaultReservationExpiryDays * 24 * time.Hour,
		notificationRetention: defaultNotificationRetentionDays * 24 * time.Hour,
		reservationSchedule:   defaultReservationSpec,
		notificationSchedule:  defaultNotificationSpec,
		otpSchedule:           defaultOTPSpec,
		log:                   logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.reservations != nil || cleaner.notifications != nil || cleaner.otp != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at
// least one job is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.reservations != nil {
		if _, err := c.cron.AddFunc(c.reservationSchedule, func() {
			if _, err := c.reservations.ExpireStalePending(context.Background(), c.now().Add(-c.reservationExpiry)); err != nil {
				c.log.Warn("reservation expiry failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.notifications != nil && c.notificationRetention > 0 {
		if _, err := c.cron.AddFunc(c.notificationSchedule, func() {
			if _, err := c.notifications.PruneRead(context.Background(), c.now().Add(-c.notificationRetention)); err != nil {
				c.log.Warn("notification pruning failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.otp != nil {
		if _, err := c.cron.AddFunc(c.otpSchedule, func() {
			if _, err := c.otp.PurgeExpired(context.Background()); err != nil {
				c.log.Warn("otp purge failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily
// used in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.reservations != nil {
		if _, err := c.reservations.ExpireStalePending(ctx, c.now().Add(-c.reservationExpiry)); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.notifications != nil && c.notificationRetention > 0 {
		if _, err := c.notifications.PruneRead(ctx, c.now().Add(-c.notificationRetention)); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.otp != nil {
		if _, err := c.otp.PurgeExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
