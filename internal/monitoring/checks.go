package monitoring

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/realtime"
)

const defaultDatabaseTimeout = 2 * time.Second

// DatabaseCheck returns a readiness probe that pings the database handle.
func DatabaseCheck(db *gorm.DB, timeout time.Duration) Check {
	if timeout <= 0 {
		timeout = defaultDatabaseTimeout
	}

	return NewCheck("database", func(ctx context.Context) ProbeResult {
		start := time.Now()
		if db == nil {
			return ProbeResult{
				Status:   StatusDown,
				Details:  "database not configured",
				Duration: time.Since(start),
			}
		}

		sqlDB, err := db.DB()
		if err != nil {
			return ResultFromError("database", err, time.Since(start))
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := sqlDB.PingContext(probeCtx); err != nil {
			return ResultFromError("database", err, time.Since(start))
		}

		return ProbeResult{Status: StatusUp, Duration: time.Since(start)}
	})
}

// RealtimeCheck reports the websocket registry state. A missing registry is
// down; an existing one is always up and reports its connection count.
func RealtimeCheck(registry *realtime.Registry) Check {
	return NewCheck("realtime", func(ctx context.Context) ProbeResult {
		start := time.Now()
		if registry == nil {
			return ProbeResult{
				Status:   StatusDown,
				Details:  "registry not configured",
				Duration: time.Since(start),
			}
		}

		return ProbeResult{
			Status:   StatusUp,
			Details:  fmt.Sprintf("%d connected accounts", registry.Size()),
			Duration: time.Since(start),
		}
	})
}
