package monitoring_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	testutil "github.com/dumumtergo/server/internal/database/testutil"
	"github.com/dumumtergo/server/internal/monitoring"
	"github.com/dumumtergo/server/internal/realtime"
)

func TestHealthManagerEvaluate(t *testing.T) {
	manager := monitoring.NewHealthManager()
	manager.Register(monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.Register(monitoring.NewCheck("realtime", func(ctx context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "registry not configured"}
	}))

	report := manager.Evaluate(context.Background())
	require.False(t, report.Success)
	require.Equal(t, monitoring.StatusDown, report.Status)
	require.Len(t, report.Checks, 2)
}

func TestHealthManagerEmptyReportsUp(t *testing.T) {
	report := monitoring.NewHealthManager().Evaluate(context.Background())
	require.True(t, report.Success)
	require.Equal(t, monitoring.StatusUp, report.Status)
	require.Empty(t, report.Checks)
}

func TestDatabaseCheck(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	result := monitoring.DatabaseCheck(db, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)

	missing := monitoring.DatabaseCheck(nil, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, missing.Status)
}

func TestRealtimeCheck(t *testing.T) {
	result := monitoring.RealtimeCheck(realtime.NewRegistry()).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)
	require.Contains(t, result.Details, "0 connected")

	missing := monitoring.RealtimeCheck(nil).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, missing.Status)
}
