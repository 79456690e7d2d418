package health

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

func TestCheck_Healthy(t *testing.T) {
	hc := NewHealthChecker(openTestDB(t), "test")
	hc.AddOptional("redis", stubPinger{})

	status := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, "test", status.Version)
	assert.True(t, status.Checks["database"].Healthy)
	assert.Equal(t, "sqlite", status.Checks["database"].Details["dialect"])
	assert.True(t, status.Checks["redis"].Healthy)
	assert.True(t, hc.IsHealthy())
	assert.True(t, hc.IsReady(context.Background()))
	assert.True(t, hc.IsAlive())
}

func TestCheck_OptionalFailureDegrades(t *testing.T) {
	hc := NewHealthChecker(openTestDB(t), "test")
	hc.AddOptional("redis", stubPinger{err: fmt.Errorf("connection refused")})

	status := hc.Check(context.Background())

	assert.Equal(t, StatusDegraded, status.Status)
	assert.Equal(t, "connection refused", status.Checks["redis"].Error)
	assert.False(t, hc.IsHealthy())
	assert.True(t, hc.IsReady(context.Background()))
}

func TestCheck_MissingDatabaseIsUnhealthy(t *testing.T) {
	hc := NewHealthChecker(nil, "test")

	status := hc.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Equal(t, "database not initialized", status.Checks["database"].Error)
	assert.False(t, hc.IsReady(context.Background()))
}

func TestGetMetrics(t *testing.T) {
	m := NewHealthChecker(nil, "test").GetMetrics()
	assert.Positive(t, m.GoroutineCount)
	assert.Positive(t, m.CPUNumCores)
}
