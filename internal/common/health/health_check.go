package health

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"gorm.io/gorm"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"

	maxGoroutines   = 10000
	maxMemoryMB     = 500
	slowDBLatencyMs = 100
	pingTimeout     = 2 * time.Second
)

// HealthStatus represents the overall health of the application
type HealthStatus struct {
	Status    string                     `json:"status"`
	Timestamp time.Time                  `json:"timestamp"`
	Version   string                     `json:"version"`
	Checks    map[string]ComponentHealth `json:"checks"`
	Duration  int64                      `json:"duration_ms"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Healthy  bool                   `json:"healthy"`
	Required bool                   `json:"required"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// SystemMetrics captures current system metrics
type SystemMetrics struct {
	MemoryUsageMB  uint64 `json:"memory_usage_mb"`
	GoroutineCount int    `json:"goroutine_count"`
	CPUNumCores    int    `json:"cpu_num_cores"`
	Uptime         int64  `json:"uptime_seconds"`
}

// Pinger is an optional dependency probed by the checker, such as the Redis cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker provides health check functionality
type HealthChecker struct {
	db              *gorm.DB
	version         string
	startTime       time.Time
	optional        map[string]Pinger
	mu              sync.RWMutex
	lastCheckTime   time.Time
	lastCheckStatus string
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db *gorm.DB, version string) *HealthChecker {
	return &HealthChecker{
		db:        db,
		version:   version,
		startTime: time.Now(),
		optional:  make(map[string]Pinger),
	}
}

// AddOptional registers a dependency whose failure degrades but does not fail
// the service.
func (hc *HealthChecker) AddOptional(name string, p Pinger) {
	hc.mu.Lock()
	hc.optional[name] = p
	hc.mu.Unlock()
}

// Check performs a complete health check
func (hc *HealthChecker) Check(ctx context.Context) HealthStatus {
	start := time.Now()
	status := HealthStatus{
		Timestamp: start,
		Version:   hc.version,
		Checks:    make(map[string]ComponentHealth),
	}

	status.Checks["database"] = hc.checkDatabase(ctx)
	status.Checks["memory"] = hc.checkMemory()

	goroutines := runtime.NumGoroutine()
	status.Checks["goroutines"] = ComponentHealth{
		Healthy: goroutines < maxGoroutines,
		Details: map[string]interface{}{"count": goroutines},
	}

	hc.mu.RLock()
	optional := make(map[string]Pinger, len(hc.optional))
	for name, p := range hc.optional {
		optional[name] = p
	}
	hc.mu.RUnlock()
	for name, p := range optional {
		status.Checks[name] = checkOptional(ctx, p)
	}

	status.Status = StatusHealthy
	for _, check := range status.Checks {
		if check.Healthy {
			continue
		}
		if check.Required {
			status.Status = StatusUnhealthy
			break
		}
		status.Status = StatusDegraded
	}

	status.Duration = time.Since(start).Milliseconds()

	hc.mu.Lock()
	hc.lastCheckTime = start
	hc.lastCheckStatus = status.Status
	hc.mu.Unlock()

	return status
}

// checkDatabase verifies database connectivity and latency
func (hc *HealthChecker) checkDatabase(ctx context.Context) ComponentHealth {
	if hc.db == nil {
		return ComponentHealth{Required: true, Error: "database not initialized"}
	}

	start := time.Now()
	if err := hc.pingDB(ctx); err != nil {
		return ComponentHealth{Required: true, Error: err.Error()}
	}
	latency := time.Since(start).Milliseconds()

	return ComponentHealth{
		Healthy:  true,
		Required: true,
		Details: map[string]interface{}{
			"latency_ms": latency,
			"latency_ok": latency < slowDBLatencyMs,
			"dialect":    hc.db.Dialector.Name(),
		},
	}
}

func (hc *HealthChecker) pingDB(ctx context.Context) error {
	sqlDB, err := hc.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// checkMemory checks memory usage
func (hc *HealthChecker) checkMemory() ComponentHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	memoryMB := m.Alloc / 1024 / 1024
	return ComponentHealth{
		Healthy: memoryMB < maxMemoryMB,
		Details: map[string]interface{}{
			"allocated_mb":   memoryMB,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
	}
}

func checkOptional(ctx context.Context, p Pinger) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return ComponentHealth{Error: err.Error()}
	}
	return ComponentHealth{Healthy: true}
}

// IsHealthy reports the status of the last Check.
func (hc *HealthChecker) IsHealthy() bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.lastCheckStatus == StatusHealthy
}

// IsReady returns true if system is ready to serve traffic
func (hc *HealthChecker) IsReady(ctx context.Context) bool {
	return hc.db != nil && hc.pingDB(ctx) == nil
}

// IsAlive returns true if system is running
func (hc *HealthChecker) IsAlive() bool {
	return true
}

// GetMetrics returns current system metrics
func (hc *HealthChecker) GetMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		MemoryUsageMB:  m.Alloc / 1024 / 1024,
		GoroutineCount: runtime.NumGoroutine(),
		CPUNumCores:    runtime.NumCPU(),
		Uptime:         int64(time.Since(hc.startTime).Seconds()),
	}
}
