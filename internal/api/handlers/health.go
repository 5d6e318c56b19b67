package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/models"
	"github.com/shirou/gopsutil/v3/mem"
)

var startTime = time.Now()

// HealthChecker is implemented by the database and Redis connections.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SnapshotSource exposes the currently served snapshot.
type SnapshotSource interface {
	Snapshot() *models.Snapshot
}

type HealthHandler struct {
	db        HealthChecker
	redis     HealthChecker
	snapshots SnapshotSource
	version   string
}

type SnapshotHealth struct {
	ID       string    `json:"id"`
	LoadedAt time.Time `json:"loaded_at"`
	Age      string    `json:"age"`
}

type MemoryHealth struct {
	TotalBytes  uint64  `json:"total_bytes"`
	UsedBytes   uint64  `json:"used_bytes"`
	UsedPercent float64 `json:"used_percent"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Snapshot  *SnapshotHealth   `json:"snapshot,omitempty"`
	Memory    *MemoryHealth     `json:"memory,omitempty"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
}

// NewHealthHandler creates the health handler. A nil redis means the cache is disabled.
func NewHealthHandler(db HealthChecker, redis HealthChecker, snapshots SnapshotSource, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     redis,
		snapshots: snapshots,
		version:   version,
	}
}

// HealthCheck handles GET /health. The service is healthy when the database
// answers and a snapshot is being served; Redis is advisory.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string)
	healthy := true

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			services["database"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			services["database"] = "healthy"
		}
	} else {
		services["database"] = "unhealthy: not configured"
		healthy = false
	}

	if h.redis != nil {
		if err := h.redis.HealthCheck(ctx); err != nil {
			services["redis"] = "degraded: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "disabled"
	}

	response := HealthResponse{
		Timestamp: time.Now(),
		Services:  services,
		Version:   h.version,
		Uptime:    time.Since(startTime).String(),
	}

	if snap := h.snapshots.Snapshot(); snap != nil {
		services["snapshot"] = "healthy"
		response.Snapshot = &SnapshotHealth{
			ID:       snap.ID.String(),
			LoadedAt: snap.LoadedAt,
			Age:      time.Since(snap.LoadedAt).Round(time.Second).String(),
		}
	} else {
		services["snapshot"] = "unhealthy: not loaded"
		healthy = false
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		response.Memory = &MemoryHealth{
			TotalBytes:  vm.Total,
			UsedBytes:   vm.Used,
			UsedPercent: vm.UsedPercent,
		}
	}

	if healthy {
		response.Status = "healthy"
		c.JSON(http.StatusOK, response)
		return
	}
	response.Status = "unhealthy"
	c.JSON(http.StatusServiceUnavailable, response)
}
