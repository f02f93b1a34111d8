package app

import (
	"context"
	"fmt"
	"time"

	"inspector/internal/shared/observability"
)

type HealthService struct {
	app *App
}

var _ observability.HealthChecker = (*HealthService)(nil)

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	// Parse cache
	stats := s.app.cache.Stats()
	tier := "memory"
	if dir := s.app.cache.Dir(); dir != "" {
		tier = "memory+disk"
	}
	status.Components["parse_cache"] = fmt.Sprintf("ok (%s, %d entries in memory, %d misses)", tier, stats.MemoryEntries, stats.Misses)

	// Registry
	status.Components["registry"] = fmt.Sprintf("ok (%d units)", s.app.registry.Len())

	// Class index
	if s.app.index != nil {
		if err := s.app.index.Ping(ctx); err != nil {
			status.Status = "degraded"
			status.Components["class_index"] = "unreachable: " + err.Error()
		} else {
			status.Components["class_index"] = "ok"
		}
	} else if s.app.Config.DB.IsEnabled() {
		status.Status = "degraded"
		status.Components["class_index"] = "missing but enabled in config"
	}

	return status
}
