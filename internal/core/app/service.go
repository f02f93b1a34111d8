package app

import (
	"context"
	"fmt"

	"inspector/internal/core/ports"
	"inspector/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type analysisService struct {
	app *App
}

var _ ports.AnalysisService = (*analysisService)(nil)

func NewAnalysisService(app *App) ports.AnalysisService {
	return &analysisService{app: app}
}

func (a *App) AnalysisService() ports.AnalysisService {
	return NewAnalysisService(a)
}

func (s *analysisService) Check(ctx context.Context, req ports.CheckRequest) (ports.CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.CheckResult{}, err
	}
	if s.app == nil {
		return ports.CheckResult{}, fmt.Errorf("app is required")
	}
	return s.app.Run(ctx, req.Paths)
}

func (s *analysisService) Resolve(ctx context.Context, file, name string) (string, error) {
	ctx, span := observability.Tracer.Start(ctx, "analysisService.Resolve", trace.WithAttributes(
		attribute.String("file", file),
		attribute.String("name", name),
	))
	defer span.End()

	if s.app == nil {
		return "", fmt.Errorf("app is required")
	}
	fqn, err := s.app.ResolveInFile(ctx, name, file)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return fqn, nil
}

func (s *analysisService) PruneCache(ctx context.Context) (ports.PruneResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.PruneResult{}, err
	}
	if s.app == nil {
		return ports.PruneResult{}, fmt.Errorf("app is required")
	}
	res, err := s.app.PruneCache()
	if err != nil {
		return ports.PruneResult{}, err
	}
	return ports.PruneResult{Scanned: res.Scanned, Removed: res.Removed, Kept: res.Kept}, nil
}

func (s *analysisService) Classes(ctx context.Context, fqn string) ([]ports.ClassRef, error) {
	ctx, span := observability.Tracer.Start(ctx, "analysisService.Classes", trace.WithAttributes(
		attribute.String("fqn", fqn),
	))
	defer span.End()

	if s.app == nil {
		return nil, fmt.Errorf("app is required")
	}
	refs, err := s.app.Classes(ctx, fqn)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return refs, nil
}
