package app

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"inspector/internal/core/errors"
	"inspector/internal/core/ports"
	"inspector/internal/engine/resolver"
	"inspector/internal/shared/observability"
	"inspector/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Run checks every source file under roots on a bounded worker pool.
// Per-file failures are reported in the result and never stop other
// files; only cancellation or the run deadline aborts the run.
func (a *App) Run(ctx context.Context, roots []string) (ports.CheckResult, error) {
	start := time.Now()
	res := ports.CheckResult{RunID: a.RunID}

	if len(roots) == 0 {
		roots = a.Paths.ScanPaths
	}
	ctx, span := observability.Tracer.Start(ctx, "app.Run", trace.WithAttributes(
		attribute.String("run_id", a.RunID),
		attribute.Int("roots", len(roots)),
	))
	defer span.End()

	if a.Config.Run.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.Run.Timeout)
		defer cancel()
	}

	files, err := a.ScanDirectories(roots)
	if err != nil {
		span.RecordError(err)
		return res, err
	}
	slog.Info("check run starting", "run_id", a.RunID, "files", len(files), "workers", a.workers())

	results := make([]ports.FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		i, file := i, file
		g.Go(func() error {
			if err := a.limiter.Wait(gctx, 1); err != nil {
				return err
			}
			result, err := a.checkFile(gctx, file)
			results[i] = result
			return err
		})
	}
	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	for _, r := range results {
		if r.File == "" {
			continue
		}
		res.Files = append(res.Files, r)
		res.Checked++
		if r.Status != ports.StatusOK {
			res.Failed++
		}
	}
	res.UnitsBuilt = a.registry.Builds()
	stats := a.cache.Stats()
	res.Cache = ports.CacheStats{
		MemoryHits:    stats.MemoryHits,
		DiskHits:      stats.DiskHits,
		Misses:        stats.Misses,
		FormatErrors:  stats.FormatErrors,
		MemoryEntries: stats.MemoryEntries,
	}
	res.Duration = time.Since(start)
	observability.AnalysisDuration.WithLabelValues("check").Observe(res.Duration.Seconds())

	if runErr != nil {
		span.RecordError(runErr)
		return res, runErr
	}

	if err := a.collectIndex(ctx, &res); err != nil {
		slog.Warn("failed to read class index", "run_id", a.RunID, "error", err)
	}
	if a.cache.Dir() != "" {
		if _, err := a.PruneCache(); err != nil {
			slog.Warn("failed to prune parse cache", "dir", a.cache.Dir(), "error", err)
		}
	}

	snap := util.TakeRuntimeSnapshot()
	slog.Info("check run finished",
		"run_id", a.RunID,
		"checked", res.Checked,
		"failed", res.Failed,
		"units", res.UnitsBuilt,
		"heap_mb", snap.HeapMB,
		"goroutines", snap.Goroutines,
		"duration", res.Duration,
	)
	return res, nil
}

// checkFile returns a non-nil error only when the run must stop.
func (a *App) checkFile(ctx context.Context, file string) (ports.FileResult, error) {
	result := ports.FileResult{File: file, Status: ports.StatusOK}

	unit, err := a.registry.Check(ctx, file, resolver.CheckOptions{})
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return ports.FileResult{}, err
		}
		result.Err = err
		switch {
		case errors.IsCode(err, errors.CodeSyntax):
			result.Status = ports.StatusSyntaxError
		case errors.IsCode(err, errors.CodeMalformedNamespace):
			result.Status = ports.StatusMalformedNamespace
		default:
			result.Status = ports.StatusFailed
		}
		observability.FilesCheckedTotal.WithLabelValues(result.Status).Inc()
		slog.Warn("file check failed", "path", file, "status", result.Status, "error", err)
		return result, nil
	}

	result.Namespace = unit.Namespace()
	result.Aliases = len(unit.Aliases())
	result.SkipDynamicOutputCheck = unit.SkipDynamicOutputCheck()
	observability.FilesCheckedTotal.WithLabelValues(result.Status).Inc()
	return result, nil
}

func (a *App) collectIndex(ctx context.Context, res *ports.CheckResult) error {
	if a.index == nil {
		return nil
	}
	count, err := a.index.Count(ctx)
	if err != nil {
		return err
	}
	res.Classes = count

	unknown, err := a.index.UnknownParents(ctx)
	if err != nil {
		return err
	}
	res.UnknownParents = classRefs(unknown)

	if removed, err := a.index.PruneRuns(ctx); err != nil {
		return err
	} else if removed > 0 {
		slog.Debug("removed class rows from earlier runs", "rows", removed)
	}
	return nil
}
