package app

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"inspector/internal/core/config"
	"inspector/internal/core/errors"
	"inspector/internal/core/ports"
	"inspector/internal/engine/cache"
	"inspector/internal/engine/index"
	"inspector/internal/engine/parser"
	"inspector/internal/engine/resolver"
	"inspector/internal/shared/util"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
)

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths
	RunID  string

	cache    *cache.ParseCache
	registry *resolver.Registry
	index    *index.Store
	limiter  *util.Limiter

	extensions   map[string]bool
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	skipDynamic  []glob.Glob
}

// Dependencies lets callers replace the parser and class checker. A nil
// Checker disables class checks.
type Dependencies struct {
	Parser  cache.TreeParser
	Checker resolver.ClassChecker
}

// New wires the tree-sitter parser and, when the database is enabled, the
// SQLite class index as the class checker.
func New(cfg *config.Config, paths config.ResolvedPaths) (*App, error) {
	runID := uuid.NewString()

	var store *index.Store
	if cfg.DB.IsEnabled() {
		s, err := index.Open(paths.DBPath, cfg.DB.BusyTimeout, runID)
		if err != nil {
			return nil, err
		}
		store = s
	}

	deps := Dependencies{Parser: parser.NewParser()}
	if store != nil {
		deps.Checker = store
	}
	a, err := newApp(cfg, paths, runID, deps)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.index = store
	return a, nil
}

func NewWithDependencies(cfg *config.Config, paths config.ResolvedPaths, deps Dependencies) (*App, error) {
	return newApp(cfg, paths, uuid.NewString(), deps)
}

func newApp(cfg *config.Config, paths config.ResolvedPaths, runID string, deps Dependencies) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Parser == nil {
		return nil, fmt.Errorf("parser dependency is required")
	}

	excludeDirs, err := util.CompileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	excludeFiles, err := util.CompileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}
	skipDynamic, err := util.CompileGlobs(cfg.Check.SkipDynamicOutput, "skip dynamic output", config.SkipDynamicOutputSeparator)
	if err != nil {
		return nil, err
	}

	extensions := make(map[string]bool, len(cfg.Languages.Extensions))
	for _, ext := range cfg.Languages.Extensions {
		extensions[strings.ToLower(ext)] = true
	}

	a := &App{
		Config:       cfg,
		Paths:        paths,
		RunID:        runID,
		limiter:      util.NewLimiter(cfg.Run.FilesPerSecond, int(cfg.Run.FilesPerSecond)),
		extensions:   extensions,
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
		skipDynamic:  skipDynamic,
	}
	a.cache = cache.New(deps.Parser, cache.Options{
		Dir:           paths.CacheDir,
		MemoryEntries: cfg.Cache.MemoryEntries,
	})
	a.registry = resolver.NewRegistry(a.cache, resolver.Options{
		Checker:           deps.Checker,
		SkipDynamicOutput: a.skipDynamicOutput,
	})
	return a, nil
}

func (a *App) Registry() *resolver.Registry { return a.registry }

func (a *App) Cache() *cache.ParseCache { return a.cache }

// Index is nil when the database is disabled.
func (a *App) Index() *index.Store { return a.index }

func (a *App) workers() int {
	if a.Config.Run.Workers > 0 {
		return a.Config.Run.Workers
	}
	return runtime.NumCPU()
}

// ResolveInFile resolves name in the context of file.
func (a *App) ResolveInFile(ctx context.Context, name, file string) (string, error) {
	return a.registry.ResolveInFile(ctx, name, file)
}

// PruneCache bounds the disk cache using the configured limits.
func (a *App) PruneCache() (cache.PruneResult, error) {
	start := time.Now()
	res, err := a.cache.Prune(a.Config.Cache.MaxEntries, a.Config.Cache.TTL)
	if err != nil {
		return res, err
	}
	slog.Info("parse cache pruned", "dir", a.cache.Dir(), "scanned", res.Scanned, "removed", res.Removed, "kept", res.Kept, "duration", time.Since(start))
	return res, nil
}

// Classes reads the class index written by this app's runs. It fails with
// CodeNotSupported when the database is disabled.
func (a *App) Classes(ctx context.Context, fqn string) ([]ports.ClassRef, error) {
	if a.index == nil {
		return nil, errors.New(errors.CodeNotSupported, "class index is disabled (db.enabled = false)")
	}

	var (
		records []index.ClassRecord
		err     error
	)
	if fqn = strings.TrimPrefix(strings.TrimSpace(fqn), parser.NamespaceSeparator); fqn != "" {
		records, err = a.index.Lookup(ctx, fqn)
	} else {
		records, err = a.index.Classes(ctx)
	}
	if err != nil {
		return nil, err
	}
	return classRefs(records), nil
}

func classRefs(records []index.ClassRecord) []ports.ClassRef {
	out := make([]ports.ClassRef, 0, len(records))
	for _, rec := range records {
		out = append(out, ports.ClassRef{
			FQN:        rec.FQN,
			File:       rec.File,
			Line:       rec.Line,
			Parent:     rec.Parent,
			Interfaces: rec.Interfaces,
		})
	}
	return out
}

func (a *App) Close() error {
	if a.index != nil {
		return a.index.Close()
	}
	return nil
}
