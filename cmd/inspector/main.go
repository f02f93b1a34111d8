package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"inspector/internal/core/app"
	"inspector/internal/core/config"
	"inspector/internal/shared/observability"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "inspector",
	Short: "Namespace-aware class resolution and checking for PHP sources",
	Long: `inspector parses PHP sources with tree-sitter, caches the syntax trees by
content hash and resolves class references against each file's namespace and
imports.

Examples:
  inspector check                      # Check the configured scan paths
  inspector check src lib              # Check specific roots
  inspector resolve src/User.php Model # Resolve a name as written in a file
  inspector cache prune                # Bound the on-disk parse cache`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ./"+config.DefaultFileName+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(checkCmd, resolveCmd, classesCmd, cacheCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// exitError carries a process exit code without printing anything further.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFileName); err == nil {
			path = config.DefaultFileName
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config %q: %w", path, err)
		}
		cfg = loaded
	}

	config.ApplyEnvOverrides(cfg)
	if err := config.Finalize(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// session bundles the app with the observability hooks started for it.
type session struct {
	app      *app.App
	shutdown []func(context.Context) error
}

func openSession(ctx context.Context, scanPaths []string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if len(scanPaths) > 0 {
		cfg.ScanPaths = scanPaths
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved paths", "project_root", paths.ProjectRoot, "cache_dir", paths.CacheDir, "db", paths.DBPath)

	a, err := app.New(cfg, paths)
	if err != nil {
		return nil, fmt.Errorf("initialize app: %w", err)
	}
	s := &session{app: a}

	if cfg.Observability.EnableTracing {
		shutdown, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint)
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			s.shutdown = append(s.shutdown, shutdown)
		}
	}
	if cfg.Observability.Enabled || cfg.Observability.EnableMetrics {
		srv := observability.NewServer(cfg.Observability.Address, app.NewHealthService(a))
		if err := srv.Start(ctx); err != nil {
			slog.Warn("observability server not started", "error", err)
		} else {
			s.shutdown = append(s.shutdown, srv.Stop)
		}
	}
	return s, nil
}

func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(s.shutdown) - 1; i >= 0; i-- {
		if err := s.shutdown[i](ctx); err != nil {
			slog.Warn("shutdown hook failed", "error", err)
		}
	}
	if err := s.app.Close(); err != nil {
		slog.Warn("failed to close app", "error", err)
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
