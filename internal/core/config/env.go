package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: INSPECTOR_[SECTION]_[KEY] (e.g., INSPECTOR_CACHE_TTL).
func ApplyEnvOverrides(cfg *Config) {
	// Paths
	setEnv(&cfg.Paths.ProjectRoot, "INSPECTOR_PATHS_PROJECT_ROOT", parseString)
	setEnv(&cfg.Paths.CacheDir, "INSPECTOR_PATHS_CACHE_DIR", parseString)
	setEnv(&cfg.Paths.DatabaseDir, "INSPECTOR_PATHS_DATABASE_DIR", parseString)

	// Cache
	setEnv(&cfg.Cache.Enabled, "INSPECTOR_CACHE_ENABLED", parseBoolPtr)
	setEnv(&cfg.Cache.MemoryEntries, "INSPECTOR_CACHE_MEMORY_ENTRIES", strconv.Atoi)
	setEnv(&cfg.Cache.MaxEntries, "INSPECTOR_CACHE_MAX_ENTRIES", strconv.Atoi)
	setEnv(&cfg.Cache.TTL, "INSPECTOR_CACHE_TTL", time.ParseDuration)

	// Run
	setEnv(&cfg.Run.Workers, "INSPECTOR_RUN_WORKERS", strconv.Atoi)
	setEnv(&cfg.Run.Timeout, "INSPECTOR_RUN_TIMEOUT", time.ParseDuration)
	setEnv(&cfg.Run.FilesPerSecond, "INSPECTOR_RUN_FILES_PER_SECOND", parseFloat)

	// Database
	setEnv(&cfg.DB.Enabled, "INSPECTOR_DB_ENABLED", parseBoolPtr)
	setEnv(&cfg.DB.Path, "INSPECTOR_DB_PATH", parseString)
	setEnv(&cfg.DB.BusyTimeout, "INSPECTOR_DB_BUSY_TIMEOUT", time.ParseDuration)

	// Observability
	setEnv(&cfg.Observability.Enabled, "INSPECTOR_OBSERVABILITY_ENABLED", parseBool)
	setEnv(&cfg.Observability.Address, "INSPECTOR_OBSERVABILITY_ADDRESS", parseString)
	setEnv(&cfg.Observability.OTLPEndpoint, "INSPECTOR_OBSERVABILITY_OTLP_ENDPOINT", parseString)
	setEnv(&cfg.Observability.EnableTracing, "INSPECTOR_OBSERVABILITY_ENABLE_TRACING", parseBool)
	setEnv(&cfg.Observability.EnableMetrics, "INSPECTOR_OBSERVABILITY_ENABLE_METRICS", parseBool)
}

// setEnv leaves target untouched when key is unset or its value does not
// parse.
func setEnv[T any](target *T, key string, parse func(string) (T, error)) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	v, err := parse(strings.TrimSpace(val))
	if err != nil {
		slog.Warn("ignoring invalid env override", "key", key, "value", val, "error", err)
		return
	}
	slog.Debug("applying env override", "key", key, "value", val)
	*target = v
}

func parseString(s string) (string, error) { return s, nil }

func parseBool(s string) (bool, error) { return strconv.ParseBool(strings.ToLower(s)) }

func parseBoolPtr(s string) (*bool, error) {
	b, err := parseBool(s)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
