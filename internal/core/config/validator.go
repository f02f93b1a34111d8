package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

func validate(cfg *Config) error {
	if err := validateVersion(cfg); err != nil {
		return err
	}
	if err := validateCache(cfg); err != nil {
		return err
	}
	if err := validateRun(cfg); err != nil {
		return err
	}
	if err := validateLanguages(cfg); err != nil {
		return err
	}
	if err := validatePatterns(cfg); err != nil {
		return err
	}
	if err := validateDatabase(cfg); err != nil {
		return err
	}
	return validateObservability(cfg)
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateCache(cfg *Config) error {
	if cfg.Cache.MemoryEntries < 0 {
		return fmt.Errorf("cache.memory_entries must be >= 0, got %d", cfg.Cache.MemoryEntries)
	}
	if cfg.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be >= 0, got %s", cfg.Cache.TTL)
	}
	if cfg.Cache.IsEnabled() && cfg.Paths.CacheDir == "" {
		return fmt.Errorf("paths.cache_dir must not be empty when the cache is enabled")
	}
	return nil
}

func validateRun(cfg *Config) error {
	if cfg.Run.Workers < 0 {
		return fmt.Errorf("run.workers must be >= 0, got %d", cfg.Run.Workers)
	}
	if cfg.Run.Timeout < 0 {
		return fmt.Errorf("run.timeout must be >= 0, got %s", cfg.Run.Timeout)
	}
	if cfg.Run.FilesPerSecond < 0 {
		return fmt.Errorf("run.files_per_second must be >= 0, got %v", cfg.Run.FilesPerSecond)
	}
	return nil
}

func validateLanguages(cfg *Config) error {
	if len(cfg.Languages.Extensions) == 0 {
		return fmt.Errorf("languages.extensions must list at least one extension")
	}
	return nil
}

func validatePatterns(cfg *Config) error {
	groups := []struct {
		name       string
		patterns   []string
		separators []rune
	}{
		{"exclude.dirs", cfg.Exclude.Dirs, nil},
		{"exclude.files", cfg.Exclude.Files, nil},
		{"check.skip_dynamic_output", cfg.Check.SkipDynamicOutput, []rune{SkipDynamicOutputSeparator}},
	}
	for _, group := range groups {
		for i, pattern := range group.patterns {
			if _, err := glob.Compile(pattern, group.separators...); err != nil {
				return fmt.Errorf("%s[%d] invalid glob %q: %w", group.name, i, pattern, err)
			}
		}
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if !cfg.DB.IsEnabled() {
		return nil
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if cfg.Observability.EnableTracing && cfg.Observability.OTLPEndpoint == "" {
		return fmt.Errorf("observability.otlp_endpoint is required when tracing is enabled")
	}
	if cfg.Observability.Enabled && cfg.Observability.Address == "" {
		return fmt.Errorf("observability.address must not be empty when enabled")
	}
	return nil
}
