package config

import (
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	ScanPaths     []string      `toml:"scan_paths"`
	Paths         Paths         `toml:"paths"`
	Cache         Cache         `toml:"cache"`
	Run           Run           `toml:"run"`
	Languages     Languages     `toml:"languages"`
	Exclude       Exclude       `toml:"exclude"`
	Check         Check         `toml:"check"`
	DB            Database      `toml:"db"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	ProjectRoot string `toml:"project_root"`
	CacheDir    string `toml:"cache_dir"`
	DatabaseDir string `toml:"database_dir"`
}

type Cache struct {
	Enabled       *bool         `toml:"enabled"`
	MemoryEntries int           `toml:"memory_entries"`
	MaxEntries    int           `toml:"max_entries"`
	TTL           time.Duration `toml:"ttl"`
}

func (c Cache) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

type Run struct {
	Workers        int           `toml:"workers"`
	Timeout        time.Duration `toml:"timeout"`
	FilesPerSecond float64       `toml:"files_per_second"`
}

type Languages struct {
	Extensions []string `toml:"extensions"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

// SkipDynamicOutputSeparator is the separator `*` in check.skip_dynamic_output
// patterns never crosses. Validation and matching both compile with it.
const SkipDynamicOutputSeparator = '/'

type Check struct {
	// SkipDynamicOutput lists glob patterns of files exempt from the
	// dynamic output check.
	SkipDynamicOutput []string `toml:"skip_dynamic_output"`
}

type Database struct {
	Enabled     *bool         `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

func (d Database) IsEnabled() bool {
	if d.Enabled == nil {
		return true
	}
	return *d.Enabled
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Address       string `toml:"address"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
	EnableMetrics bool   `toml:"enable_metrics"`
}
