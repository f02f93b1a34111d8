package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inspector_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	})

	ParseCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inspector_parse_cache_hits_total",
		Help: "Parse cache hits by tier (memory, disk).",
	}, []string{"tier"})

	ParseCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inspector_parse_cache_misses_total",
		Help: "Parse cache lookups that required a fresh parse.",
	})

	ParseCacheFormatErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inspector_parse_cache_format_errors_total",
		Help: "Disk cache entries rejected because they could not be decoded.",
	})

	ParseCacheEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inspector_parse_cache_evicted_total",
		Help: "Disk cache entries removed by pruning.",
	})

	UnitsBuiltTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inspector_units_built_total",
		Help: "Source units constructed, by build path (check, resolve).",
	}, []string{"path"})

	FilesCheckedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inspector_files_checked_total",
		Help: "Files processed by a check run, by outcome.",
	}, []string{"status"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inspector_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})
)
