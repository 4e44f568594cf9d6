package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики планировщика (vitrined).
var (
	// TicksTotal — количество тиков планировщика.
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitrine_scheduler_ticks_total",
		Help: "Number of scheduler ticks performed.",
	})

	// ResolveCacheHits — попадания в кэш выбора активной ротации.
	ResolveCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitrine_resolve_cache_hits_total",
		Help: "Active rotation resolutions served from the minute cache.",
	})

	// ResolveCacheMisses — пересчёты активной ротации.
	ResolveCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitrine_resolve_cache_misses_total",
		Help: "Active rotation resolutions that required recomputation.",
	})

	// RefreshJobsPublished — опубликованные refresh-задания по причине.
	RefreshJobsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitrine_refresh_jobs_published_total",
		Help: "Refresh jobs published to the queue.",
	}, []string{"refresh_type"})

	// RefreshesCompleted — завершённые обновления по статусу.
	RefreshesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitrine_refreshes_completed_total",
		Help: "Completed refresh jobs by status.",
	}, []string{"status"})

	// ActiveRotation — активная ротация (1 у активной, остальные метки
	// сбрасываются при пересчёте).
	ActiveRotation = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vitrine_active_rotation",
		Help: "Currently active rotation (1 for the active one).",
	}, []string{"rotation"})
)

// Метрики renderer-а.
var (
	// RenderDuration — длительность рендеринга контента.
	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vitrine_render_duration_seconds",
		Help:    "Time spent rendering content for a refresh job.",
		Buckets: prometheus.DefBuckets,
	})
)
