package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bittutor/bittutor-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides
// lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	certificates    prometheus.Counter
	reports         prometheus.Counter
	cancellations   prometheus.Counter
	exportJobs      prometheus.Counter

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	certificateCount     uint64
	reportCount          uint64
	cancellationCount    uint64
	exportJobCount       uint64
}

// NewMetricsService registers the platform's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total catalog cache hits",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total catalog cache misses",
	})
	certificates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "certificates_rendered_total",
		Help: "Total completion certificates rendered",
	})
	reports := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "course_reports_total",
		Help: "Total course reports raised",
	})
	cancellations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "course_cancellations_total",
		Help: "Total courses cancelled after reaching the report threshold",
	})
	exportJobs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "export_jobs_processed_total",
		Help: "Total roster export jobs processed",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		certificates, reports, cancellations, exportJobs, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		certificates:    certificates,
		reports:         reports,
		cancellations:   cancellations,
		exportJobs:      exportJobs,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheLookup records a catalog cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
}

// RecordCertificateRendered counts a rendered certificate.
func (m *MetricsService) RecordCertificateRendered() {
	if m == nil {
		return
	}
	m.certificates.Inc()
	atomic.AddUint64(&m.certificateCount, 1)
}

// RecordReport counts a raised report and, when the report cancelled the
// course, the cancellation.
func (m *MetricsService) RecordReport(cancelled bool) {
	if m == nil {
		return
	}
	m.reports.Inc()
	atomic.AddUint64(&m.reportCount, 1)
	if cancelled {
		m.cancellations.Inc()
		atomic.AddUint64(&m.cancellationCount, 1)
	}
}

// RecordExportJob counts a processed roster export job.
func (m *MetricsService) RecordExportJob() {
	if m == nil {
		return
	}
	m.exportJobs.Inc()
	atomic.AddUint64(&m.exportJobCount, 1)
}

// Snapshot returns aggregated metrics for the snapshot endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return models.SystemMetrics{
		RequestCount:         requests,
		AvgRequestMillis:     avgRequestMs,
		CacheHitRatio:        cacheRatio,
		CertificatesRendered: atomic.LoadUint64(&m.certificateCount),
		ReportsRaised:        atomic.LoadUint64(&m.reportCount),
		CoursesCancelled:     atomic.LoadUint64(&m.cancellationCount),
		ExportJobsProcessed:  atomic.LoadUint64(&m.exportJobCount),
		GoroutineCount:       runtime.NumGoroutine(),
		HeapAllocBytes:       mem.HeapAlloc,
	}
}
