package models

// SystemMetrics is a lightweight aggregate snapshot served beside the
// Prometheus endpoint.
type SystemMetrics struct {
	RequestCount         uint64  `json:"request_count"`
	AvgRequestMillis     float64 `json:"avg_request_ms"`
	CacheHitRatio        float64 `json:"cache_hit_ratio"`
	CertificatesRendered uint64  `json:"certificates_rendered"`
	ReportsRaised        uint64  `json:"reports_raised"`
	CoursesCancelled     uint64  `json:"courses_cancelled"`
	ExportJobsProcessed  uint64  `json:"export_jobs_processed"`
	GoroutineCount       int     `json:"goroutine_count"`
	HeapAllocBytes       uint64  `json:"heap_alloc_bytes"`
}
